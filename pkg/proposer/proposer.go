// Package proposer asks Gemini for shopping candidates and parses the answer
// against the strict proposal schema.
package proposer

import (
	"Pantry-Planner/domain"
	"Pantry-Planner/internal/utils"
	"Pantry-Planner/pkg/gemini"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

type GeminiProposer struct {
	client *gemini.Client
}

func NewGeminiProposer(client *gemini.Client) *GeminiProposer {
	return &GeminiProposer{client: client}
}

func (p *GeminiProposer) Propose(ctx context.Context, pc domain.ProposalContext) (domain.Proposal, error) {
	prompt, err := BuildPrompt(pc)
	if err != nil {
		return domain.Proposal{}, err
	}

	text, err := p.client.GenerateContent(ctx, 0.4, gemini.TextPart(prompt))
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return domain.Proposal{}, err
		}
		return domain.Proposal{}, fmt.Errorf("%w: %v", domain.ErrProposerUnavailable, err)
	}

	return ParseProposal(text)
}

// ParseProposal decodes a model answer into a Proposal. Unknown fields,
// wrong types and values outside the schema are all rejected.
func ParseProposal(text string) (domain.Proposal, error) {
	raw := gemini.ExtractJSON(text)
	if raw == "" {
		return domain.Proposal{}, fmt.Errorf("%w: empty answer", domain.ErrMalformedProposal)
	}

	dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
	dec.DisallowUnknownFields()

	var proposal domain.Proposal
	if err := dec.Decode(&proposal); err != nil {
		return domain.Proposal{}, fmt.Errorf("%w: %v", domain.ErrMalformedProposal, err)
	}
	if dec.More() {
		return domain.Proposal{}, fmt.Errorf("%w: trailing data after proposal", domain.ErrMalformedProposal)
	}
	if proposal.Items == nil {
		return domain.Proposal{}, fmt.Errorf("%w: missing items", domain.ErrMalformedProposal)
	}
	if err := utils.ValidateStruct(proposal); err != nil {
		return domain.Proposal{}, fmt.Errorf("%w: %v", domain.ErrMalformedProposal, err)
	}
	return proposal, nil
}

func BuildPrompt(pc domain.ProposalContext) (string, error) {
	pantry, err := json.Marshal(pc.Pantry)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You are planning a %s grocery list with a budget of %.2f %s.\n", pc.Period, pc.BudgetAmount, pc.Currency)
	fmt.Fprintf(&b, "Current pantry (JSON): %s\n", pantry)
	if len(pc.ExpiringNames) > 0 {
		fmt.Fprintf(&b, "Expiring soon, plan meals around them: %s\n", strings.Join(pc.ExpiringNames, ", "))
	}
	if len(pc.Allergies) > 0 {
		fmt.Fprintf(&b, "Never include anything containing: %s\n", strings.Join(pc.Allergies, ", "))
	}
	if pc.Dietary != "" {
		fmt.Fprintf(&b, "Dietary restrictions: %s\n", pc.Dietary)
	}
	if pc.Disliked != "" {
		fmt.Fprintf(&b, "Disliked ingredients: %s\n", pc.Disliked)
	}
	if pc.Goal != "" {
		fmt.Fprintf(&b, "Active goal: %s\n", strings.ReplaceAll(pc.Goal, "_", " "))
	}
	b.WriteString("Do not propose items the pantry already holds enough of.\n")
	b.WriteString(`Respond ONLY with a JSON object of the form {"list_name": string, "total_estimated_cost": number, ` +
		`"items": [{"name": string, "category": string, "quantity": number, "unit": string, ` +
		`"estimated_price": number, "priority": "high"|"medium"|"low", "reason": string}]}. ` +
		`estimated_price is the price of the whole line. Do not include explanations or markdown.`)
	return b.String(), nil
}
