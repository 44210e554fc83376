// Package recipe suggests recipes that cook down the user's pantry, leaning on
// items that expire soon. Suggestions come from Gemini and are not stored.
package recipe

import (
	"Pantry-Planner/domain"
	"Pantry-Planner/entities"
	"Pantry-Planner/internal/metrics"
	"Pantry-Planner/internal/utils"
	"Pantry-Planner/pkg/gemini"
	"Pantry-Planner/pkg/pantry"
	"Pantry-Planner/pkg/user"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2/log"
)

type (
	RecipeService interface {
		// GetRecipeSuggestions returns up to count recipes. A count of zero
		// means DefaultRecipeSuggestions.
		GetRecipeSuggestions(ctx context.Context, userID string, count int) (domain.RecipeSuggestionsResponse, error)
	}

	recipeService struct {
		pantryRepository pantry.PantryRepository
		userService      user.UserService
		client           *gemini.Client
		now              func() time.Time
	}
)

func NewRecipeService(pantryRepository pantry.PantryRepository, userService user.UserService, client *gemini.Client) RecipeService {
	return &recipeService{
		pantryRepository: pantryRepository,
		userService:      userService,
		client:           client,
		now:              time.Now,
	}
}

func (s *recipeService) GetRecipeSuggestions(ctx context.Context, userID string, count int) (domain.RecipeSuggestionsResponse, error) {
	if count == 0 {
		count = domain.DefaultRecipeSuggestions
	}
	if count < 1 || count > domain.MaxRecipeSuggestions {
		return domain.RecipeSuggestionsResponse{}, domain.ErrInvalidRecipeCount
	}

	profile, err := s.userService.GetProfile(ctx, userID)
	if err != nil {
		return domain.RecipeSuggestionsResponse{}, err
	}

	snapshot, err := s.pantryRepository.GetActivePantryItems(ctx, userID)
	if err != nil {
		return domain.RecipeSuggestionsResponse{}, err
	}

	rc := BuildRecipeContext(profile, snapshot, domain.DateOf(s.now()))
	if len(rc.Pantry) == 0 {
		return domain.RecipeSuggestionsResponse{}, domain.ErrNoRecipeIngredients
	}
	rc.Count = count

	suggestions, err := s.suggest(ctx, rc)
	if err != nil {
		metrics.RecipeSuggestionRequests.WithLabelValues("unavailable").Inc()
		log.Warnw("recipe suggestion failed", "user_id", userID, "error", err)
		return domain.RecipeSuggestionsResponse{}, err
	}

	res := Rank(suggestions.Recipes, rc.ExpiringNames, profile.Allergies, count)
	metrics.RecipeSuggestionRequests.WithLabelValues("suggested").Inc()
	log.Infow("recipes suggested",
		"user_id", userID,
		"recipes", len(res.Recipes),
		"expiring", len(res.ExpiringItems),
		"dropped_allergen", res.DroppedAllergen,
	)
	return res, nil
}

func (s *recipeService) suggest(ctx context.Context, rc domain.RecipeContext) (domain.RecipeSuggestions, error) {
	prompt, err := BuildPrompt(rc)
	if err != nil {
		return domain.RecipeSuggestions{}, err
	}

	text, err := s.client.GenerateContent(ctx, 0.65, gemini.TextPart(prompt))
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return domain.RecipeSuggestions{}, err
		}
		return domain.RecipeSuggestions{}, fmt.Errorf("%w: %v", domain.ErrRecipeSuggesterUnavailable, err)
	}
	return ParseSuggestions(text)
}

// BuildRecipeContext keeps the pantry items a recipe may use: in stock, not
// past their expiry date and free of the user's allergens.
func BuildRecipeContext(profile domain.ProfileResponse, snapshot []*entities.PantryItem, today time.Time) domain.RecipeContext {
	rc := domain.RecipeContext{
		Pantry:    make([]domain.ProposalPantryItem, 0, len(snapshot)),
		Allergies: profile.Allergies,
		Dietary:   profile.DietaryRestrictions,
		Disliked:  profile.DislikedIngredients,
		Goal:      profile.Goal,
	}
	for _, item := range snapshot {
		if item.Quantity <= 0 || domain.ContainsAllergen(item.Name, profile.Allergies) {
			continue
		}
		if item.ExpiryDate != nil && domain.DateOf(*item.ExpiryDate).Before(today) {
			continue
		}
		p := domain.ProposalPantryItem{
			Name:     item.Name,
			Quantity: item.Quantity,
			Unit:     item.Unit,
		}
		if item.ExpiryDate != nil {
			p.ExpiryDate = item.ExpiryDate.Format(domain.DateLayout)
		}
		if domain.IsExpiringSoon(item.ExpiryDate, today) {
			p.IsExpiringSoon = true
			rc.ExpiringNames = append(rc.ExpiringNames, item.Name)
		}
		rc.Pantry = append(rc.Pantry, p)
	}
	return rc
}

func BuildPrompt(rc domain.RecipeContext) (string, error) {
	stock, err := json.Marshal(rc.Pantry)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("You are a chef helping a household reduce food waste.\n")
	fmt.Fprintf(&b, "Pantry (JSON): %s\n", stock)
	if len(rc.ExpiringNames) > 0 {
		fmt.Fprintf(&b, "Use these first, they expire soon: %s\n", strings.Join(rc.ExpiringNames, ", "))
	}
	if len(rc.Allergies) > 0 {
		fmt.Fprintf(&b, "Never use anything containing: %s\n", strings.Join(rc.Allergies, ", "))
	}
	if rc.Dietary != "" {
		fmt.Fprintf(&b, "Dietary restrictions: %s\n", rc.Dietary)
	}
	if rc.Disliked != "" {
		fmt.Fprintf(&b, "Disliked ingredients: %s\n", rc.Disliked)
	}
	if rc.Goal != "" {
		fmt.Fprintf(&b, "Active goal: %s\n", strings.ReplaceAll(rc.Goal, "_", " "))
	}
	fmt.Fprintf(&b, "Suggest %d recipes built mainly from the pantry; basic staples such as salt and oil are fine.\n", rc.Count)
	b.WriteString(`Respond ONLY with a JSON object of the form {"recipes": [{"name": string, "description": string, ` +
		`"cuisine": string, "difficulty": "easy"|"medium"|"hard", "prep_time_minutes": number, "cook_time_minutes": number, ` +
		`"servings": number, "ingredients": [{"name": string, "quantity": number, "unit": string}], ` +
		`"instructions": [string], "dietary_tags": [string]}]}. Do not include explanations or markdown.`)
	return b.String(), nil
}

// ParseSuggestions decodes a model answer strictly: unknown fields, wrong
// types and values outside the schema are rejected.
func ParseSuggestions(text string) (domain.RecipeSuggestions, error) {
	raw := gemini.ExtractJSON(text)
	if raw == "" {
		return domain.RecipeSuggestions{}, fmt.Errorf("%w: empty answer", domain.ErrMalformedRecipeSuggestions)
	}

	dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
	dec.DisallowUnknownFields()

	var suggestions domain.RecipeSuggestions
	if err := dec.Decode(&suggestions); err != nil {
		return domain.RecipeSuggestions{}, fmt.Errorf("%w: %v", domain.ErrMalformedRecipeSuggestions, err)
	}
	if dec.More() {
		return domain.RecipeSuggestions{}, fmt.Errorf("%w: trailing data after recipes", domain.ErrMalformedRecipeSuggestions)
	}
	if err := utils.ValidateStruct(suggestions); err != nil {
		return domain.RecipeSuggestions{}, fmt.Errorf("%w: %v", domain.ErrMalformedRecipeSuggestions, err)
	}
	return suggestions, nil
}

// Rank drops recipes that use an allergen, then orders the rest by how many
// expiring pantry items they use. Ties keep the model's order.
func Rank(recipes []domain.RecipeSuggestion, expiring []string, allergies []string, count int) domain.RecipeSuggestionsResponse {
	res := domain.RecipeSuggestionsResponse{
		Recipes:       make([]domain.RecipeSuggestionResponse, 0, len(recipes)),
		ExpiringItems: make([]string, 0, len(expiring)),
	}
	res.ExpiringItems = append(res.ExpiringItems, expiring...)

	for _, r := range recipes {
		if usesAllergen(r, allergies) {
			res.DroppedAllergen++
			continue
		}
		res.Recipes = append(res.Recipes, domain.RecipeSuggestionResponse{
			RecipeSuggestion: r,
			UsesExpiring:     usedExpiring(r, expiring),
		})
	}

	sort.SliceStable(res.Recipes, func(i, j int) bool {
		return len(res.Recipes[i].UsesExpiring) > len(res.Recipes[j].UsesExpiring)
	})
	if len(res.Recipes) > count {
		res.Recipes = res.Recipes[:count]
	}
	return res
}

func usesAllergen(r domain.RecipeSuggestion, allergies []string) bool {
	if domain.ContainsAllergen(r.Name, allergies) {
		return true
	}
	for _, ing := range r.Ingredients {
		if domain.ContainsAllergen(ing.Name, allergies) {
			return true
		}
	}
	return false
}

// usedExpiring lists the expiring pantry names a recipe mentions. "Spinach"
// matches an ingredient called "baby spinach".
func usedExpiring(r domain.RecipeSuggestion, expiring []string) []string {
	used := make([]string, 0)
	for _, name := range expiring {
		needle := strings.ToLower(strings.TrimSpace(name))
		for _, ing := range r.Ingredients {
			if needle != "" && strings.Contains(strings.ToLower(ing.Name), needle) {
				used = append(used, name)
				break
			}
		}
	}
	return used
}
