// Package notify tells users about budget events by mail.
package notify

import (
	"Pantry-Planner/domain"
	"Pantry-Planner/internal/utils/mailing"
	"context"
	"fmt"
	"html"

	"github.com/gofiber/fiber/v2/log"
)

const overspendSubject = "Your grocery budget is overspent"

type (
	Notifier interface {
		NotifyOverspend(ctx context.Context, email string, name string, budget domain.BudgetResponse) error
	}

	mailNotifier struct {
		sender mailing.Sender
	}

	noopNotifier struct{}
)

func NewMailNotifier(sender mailing.Sender) Notifier {
	return &mailNotifier{sender: sender}
}

// NewNoopNotifier is used when SMTP is not configured.
func NewNoopNotifier() Notifier {
	return noopNotifier{}
}

func (n *mailNotifier) NotifyOverspend(ctx context.Context, email string, name string, budget domain.BudgetResponse) error {
	if email == "" {
		return nil
	}
	if err := n.sender.SendMail(email, overspendSubject, OverspendBody(name, budget)); err != nil {
		return fmt.Errorf("%w: send overspend mail: %v", domain.ErrExternalService, err)
	}
	log.Infow("overspend mail sent", "budget_id", budget.ID)
	return nil
}

func (noopNotifier) NotifyOverspend(ctx context.Context, email string, name string, budget domain.BudgetResponse) error {
	return nil
}

func OverspendBody(name string, budget domain.BudgetResponse) string {
	return fmt.Sprintf(
		"<p>Hi %s,</p>"+
			"<p>You have spent <b>%.2f %s</b> of your %s budget of %.2f %s.</p>"+
			"<p>You are over by <b>%.2f %s</b>.</p>",
		html.EscapeString(name),
		budget.AmountSpent, budget.Currency,
		budget.Period,
		budget.Amount, budget.Currency,
		-budget.Remaining, budget.Currency,
	)
}
