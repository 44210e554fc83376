package domain

import (
	"fmt"
	"time"
)

const (
	BudgetPeriodWeekly  = "weekly"
	BudgetPeriodMonthly = "monthly"

	DefaultCurrency = "USD"
)

var (
	MessageSuccessCreateBudget       = "budget created successfully"
	MessageSuccessActivateBudget     = "budget activated successfully"
	MessageSuccessDeactivateBudget   = "budget deactivated successfully"
	MessageSuccessGetBudgets         = "budgets retrieved successfully"
	MessageSuccessSyncBudget         = "budget spending synchronized successfully"
	MessageSuccessGetBudgetBreakdown = "spending breakdown retrieved successfully"

	MessageFailedCreateBudget       = "failed to create budget"
	MessageFailedActivateBudget     = "failed to activate budget"
	MessageFailedDeactivateBudget   = "failed to deactivate budget"
	MessageFailedGetBudgets         = "failed to retrieve budgets"
	MessageFailedSyncBudget         = "failed to synchronize budget spending"
	MessageFailedGetBudgetBreakdown = "failed to retrieve spending breakdown"

	ErrBudgetNotFound       = fmt.Errorf("%w: budget not found", ErrNotFound)
	ErrNoActiveBudget       = fmt.Errorf("%w: no active budget found for user, please create a budget", ErrValidation)
	ErrInvalidBudgetAmount  = fmt.Errorf("%w: budget amount must be positive", ErrValidation)
	ErrInvalidBudgetPeriod  = fmt.Errorf("%w: budget period must be weekly or monthly", ErrValidation)
	ErrBudgetActivationBusy = fmt.Errorf("%w: another budget activation is in progress", ErrConflict)
)

// PeriodDays returns the length of a budget period in days.
func PeriodDays(period string) (int, error) {
	switch period {
	case BudgetPeriodWeekly:
		return 7, nil
	case BudgetPeriodMonthly:
		return 30, nil
	}
	return 0, ErrInvalidBudgetPeriod
}

type (
	CreateBudgetRequest struct {
		Amount    float64 `json:"amount" validate:"required,gt=0"`
		Period    string  `json:"period" validate:"required,oneof=weekly monthly"`
		Currency  string  `json:"currency" validate:"omitempty,len=3"`
		StartDate string  `json:"start_date" validate:"omitempty"`
		Activate  bool    `json:"activate"`
	}

	BudgetResponse struct {
		ID          string     `json:"id"`
		Amount      float64    `json:"amount"`
		Period      string     `json:"period"`
		Currency    string     `json:"currency"`
		StartDate   time.Time  `json:"start_date"`
		EndDate     *time.Time `json:"end_date,omitempty"`
		Active      bool       `json:"active"`
		AmountSpent float64    `json:"amount_spent"`
		Remaining   float64    `json:"remaining"`
		UsedPercent float64    `json:"used_percent"`
	}

	CategorySpendingItem struct {
		Name     string  `json:"name"`
		Quantity float64 `json:"quantity"`
		Unit     string  `json:"unit"`
	}

	CategorySpending struct {
		Category  string                 `json:"category"`
		Amount    float64                `json:"amount"`
		ItemCount int                    `json:"item_count"`
		Items     []CategorySpendingItem `json:"items"`
	}

	SpendingBreakdownResponse struct {
		BudgetID   string             `json:"budget_id"`
		Total      float64            `json:"total"`
		Categories []CategorySpending `json:"categories"`
	}
)
