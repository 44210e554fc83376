package budget

import (
	"Pantry-Planner/domain"
	"Pantry-Planner/entities"
	"sort"
	"strings"
	"time"
)

// Window returns the inclusive calendar range a budget accounts for. An open
// ended budget runs until today.
func Window(b *entities.Budget, today time.Time) (time.Time, time.Time) {
	from := domain.DateOf(b.StartDate)
	to := domain.DateOf(today)
	if b.EndDate != nil {
		to = domain.DateOf(*b.EndDate)
	}
	return from, to
}

func inWindow(t *time.Time, from, to time.Time) bool {
	if t == nil {
		return false
	}
	day := domain.DateOf(*t)
	return !day.Before(from) && !day.After(to)
}

// SpentInWindow sums total_actual_cost over confirmed lists completed inside
// the window.
func SpentInWindow(lists []*entities.ShoppingList, from, to time.Time) float64 {
	var spent float64
	for _, list := range lists {
		if list.Status != domain.ShoppingListStatusConfirmed || !inWindow(list.CompletedAt, from, to) {
			continue
		}
		if list.TotalActualCost != nil {
			spent += *list.TotalActualCost
		}
	}
	return domain.RoundMoney(spent)
}

// Breakdown groups purchased items of the lists completed inside the window
// by category, largest amount first.
func Breakdown(lists []*entities.ShoppingList, from, to time.Time) []domain.CategorySpending {
	byCategory := make(map[string]*domain.CategorySpending)
	for _, list := range lists {
		if list.Status != domain.ShoppingListStatusConfirmed || !inWindow(list.CompletedAt, from, to) {
			continue
		}
		for _, item := range list.Items {
			if !item.Purchased {
				continue
			}
			category := strings.ToLower(strings.TrimSpace(item.Category))
			if category == "" {
				category = "other"
			}

			entry, ok := byCategory[category]
			if !ok {
				entry = &domain.CategorySpending{Category: category, Items: []domain.CategorySpendingItem{}}
				byCategory[category] = entry
			}

			price := item.EstimatedPrice
			if item.ActualPrice != nil {
				price = *item.ActualPrice
			}
			entry.Amount += price
			entry.ItemCount++
			entry.Items = append(entry.Items, domain.CategorySpendingItem{
				Name:     item.Name,
				Quantity: item.Quantity,
				Unit:     item.Unit,
			})
		}
	}

	res := make([]domain.CategorySpending, 0, len(byCategory))
	for _, entry := range byCategory {
		entry.Amount = domain.RoundMoney(entry.Amount)
		res = append(res, *entry)
	}
	sort.Slice(res, func(i, j int) bool {
		if res[i].Amount != res[j].Amount {
			return res[i].Amount > res[j].Amount
		}
		return res[i].Category < res[j].Category
	})
	return res
}

// Remaining is never clamped: a negative value means overspend.
func Remaining(b *entities.Budget) float64 {
	return domain.RoundMoney(b.Amount - b.AmountSpent)
}

func UsedPercent(b *entities.Budget) float64 {
	if b.Amount <= 0 {
		return 0
	}
	return domain.RoundMoney(b.AmountSpent / b.Amount * 100)
}

func ToBudgetResponse(b *entities.Budget) domain.BudgetResponse {
	return domain.BudgetResponse{
		ID:          b.ID.String(),
		Amount:      b.Amount,
		Period:      b.Period,
		Currency:    b.Currency,
		StartDate:   b.StartDate,
		EndDate:     b.EndDate,
		Active:      b.Active,
		AmountSpent: b.AmountSpent,
		Remaining:   Remaining(b),
		UsedPercent: UsedPercent(b),
	}
}
