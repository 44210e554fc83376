package shopping

import "Pantry-Planner/domain"

// transitions lists the statuses a shopping list may move to from each
// status. completed and cancelled are terminal and nothing moves into them yet.
var transitions = map[string][]string{
	domain.ShoppingListStatusDraft:     {domain.ShoppingListStatusConfirmed},
	domain.ShoppingListStatusGenerated: {domain.ShoppingListStatusConfirmed},
	domain.ShoppingListStatusConfirmed: {},
	domain.ShoppingListStatusCompleted: {},
	domain.ShoppingListStatusCancelled: {},
}

func CanTransition(from, to string) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func CanConfirm(status string) bool {
	return CanTransition(status, domain.ShoppingListStatusConfirmed)
}

// ConfirmableStatuses are the statuses a purchase confirmation may start from.
func ConfirmableStatuses() []string {
	var statuses []string
	for _, from := range []string{
		domain.ShoppingListStatusDraft,
		domain.ShoppingListStatusGenerated,
		domain.ShoppingListStatusConfirmed,
		domain.ShoppingListStatusCompleted,
		domain.ShoppingListStatusCancelled,
	} {
		if CanConfirm(from) {
			statuses = append(statuses, from)
		}
	}
	return statuses
}
