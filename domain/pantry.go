package domain

import (
	"fmt"
	"time"
)

const (
	PantryStatusActive   = "active"
	PantryStatusConsumed = "consumed"
	PantryStatusWasted   = "wasted"
	PantryStatusExpired  = "expired"

	PantrySourceManual       = "manual"
	PantrySourceShoppingList = "shopping_list"

	// ExpiringSoonDays is the look-ahead window for "expiring soon" pantry items.
	ExpiringSoonDays = 3
)

var PantryCategories = []string{
	"vegetables", "fruits", "dairy", "meat", "seafood", "grains", "legumes",
	"spices", "condiments", "beverages", "frozen", "bakery", "canned", "other",
}

var (
	MessageSuccessAddPantryItem     = "pantry item added successfully"
	MessageSuccessUpdatePantryItem  = "pantry item updated successfully"
	MessageSuccessRemovePantryItem  = "pantry item removed successfully"
	MessageSuccessGetPantryItems    = "pantry items retrieved successfully"
	MessageSuccessConsumePantryItem = "consumption logged successfully"
	MessageSuccessGetExpiringItems  = "expiring items retrieved successfully"
	MessageSuccessGetPantryValue    = "pantry value retrieved successfully"

	MessageFailedAddPantryItem     = "failed to add pantry item"
	MessageFailedUpdatePantryItem  = "failed to update pantry item"
	MessageFailedRemovePantryItem  = "failed to remove pantry item"
	MessageFailedGetPantryItems    = "failed to retrieve pantry items"
	MessageFailedConsumePantryItem = "failed to log consumption"
	MessageFailedGetExpiringItems  = "failed to retrieve expiring items"
	MessageFailedGetPantryValue    = "failed to retrieve pantry value"

	ErrPantryItemNotFound  = fmt.Errorf("%w: pantry item not found", ErrNotFound)
	ErrPantryItemNotActive = fmt.Errorf("%w: pantry item is not active", ErrConflict)
	ErrInvalidQuantity     = fmt.Errorf("%w: quantity must be positive", ErrValidation)
	ErrInvalidPrice        = fmt.Errorf("%w: price must be positive", ErrValidation)
	ErrInvalidPantryStatus = fmt.Errorf("%w: invalid pantry status", ErrValidation)
	ErrPantryItemModified  = fmt.Errorf("%w: pantry item changed concurrently", ErrConflict)
)

type (
	AddPantryItemRequest struct {
		Name         string   `json:"name" validate:"required,max=200"`
		Category     string   `json:"category" validate:"omitempty,max=50"`
		Quantity     float64  `json:"quantity" validate:"required,gt=0"`
		Unit         string   `json:"unit" validate:"required,max=20"`
		PurchaseDate string   `json:"purchase_date" validate:"omitempty"`
		ExpiryDate   string   `json:"expiry_date" validate:"omitempty"`
		Price        *float64 `json:"price" validate:"omitempty,gt=0"`
		Notes        string   `json:"notes" validate:"omitempty"`
	}

	UpdatePantryItemRequest struct {
		Name       string   `json:"name" validate:"omitempty,max=200"`
		Category   string   `json:"category" validate:"omitempty,max=50"`
		Quantity   *float64 `json:"quantity" validate:"omitempty,gte=0"`
		Unit       string   `json:"unit" validate:"omitempty,max=20"`
		ExpiryDate string   `json:"expiry_date" validate:"omitempty"`
		Price      *float64 `json:"price" validate:"omitempty,gt=0"`
		Notes      string   `json:"notes" validate:"omitempty"`
	}

	ConsumePantryItemRequest struct {
		QuantityUsed float64 `json:"quantity_used" validate:"required,gt=0"`
		Notes        string  `json:"notes" validate:"omitempty"`
	}

	PantryItemResponse struct {
		ID           string     `json:"id"`
		Name         string     `json:"name"`
		Category     string     `json:"category"`
		Quantity     float64    `json:"quantity"`
		Unit         string     `json:"unit"`
		PurchaseDate time.Time  `json:"purchase_date"`
		ExpiryDate   *time.Time `json:"expiry_date,omitempty"`
		Price        *float64   `json:"price,omitempty"`
		Status       string     `json:"status"`
		Source       string     `json:"source"`
		CreatedAt    time.Time  `json:"created_at"`
	}

	ExpiringItemResponse struct {
		ID              string    `json:"id"`
		Name            string    `json:"name"`
		ExpiryDate      time.Time `json:"expiry_date"`
		Quantity        float64   `json:"quantity"`
		Unit            string    `json:"unit"`
		DaysUntilExpiry int       `json:"days_until_expiry"`
	}

	PantryValueResponse struct {
		ActiveItems  int     `json:"active_items"`
		CurrentValue float64 `json:"current_value"`
	}
)

func IsPantryStatus(s string) bool {
	switch s {
	case PantryStatusActive, PantryStatusConsumed, PantryStatusWasted, PantryStatusExpired:
		return true
	}
	return false
}

// IsExpiringSoon reports whether expiry falls within ExpiringSoonDays of
// today. Items without an expiry date never expire soon.
func IsExpiringSoon(expiry *time.Time, today time.Time) bool {
	if expiry == nil {
		return false
	}
	return !DateOf(*expiry).After(DateOf(today).AddDate(0, 0, ExpiringSoonDays))
}
