package domain

import (
	"fmt"
	"time"
)

const (
	WasteReasonExpired       = "expired"
	WasteReasonOverPurchased = "over_purchased"
	WasteReasonDidntLike     = "didnt_like"
	WasteReasonRecipeChange  = "recipe_change"
	WasteReasonForgotAbout   = "forgot_about"
	WasteReasonOther         = "other"

	// StaleAfterDays is how long an active item may sit in the pantry before
	// the detector treats half of it as over-purchased.
	StaleAfterDays = 21

	DefaultWasteRecordLimit = 20
)

var (
	MessageSuccessRecordWaste      = "waste recorded successfully"
	MessageSuccessWasteSweep       = "waste sweep completed"
	MessageSuccessGetWasteAnalytic = "waste analytics retrieved successfully"

	MessageFailedRecordWaste      = "failed to record waste"
	MessageFailedWasteSweep       = "failed to run waste sweep"
	MessageFailedGetWasteAnalytic = "failed to retrieve waste analytics"

	ErrInvalidWasteReason = fmt.Errorf("%w: invalid waste reason", ErrValidation)
)

type (
	RecordWasteRequest struct {
		QuantityWasted float64 `json:"quantity_wasted" validate:"required,gt=0"`
		Reason         string  `json:"reason" validate:"required,oneof=expired over_purchased didnt_like recipe_change forgot_about other"`
		ReasonDetails  string  `json:"reason_details" validate:"omitempty,max=500"`
	}

	WasteRecordResponse struct {
		ID               string     `json:"id"`
		PantryItemID     string     `json:"pantry_item_id"`
		Name             string     `json:"name"`
		OriginalQuantity float64    `json:"original_quantity"`
		QuantityWasted   float64    `json:"quantity_wasted"`
		Unit             string     `json:"unit"`
		Cost             float64    `json:"cost"`
		Reason           string     `json:"reason"`
		ReasonDetails    string     `json:"reason_details,omitempty"`
		PurchaseDate     time.Time  `json:"purchase_date"`
		ExpiryDate       *time.Time `json:"expiry_date,omitempty"`
		WasteDate        time.Time  `json:"waste_date"`
	}

	WasteSweepResponse struct {
		Scanned int                   `json:"scanned"`
		Expired int                   `json:"expired"`
		Stale   int                   `json:"stale"`
		Failed  int                   `json:"failed"`
		Records []WasteRecordResponse `json:"records"`
	}

	WasteAnalyticsResponse struct {
		TotalCost     float64               `json:"total_cost"`
		CostByReason  map[string]float64    `json:"cost_by_reason"`
		RecentRecords []WasteRecordResponse `json:"recent_records"`
	}
)

func IsWasteReason(s string) bool {
	switch s {
	case WasteReasonExpired, WasteReasonOverPurchased, WasteReasonDidntLike,
		WasteReasonRecipeChange, WasteReasonForgotAbout, WasteReasonOther:
		return true
	}
	return false
}
