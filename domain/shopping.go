package domain

import (
	"fmt"
	"time"
)

const (
	ShoppingListStatusDraft     = "draft"
	ShoppingListStatusGenerated = "generated"
	ShoppingListStatusConfirmed = "confirmed"
	ShoppingListStatusCompleted = "completed"
	ShoppingListStatusCancelled = "cancelled"

	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"

	DefaultShoppingListName = "Smart Shopping List"
)

var (
	MessageSuccessGenerateShoppingList = "shopping list generated successfully"
	MessageSuccessCreateShoppingList   = "shopping list created successfully"
	MessageSuccessGetShoppingLists     = "shopping lists retrieved successfully"
	MessageSuccessConfirmPurchase      = "purchase confirmed successfully"

	MessageFailedGenerateShoppingList = "failed to generate shopping list"
	MessageNoShoppingListProduced     = "no shopping list produced, please retry later"
	MessageFailedCreateShoppingList   = "failed to create shopping list"
	MessageFailedGetShoppingLists     = "failed to retrieve shopping lists"
	MessageFailedConfirmPurchase      = "failed to confirm purchase"

	ErrShoppingListNotFound       = fmt.Errorf("%w: shopping list not found", ErrNotFound)
	ErrShoppingListNotConfirmable = fmt.Errorf("%w: shopping list is not in a confirmable state", ErrConflict)
	ErrEmptyPurchase              = fmt.Errorf("%w: at least one purchased item is required", ErrValidation)
	ErrEmptyShoppingList          = fmt.Errorf("%w: a shopping list needs at least one item", ErrValidation)
	ErrNoMatchingPurchaseItems    = fmt.Errorf("%w: none of the purchased items belong to this shopping list", ErrValidation)
	ErrInvalidShoppingStatus      = fmt.Errorf("%w: invalid shopping list status", ErrValidation)
	ErrProposerUnavailable        = fmt.Errorf("%w: candidate proposer unavailable", ErrExternalService)
	ErrMalformedProposal          = fmt.Errorf("%w: malformed candidate proposal", ErrExternalService)
	ErrLabelReaderUnavailable     = fmt.Errorf("%w: label reader unavailable", ErrExternalService)
	ErrInvalidLabelImage          = fmt.Errorf("%w: label image must be base64 encoded", ErrValidation)
)

// PriorityWeight orders candidates when the budget forces trimming; higher
// weights are kept first.
func PriorityWeight(priority string) int {
	switch priority {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	}
	return 0
}

// GenerationOutcome tells callers whether a generation attempt produced a
// list or failed for a reason that is worth retrying.
type GenerationOutcome string

const (
	OutcomeGenerated           GenerationOutcome = "generated"
	OutcomeProposerUnavailable GenerationOutcome = "proposer_unavailable"
)

type (
	// Candidate is one sanitized purchase suggestion.
	Candidate struct {
		Name           string
		Category       string
		Quantity       float64
		Unit           string
		EstimatedPrice float64
		Priority       string
		Reason         string
	}

	ProposalContext struct {
		BudgetAmount  float64
		Currency      string
		Period        string
		Pantry        []ProposalPantryItem
		Allergies     []string
		Dietary       string
		Disliked      string
		Goal          string
		ExpiringNames []string
	}

	ProposalPantryItem struct {
		Name           string  `json:"name"`
		Quantity       float64 `json:"quantity"`
		Unit           string  `json:"unit"`
		ExpiryDate     string  `json:"expiry_date,omitempty"`
		IsExpiringSoon bool    `json:"is_expiring_soon"`
	}

	// Proposal is the strict schema the Candidate Proposer must return.
	Proposal struct {
		ListName           string         `json:"list_name" validate:"omitempty,max=200"`
		TotalEstimatedCost float64        `json:"total_estimated_cost" validate:"gte=0"`
		Items              []ProposalItem `json:"items" validate:"required,max=100,dive"`
	}

	ProposalItem struct {
		Name           string  `json:"name" validate:"required,max=200"`
		Category       string  `json:"category,omitempty" validate:"omitempty,max=50"`
		Quantity       float64 `json:"quantity" validate:"gt=0,lte=100000"`
		Unit           string  `json:"unit" validate:"required,max=20"`
		EstimatedPrice float64 `json:"estimated_price" validate:"gt=0,lte=1000000"`
		Priority       string  `json:"priority" validate:"required,oneof=high medium low"`
		Reason         string  `json:"reason,omitempty" validate:"omitempty,max=200"`
	}

	GenerationResult struct {
		Outcome GenerationOutcome     `json:"outcome"`
		List    *ShoppingListResponse `json:"list,omitempty"`
		Err     error                 `json:"-"`
	}

	CreateShoppingListItemRequest struct {
		Name           string  `json:"name" validate:"required,max=200"`
		Category       string  `json:"category" validate:"omitempty,max=50"`
		Quantity       float64 `json:"quantity" validate:"required,gt=0"`
		Unit           string  `json:"unit" validate:"required,max=20"`
		EstimatedPrice float64 `json:"estimated_price" validate:"required,gt=0"`
		Priority       string  `json:"priority" validate:"omitempty,oneof=high medium low"`
		Notes          string  `json:"notes" validate:"omitempty"`
	}

	CreateShoppingListRequest struct {
		Name  string                          `json:"name" validate:"omitempty,max=200"`
		Items []CreateShoppingListItemRequest `json:"items" validate:"required,min=1,dive"`
	}

	PurchasedItemRequest struct {
		ShoppingListItemID string   `json:"shopping_list_item_id" validate:"required,uuid"`
		ActualPrice        *float64 `json:"actual_price" validate:"omitempty"`
		PurchasedQuantity  *float64 `json:"purchased_quantity" validate:"omitempty"`
		ExpiryDate         string   `json:"expiry_date" validate:"omitempty"`
		LabelImage         string   `json:"label_image,omitempty" validate:"omitempty,base64"`
		LabelMimeType      string   `json:"label_mime_type,omitempty" validate:"omitempty"`
	}

	ConfirmPurchaseRequest struct {
		Items         []PurchasedItemRequest `json:"items" validate:"dive"`
		TotalOverride *float64               `json:"total_override" validate:"omitempty,gte=0"`
	}

	ShoppingListItemResponse struct {
		ID             string   `json:"id"`
		Name           string   `json:"name"`
		Category       string   `json:"category"`
		Quantity       float64  `json:"quantity"`
		Unit           string   `json:"unit"`
		EstimatedPrice float64  `json:"estimated_price"`
		ActualPrice    *float64 `json:"actual_price,omitempty"`
		Priority       string   `json:"priority"`
		Purchased      bool     `json:"purchased"`
		Reason         string   `json:"reason,omitempty"`
	}

	ShoppingListResponse struct {
		ID                  string                     `json:"id"`
		Name                string                     `json:"name"`
		Status              string                     `json:"status"`
		BudgetLimit         float64                    `json:"budget_limit"`
		TotalEstimatedCost  float64                    `json:"total_estimated_cost"`
		TotalActualCost     *float64                   `json:"total_actual_cost,omitempty"`
		PantryUtilization   float64                    `json:"pantry_utilization"`
		WasteReductionScore float64                    `json:"waste_reduction_score"`
		GoalAlignment       float64                    `json:"goal_alignment"`
		WeekNumber          int                        `json:"week_number"`
		Month               int                        `json:"month"`
		Year                int                        `json:"year"`
		CreatedAt           time.Time                  `json:"created_at"`
		CompletedAt         *time.Time                 `json:"completed_at,omitempty"`
		Items               []ShoppingListItemResponse `json:"items"`
	}

	ConfirmPurchaseResponse struct {
		ShoppingList    ShoppingListResponse `json:"shopping_list"`
		PantryItemIDs   []string             `json:"pantry_item_ids"`
		TotalSpent      float64              `json:"total_spent"`
		SkippedItemIDs  []string             `json:"skipped_item_ids,omitempty"`
		BudgetRemaining *float64             `json:"budget_remaining,omitempty"`
	}

	LabelDetection struct {
		ExpiryDate   *time.Time `json:"expiry_date,omitempty"`
		Confidence   float64    `json:"confidence"`
		DetectedText string     `json:"detected_text"`
	}
)

func IsShoppingListStatus(s string) bool {
	switch s {
	case ShoppingListStatusDraft, ShoppingListStatusGenerated, ShoppingListStatusConfirmed,
		ShoppingListStatusCompleted, ShoppingListStatusCancelled:
		return true
	}
	return false
}
