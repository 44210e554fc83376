package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// FoodWasteRecord rows are append-only.
type FoodWasteRecord struct {
	ID               uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID           uuid.UUID  `gorm:"type:uuid;index" json:"user_id"`
	PantryItemID     uuid.UUID  `gorm:"type:uuid;index" json:"pantry_item_id"`
	Name             string     `json:"name"`
	OriginalQuantity float64    `json:"original_quantity"`
	QuantityWasted   float64    `json:"quantity_wasted"`
	Unit             string     `json:"unit"`
	Cost             float64    `json:"cost"`
	Reason           string     `gorm:"index" json:"reason"` // expired, over_purchased, didnt_like, recipe_change, forgot_about, other
	ReasonDetails    string     `json:"reason_details,omitempty"`
	PurchaseDate     time.Time  `json:"purchase_date"`
	ExpiryDate       *time.Time `json:"expiry_date,omitempty"`
	WasteDate        time.Time  `json:"waste_date"`
	Detected         bool       `json:"detected"` // written by the waste sweep

	PantryItem *PantryItem `gorm:"foreignKey:PantryItemID" json:"-"`
	Timestamp
}

func (f *FoodWasteRecord) BeforeCreate(tx *gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}
