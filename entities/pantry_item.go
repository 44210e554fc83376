package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PantryItem struct {
	ID                 uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID             uuid.UUID  `gorm:"type:uuid;index" json:"user_id"`
	Name               string     `json:"name"`
	Category           string     `json:"category"`
	Quantity           float64    `json:"quantity"`
	Unit               string     `json:"unit"`
	PurchaseDate       time.Time  `json:"purchase_date"`
	ExpiryDate         *time.Time `json:"expiry_date,omitempty"`
	Price              *float64   `json:"price,omitempty"`
	Status             string     `gorm:"index" json:"status"` // active, consumed, wasted, expired
	Source             string     `json:"source"`              // manual, shopping_list
	ShoppingListItemID *uuid.UUID `gorm:"type:uuid" json:"shopping_list_item_id,omitempty"`
	Notes              string     `json:"notes,omitempty"`

	User *User `gorm:"foreignKey:UserID" json:"-"`
	Timestamp
}

func (p *PantryItem) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

type ConsumptionRecord struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       uuid.UUID `gorm:"type:uuid;index" json:"user_id"`
	PantryItemID uuid.UUID `gorm:"type:uuid;index" json:"pantry_item_id"`
	QuantityUsed float64   `json:"quantity_used"`
	DateConsumed time.Time `json:"date_consumed"`
	Notes        string    `json:"notes,omitempty"`

	PantryItem *PantryItem `gorm:"foreignKey:PantryItemID" json:"-"`
	Timestamp
}

func (c *ConsumptionRecord) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
