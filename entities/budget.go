package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Budget struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID  `gorm:"type:uuid;index;uniqueIndex:idx_budgets_one_active,where:active = true" json:"user_id"`
	Amount      float64    `json:"amount"`
	Period      string     `json:"period"` // weekly, monthly
	Currency    string     `json:"currency"`
	StartDate   time.Time  `json:"start_date"`
	EndDate     *time.Time `json:"end_date,omitempty"`
	Active      bool       `gorm:"index" json:"active"`
	AmountSpent float64    `json:"amount_spent"`

	User *User `gorm:"foreignKey:UserID" json:"-"`
	Timestamp
}

func (b *Budget) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}
