package entities

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID                  uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name                string    `json:"name"`
	Email               string    `gorm:"uniqueIndex" json:"email"`
	Allergies           string    `json:"allergies,omitempty"` // comma separated
	DietaryRestrictions string    `json:"dietary_restrictions,omitempty"`
	DislikedIngredients string    `json:"disliked_ingredients,omitempty"`
	Goal                string    `json:"goal,omitempty"` // e.g. weight_loss, save_money

	Timestamp
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
