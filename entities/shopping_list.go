package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ShoppingList struct {
	ID                  uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID              uuid.UUID  `gorm:"type:uuid;index" json:"user_id"`
	Name                string     `json:"name"`
	Status              string     `gorm:"index" json:"status"` // draft, generated, confirmed, completed, cancelled
	BudgetLimit         float64    `json:"budget_limit"`
	TotalEstimatedCost  float64    `json:"total_estimated_cost"`
	TotalActualCost     *float64   `json:"total_actual_cost,omitempty"`
	PantryUtilization   float64    `json:"pantry_utilization"`
	WasteReductionScore float64    `json:"waste_reduction_score"`
	GoalAlignment       float64    `json:"goal_alignment"`
	WeekNumber          int        `json:"week_number"`
	Month               int        `json:"month"`
	Year                int        `json:"year"`
	CompletedAt         *time.Time `json:"completed_at,omitempty"`

	User  *User               `gorm:"foreignKey:UserID" json:"-"`
	Items []*ShoppingListItem `gorm:"foreignKey:ShoppingListID" json:"items,omitempty"`
	Timestamp
}

func (s *ShoppingList) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

type ShoppingListItem struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ShoppingListID uuid.UUID `gorm:"type:uuid;index" json:"shopping_list_id"`
	Name           string    `json:"name"`
	Category       string    `json:"category"`
	Quantity       float64   `json:"quantity"`
	Unit           string    `json:"unit"`
	EstimatedPrice float64   `json:"estimated_price"`
	ActualPrice    *float64  `json:"actual_price,omitempty"`
	Priority       string    `json:"priority"` // high, medium, low
	Purchased      bool      `gorm:"default:false" json:"purchased"`
	Reason         string    `json:"reason,omitempty"`
	Notes          string    `json:"notes,omitempty"`

	ShoppingList *ShoppingList `gorm:"foreignKey:ShoppingListID" json:"-"`
	Timestamp
}

func (s *ShoppingListItem) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
