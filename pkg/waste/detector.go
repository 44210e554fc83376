package waste

import (
	"Pantry-Planner/domain"
	"Pantry-Planner/entities"
	"Pantry-Planner/pkg/pantry"
	"time"
)

// Decision is what a sweep does to one pantry item.
type Decision struct {
	Reason         string
	QuantityWasted float64
	Cost           float64

	Quantity float64
	Price    *float64
	Status   string
}

// Evaluate applies the waste rules to a snapshot of an item. Expiry wins
// over staleness, and at most one rule fires per item. It returns nil when
// nothing should be recorded.
func Evaluate(item entities.PantryItem, today time.Time) *Decision {
	if item.Status != domain.PantryStatusActive || item.Quantity <= 0 {
		return nil
	}
	today = domain.DateOf(today)

	if item.ExpiryDate != nil && domain.DateOf(*item.ExpiryDate).Before(today) {
		var cost float64
		if item.Price != nil {
			cost = *item.Price
		}
		return &Decision{
			Reason:         domain.WasteReasonExpired,
			QuantityWasted: item.Quantity,
			Cost:           domain.RoundMoney(cost),
			Quantity:       0,
			Price:          pantry.ScalePrice(item.Price, item.Quantity, 0),
			Status:         domain.PantryStatusExpired,
		}
	}

	if domain.DaysBetween(item.PurchaseDate, today) > domain.StaleAfterDays {
		half := item.Quantity / 2
		var cost float64
		if item.Price != nil {
			cost = *item.Price / 2
		}
		return &Decision{
			Reason:         domain.WasteReasonOverPurchased,
			QuantityWasted: half,
			Cost:           domain.RoundMoney(cost),
			Quantity:       item.Quantity - half,
			Price:          pantry.ScalePrice(item.Price, item.Quantity, item.Quantity-half),
			Status:         domain.PantryStatusActive,
		}
	}

	return nil
}
