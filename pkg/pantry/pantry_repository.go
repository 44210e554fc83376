package pantry

import (
	"Pantry-Planner/domain"
	"Pantry-Planner/entities"
	"Pantry-Planner/pkg/database"
	"context"
	"time"

	"gorm.io/gorm"
)

type (
	// Adjustment is a guarded write: it only applies while the row is still
	// active and still holds ExpectedQuantity.
	Adjustment struct {
		ExpectedQuantity float64
		Quantity         float64
		Price            *float64
		Status           string
	}

	PantryRepository interface {
		AddPantryItem(ctx context.Context, item *entities.PantryItem) error
		AddPantryItems(ctx context.Context, items []*entities.PantryItem) error
		GetPantryItemByID(ctx context.Context, id string) (*entities.PantryItem, error)
		GetPantryItemForUpdate(ctx context.Context, id string, userID string) (*entities.PantryItem, error)
		UpdatePantryItem(ctx context.Context, item *entities.PantryItem) error
		ApplyAdjustment(ctx context.Context, id string, adj Adjustment) (bool, error)
		GetPantryItems(ctx context.Context, userID string, status string, page, limit int) ([]*entities.PantryItem, int64, error)
		GetActivePantryItems(ctx context.Context, userID string) ([]*entities.PantryItem, error)
		GetExpiringPantryItems(ctx context.Context, userID string, until time.Time) ([]*entities.PantryItem, error)

		AddConsumptionRecord(ctx context.Context, record *entities.ConsumptionRecord) error
	}

	pantryRepository struct {
		db *gorm.DB
	}
)

func NewPantryRepository(db *gorm.DB) PantryRepository {
	return &pantryRepository{db: db}
}

func (r *pantryRepository) AddPantryItem(ctx context.Context, item *entities.PantryItem) error {
	return database.Conn(ctx, r.db).Create(item).Error
}

func (r *pantryRepository) AddPantryItems(ctx context.Context, items []*entities.PantryItem) error {
	if len(items) == 0 {
		return nil
	}
	return database.Conn(ctx, r.db).Create(&items).Error
}

func (r *pantryRepository) GetPantryItemByID(ctx context.Context, id string) (*entities.PantryItem, error) {
	var item entities.PantryItem
	if err := database.Conn(ctx, r.db).Where("id = ?", id).First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *pantryRepository) GetPantryItemForUpdate(ctx context.Context, id string, userID string) (*entities.PantryItem, error) {
	var item entities.PantryItem
	if err := database.Conn(ctx, r.db).
		Clauses(database.ForUpdate()).
		Where("id = ? AND user_id = ?", id, userID).
		First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *pantryRepository) UpdatePantryItem(ctx context.Context, item *entities.PantryItem) error {
	return database.Conn(ctx, r.db).Save(item).Error
}

func (r *pantryRepository) ApplyAdjustment(ctx context.Context, id string, adj Adjustment) (bool, error) {
	res := database.Conn(ctx, r.db).
		Model(&entities.PantryItem{}).
		Where("id = ? AND status = ? AND quantity = ?", id, domain.PantryStatusActive, adj.ExpectedQuantity).
		Updates(map[string]interface{}{
			"quantity": adj.Quantity,
			"price":    adj.Price,
			"status":   adj.Status,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *pantryRepository) GetPantryItems(ctx context.Context, userID string, status string, page, limit int) ([]*entities.PantryItem, int64, error) {
	var items []*entities.PantryItem
	var count int64
	offset := (page - 1) * limit

	query := database.Conn(ctx, r.db).Model(&entities.PantryItem{}).Where("user_id = ?", userID)
	if status != "" && status != "all" {
		query = query.Where("status = ?", status)
	}

	if err := query.Count(&count).Error; err != nil {
		return nil, 0, err
	}

	if err := query.
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&items).Error; err != nil {
		return nil, 0, err
	}

	return items, count, nil
}

func (r *pantryRepository) GetActivePantryItems(ctx context.Context, userID string) ([]*entities.PantryItem, error) {
	var items []*entities.PantryItem
	if err := database.Conn(ctx, r.db).
		Where("user_id = ? AND status = ?", userID, domain.PantryStatusActive).
		Order("purchase_date ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *pantryRepository) GetExpiringPantryItems(ctx context.Context, userID string, until time.Time) ([]*entities.PantryItem, error) {
	var items []*entities.PantryItem
	if err := database.Conn(ctx, r.db).
		Where("user_id = ? AND status = ? AND expiry_date IS NOT NULL AND expiry_date <= ?", userID, domain.PantryStatusActive, until).
		Order("expiry_date ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *pantryRepository) AddConsumptionRecord(ctx context.Context, record *entities.ConsumptionRecord) error {
	return database.Conn(ctx, r.db).Create(record).Error
}
