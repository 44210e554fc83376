package shopping

import (
	"Pantry-Planner/domain"
	"Pantry-Planner/entities"
	"Pantry-Planner/pkg/database"
	"context"
	"time"

	"gorm.io/gorm"
)

type (
	ShoppingRepository interface {
		CreateShoppingList(ctx context.Context, list *entities.ShoppingList) error
		GetShoppingListByID(ctx context.Context, id string, userID string) (*entities.ShoppingList, error)
		GetShoppingListForUpdate(ctx context.Context, id string, userID string) (*entities.ShoppingList, error)
		GetShoppingLists(ctx context.Context, userID string, status string, page, limit int) ([]*entities.ShoppingList, int64, error)
		UpdateShoppingListItem(ctx context.Context, item *entities.ShoppingListItem) error
		// MarkConfirmed only applies while the list is still in one of fromStatuses.
		MarkConfirmed(ctx context.Context, id string, fromStatuses []string, totalActualCost float64, completedAt time.Time) (bool, error)
	}

	shoppingRepository struct {
		db *gorm.DB
	}
)

func NewShoppingRepository(db *gorm.DB) ShoppingRepository {
	return &shoppingRepository{db: db}
}

func (r *shoppingRepository) CreateShoppingList(ctx context.Context, list *entities.ShoppingList) error {
	return database.Conn(ctx, r.db).Create(list).Error
}

func (r *shoppingRepository) GetShoppingListByID(ctx context.Context, id string, userID string) (*entities.ShoppingList, error) {
	var list entities.ShoppingList
	if err := database.Conn(ctx, r.db).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Where("id = ? AND user_id = ?", id, userID).
		First(&list).Error; err != nil {
		return nil, err
	}
	return &list, nil
}

func (r *shoppingRepository) GetShoppingListForUpdate(ctx context.Context, id string, userID string) (*entities.ShoppingList, error) {
	conn := database.Conn(ctx, r.db)

	var list entities.ShoppingList
	if err := conn.
		Clauses(database.ForUpdate()).
		Where("id = ? AND user_id = ?", id, userID).
		First(&list).Error; err != nil {
		return nil, err
	}

	if err := conn.
		Where("shopping_list_id = ?", list.ID).
		Order("created_at ASC").
		Find(&list.Items).Error; err != nil {
		return nil, err
	}
	return &list, nil
}

func (r *shoppingRepository) GetShoppingLists(ctx context.Context, userID string, status string, page, limit int) ([]*entities.ShoppingList, int64, error) {
	var lists []*entities.ShoppingList
	var count int64
	offset := (page - 1) * limit

	query := database.Conn(ctx, r.db).Model(&entities.ShoppingList{}).Where("user_id = ?", userID)
	if status != "" && status != "all" {
		query = query.Where("status = ?", status)
	}

	if err := query.Count(&count).Error; err != nil {
		return nil, 0, err
	}

	if err := query.
		Preload("Items").
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&lists).Error; err != nil {
		return nil, 0, err
	}

	return lists, count, nil
}

func (r *shoppingRepository) UpdateShoppingListItem(ctx context.Context, item *entities.ShoppingListItem) error {
	return database.Conn(ctx, r.db).
		Model(item).
		Select("purchased", "actual_price", "quantity").
		Updates(item).Error
}

func (r *shoppingRepository) MarkConfirmed(ctx context.Context, id string, fromStatuses []string, totalActualCost float64, completedAt time.Time) (bool, error) {
	res := database.Conn(ctx, r.db).
		Model(&entities.ShoppingList{}).
		Where("id = ? AND status IN ?", id, fromStatuses).
		Updates(map[string]interface{}{
			"status":            domain.ShoppingListStatusConfirmed,
			"total_actual_cost": totalActualCost,
			"completed_at":      completedAt,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
