package budget

import (
	"Pantry-Planner/domain"
	"Pantry-Planner/entities"
	"Pantry-Planner/pkg/database"
	"context"

	"gorm.io/gorm"
)

type (
	BudgetRepository interface {
		CreateBudget(ctx context.Context, budget *entities.Budget) error
		GetBudgetByID(ctx context.Context, id string, userID string) (*entities.Budget, error)
		GetBudgetForUpdate(ctx context.Context, id string, userID string) (*entities.Budget, error)
		GetActiveBudget(ctx context.Context, userID string) (*entities.Budget, error)
		GetBudgets(ctx context.Context, userID string) ([]*entities.Budget, error)
		LockUserBudgets(ctx context.Context, userID string) ([]*entities.Budget, error)
		SetActiveBudget(ctx context.Context, userID string, budgetID string) error
		SetInactive(ctx context.Context, budgetID string) error
		UpdateAmountSpent(ctx context.Context, budgetID string, amountSpent float64) error

		GetConfirmedShoppingLists(ctx context.Context, userID string) ([]*entities.ShoppingList, error)
	}

	budgetRepository struct {
		db *gorm.DB
	}
)

func NewBudgetRepository(db *gorm.DB) BudgetRepository {
	return &budgetRepository{db: db}
}

func (r *budgetRepository) CreateBudget(ctx context.Context, budget *entities.Budget) error {
	return database.Conn(ctx, r.db).Create(budget).Error
}

func (r *budgetRepository) GetBudgetByID(ctx context.Context, id string, userID string) (*entities.Budget, error) {
	var budget entities.Budget
	if err := database.Conn(ctx, r.db).
		Where("id = ? AND user_id = ?", id, userID).
		First(&budget).Error; err != nil {
		return nil, err
	}
	return &budget, nil
}

func (r *budgetRepository) GetBudgetForUpdate(ctx context.Context, id string, userID string) (*entities.Budget, error) {
	var budget entities.Budget
	if err := database.Conn(ctx, r.db).
		Clauses(database.ForUpdate()).
		Where("id = ? AND user_id = ?", id, userID).
		First(&budget).Error; err != nil {
		return nil, err
	}
	return &budget, nil
}

func (r *budgetRepository) GetActiveBudget(ctx context.Context, userID string) (*entities.Budget, error) {
	var budget entities.Budget
	if err := database.Conn(ctx, r.db).
		Where("user_id = ? AND active = ?", userID, true).
		Order("start_date DESC").
		First(&budget).Error; err != nil {
		return nil, err
	}
	return &budget, nil
}

func (r *budgetRepository) GetBudgets(ctx context.Context, userID string) ([]*entities.Budget, error) {
	var budgets []*entities.Budget
	if err := database.Conn(ctx, r.db).
		Where("user_id = ?", userID).
		Order("start_date DESC").
		Find(&budgets).Error; err != nil {
		return nil, err
	}
	return budgets, nil
}

// LockUserBudgets takes the row locks of every budget the user owns without
// waiting. A concurrent holder surfaces as a lock conflict error.
func (r *budgetRepository) LockUserBudgets(ctx context.Context, userID string) ([]*entities.Budget, error) {
	var budgets []*entities.Budget
	if err := database.Conn(ctx, r.db).
		Clauses(database.ForUpdateNoWait()).
		Where("user_id = ?", userID).
		Order("id").
		Find(&budgets).Error; err != nil {
		return nil, err
	}
	return budgets, nil
}

func (r *budgetRepository) SetActiveBudget(ctx context.Context, userID string, budgetID string) error {
	conn := database.Conn(ctx, r.db)
	if err := conn.Model(&entities.Budget{}).
		Where("user_id = ? AND id <> ? AND active = ?", userID, budgetID, true).
		Update("active", false).Error; err != nil {
		return err
	}
	return conn.Model(&entities.Budget{}).
		Where("id = ? AND user_id = ?", budgetID, userID).
		Update("active", true).Error
}

func (r *budgetRepository) SetInactive(ctx context.Context, budgetID string) error {
	return database.Conn(ctx, r.db).
		Model(&entities.Budget{}).
		Where("id = ?", budgetID).
		Update("active", false).Error
}

func (r *budgetRepository) UpdateAmountSpent(ctx context.Context, budgetID string, amountSpent float64) error {
	return database.Conn(ctx, r.db).
		Model(&entities.Budget{}).
		Where("id = ?", budgetID).
		Update("amount_spent", amountSpent).Error
}

func (r *budgetRepository) GetConfirmedShoppingLists(ctx context.Context, userID string) ([]*entities.ShoppingList, error) {
	var lists []*entities.ShoppingList
	if err := database.Conn(ctx, r.db).
		Preload("Items", "purchased = ?", true).
		Where("user_id = ? AND status = ? AND completed_at IS NOT NULL", userID, domain.ShoppingListStatusConfirmed).
		Order("completed_at ASC").
		Find(&lists).Error; err != nil {
		return nil, err
	}
	return lists, nil
}
