package user

import (
	"Pantry-Planner/entities"
	"Pantry-Planner/pkg/database"
	"context"

	"gorm.io/gorm"
)

type (
	UserRepository interface {
		CreateUser(ctx context.Context, user *entities.User) error
		GetUserByID(ctx context.Context, id string) (*entities.User, error)
		UpdateUser(ctx context.Context, user *entities.User) error
		// LockUser takes the user row with FOR UPDATE NOWAIT. It serializes
		// per-user writes that have no existing rows to lock.
		LockUser(ctx context.Context, id string) error
		GetUserIDsWithActivePantry(ctx context.Context) ([]string, error)
	}

	userRepository struct {
		db *gorm.DB
	}
)

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) CreateUser(ctx context.Context, user *entities.User) error {
	return database.Conn(ctx, r.db).Create(user).Error
}

func (r *userRepository) GetUserByID(ctx context.Context, id string) (*entities.User, error) {
	var user entities.User
	if err := database.Conn(ctx, r.db).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) UpdateUser(ctx context.Context, user *entities.User) error {
	return database.Conn(ctx, r.db).Save(user).Error
}

func (r *userRepository) LockUser(ctx context.Context, id string) error {
	return database.Conn(ctx, r.db).
		Clauses(database.ForUpdateNoWait()).
		Where("id = ?", id).
		First(&entities.User{}).Error
}

func (r *userRepository) GetUserIDsWithActivePantry(ctx context.Context) ([]string, error) {
	var ids []string
	if err := database.Conn(ctx, r.db).
		Model(&entities.PantryItem{}).
		Where("status = ?", "active").
		Distinct("user_id").
		Pluck("user_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}
