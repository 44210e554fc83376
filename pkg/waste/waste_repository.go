package waste

import (
	"Pantry-Planner/entities"
	"Pantry-Planner/pkg/database"
	"context"
	"time"

	"gorm.io/gorm"
)

type (
	WasteRepository interface {
		CreateWasteRecord(ctx context.Context, record *entities.FoodWasteRecord) error
		GetWasteRecords(ctx context.Context, userID string, limit int) ([]*entities.FoodWasteRecord, error)
		GetDetectedItemIDsOn(ctx context.Context, userID string, day time.Time, reason string) ([]string, error)
	}

	wasteRepository struct {
		db *gorm.DB
	}
)

func NewWasteRepository(db *gorm.DB) WasteRepository {
	return &wasteRepository{db: db}
}

func (r *wasteRepository) CreateWasteRecord(ctx context.Context, record *entities.FoodWasteRecord) error {
	return database.Conn(ctx, r.db).Create(record).Error
}

func (r *wasteRepository) GetWasteRecords(ctx context.Context, userID string, limit int) ([]*entities.FoodWasteRecord, error) {
	var records []*entities.FoodWasteRecord
	if err := database.Conn(ctx, r.db).
		Where("user_id = ?", userID).
		Order("waste_date DESC, created_at DESC").
		Limit(limit).
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// GetDetectedItemIDsOn lists items the sweep already recorded for reason on
// day. Manual records are not included.
func (r *wasteRepository) GetDetectedItemIDsOn(ctx context.Context, userID string, day time.Time, reason string) ([]string, error) {
	var ids []string
	if err := database.Conn(ctx, r.db).
		Model(&entities.FoodWasteRecord{}).
		Where("user_id = ? AND waste_date = ? AND reason = ? AND detected = ?", userID, day, reason, true).
		Distinct("pantry_item_id").
		Pluck("pantry_item_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}
