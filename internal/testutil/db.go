// Package testutil provides a migrated throwaway database and fixtures for
// package tests.
package testutil

import (
	migration "Pantry-Planner/cmd/database/migrate"
	"Pantry-Planner/domain"
	"Pantry-Planner/entities"
	"Pantry-Planner/pkg/database"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "pantry.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := migration.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func CreateUser(t *testing.T, db *gorm.DB, allergies string) *entities.User {
	t.Helper()

	id := uuid.New()
	user := &entities.User{
		ID:        id,
		Name:      "Test User",
		Email:     id.String() + "@example.com",
		Allergies: allergies,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

func CreatePantryItem(t *testing.T, db *gorm.DB, item *entities.PantryItem) *entities.PantryItem {
	t.Helper()

	if item.Status == "" {
		item.Status = "active"
	}
	if item.PurchaseDate.IsZero() {
		item.PurchaseDate = Day(time.Now())
	}
	if err := db.Create(item).Error; err != nil {
		t.Fatalf("create pantry item: %v", err)
	}
	return item
}

func CreateBudget(t *testing.T, db *gorm.DB, budget *entities.Budget) *entities.Budget {
	t.Helper()

	if budget.Period == "" {
		budget.Period = "weekly"
	}
	if budget.Currency == "" {
		budget.Currency = "USD"
	}
	if budget.StartDate.IsZero() {
		budget.StartDate = Day(time.Now())
	}
	if budget.EndDate == nil {
		end := budget.StartDate.AddDate(0, 0, 7)
		budget.EndDate = &end
	}
	if err := db.Create(budget).Error; err != nil {
		t.Fatalf("create budget: %v", err)
	}
	return budget
}

func Day(t time.Time) time.Time {
	return domain.DateOf(t)
}

func Float(v float64) *float64 {
	return &v
}
