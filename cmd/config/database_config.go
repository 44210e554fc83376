package config

import (
	"Pantry-Planner/internal/utils"
	"Pantry-Planner/pkg/database"

	"gorm.io/gorm"
)

func ConnectDB() (*gorm.DB, error) {
	switch utils.GetConfig("DB_DRIVER") {
	case "sqlite":
		return database.OpenSQLite(utils.GetConfig("DB_PATH"))
	default:
		return database.OpenPostgres(database.PostgresConfig{
			Host:     utils.GetConfig("DB_HOST"),
			User:     utils.GetConfig("DB_USER"),
			Password: utils.GetConfig("DB_PASSWORD"),
			Name:     utils.GetConfig("DB_NAME"),
			Port:     utils.GetConfig("DB_PORT"),
			TimeZone: utils.GetConfig("DB_TIMEZONE"),
		})
	}
}
