package db

import (
	"github.com/ikkim/shopp-backend/internal/app/model"
	"github.com/ikkim/shopp-backend/pkg/logger"
	"gorm.io/gorm"
)

// Models lists every table owned by the application, parents first.
func Models() []interface{} {
	return []interface{}{
		&model.Member{},
		&model.Item{},
		&model.Order{},
		&model.OrderItem{},
	}
}

// Migrate runs database migrations on the global connection
func Migrate() error {
	return AutoMigrate(DB)
}

// AutoMigrate creates or updates the members, items, orders and order_items tables.
func AutoMigrate(db *gorm.DB) error {
	logger.Info("Running database migrations...")

	models := Models()
	if err := db.AutoMigrate(models...); err != nil {
		logger.Error("Failed to run migrations", err)
		return err
	}

	logger.Info("Database migrations completed successfully", map[string]interface{}{
		"models_count": len(models),
	})
	return nil
}
