package main

import (
	"github.com/ikkim/shopp-backend/config"
	"github.com/ikkim/shopp-backend/internal/db"
	apperrors "github.com/ikkim/shopp-backend/internal/errors"
	"github.com/ikkim/shopp-backend/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	logger.Initialize(logger.Config{
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		EnableColor: cfg.App.Environment == "development",
	})

	logger.Info("Running schema migration", map[string]interface{}{
		"environment": cfg.App.Environment,
		"database":    cfg.Database.DBName,
		"host":        cfg.Database.Host,
	})

	if err := db.Initialize(&cfg.Database); err != nil {
		logger.Fatal("Failed to initialize database", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", err)
		}
	}()

	if err := db.Migrate(); err != nil {
		info := apperrors.ParseError(err, "migrate")
		logger.Fatal("Failed to run migrations", err, map[string]interface{}{
			"code":    info.Code,
			"message": info.Message,
		})
	}

	logger.Info("Migration completed", map[string]interface{}{
		"tables": len(db.Models()),
	})
}
