package database

import (
	"context"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/sandeepkv93/coffee-catalog-backend/internal/config"
	"github.com/sandeepkv93/coffee-catalog-backend/internal/observability"
)

// Open connects using DATABASE_DRIVER. sqlite is limited to a single open
// connection because it serializes writers anyway.
func Open(cfg *config.Config) (*gorm.DB, error) {
	start := time.Now()
	defer func() {
		observability.RecordDatabaseStartupDuration(context.Background(), "connect", time.Since(start))
	}()

	var dialector gorm.Dialector
	switch cfg.DatabaseDriver {
	case "postgres":
		dialector = postgres.Open(cfg.DatabaseURL)
	case "sqlite":
		dialector = sqlite.Open(cfg.DatabaseURL)
	default:
		observability.RecordDatabaseStartupEvent(context.Background(), "connect", "error")
		return nil, fmt.Errorf("unsupported database driver %q", cfg.DatabaseDriver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		observability.RecordDatabaseStartupEvent(context.Background(), "connect", "error")
		return nil, fmt.Errorf("open %s database: %w", cfg.DatabaseDriver, err)
	}
	if cfg.DatabaseDriver == "sqlite" {
		sqlDB, err := db.DB()
		if err != nil {
			observability.RecordDatabaseStartupEvent(context.Background(), "connect", "error")
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}
	observability.RecordDatabaseStartupEvent(context.Background(), "connect", "success")
	return db, nil
}
