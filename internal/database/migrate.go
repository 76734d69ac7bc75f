package database

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/sandeepkv93/coffee-catalog-backend/internal/domain"
	"github.com/sandeepkv93/coffee-catalog-backend/internal/observability"
)

func models() []any {
	return []any{&domain.Product{}}
}

func Migrate(db *gorm.DB) error {
	start := time.Now()
	defer func() {
		observability.RecordDatabaseStartupDuration(context.Background(), "migrate", time.Since(start))
	}()
	if err := db.AutoMigrate(models()...); err != nil {
		observability.RecordDatabaseStartupEvent(context.Background(), "migrate", "error")
		return err
	}
	observability.RecordDatabaseStartupEvent(context.Background(), "migrate", "success")
	return nil
}

// Plan describes what Migrate would change without touching the schema.
func Plan(db *gorm.DB) ([]string, error) {
	m := db.Migrator()
	steps := []string{}
	for _, model := range models() {
		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(model); err != nil {
			return nil, err
		}
		table := stmt.Schema.Table
		if !m.HasTable(model) {
			steps = append(steps, "would create table "+table)
			continue
		}
		for _, field := range stmt.Schema.Fields {
			if field.DBName == "" {
				continue
			}
			if !m.HasColumn(model, field.DBName) {
				steps = append(steps, "would add column "+table+"."+field.DBName)
			}
		}
	}
	if len(steps) == 0 {
		steps = append(steps, "schema up to date")
	}
	return steps, nil
}
