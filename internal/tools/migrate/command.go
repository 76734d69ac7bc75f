package migrate

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/sandeepkv93/coffee-catalog-backend/internal/config"
	"github.com/sandeepkv93/coffee-catalog-backend/internal/database"
	"github.com/sandeepkv93/coffee-catalog-backend/internal/tools/common"
	"github.com/sandeepkv93/coffee-catalog-backend/internal/tools/ui"
)

type options struct {
	envFile string
	timeout time.Duration
	ci      bool
}

func NewRootCommand() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Catalog schema migration tooling",
	}
	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "path to env file")
	cmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 30*time.Second, "operation timeout")
	cmd.PersistentFlags().BoolVar(&opts.ci, "ci", false, "non-interactive machine-readable output")

	cmd.AddCommand(
		newCommand(opts, "up", "Apply schema migrations", up),
		newCommand(opts, "status", "Check database reachability and pending changes", status),
		newCommand(opts, "plan", "Show pending schema changes without applying them", plan),
	)
	return cmd
}

type step func(ctx context.Context, cfg *config.Config, db *gorm.DB) ([]string, error)

func newCommand(opts *options, name, short string, fn step) *cobra.Command {
	return &cobra.Command{
		Use:   name,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			details, err := run(opts, "migrate "+name, func(ctx context.Context) ([]string, error) {
				cfg, db, err := loadConfigDB(opts.envFile)
				if err != nil {
					return nil, err
				}
				sqlDB, err := db.DB()
				if err != nil {
					return nil, err
				}
				defer func() { _ = sqlDB.Close() }()
				if err := sqlDB.PingContext(ctx); err != nil {
					return nil, fmt.Errorf("db ping: %w", err)
				}
				return fn(ctx, cfg, db)
			})
			common.Finish(opts.ci, "migrate", name, details, err, 3)
			return nil
		},
	}
}

func up(_ context.Context, cfg *config.Config, db *gorm.DB) ([]string, error) {
	if err := database.Migrate(db); err != nil {
		return nil, err
	}
	return []string{"schema migration applied", "driver: " + cfg.DatabaseDriver}, nil
}

func status(_ context.Context, cfg *config.Config, db *gorm.DB) ([]string, error) {
	steps, err := database.Plan(db)
	if err != nil {
		return nil, err
	}
	pending := "none"
	if len(steps) != 1 || steps[0] != "schema up to date" {
		pending = fmt.Sprintf("%d", len(steps))
	}
	return []string{"database reachable", "driver: " + cfg.DatabaseDriver, "pending changes: " + pending}, nil
}

func plan(_ context.Context, _ *config.Config, db *gorm.DB) ([]string, error) {
	steps, err := database.Plan(db)
	if err != nil {
		return nil, err
	}
	return append(steps, "no mutation executed in plan mode"), nil
}

func run(opts *options, title string, fn func(context.Context) ([]string, error)) ([]string, error) {
	if opts.ci {
		ctx, cancel := context.WithTimeout(context.Background(), opts.timeout)
		defer cancel()
		return fn(ctx)
	}
	return ui.Run(title, fn)
}

func loadConfigDB(envFile string) (*config.Config, *gorm.DB, error) {
	if err := common.LoadEnvFile(envFile); err != nil {
		return nil, nil, err
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	db, err := database.Open(cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, db, nil
}
