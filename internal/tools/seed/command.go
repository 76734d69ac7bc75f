package seed

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/sandeepkv93/coffee-catalog-backend/internal/config"
	"github.com/sandeepkv93/coffee-catalog-backend/internal/database"
	"github.com/sandeepkv93/coffee-catalog-backend/internal/observability"
	"github.com/sandeepkv93/coffee-catalog-backend/internal/repository"
	"github.com/sandeepkv93/coffee-catalog-backend/internal/tools/common"
	"github.com/sandeepkv93/coffee-catalog-backend/internal/tools/ui"
)

type options struct {
	envFile  string
	imageDir string
	migrate  bool
	ci       bool
}

func NewRootCommand() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{Use: "seed", Short: "Seed catalog products from the image directory"}
	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "path to env file")
	cmd.PersistentFlags().StringVar(&opts.imageDir, "image-dir", "", "image directory; takes precedence over IMAGE_DIRECTORY")
	cmd.PersistentFlags().BoolVar(&opts.ci, "ci", false, "non-interactive machine-readable output")
	imagesCmd := newImagesCommand(opts)
	imagesCmd.Flags().BoolVar(&opts.migrate, "migrate", true, "apply schema migrations before seeding")
	cmd.AddCommand(imagesCmd, newDryRunCommand(opts))
	return cmd
}

func newImagesCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "images",
		Short: "Create one product per image file",
		RunE: func(cmd *cobra.Command, args []string) error {
			details, err := run(opts, "seed images", func(ctx context.Context) ([]string, error) {
				cfg, db, err := loadConfigDB(opts)
				if err != nil {
					return nil, err
				}
				sqlDB, err := db.DB()
				if err != nil {
					return nil, err
				}
				defer func() { _ = sqlDB.Close() }()

				if opts.migrate {
					if err := database.Migrate(db); err != nil {
						return nil, err
					}
				}
				report, err := database.SeedProductsFromImages(ctx, repository.NewProductRepository(db), toolLogger(), cfg.ImageDirectory, time.Now())
				return reportDetails(report), err
			})
			common.Finish(opts.ci, "seed", "images", details, err, 3)
			return nil
		},
	}
}

func newDryRunCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "dry-run",
		Short: "Show which products seeding would create",
		RunE: func(cmd *cobra.Command, args []string) error {
			details, err := run(opts, "seed dry-run", func(ctx context.Context) ([]string, error) {
				cfg, err := loadConfig(opts)
				if err != nil {
					return nil, err
				}
				dir := cfg.ImageDirectory
				planned := database.PlanProductsFromImages(toolLogger(), dir, time.Now())
				details := []string{fmt.Sprintf("image_dir=%s", dir), fmt.Sprintf("would_create=%d", len(planned))}
				for _, p := range planned {
					details = append(details, fmt.Sprintf("%s category=%s price=%.0f stock=%d image=%s", p.Name, p.Category, p.Price, p.Stock, p.Image))
				}
				return details, nil
			})
			common.Finish(opts.ci, "seed", "dry-run", details, err, 3)
			return nil
		},
	}
}

func reportDetails(r *database.ImageSeedReport) []string {
	if r == nil {
		return nil
	}
	return []string{
		"image_dir=" + r.ImageDir,
		fmt.Sprintf("scanned=%d", r.Scanned),
		fmt.Sprintf("created=%d", r.Created),
		fmt.Sprintf("id_range=%d..%d", r.FirstID, r.LastID),
	}
}

// loadConfig applies --image-dir before validation so the flag alone
// satisfies the IMAGE_DIRECTORY requirement.
func loadConfig(opts *options) (*config.Config, error) {
	if err := common.LoadEnvFile(opts.envFile); err != nil {
		return nil, err
	}
	if opts.imageDir != "" {
		if err := os.Setenv("IMAGE_DIRECTORY", opts.imageDir); err != nil {
			return nil, err
		}
	}
	return config.Load()
}

// Logs go to stderr so the bubbletea view and --ci JSON stay clean.
func toolLogger() *slog.Logger {
	return observability.NewToolLogger(os.Stderr, "warn")
}

func run(opts *options, title string, fn func(context.Context) ([]string, error)) ([]string, error) {
	if opts.ci {
		return fn(context.Background())
	}
	return ui.Run(title, fn)
}

func loadConfigDB(opts *options) (*config.Config, *gorm.DB, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, nil, err
	}
	db, err := database.Open(cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, db, nil
}
