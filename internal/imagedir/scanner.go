// Package imagedir enumerates product image files in the configured image
// directory.
package imagedir

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/sandeepkv93/coffee-catalog-backend/internal/observability"
)

var imageExtensions = []string{".jpg", ".jpeg", ".png"}

// ListImageFileNames returns the names of regular image files directly inside
// dir, in directory-read order. A missing or non-directory path yields an
// empty slice and a warning.
func ListImageFileNames(logger *slog.Logger, dir string) []string {
	if logger == nil {
		logger = slog.Default()
	}
	ctx := context.Background()
	names := []string{}

	info, err := os.Stat(dir)
	if err != nil {
		logger.Warn("image directory not found", "dir", dir, "error", err)
		observability.RecordImageScan(ctx, "missing_directory")
		return names
	}
	if !info.IsDir() {
		logger.Warn("image directory path is not a directory", "dir", dir)
		observability.RecordImageScan(ctx, "not_directory")
		return names
	}

	f, err := os.Open(dir)
	if err != nil {
		logger.Warn("open image directory failed", "dir", dir, "error", err)
		observability.RecordImageScan(ctx, "read_error")
		return names
	}
	defer f.Close()

	entries, err := f.ReadDir(-1)
	if err != nil {
		logger.Warn("read image directory failed", "dir", dir, "error", err)
		observability.RecordImageScan(ctx, "read_error")
		return names
	}

	for _, entry := range entries {
		name := entry.Name()
		if !HasImageExtension(name) {
			continue
		}
		// Stat follows symlinks.
		fi, err := os.Stat(filepath.Join(dir, name))
		if err != nil || !fi.Mode().IsRegular() {
			continue
		}
		names = append(names, name)
	}

	observability.RecordImageScan(ctx, "found")
	logger.Debug("image directory scanned", "dir", dir, "count", len(names))
	return names
}

// HasImageExtension reports whether name ends in .jpg, .jpeg or .png,
// ignoring case.
func HasImageExtension(name string) bool {
	lower := strings.ToLower(name)
	for _, ext := range imageExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}
