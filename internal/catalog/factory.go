package catalog

import (
	"fmt"
	"os"
	"path/filepath"

	"cleansnap/internal/clean"
	"cleansnap/internal/config"
)

// NewCatalogFromConfig creates a Catalog based on the catalog config type.
func NewCatalogFromConfig(cfg config.CatalogConfig, hostID string) (clean.Catalog, error) {
	switch cfg.Type {
	case "sqlite":
		if cfg.DataDir == "" {
			return nil, fmt.Errorf("data_dir required for sqlite catalog")
		}
		if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
			return nil, fmt.Errorf("creating catalog directory: %w", err)
		}
		return NewSQLiteCatalog(filepath.Join(cfg.DataDir, hostID+".db"))
	case "memory":
		return NewSQLiteCatalog(":memory:")
	default:
		return nil, fmt.Errorf("unknown catalog type: %s", cfg.Type)
	}
}
