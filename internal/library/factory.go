package library

import (
	"fmt"

	"cleansnap/internal/clean"
	"cleansnap/internal/config"
)

// NewSourceFromConfig creates an AssetSource based on the library config type.
func NewSourceFromConfig(cfg config.LibraryConfig, logger clean.Logger) (clean.AssetSource, error) {
	switch cfg.Type {
	case "memory":
		return NewMemorySource(), nil
	case "filesystem":
		return NewFileSystemSource(cfg.Roots, logger)
	default:
		return nil, fmt.Errorf("unknown library type: %s", cfg.Type)
	}
}
