package credentials

import (
	"fmt"

	"cleansnap/internal/clean"
	"cleansnap/internal/config"
)

// NewCredentialStoreFromConfig creates a CredentialStore based on the
// credentials config type.
func NewCredentialStoreFromConfig(cfg config.CredentialsConfig) (clean.CredentialStore, error) {
	switch cfg.Type {
	case "memory":
		return NewMemoryCredentialStore(), nil
	case "age":
		if cfg.SecretPath == "" || cfg.KeyPath == "" {
			return nil, fmt.Errorf("age credential store requires secret_path and key_path")
		}
		return NewAgeCredentialStore(cfg.SecretPath, cfg.KeyPath), nil
	default:
		return nil, fmt.Errorf("unknown credentials type: %s", cfg.Type)
	}
}
