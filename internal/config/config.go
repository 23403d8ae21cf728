package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config represents the main configuration for cleansnap.
type Config struct {
	HostID      string            `toml:"host_id"`
	BaseDir     string            `toml:"base_dir"`
	LogDir      string            `toml:"log_dir"`
	Library     LibraryConfig     `toml:"library"`
	Catalog     CatalogConfig     `toml:"catalog"`
	Vault       VaultConfig       `toml:"vault"`
	Credentials CredentialsConfig `toml:"credentials"`
}

// LibraryConfig configures the asset source.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type LibraryConfig struct {
	Type  string   `toml:"type"`            // "filesystem" or "memory"
	Roots []string `toml:"roots,omitempty"` // only used for type=filesystem

	// Large-file classification thresholds in bytes.
	LargeImageBytes int64 `toml:"large_image_bytes"` // defaults to 5 MB
	LargeVideoBytes int64 `toml:"large_video_bytes"` // defaults to 50 MB
}

// CatalogConfig configures the scan/inventory catalog database.
type CatalogConfig struct {
	Type    string `toml:"type"`               // "sqlite" or "memory"
	DataDir string `toml:"data_dir,omitempty"` // only used for type=sqlite
}

// VaultConfig configures the vault payload store.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type VaultConfig struct {
	Type    string `toml:"type"` // "filesystem", "s3", or "memory"
	Encrypt bool   `toml:"encrypt"`
	KeyPath string `toml:"key_path,omitempty"` // age identity for payload encryption

	// FileSystem-specific fields (only used when Type == "filesystem")
	Root string `toml:"root,omitempty"`

	// S3-specific fields (only used when Type == "s3")
	S3Bucket    string `toml:"s3_bucket,omitempty"`
	S3Prefix    string `toml:"s3_prefix,omitempty"`
	S3Region    string `toml:"s3_region,omitempty"`
	S3AccessKey string `toml:"s3_access_key,omitempty"`
	S3SecretKey string `toml:"s3_secret_key,omitempty"`
}

// CredentialsConfig configures the secure credential store holding the PIN.
type CredentialsConfig struct {
	Type       string `toml:"type"`                  // "age" or "memory"
	SecretPath string `toml:"secret_path,omitempty"` // sealed credential file
	KeyPath    string `toml:"key_path,omitempty"`    // age identity sealing it
}

// Default classification thresholds, matching the product's large-file cutoffs.
const (
	DefaultLargeImageBytes = 5_000_000
	DefaultLargeVideoBytes = 50_000_000
)

// NewConfig creates a Config with the provided values and default paths.
func NewConfig(hostID, baseDir string) *Config {
	return &Config{
		HostID:  hostID,
		BaseDir: baseDir,
		LogDir:  filepath.Join(baseDir, "log"),
		Library: LibraryConfig{
			Type:            "filesystem",
			LargeImageBytes: DefaultLargeImageBytes,
			LargeVideoBytes: DefaultLargeVideoBytes,
		},
		Catalog: CatalogConfig{
			Type:    "sqlite",
			DataDir: filepath.Join(baseDir, "catalog"),
		},
		Vault: VaultConfig{
			Type:    "filesystem",
			Encrypt: true,
			Root:    filepath.Join(baseDir, "vault"),
			KeyPath: filepath.Join(baseDir, "keys", "vault.key"),
		},
		Credentials: CredentialsConfig{
			Type:       "age",
			SecretPath: filepath.Join(baseDir, "keys", "pin.age"),
			KeyPath:    filepath.Join(baseDir, "keys", "credential.key"),
		},
	}
}

// Manager handles reading and writing configuration.
type Manager struct{}

// Read decodes a Config from the provided reader and applies defaults for
// omitted thresholds.
func (m *Manager) Read(r io.Reader) (*Config, error) {
	var cfg Config
	if _, err := toml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if cfg.Library.LargeImageBytes <= 0 {
		cfg.Library.LargeImageBytes = DefaultLargeImageBytes
	}
	if cfg.Library.LargeVideoBytes <= 0 {
		cfg.Library.LargeVideoBytes = DefaultLargeVideoBytes
	}
	return &cfg, nil
}

// Write encodes a Config to the provided writer.
func (m *Manager) Write(w io.Writer, cfg *Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// ReadFromFile reads a Config from the specified file path.
func ReadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	cfg, err := m.Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}
	return cfg, nil
}

// writeToFile writes a Config to the specified file path.
func writeToFile(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	if err := m.Write(f, cfg); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Init initializes a new config file at the specified path with the provided Config.
func Init(path string, cfg *Config) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := writeToFile(path, cfg); err != nil {
		return fmt.Errorf("initializing config: %w", err)
	}
	return nil
}
