package config

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewConfig(t *testing.T) {
	cfg := NewConfig("host-1", "/data/cleansnap")

	if cfg.HostID != "host-1" {
		t.Errorf("HostID = %s, want host-1", cfg.HostID)
	}
	if cfg.LogDir != filepath.Join("/data/cleansnap", "log") {
		t.Errorf("LogDir = %s", cfg.LogDir)
	}
	if cfg.Library.Type != "filesystem" {
		t.Errorf("Library.Type = %s, want filesystem", cfg.Library.Type)
	}
	if cfg.Library.LargeImageBytes != DefaultLargeImageBytes {
		t.Errorf("LargeImageBytes = %d, want %d", cfg.Library.LargeImageBytes, DefaultLargeImageBytes)
	}
	if cfg.Catalog.Type != "sqlite" {
		t.Errorf("Catalog.Type = %s, want sqlite", cfg.Catalog.Type)
	}
	if !cfg.Vault.Encrypt {
		t.Error("Vault.Encrypt = false, want true")
	}
	if cfg.Credentials.Type != "age" {
		t.Errorf("Credentials.Type = %s, want age", cfg.Credentials.Type)
	}
}

func TestManager_ReadWrite(t *testing.T) {
	t.Run("round trips a config", func(t *testing.T) {
		cfg := NewConfig("host-1", "/data/cleansnap")
		cfg.Library.Roots = []string{"/photos", "/videos"}
		cfg.Vault.Type = "s3"
		cfg.Vault.S3Bucket = "my-vault"
		cfg.Vault.S3Region = "us-east-1"

		m := &Manager{}
		var buf bytes.Buffer
		if err := m.Write(&buf, cfg); err != nil {
			t.Fatalf("Write() error = %v", err)
		}

		got, err := m.Read(&buf)
		if err != nil {
			t.Fatalf("Read() error = %v", err)
		}
		if got.HostID != cfg.HostID {
			t.Errorf("HostID = %s, want %s", got.HostID, cfg.HostID)
		}
		if len(got.Library.Roots) != 2 || got.Library.Roots[0] != "/photos" {
			t.Errorf("Roots = %v, want [/photos /videos]", got.Library.Roots)
		}
		if got.Vault.Type != "s3" || got.Vault.S3Bucket != "my-vault" {
			t.Errorf("Vault = %+v", got.Vault)
		}
	})

	t.Run("applies threshold defaults for omitted fields", func(t *testing.T) {
		raw := `
host_id = "host-1"
base_dir = "/data"

[library]
type = "filesystem"
roots = ["/photos"]
`
		m := &Manager{}
		cfg, err := m.Read(strings.NewReader(raw))
		if err != nil {
			t.Fatalf("Read() error = %v", err)
		}
		if cfg.Library.LargeImageBytes != DefaultLargeImageBytes {
			t.Errorf("LargeImageBytes = %d, want %d", cfg.Library.LargeImageBytes, DefaultLargeImageBytes)
		}
		if cfg.Library.LargeVideoBytes != DefaultLargeVideoBytes {
			t.Errorf("LargeVideoBytes = %d, want %d", cfg.Library.LargeVideoBytes, DefaultLargeVideoBytes)
		}
	})

	t.Run("keeps explicit thresholds", func(t *testing.T) {
		raw := `
[library]
type = "filesystem"
large_image_bytes = 1000
large_video_bytes = 2000
`
		m := &Manager{}
		cfg, err := m.Read(strings.NewReader(raw))
		if err != nil {
			t.Fatalf("Read() error = %v", err)
		}
		if cfg.Library.LargeImageBytes != 1000 || cfg.Library.LargeVideoBytes != 2000 {
			t.Errorf("thresholds = %d/%d, want 1000/2000",
				cfg.Library.LargeImageBytes, cfg.Library.LargeVideoBytes)
		}
	})

	t.Run("rejects malformed toml", func(t *testing.T) {
		m := &Manager{}
		if _, err := m.Read(strings.NewReader("not [valid toml")); err == nil {
			t.Error("Read() accepted malformed toml")
		}
	})
}

func TestInit(t *testing.T) {
	t.Run("creates a readable config file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "conf", "cleansnap.toml")
		cfg := NewConfig("host-1", "/data")

		if err := Init(path, cfg); err != nil {
			t.Fatalf("Init() error = %v", err)
		}

		got, err := ReadFromFile(path)
		if err != nil {
			t.Fatalf("ReadFromFile() error = %v", err)
		}
		if got.HostID != "host-1" {
			t.Errorf("HostID = %s, want host-1", got.HostID)
		}
	})

	t.Run("refuses to overwrite an existing file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "cleansnap.toml")
		cfg := NewConfig("host-1", "/data")

		if err := Init(path, cfg); err != nil {
			t.Fatalf("Init() error = %v", err)
		}
		if err := Init(path, cfg); err == nil {
			t.Error("second Init() succeeded, want error")
		}
	})
}

func TestReadFromFile_Missing(t *testing.T) {
	if _, err := ReadFromFile(filepath.Join(t.TempDir(), "absent.toml")); err == nil {
		t.Error("ReadFromFile() on a missing file succeeded")
	}
}
