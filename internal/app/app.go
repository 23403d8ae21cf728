package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"cleansnap/internal/catalog"
	"cleansnap/internal/clean"
	"cleansnap/internal/config"
	"cleansnap/internal/credentials"
	"cleansnap/internal/library"
	"cleansnap/internal/model"
	"cleansnap/internal/scan"
	"cleansnap/internal/storage"
	"cleansnap/internal/vault"
)

// CleanApp is the application layer between the CLI and the core services.
// It constructs all dependencies from config once at startup and passes
// them by reference; nothing here is a global. The caller must call Close
// when done.
type CleanApp struct {
	cfg       *config.Config
	source    clean.AssetSource
	catalog   clean.Catalog
	service   *clean.Service
	vault     *vault.Store
	operation string
	logFile   *os.File
}

// NewCleanApp creates a fully wired CleanApp from the given config.
// operation identifies the CLI command being run (e.g. "Scan", "Delete").
func NewCleanApp(ctx context.Context, cfg *config.Config, operation string) (*CleanApp, error) {
	opID := time.Now().UTC().Format("20060102T150405Z")
	logger, logFile, err := newLogger(cfg.LogDir, opID)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	log := &slogAdapter{l: logger}

	source, err := library.NewSourceFromConfig(cfg.Library, log)
	if err != nil {
		logFile.Close()
		return nil, fmt.Errorf("creating asset source: %w", err)
	}

	cat, err := catalog.NewCatalogFromConfig(cfg.Catalog, cfg.HostID)
	if err != nil {
		logFile.Close()
		return nil, fmt.Errorf("creating catalog: %w", err)
	}

	clock := clean.RealClock{}
	idgen := clean.UUIDGenerator{}

	engine := scan.NewEngine(source.Content, log)
	svc := clean.NewService(source, engine, cat, log, clock, idgen, clean.Thresholds{
		LargeImageBytes: cfg.Library.LargeImageBytes,
		LargeVideoBytes: cfg.Library.LargeVideoBytes,
	})

	creds, err := credentials.NewCredentialStoreFromConfig(cfg.Credentials)
	if err != nil {
		cat.Close()
		logFile.Close()
		return nil, fmt.Errorf("creating credential store: %w", err)
	}

	payloads, err := vault.NewPayloadStoreFromConfig(ctx, cfg.Vault, clock)
	if err != nil {
		cat.Close()
		logFile.Close()
		return nil, fmt.Errorf("creating vault payload store: %w", err)
	}

	vaultStore, err := vault.NewStore(creds, payloads, clock, idgen, log)
	if err != nil {
		cat.Close()
		logFile.Close()
		return nil, fmt.Errorf("creating vault store: %w", err)
	}
	if _, err := vaultStore.LoadEntries(); err != nil {
		cat.Close()
		logFile.Close()
		return nil, fmt.Errorf("loading vault entries: %w", err)
	}

	return &CleanApp{
		cfg:       cfg,
		source:    source,
		catalog:   cat,
		service:   svc,
		vault:     vaultStore,
		operation: operation,
		logFile:   logFile,
	}, nil
}

// Service exposes the cleanup service.
func (a *CleanApp) Service() *clean.Service { return a.service }

// Vault exposes the vault store.
func (a *CleanApp) Vault() *vault.Store { return a.vault }

// Scan runs a full library scan with the app's operation name.
func (a *CleanApp) Scan(ctx context.Context, progress clean.ProgressFunc) (*model.ScanResult, error) {
	return a.service.Scan(ctx, a.operation, progress)
}

// StorageInfo aggregates disk figures for the base directory's filesystem
// with the library size estimated from the persisted inventory snapshot.
func (a *CleanApp) StorageInfo() (model.StorageInfo, error) {
	info, err := storage.DiskInfo(a.cfg.BaseDir)
	if err != nil {
		return model.StorageInfo{}, err
	}

	assets, err := a.service.Inventory()
	if err != nil {
		return model.StorageInfo{}, fmt.Errorf("loading inventory snapshot: %w", err)
	}
	info.LibrarySize = storage.EstimateLibrarySize(assets)
	return info, nil
}

// Close releases the catalog and the log file.
func (a *CleanApp) Close() error {
	var firstErr error
	if err := a.catalog.Close(); err != nil {
		firstErr = err
	}
	if err := a.logFile.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
