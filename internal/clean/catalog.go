package clean

import (
	"time"

	"cleansnap/internal/model"
)

// ScanRecord is the persisted summary of one completed scan.
type ScanRecord struct {
	ID              string
	Operation       string // CLI operation that triggered the scan
	StartedAt       time.Time
	FinishedAt      time.Time
	AssetCount      int
	DuplicateGroups int
	DuplicateCount  int
	SimilarGroups   int
	SavingsBytes    int64
}

// Catalog persists the inventory snapshot and scan history between runs.
type Catalog interface {
	// SaveScan records the summary of a completed scan.
	SaveScan(rec *ScanRecord) error

	// ListScans returns the most recent scan records, newest first.
	ListScans(limit int) ([]*ScanRecord, error)

	// ReplaceAssets replaces the stored inventory snapshot.
	ReplaceAssets(assets []model.Asset) error

	// Assets returns the stored inventory snapshot.
	Assets() ([]model.Asset, error)

	// RemoveAssets drops the given ids from the stored snapshot.
	// Unknown ids are ignored.
	RemoveAssets(ids []string) error

	// Close closes the underlying database connection.
	Close() error
}
