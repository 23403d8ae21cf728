package model

import "time"

// MediaKind distinguishes the two media types the library tracks.
type MediaKind int

const (
	MediaImage MediaKind = iota
	MediaVideo
)

func (k MediaKind) String() string {
	switch k {
	case MediaImage:
		return "image"
	case MediaVideo:
		return "video"
	default:
		return "unknown"
	}
}

// Asset is an immutable snapshot of one media item in the library.
// Identity is the ID alone; two assets with the same ID are the same asset.
type Asset struct {
	ID           string     // Stable opaque identifier from the asset source
	CreatedAt    *time.Time // Capture time; nil when the source has no metadata
	ByteSize     int64      // Size in bytes; 0 when the source cannot report it
	PixelWidth   int
	PixelHeight  int
	Kind         MediaKind
	IsScreenshot bool // Derived from source metadata at load time
}

// DuplicateGroup is a set of at least two assets sharing an identical
// content fingerprint. Members keep the order assets were first observed,
// so Members[0] is the implicit keeper for bulk-selection actions.
type DuplicateGroup struct {
	Members          []Asset
	PotentialSavings int64 // Sum of ByteSize over all members except the keeper
}

// SimilarityGroup is a burst of at least three assets whose capture
// timestamps fall in the same hour-resolution bucket.
type SimilarityGroup struct {
	Members   []Asset
	BucketKey time.Time // Capture time truncated to the hour, UTC
}

// VaultEntry is one payload held in the private vault.
// Entries are immutable once stored; there is no update operation.
type VaultEntry struct {
	ID      string // UUID, generated on add
	Payload []byte
	AddedAt time.Time
}

// StorageInfo aggregates device and library storage figures.
type StorageInfo struct {
	TotalSpace  int64
	UsedSpace   int64
	FreeSpace   int64
	LibrarySize int64
}

// UsedPercentage returns used/total in [0,1], or 0 when total is unknown.
func (s StorageInfo) UsedPercentage() float64 {
	if s.TotalSpace <= 0 {
		return 0
	}
	return float64(s.UsedSpace) / float64(s.TotalSpace)
}

// ScanResult is the outcome of one full library scan.
type ScanResult struct {
	ID              string // UUID identifying this scan
	StartedAt       time.Time
	FinishedAt      time.Time
	AssetCount      int
	DuplicateGroups []DuplicateGroup
	SimilarGroups   []SimilarityGroup
	Screenshots     []Asset
	LargeFiles      []Asset // Ordered by size descending
	Videos          []Asset
	DuplicateCount  int   // Assets removable if each group keeps one member
	SavingsBytes    int64 // Sum of PotentialSavings across duplicate groups
	Unfingerprinted int   // Assets whose content could not be read this scan
}
