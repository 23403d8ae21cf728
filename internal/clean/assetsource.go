package clean

import (
	"context"
	"io"

	"cleansnap/internal/model"
)

// AssetSource provides an interface to the media library being analyzed.
// Implementations enumerate assets with metadata, stream byte content per
// asset, and delete assets in batches.
type AssetSource interface {
	// Assets enumerates the current inventory. The returned slice is a
	// snapshot: later mutations of the library are not reflected in it.
	Assets(ctx context.Context) ([]model.Asset, error)

	// Content opens the byte content of one asset for reading.
	// A per-asset failure (wrapping ErrContentUnavailable) excludes that
	// asset from fingerprinting; it is never fatal to a scan.
	Content(ctx context.Context, id string) (io.ReadCloser, error)

	// DeleteAssets removes the given assets in a single batch.
	// Deleting an id that no longer exists is a no-op, so a retried batch
	// may safely re-attempt already-deleted items.
	DeleteAssets(ctx context.Context, ids []string) error
}
