package testutil

import (
	"time"

	"cleansnap/internal/model"
)

// Asset builds a test asset with sensible defaults. Mutate the result for
// anything the defaults don't cover.
func Asset(id string, size int64) model.Asset {
	return model.Asset{
		ID:          id,
		ByteSize:    size,
		PixelWidth:  100,
		PixelHeight: 100,
		Kind:        model.MediaImage,
	}
}

// AssetAt builds a test asset with a capture timestamp.
func AssetAt(id string, size int64, createdAt time.Time) model.Asset {
	a := Asset(id, size)
	a.CreatedAt = &createdAt
	return a
}
