package clean

import (
	"io"
	"time"
)

// PayloadInfo describes one stored payload without its content.
type PayloadInfo struct {
	ID        string
	Size      int64
	CreatedAt time.Time // Storage-level creation metadata
}

// PayloadStore persists opaque vault payloads keyed by entry id.
// All operations use io.Reader/io.Writer for streaming so large payloads
// never need to be buffered twice.
type PayloadStore interface {
	// Put stores a payload under id. size is the number of bytes that will
	// be read from r. Storing an id that already exists overwrites it.
	Put(id string, r io.Reader, size int64) error

	// Get retrieves the payload for id and writes it to w.
	// Returns an error wrapping ErrNotFound when no payload exists for id.
	Get(id string, w io.Writer) error

	// Delete removes the payload for id. Deleting an absent id is a no-op.
	Delete(id string) error

	// List returns info for every stored payload, in unspecified order.
	List() ([]PayloadInfo, error)

	// ValidateSetup verifies that the store is accessible and properly
	// configured.
	ValidateSetup() error
}
