package vault

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"cleansnap/internal/clean"
)

// FileSystemPayloadStore keeps vault payloads as files in a single
// directory, one file per entry id:
//
//	<root>/
//	  payloads/
//	    <id>    (payload files, named by entry UUID)
type FileSystemPayloadStore struct {
	root       string
	payloadDir string
}

// NewFileSystemPayloadStore creates a payload store rooted at the given path.
func NewFileSystemPayloadStore(root string) (*FileSystemPayloadStore, error) {
	payloadDir := filepath.Join(root, "payloads")
	if err := os.MkdirAll(payloadDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create payload directory: %w", err)
	}

	return &FileSystemPayloadStore{root: root, payloadDir: payloadDir}, nil
}

// Put stores a payload under id using an atomic write (temp file + rename).
func (s *FileSystemPayloadStore) Put(id string, r io.Reader, size int64) error {
	destPath := filepath.Join(s.payloadDir, id)

	tmpFile, err := os.CreateTemp(s.payloadDir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	written, err := io.Copy(tmpFile, r)
	if err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to write payload: %w", err)
	}

	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if written != size {
		return fmt.Errorf("size mismatch: expected %d bytes, got %d", size, written)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	success = true
	return nil
}

// Get retrieves the payload for id and writes it to w.
func (s *FileSystemPayloadStore) Get(id string, w io.Writer) error {
	f, err := os.Open(filepath.Join(s.payloadDir, id))
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("payload %s: %w", id, clean.ErrNotFound)
		}
		return fmt.Errorf("failed to open payload: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(w, f); err != nil {
		return fmt.Errorf("failed to read payload: %w", err)
	}
	return nil
}

// Delete removes the payload file for id. Missing files are a no-op.
func (s *FileSystemPayloadStore) Delete(id string) error {
	err := os.Remove(filepath.Join(s.payloadDir, id))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete payload: %w", err)
	}
	return nil
}

// List returns info for every stored payload. Creation metadata comes from
// the file modification time, which for vault payloads is the write time.
func (s *FileSystemPayloadStore) List() ([]clean.PayloadInfo, error) {
	dirEntries, err := os.ReadDir(s.payloadDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read payload directory: %w", err)
	}

	infos := make([]clean.PayloadInfo, 0, len(dirEntries))
	for _, de := range dirEntries {
		if de.IsDir() {
			continue
		}
		fi, err := de.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", de.Name(), err)
		}
		infos = append(infos, clean.PayloadInfo{
			ID:        de.Name(),
			Size:      fi.Size(),
			CreatedAt: fi.ModTime(),
		})
	}
	return infos, nil
}

// ValidateSetup verifies that the payload directory is accessible.
func (s *FileSystemPayloadStore) ValidateSetup() error {
	info, err := os.Stat(s.payloadDir)
	if err != nil {
		return fmt.Errorf("payload directory not accessible: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("payload path is not a directory: %s", s.payloadDir)
	}
	return nil
}

// Compile-time check that FileSystemPayloadStore implements clean.PayloadStore
var _ clean.PayloadStore = (*FileSystemPayloadStore)(nil)
