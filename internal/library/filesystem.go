// Package library provides implementations of clean.AssetSource, the
// collaborator that enumerates, streams, and deletes media items.
package library

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "image/gif"  // register decoders for pixel-dimension probing
	_ "image/jpeg"
	_ "image/png"

	"cleansnap/internal/clean"
	"cleansnap/internal/model"
)

var imageExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true,
	".heic": true, ".heif": true, ".webp": true, ".bmp": true, ".tiff": true,
}

var videoExtensions = map[string]bool{
	".mp4": true, ".mov": true, ".m4v": true, ".avi": true,
	".mkv": true, ".webm": true,
}

// FileSystemSource enumerates media files under a set of root directories.
// Asset ids are absolute file paths: stable for the life of the file and
// unique within one machine.
type FileSystemSource struct {
	roots  []string
	logger clean.Logger
}

// NewFileSystemSource creates a source over the given root directories.
func NewFileSystemSource(roots []string, logger clean.Logger) (*FileSystemSource, error) {
	if len(roots) == 0 {
		return nil, fmt.Errorf("filesystem library requires at least one root")
	}

	abs := make([]string, len(roots))
	for i, r := range roots {
		a, err := filepath.Abs(r)
		if err != nil {
			return nil, fmt.Errorf("resolving library root %s: %w", r, err)
		}
		abs[i] = a
	}

	return &FileSystemSource{roots: abs, logger: logger}, nil
}

var _ clean.AssetSource = (*FileSystemSource)(nil)

// Assets walks every root and returns a metadata snapshot of all media
// files found. Files that disappear or fail to stat mid-walk are skipped.
func (s *FileSystemSource) Assets(ctx context.Context) ([]model.Asset, error) {
	var assets []model.Asset

	for _, root := range s.roots {
		err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if cerr := ctx.Err(); cerr != nil {
				return cerr
			}
			if d.IsDir() || !d.Type().IsRegular() {
				return nil
			}

			kind, ok := classifyExtension(p)
			if !ok {
				return nil
			}

			info, err := d.Info()
			if err != nil {
				s.logger.Warn("skipping unreadable file", "path", p, "error", err)
				return nil
			}

			assets = append(assets, s.buildAsset(p, kind, info))
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walking library root %s: %w", root, err)
		}
	}

	sort.Slice(assets, func(i, j int) bool { return assets[i].ID < assets[j].ID })
	return assets, nil
}

// buildAsset assembles one Asset from file metadata.
func (s *FileSystemSource) buildAsset(path string, kind model.MediaKind, info fs.FileInfo) model.Asset {
	mtime := info.ModTime()
	asset := model.Asset{
		ID:           path,
		CreatedAt:    &mtime,
		ByteSize:     info.Size(),
		Kind:         kind,
		IsScreenshot: isScreenshotName(path),
	}

	if kind == model.MediaImage {
		// Best-effort: only formats with a registered decoder report
		// dimensions; everything else stays 0.
		if w, h, err := probeDimensions(path); err == nil {
			asset.PixelWidth = w
			asset.PixelHeight = h
		}
	}
	return asset
}

// classifyExtension maps a file extension to a media kind.
func classifyExtension(path string) (model.MediaKind, bool) {
	ext := strings.ToLower(filepath.Ext(path))
	switch {
	case imageExtensions[ext]:
		return model.MediaImage, true
	case videoExtensions[ext]:
		return model.MediaVideo, true
	default:
		return 0, false
	}
}

// isScreenshotName reports whether a path looks like a screenshot: a
// filename starting with "screenshot"/"screen shot" or a parent directory
// named "screenshots" (case-insensitive).
func isScreenshotName(path string) bool {
	base := strings.ToLower(filepath.Base(path))
	if strings.HasPrefix(base, "screenshot") || strings.HasPrefix(base, "screen shot") {
		return true
	}
	return strings.EqualFold(filepath.Base(filepath.Dir(path)), "screenshots")
}

// probeDimensions reads just enough of the file to decode its dimensions.
func probeDimensions(path string) (int, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, err
	}
	return cfg.Width, cfg.Height, nil
}

// Content opens the file for id. Any failure is reported as content
// unavailable: the asset is excluded from fingerprinting, nothing more.
func (s *FileSystemSource) Content(_ context.Context, id string) (io.ReadCloser, error) {
	f, err := os.Open(id)
	if err != nil {
		return nil, fmt.Errorf("open %s: %v: %w", id, err, clean.ErrContentUnavailable)
	}
	return f, nil
}

// DeleteAssets removes every file in the batch. Already-gone files are
// skipped, so retrying a batch after a partial platform failure re-deletes
// nothing. Any real failure fails the whole batch.
func (s *FileSystemSource) DeleteAssets(_ context.Context, ids []string) error {
	var errs []error
	for _, id := range ids {
		if err := os.Remove(id); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, fmt.Errorf("remove %s: %w", id, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("deleting batch: %w", errors.Join(errs...))
	}
	return nil
}
