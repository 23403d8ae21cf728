//go:build unix

package storage

import (
	"fmt"
	"syscall"

	"cleansnap/internal/model"
)

// DiskInfo returns total/used/free space for the filesystem containing
// path. LibrarySize is left for the caller to fill from the inventory.
func DiskInfo(path string) (model.StorageInfo, error) {
	var stat syscall.Statfs_t
	if err := syscall.Statfs(path, &stat); err != nil {
		return model.StorageInfo{}, fmt.Errorf("statfs %s: %w", path, err)
	}

	total := int64(stat.Blocks) * int64(stat.Bsize)
	free := int64(stat.Bavail) * int64(stat.Bsize)

	return model.StorageInfo{
		TotalSpace: total,
		UsedSpace:  total - free,
		FreeSpace:  free,
	}, nil
}
