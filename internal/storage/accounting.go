// Package storage derives storage figures from the inventory and scan
// outputs. Everything here is a pure computation over caller-owned data;
// the package keeps no state of its own.
package storage

import (
	"github.com/dustin/go-humanize"

	"cleansnap/internal/model"
)

// EstimateLibrarySize sums the byte sizes of the given assets. Assets whose
// size could not be read contribute 0, so the estimate can undercount.
func EstimateLibrarySize(assets []model.Asset) int64 {
	var total int64
	for _, a := range assets {
		total += a.ByteSize
	}
	return total
}

// PotentialSavings adds screenshot sizes on top of duplicate-group savings.
// Screenshots count regardless of duplicate status: they are presumptively
// low-value even when unique.
func PotentialSavings(duplicateGroups []model.DuplicateGroup, screenshots []model.Asset) int64 {
	var total int64
	for _, g := range duplicateGroups {
		total += g.PotentialSavings
	}
	for _, s := range screenshots {
		total += s.ByteSize
	}
	return total
}

// FormatBytes renders a byte count for display, e.g. "1.5 MB".
func FormatBytes(n int64) string {
	if n < 0 {
		n = 0
	}
	return humanize.Bytes(uint64(n))
}
