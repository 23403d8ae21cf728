package storage

import (
	"testing"

	"cleansnap/internal/model"
)

func TestEstimateLibrarySize(t *testing.T) {
	assets := []model.Asset{
		{ID: "a", ByteSize: 100},
		{ID: "b", ByteSize: 250},
		{ID: "unknown-size"},
	}
	if got := EstimateLibrarySize(assets); got != 350 {
		t.Errorf("EstimateLibrarySize() = %d, want 350", got)
	}
	if got := EstimateLibrarySize(nil); got != 0 {
		t.Errorf("EstimateLibrarySize(nil) = %d, want 0", got)
	}
}

func TestPotentialSavings(t *testing.T) {
	groups := []model.DuplicateGroup{
		{PotentialSavings: 500},
		{PotentialSavings: 200},
	}
	screenshots := []model.Asset{
		{ID: "s1", ByteSize: 50},
		{ID: "s2", ByteSize: 25},
	}

	if got := PotentialSavings(groups, screenshots); got != 775 {
		t.Errorf("PotentialSavings() = %d, want 775", got)
	}
	if got := PotentialSavings(nil, nil); got != 0 {
		t.Errorf("PotentialSavings(nil, nil) = %d, want 0", got)
	}
	// Screenshots count even without any duplicates.
	if got := PotentialSavings(nil, screenshots); got != 75 {
		t.Errorf("PotentialSavings(nil, screenshots) = %d, want 75", got)
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "0 B"},
		{42, "42 B"},
		{1500, "1.5 kB"},
		{5_000_000, "5.0 MB"},
		{-1, "0 B"},
	}
	for _, tt := range tests {
		if got := FormatBytes(tt.n); got != tt.want {
			t.Errorf("FormatBytes(%d) = %s, want %s", tt.n, got, tt.want)
		}
	}
}

func TestStorageInfo_UsedPercentage(t *testing.T) {
	info := model.StorageInfo{TotalSpace: 1000, UsedSpace: 250}
	if got := info.UsedPercentage(); got != 0.25 {
		t.Errorf("UsedPercentage() = %v, want 0.25", got)
	}

	var zero model.StorageInfo
	if got := zero.UsedPercentage(); got != 0 {
		t.Errorf("UsedPercentage() on zero total = %v, want 0", got)
	}
}
