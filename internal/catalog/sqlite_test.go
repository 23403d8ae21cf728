package catalog

import (
	"testing"
	"time"

	"cleansnap/internal/clean"
	"cleansnap/internal/model"
)

func newTestCatalog(t *testing.T) *SQLiteCatalog {
	t.Helper()
	c, err := NewSQLiteCatalog(":memory:")
	if err != nil {
		t.Fatalf("NewSQLiteCatalog() error = %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestSQLiteCatalog_Scans(t *testing.T) {
	t.Run("saves and lists scan records", func(t *testing.T) {
		c := newTestCatalog(t)
		started := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)

		rec := &clean.ScanRecord{
			ID:              "scan-1",
			Operation:       "Scan",
			StartedAt:       started,
			FinishedAt:      started.Add(2 * time.Minute),
			AssetCount:      120,
			DuplicateGroups: 4,
			DuplicateCount:  9,
			SimilarGroups:   2,
			SavingsBytes:    1 << 20,
		}
		if err := c.SaveScan(rec); err != nil {
			t.Fatalf("SaveScan() error = %v", err)
		}

		recs, err := c.ListScans(10)
		if err != nil {
			t.Fatalf("ListScans() error = %v", err)
		}
		if len(recs) != 1 {
			t.Fatalf("ListScans() returned %d records, want 1", len(recs))
		}
		got := recs[0]
		if got.ID != rec.ID || got.Operation != rec.Operation {
			t.Errorf("record = %+v, want %+v", got, rec)
		}
		if got.AssetCount != 120 || got.DuplicateCount != 9 || got.SavingsBytes != 1<<20 {
			t.Errorf("counts = %d/%d/%d, want 120/9/%d", got.AssetCount, got.DuplicateCount, got.SavingsBytes, 1<<20)
		}
		if !got.FinishedAt.Equal(rec.FinishedAt) {
			t.Errorf("FinishedAt = %v, want %v", got.FinishedAt, rec.FinishedAt)
		}
	})

	t.Run("lists newest first with a limit", func(t *testing.T) {
		c := newTestCatalog(t)
		base := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)

		for i := 0; i < 3; i++ {
			rec := &clean.ScanRecord{
				ID:         string(rune('a' + i)),
				Operation:  "Scan",
				StartedAt:  base.Add(time.Duration(i) * time.Hour),
				FinishedAt: base.Add(time.Duration(i)*time.Hour + time.Minute),
			}
			if err := c.SaveScan(rec); err != nil {
				t.Fatalf("SaveScan() error = %v", err)
			}
		}

		recs, err := c.ListScans(2)
		if err != nil {
			t.Fatalf("ListScans() error = %v", err)
		}
		if len(recs) != 2 {
			t.Fatalf("ListScans(2) returned %d records, want 2", len(recs))
		}
		if recs[0].ID != "c" || recs[1].ID != "b" {
			t.Errorf("order = [%s %s], want [c b]", recs[0].ID, recs[1].ID)
		}
	})

	t.Run("zero limit falls back to the default", func(t *testing.T) {
		c := newTestCatalog(t)
		recs, err := c.ListScans(0)
		if err != nil {
			t.Fatalf("ListScans(0) error = %v", err)
		}
		if len(recs) != 0 {
			t.Errorf("ListScans(0) on empty catalog = %d records, want 0", len(recs))
		}
	})
}

func TestSQLiteCatalog_Assets(t *testing.T) {
	t.Run("replace and read back the snapshot", func(t *testing.T) {
		c := newTestCatalog(t)
		created := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)

		in := []model.Asset{
			{ID: "/photos/a.jpg", CreatedAt: &created, ByteSize: 1024,
				PixelWidth: 800, PixelHeight: 600, Kind: model.MediaImage, IsScreenshot: true},
			{ID: "/photos/b.mp4", ByteSize: 2048, Kind: model.MediaVideo},
		}
		if err := c.ReplaceAssets(in); err != nil {
			t.Fatalf("ReplaceAssets() error = %v", err)
		}

		out, err := c.Assets()
		if err != nil {
			t.Fatalf("Assets() error = %v", err)
		}
		if len(out) != 2 {
			t.Fatalf("Assets() returned %d, want 2", len(out))
		}

		a := out[0]
		if a.ID != "/photos/a.jpg" || a.ByteSize != 1024 || !a.IsScreenshot {
			t.Errorf("asset = %+v", a)
		}
		if a.CreatedAt == nil || !a.CreatedAt.Equal(created) {
			t.Errorf("CreatedAt = %v, want %v", a.CreatedAt, created)
		}
		if a.Kind != model.MediaImage || a.PixelWidth != 800 {
			t.Errorf("kind/dimensions = %v/%d", a.Kind, a.PixelWidth)
		}

		b := out[1]
		if b.CreatedAt != nil {
			t.Errorf("CreatedAt = %v, want nil", b.CreatedAt)
		}
		if b.Kind != model.MediaVideo {
			t.Errorf("Kind = %v, want video", b.Kind)
		}
	})

	t.Run("replace discards the previous snapshot", func(t *testing.T) {
		c := newTestCatalog(t)

		if err := c.ReplaceAssets([]model.Asset{{ID: "old"}}); err != nil {
			t.Fatalf("ReplaceAssets() error = %v", err)
		}
		if err := c.ReplaceAssets([]model.Asset{{ID: "new"}}); err != nil {
			t.Fatalf("ReplaceAssets() error = %v", err)
		}

		out, err := c.Assets()
		if err != nil {
			t.Fatalf("Assets() error = %v", err)
		}
		if len(out) != 1 || out[0].ID != "new" {
			t.Errorf("Assets() = %+v, want only new", out)
		}
	})

	t.Run("remove drops only the given ids", func(t *testing.T) {
		c := newTestCatalog(t)

		in := []model.Asset{{ID: "a"}, {ID: "b"}, {ID: "c"}}
		if err := c.ReplaceAssets(in); err != nil {
			t.Fatalf("ReplaceAssets() error = %v", err)
		}
		if err := c.RemoveAssets([]string{"a", "c"}); err != nil {
			t.Fatalf("RemoveAssets() error = %v", err)
		}

		out, err := c.Assets()
		if err != nil {
			t.Fatalf("Assets() error = %v", err)
		}
		if len(out) != 1 || out[0].ID != "b" {
			t.Errorf("Assets() = %+v, want only b", out)
		}
	})

	t.Run("remove with no ids is a no-op", func(t *testing.T) {
		c := newTestCatalog(t)
		if err := c.RemoveAssets(nil); err != nil {
			t.Errorf("RemoveAssets(nil) error = %v", err)
		}
	})
}

func TestMemoryPath(t *testing.T) {
	// Two in-memory catalogs must not share state.
	c1 := newTestCatalog(t)
	c2 := newTestCatalog(t)

	if err := c1.ReplaceAssets([]model.Asset{{ID: "only-in-c1"}}); err != nil {
		t.Fatalf("ReplaceAssets() error = %v", err)
	}
	out, err := c2.Assets()
	if err != nil {
		t.Fatalf("Assets() error = %v", err)
	}
	if len(out) != 0 {
		t.Errorf("c2 sees %d assets, want 0", len(out))
	}
}
