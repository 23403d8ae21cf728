package clean

import (
	"context"

	"cleansnap/internal/model"
)

// ProgressFunc receives fractional scan progress in [0,1]. Values are
// monotonically non-decreasing and reach exactly 1.0 on completion.
type ProgressFunc func(fraction float64)

// Grouper partitions an inventory into duplicate and similarity groups.
type Grouper interface {
	// FindExactDuplicates groups assets by content fingerprint.
	// Assets whose content cannot be read are excluded from grouping and
	// counted in skipped. Cancellation between batches returns ctx.Err()
	// with no partial results.
	FindExactDuplicates(ctx context.Context, assets []model.Asset, progress ProgressFunc) (groups []model.DuplicateGroup, skipped int, err error)

	// FindSimilarityGroups groups assets by hour-truncated capture time.
	FindSimilarityGroups(assets []model.Asset) []model.SimilarityGroup
}
