package scan

import (
	"context"
	"io"
	"sort"
	"time"

	"cleansnap/internal/clean"
	"cleansnap/internal/model"
)

// DefaultBatchSize is the number of assets fingerprinted between progress
// reports and cancellation checks.
const DefaultBatchSize = 50

// ContentFunc opens the byte content of one asset for reading.
// A failure marks the asset unavailable for fingerprinting; it is not fatal.
type ContentFunc func(ctx context.Context, id string) (io.ReadCloser, error)

// Engine partitions an asset inventory into exact-duplicate and
// temporal-similarity groups. It holds no shared mutable state: every call
// works only on the caller-owned input slice, so the engine is safe to run
// concurrently over disjoint inventories.
type Engine struct {
	contentOf ContentFunc
	logger    clean.Logger
	batchSize int
}

var _ clean.Grouper = (*Engine)(nil)

// NewEngine creates an Engine that reads asset content through contentOf.
func NewEngine(contentOf ContentFunc, logger clean.Logger) *Engine {
	return &Engine{
		contentOf: contentOf,
		logger:    logger,
		batchSize: DefaultBatchSize,
	}
}

// FindExactDuplicates fingerprints every asset, buckets assets by digest,
// and returns buckets with at least two members as duplicate groups.
//
// Within a group, members keep the order they were first observed in the
// input, which fixes the implicit keeper (the first-seen member) across
// runs on the same input. Groups are ordered by potential savings
// descending, ties broken by first-member id ascending.
//
// Assets whose content cannot be read are skipped and counted in skipped;
// they stay in the caller's inventory. Cancellation is honored between
// batches and discards all partial results.
func (e *Engine) FindExactDuplicates(ctx context.Context, assets []model.Asset, progress clean.ProgressFunc) ([]model.DuplicateGroup, int, error) {
	report := func(f float64) {
		if progress != nil {
			progress(f)
		}
	}

	buckets := make(map[string][]model.Asset)
	skipped := 0
	total := len(assets)

	for i, asset := range assets {
		if i%e.batchSize == 0 {
			if err := ctx.Err(); err != nil {
				return nil, 0, err
			}
			if total > 0 {
				report(float64(i) / float64(total))
			}
		}

		digest, err := e.fingerprintAsset(ctx, asset)
		if err != nil {
			e.logger.Warn("content unavailable, excluding from duplicate scan", "asset", asset.ID, "error", err)
			skipped++
			continue
		}

		buckets[digest] = append(buckets[digest], asset)
	}

	groups := make([]model.DuplicateGroup, 0)
	for _, members := range buckets {
		if len(members) < 2 {
			continue
		}
		var savings int64
		for _, m := range members[1:] {
			savings += m.ByteSize
		}
		groups = append(groups, model.DuplicateGroup{Members: members, PotentialSavings: savings})
	}

	sort.SliceStable(groups, func(i, j int) bool {
		if groups[i].PotentialSavings != groups[j].PotentialSavings {
			return groups[i].PotentialSavings > groups[j].PotentialSavings
		}
		return groups[i].Members[0].ID < groups[j].Members[0].ID
	})

	report(1.0)
	return groups, skipped, nil
}

// fingerprintAsset opens and hashes one asset's content.
func (e *Engine) fingerprintAsset(ctx context.Context, asset model.Asset) (string, error) {
	rc, err := e.contentOf(ctx, asset.ID)
	if err != nil {
		return "", err
	}
	defer rc.Close()
	return Fingerprint(rc)
}

// FindSimilarityGroups buckets assets by their capture timestamp truncated
// to the hour (UTC). Assets without a timestamp are excluded. Buckets with
// more than two members become groups; two photos sharing an hour are
// common and usually unrelated, three or more signal a burst. Groups are
// ordered by member count descending, ties by bucket key ascending.
func (e *Engine) FindSimilarityGroups(assets []model.Asset) []model.SimilarityGroup {
	buckets := make(map[time.Time][]model.Asset)

	for _, asset := range assets {
		if asset.CreatedAt == nil {
			continue
		}
		key := asset.CreatedAt.UTC().Truncate(time.Hour)
		buckets[key] = append(buckets[key], asset)
	}

	groups := make([]model.SimilarityGroup, 0)
	for key, members := range buckets {
		if len(members) <= 2 {
			continue
		}
		groups = append(groups, model.SimilarityGroup{Members: members, BucketKey: key})
	}

	sort.SliceStable(groups, func(i, j int) bool {
		if len(groups[i].Members) != len(groups[j].Members) {
			return len(groups[i].Members) > len(groups[j].Members)
		}
		return groups[i].BucketKey.Before(groups[j].BucketKey)
	})

	return groups
}

// TotalSavings sums the precomputed per-group savings. O(groups).
func TotalSavings(groups []model.DuplicateGroup) int64 {
	var total int64
	for _, g := range groups {
		total += g.PotentialSavings
	}
	return total
}

// TotalDuplicateCount returns the number of assets that can be removed if
// each group keeps exactly one member.
func TotalDuplicateCount(groups []model.DuplicateGroup) int {
	count := 0
	for _, g := range groups {
		count += len(g.Members) - 1
	}
	return count
}
