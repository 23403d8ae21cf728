package clean

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"cleansnap/internal/model"
	"cleansnap/internal/selection"
)

// Thresholds holds the large-file classification cutoffs in bytes.
type Thresholds struct {
	LargeImageBytes int64
	LargeVideoBytes int64
}

// Service is the orchestration layer coordinating the asset source, the
// grouping engine, the selection coordinator, and the catalog to perform
// the high-level cleanup operations needed by the CLI.
//
// All mutating calls are serialized by a single mutex, and only one scan
// may be in flight at a time: concurrent scans over a mutating inventory
// would observe inconsistent snapshots.
type Service struct {
	source      AssetSource
	grouper     Grouper
	catalog     Catalog
	coordinator *selection.Coordinator
	logger      Logger
	clock       Clock
	idgen       IDGenerator
	thresholds  Thresholds

	mu       sync.Mutex
	scanning bool
	lastScan *model.ScanResult
}

// NewService creates a Service with the provided dependencies.
func NewService(source AssetSource, grouper Grouper, catalog Catalog, logger Logger, clock Clock, idgen IDGenerator, thresholds Thresholds) *Service {
	return &Service{
		source:      source,
		grouper:     grouper,
		catalog:     catalog,
		coordinator: selection.NewCoordinator(),
		logger:      logger,
		clock:       clock,
		idgen:       idgen,
		thresholds:  thresholds,
	}
}

// Scan enumerates the library, groups duplicates and bursts, classifies
// screenshots/large files/videos, persists a snapshot plus a scan record,
// and caches the result. operation names the CLI command for the record.
//
// Progress runs from 0 to exactly 1.0 even for an empty library. On
// cancellation all partial results are discarded and the previous scan
// result stays in place.
func (s *Service) Scan(ctx context.Context, operation string, progress ProgressFunc) (*model.ScanResult, error) {
	s.mu.Lock()
	if s.scanning {
		s.mu.Unlock()
		return nil, ErrScanInProgress
	}
	s.scanning = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.scanning = false
		s.mu.Unlock()
	}()

	report := func(f float64) {
		if progress != nil {
			progress(f)
		}
	}

	startedAt := s.clock.Now()

	assets, err := s.source.Assets(ctx)
	if err != nil {
		return nil, fmt.Errorf("enumerating assets: %w", err)
	}
	report(0.1)

	// Fingerprinting dominates the scan; it gets the 0.1..0.9 band.
	groups, skipped, err := s.grouper.FindExactDuplicates(ctx, assets, func(f float64) {
		report(0.1 + f*0.8)
	})
	if err != nil {
		return nil, err
	}

	similar := s.grouper.FindSimilarityGroups(assets)

	result := &model.ScanResult{
		ID:              s.idgen.New(),
		StartedAt:       startedAt,
		AssetCount:      len(assets),
		DuplicateGroups: groups,
		SimilarGroups:   similar,
		Unfingerprinted: skipped,
	}
	s.classify(assets, result)

	for _, g := range groups {
		result.SavingsBytes += g.PotentialSavings
		result.DuplicateCount += len(g.Members) - 1
	}
	result.FinishedAt = s.clock.Now()

	if err := s.persistScan(operation, assets, result); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.lastScan = result
	s.mu.Unlock()

	report(1.0)
	s.logger.Info("scan complete",
		"assets", result.AssetCount,
		"duplicate_groups", len(result.DuplicateGroups),
		"duplicates", result.DuplicateCount,
		"similar_groups", len(result.SimilarGroups),
		"savings_bytes", result.SavingsBytes,
		"unfingerprinted", result.Unfingerprinted)
	return result, nil
}

// classify fills the screenshot, large-file, and video views.
func (s *Service) classify(assets []model.Asset, result *model.ScanResult) {
	for _, a := range assets {
		if a.IsScreenshot {
			result.Screenshots = append(result.Screenshots, a)
		}
		if a.Kind == model.MediaVideo {
			result.Videos = append(result.Videos, a)
		}
		if s.isLarge(a) {
			result.LargeFiles = append(result.LargeFiles, a)
		}
	}
	sort.SliceStable(result.LargeFiles, func(i, j int) bool {
		return result.LargeFiles[i].ByteSize > result.LargeFiles[j].ByteSize
	})
}

func (s *Service) isLarge(a model.Asset) bool {
	switch a.Kind {
	case model.MediaVideo:
		return a.ByteSize > s.thresholds.LargeVideoBytes
	default:
		return a.ByteSize > s.thresholds.LargeImageBytes
	}
}

// persistScan writes the inventory snapshot and the scan record.
func (s *Service) persistScan(operation string, assets []model.Asset, result *model.ScanResult) error {
	if err := s.catalog.ReplaceAssets(assets); err != nil {
		return fmt.Errorf("persisting inventory snapshot: %w", err)
	}

	rec := &ScanRecord{
		ID:              result.ID,
		Operation:       operation,
		StartedAt:       result.StartedAt,
		FinishedAt:      result.FinishedAt,
		AssetCount:      result.AssetCount,
		DuplicateGroups: len(result.DuplicateGroups),
		DuplicateCount:  result.DuplicateCount,
		SimilarGroups:   len(result.SimilarGroups),
		SavingsBytes:    result.SavingsBytes,
	}
	if err := s.catalog.SaveScan(rec); err != nil {
		return fmt.Errorf("persisting scan record: %w", err)
	}
	return nil
}

// LastScan returns the most recent in-memory scan result, or nil when no
// scan has completed this session.
func (s *Service) LastScan() *model.ScanResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastScan
}

// ScanHistory returns persisted scan records, newest first.
func (s *Service) ScanHistory(limit int) ([]*ScanRecord, error) {
	return s.catalog.ListScans(limit)
}

// Inventory returns the persisted inventory snapshot.
func (s *Service) Inventory() ([]model.Asset, error) {
	return s.catalog.Assets()
}

// Toggle flips selection membership for one asset id.
func (s *Service) Toggle(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.coordinator.Toggle(id)
}

// SelectKeepFirstGroup selects all but the keeper in duplicate group i of
// the last scan.
func (s *Service) SelectKeepFirstGroup(i int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.lastScan == nil || i < 0 || i >= len(s.lastScan.DuplicateGroups) {
		return fmt.Errorf("duplicate group %d: %w", i, ErrNotFound)
	}
	s.coordinator.SelectKeepFirstOnly(s.lastScan.DuplicateGroups[i])
	return nil
}

// SelectKeepFirstAll applies the keep-first policy to every duplicate group
// of the last scan.
func (s *Service) SelectKeepFirstAll() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.lastScan == nil {
		return fmt.Errorf("no scan result: %w", ErrNotFound)
	}
	for _, g := range s.lastScan.DuplicateGroups {
		s.coordinator.SelectKeepFirstOnly(g)
	}
	return nil
}

// SelectScreenshots selects every screenshot from the last scan.
func (s *Service) SelectScreenshots() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.lastScan == nil {
		return fmt.Errorf("no scan result: %w", ErrNotFound)
	}
	s.coordinator.SelectAll(s.lastScan.Screenshots)
	return nil
}

// SelectionIDs returns the currently selected asset ids, sorted.
func (s *Service) SelectionIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.coordinator.Selection().IDs()
}

// ClearSelection empties the selection.
func (s *Service) ClearSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.coordinator.Selection().Clear()
}

// CommitDeletion deletes the selected assets through the asset source in a
// single batch and reconciles the in-memory scan result and the catalog.
// On failure the selection is kept so the user can retry.
func (s *Service) CommitDeletion(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	inventory, err := s.catalog.Assets()
	if err != nil {
		return 0, fmt.Errorf("loading inventory snapshot: %w", err)
	}

	deleted, err := s.coordinator.CommitDeletion(ctx, inventory, func(ctx context.Context, assets []model.Asset) error {
		ids := make([]string, 0, len(assets))
		for _, a := range assets {
			ids = append(ids, a.ID)
		}
		return s.source.DeleteAssets(ctx, ids)
	})
	if err != nil {
		s.logger.Error("batched delete failed, selection kept for retry", "error", err)
		return 0, err
	}
	if len(deleted) == 0 {
		return 0, nil
	}

	if err := s.catalog.RemoveAssets(deleted); err != nil {
		return len(deleted), fmt.Errorf("reconciling catalog after delete: %w", err)
	}
	s.reconcileScanLocked(deleted)

	s.logger.Info("assets deleted", "count", len(deleted))
	return len(deleted), nil
}

// reconcileScanLocked drops deleted ids from every cached view of the last
// scan. Duplicate groups that fall under two members and similarity groups
// that fall under three are dematerialized; savings and counts are
// recomputed from the surviving groups. Callers must hold s.mu.
func (s *Service) reconcileScanLocked(deleted []string) {
	if s.lastScan == nil {
		return
	}

	gone := make(map[string]bool, len(deleted))
	for _, id := range deleted {
		gone[id] = true
	}
	keep := func(assets []model.Asset) []model.Asset {
		kept := assets[:0]
		for _, a := range assets {
			if !gone[a.ID] {
				kept = append(kept, a)
			}
		}
		return kept
	}

	res := s.lastScan
	res.Screenshots = keep(res.Screenshots)
	res.LargeFiles = keep(res.LargeFiles)
	res.Videos = keep(res.Videos)
	res.AssetCount -= len(deleted)

	var groups []model.DuplicateGroup
	res.SavingsBytes = 0
	res.DuplicateCount = 0
	for _, g := range res.DuplicateGroups {
		members := keep(g.Members)
		if len(members) < 2 {
			continue
		}
		var savings int64
		for _, m := range members[1:] {
			savings += m.ByteSize
		}
		groups = append(groups, model.DuplicateGroup{Members: members, PotentialSavings: savings})
		res.SavingsBytes += savings
		res.DuplicateCount += len(members) - 1
	}
	res.DuplicateGroups = groups

	var similar []model.SimilarityGroup
	for _, g := range res.SimilarGroups {
		members := keep(g.Members)
		if len(members) < 3 {
			continue
		}
		similar = append(similar, model.SimilarityGroup{Members: members, BucketKey: g.BucketKey})
	}
	res.SimilarGroups = similar
}
