package gallery

import (
	"context"
	"fmt"
	"sync"

	"github.com/akrylov/photosync/internal/common"
	"github.com/akrylov/photosync/internal/logging"
	"github.com/akrylov/photosync/internal/media"
	"github.com/akrylov/photosync/internal/models"
)

// View is what the presentation boundary receives: the merged,
// deduplicated asset list plus the pagination state it needs for
// load-more affordances.
type View struct {
	Assets      []models.Asset
	Loading     bool
	HasNextPage bool
}

// Session is the per-user capability object holding the reconciliation
// state: the one-shot remote snapshot, the classified local pages
// accumulated so far, and the merged view derived from them. All state
// changes flow through its methods; there are no package globals.
//
// Pagination is gated by a busy flag: LoadNextPage is a no-op while a
// previous call is outstanding or after exhaustion, which also protects
// the single cursor chain from overlapping reads. Syncs of different
// assets may run concurrently; the index upsert is keyed by asset id and
// converges under concurrent retries of the same asset.
type Session struct {
	userID string
	pager  *media.Paginator
	index  BackupIndex
	syncer *Syncer
	log    logging.Logger

	mu          sync.Mutex
	loading     bool
	cursor      string
	hasNextPage bool
	remote      []models.Asset
	localPages  [][]models.Asset
	merged      []models.Asset
	seen        map[string]struct{}
}

func NewSession(userID string, source media.Source, pageSize int, index BackupIndex, syncer *Syncer, log logging.Logger) *Session {
	return &Session{
		userID:      userID,
		pager:       media.NewPaginator(source, pageSize),
		index:       index,
		syncer:      syncer,
		log:         log,
		hasNextPage: true,
		seen:        map[string]struct{}{},
	}
}

// LoadRemote takes the one-shot snapshot of everything already backed up,
// then recomputes the merged view from the snapshot and the local pages
// loaded so far. Typically called once at startup, before pagination.
func (s *Session) LoadRemote(ctx context.Context) error {
	remote, err := s.index.ListAllAssets(ctx, s.userID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.remote = remote
	s.recomputeLocked()
	s.log.Debug(ctx, "remote snapshot loaded", "assets", len(remote))
	return nil
}

// recomputeLocked rebuilds the merged view as a pure function of the
// remote snapshot and the accumulated local pages. Only the remote
// snapshot reload pays this full cost; per-page loads append
// incrementally.
func (s *Session) recomputeLocked() {
	s.merged = make([]models.Asset, 0, len(s.remote))
	s.seen = make(map[string]struct{}, len(s.remote))

	s.merged = append(s.merged, s.remote...)
	for _, a := range s.remote {
		s.seen[a.ID] = struct{}{}
	}
	for _, page := range s.localPages {
		appendLocalPage(&s.merged, s.seen, page)
	}
}

// LoadNextPage pulls the next local page, classifies it against the index
// in one batched query, and folds it into the merged view. It returns nil
// without doing anything while a previous load is outstanding or after the
// listing is exhausted.
//
// On failure the cursor does not advance and the page is not merged:
// an ErrIndexUnavailable classification must not leak unclassified assets
// into the visible set, and retrying re-reads the same page.
func (s *Session) LoadNextPage(ctx context.Context) error {
	s.mu.Lock()
	if s.loading || !s.hasNextPage {
		s.mu.Unlock()
		return nil
	}
	s.loading = true
	cursor := s.cursor
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.loading = false
		s.mu.Unlock()
	}()

	page, err := s.pager.NextPage(ctx, cursor)
	if err != nil {
		return fmt.Errorf("loading local page: %w", err)
	}

	ids := make([]string, len(page.Assets))
	for i, a := range page.Assets {
		ids[i] = a.ID
	}

	backedUp, err := s.index.QueryBackedUp(ctx, ids)
	if err != nil {
		return err
	}

	classified := models.ClassifyPage(page.Assets, backedUp)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.localPages = append(s.localPages, classified)
	appendLocalPage(&s.merged, s.seen, classified)
	s.cursor = page.NextCursor
	s.hasNextPage = page.HasNextPage

	s.log.Debug(ctx, "local page merged",
		"pageAssets", len(classified), "merged", len(s.merged), "hasNextPage", s.hasNextPage)
	return nil
}

// HasNextPage reports whether more local pages remain.
func (s *Session) HasNextPage() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hasNextPage
}

// Snapshot returns the current view for the presentation boundary. The
// asset slice is a copy; the caller may hold it across further loads.
func (s *Session) Snapshot() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	assets := make([]models.Asset, len(s.merged))
	copy(assets, s.merged)
	return View{Assets: assets, Loading: s.loading, HasNextPage: s.hasNextPage}
}

// Asset returns the asset with the given id from the merged view.
func (s *Session) Asset(id string) (models.Asset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, a := range s.merged {
		if a.ID == id {
			return a, nil
		}
	}
	return models.Asset{}, fmt.Errorf("%w: asset %s", common.ErrNotFound, id)
}

// SyncToCloud runs the upload-and-register pipeline for one asset from the
// merged view and folds the resulting record back into the session state,
// so subsequent pages and snapshots observe it as backed up.
func (s *Session) SyncToCloud(ctx context.Context, id string) (*models.BackupRecord, error) {
	asset, err := s.Asset(id)
	if err != nil {
		return nil, err
	}
	if asset.BackedUp {
		return nil, nil
	}

	record, err := s.syncer.Sync(ctx, asset)
	if err != nil {
		return nil, err
	}

	s.applyBackup(record)
	return record, nil
}

// applyBackup replaces the asset's local entry in the merged view with the
// remote record view and marks it backed up in the stored pages, keeping
// recomputation consistent with the incremental state.
func (s *Session) applyBackup(record *models.BackupRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	view := record.AssetView()
	s.remote = append(s.remote, view)

	for i, a := range s.merged {
		if a.ID == record.ID {
			s.merged[i] = view
			break
		}
	}
	for _, page := range s.localPages {
		for i, a := range page {
			if a.ID == record.ID {
				page[i].BackedUp = true
			}
		}
	}
}

// UnbackedAssets returns the local-origin assets of the merged view that
// still need a backup, in view order. Used by batch passes.
func (s *Session) UnbackedAssets() []models.Asset {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.Asset
	for _, a := range s.merged {
		if a.IsLocal() && !a.BackedUp {
			out = append(out, a)
		}
	}
	return out
}

// SyncAll backs up the given assets with bounded concurrency, folding each
// success into the session state and reporting per-asset outcomes.
func (s *Session) SyncAll(ctx context.Context, assets []models.Asset, workers int) []SyncResult {
	results := s.syncer.SyncAll(ctx, assets, workers)
	for _, r := range results {
		if r.Err == nil && r.Record != nil {
			s.applyBackup(r.Record)
		}
	}
	return results
}
