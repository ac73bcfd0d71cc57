package gallery

import (
	"context"
	"io"
	"mime"
	"path"
	"path/filepath"
	"sync"

	"github.com/akrylov/photosync/internal/blob"
	"github.com/akrylov/photosync/internal/logging"
	"github.com/akrylov/photosync/internal/models"

	"golang.org/x/sync/errgroup"
)

// defaultContentType is used when the filename extension resolves to
// nothing; an unknown type never fails the pipeline.
const defaultContentType = "image/jpeg"

// ContentSource resolves an asset's readable bytes; media.Source satisfies it.
type ContentSource interface {
	OpenContent(ctx context.Context, id string) (io.ReadCloser, error)
}

// BackupIndex is the slice of the index the pipeline and session need.
type BackupIndex interface {
	QueryBackedUp(ctx context.Context, ids []string) (map[string]struct{}, error)
	ListAllAssets(ctx context.Context, userID string) ([]models.Asset, error)
	Register(ctx context.Context, record *models.BackupRecord) error
}

// Syncer uploads one asset's content and registers its backup record.
// Every step is idempotent under retry: the blob key is derived from the
// user and filename so a re-upload overwrites the same object, and the
// record upsert converges on one row per asset id.
type Syncer struct {
	userID string
	source ContentSource
	store  blob.Store
	index  BackupIndex
	log    logging.Logger
}

func NewSyncer(userID string, source ContentSource, store blob.Store, index BackupIndex, log logging.Logger) *Syncer {
	return &Syncer{userID: userID, source: source, store: store, index: index, log: log}
}

// Sync runs the pipeline for a single asset:
//
//  1. resolve readable content (ErrAssetUnreadable aborts with no side
//     effects);
//  2. determine the content type from the filename extension;
//  3. upload to <userID>/<filename> with overwrite-on-conflict semantics
//     (ErrUploadFailed leaves at most a partial blob that the next attempt
//     overwrites);
//  4. upsert the backup record keyed by the asset id
//     (ErrMetadataWriteFailed leaves an orphaned blob and no record; the
//     asset stays visible as unbacked-up and the next Sync overwrites the
//     same key, so no cleanup pass is needed).
func (s *Syncer) Sync(ctx context.Context, asset models.Asset) (*models.BackupRecord, error) {
	content, err := s.source.OpenContent(ctx, asset.ID)
	if err != nil {
		return nil, err
	}
	defer content.Close()

	key := path.Join(s.userID, asset.Filename)

	stored, err := s.store.Put(ctx, key, contentTypeFor(asset.Filename), content)
	if err != nil {
		return nil, err
	}

	record := &models.BackupRecord{
		ID:           asset.ID,
		UserID:       s.userID,
		Filename:     asset.Filename,
		MediaType:    asset.MediaType,
		CreationTime: asset.CreationTime,
		Path:         stored.Path,
		ObjectID:     stored.ObjectID,
	}

	if err := s.index.Register(ctx, record); err != nil {
		return nil, err
	}

	s.log.Info(ctx, "asset backed up", "id", asset.ID, "path", record.Path)
	return record, nil
}

// SyncResult is the outcome of one asset within a batch sync.
type SyncResult struct {
	AssetID string
	Record  *models.BackupRecord
	Err     error
}

// SyncAll syncs the given assets with at most workers concurrent uploads.
// Failures are isolated per asset: one failed upload never aborts the
// rest, and the caller receives a result per input asset in input order.
func (s *Syncer) SyncAll(ctx context.Context, assets []models.Asset, workers int) []SyncResult {
	if workers <= 0 {
		workers = 1
	}

	results := make([]SyncResult, len(assets))
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, asset := range assets {
		i, asset := i, asset
		g.Go(func() error {
			record, err := s.Sync(ctx, asset)
			if err != nil {
				s.log.Warn(ctx, "asset sync failed", "id", asset.ID, "error", err)
			}
			mu.Lock()
			results[i] = SyncResult{AssetID: asset.ID, Record: record, Err: err}
			mu.Unlock()
			return nil
		})
	}

	_ = g.Wait()
	return results
}

func contentTypeFor(filename string) string {
	ct := mime.TypeByExtension(filepath.Ext(filename))
	if ct == "" {
		return defaultContentType
	}
	return ct
}
