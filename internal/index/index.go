package index

import (
	"context"
	"fmt"
	"time"

	"github.com/akrylov/photosync/internal/common"
	"github.com/akrylov/photosync/internal/logging"
	"github.com/akrylov/photosync/internal/models"

	"github.com/sethvargo/go-retry"
)

// Index wraps a Repository with the retry policy for transient failures.
// Query failures surface as common.ErrIndexUnavailable after the retries
// are exhausted; callers must abort the classification pass for that page
// rather than treat the error as "nothing is backed up", which would mask
// backed-up assets as new and re-upload them.
type Index struct {
	repo     Repository
	attempts uint64
	backoff  time.Duration
	log      logging.Logger
}

// New builds an Index. attempts is the number of retries after the first
// try; backoff is the base of the exponential backoff between tries.
func New(repo Repository, attempts int, backoff time.Duration, log logging.Logger) *Index {
	if attempts < 0 {
		attempts = 0
	}
	return &Index{repo: repo, attempts: uint64(attempts), backoff: backoff, log: log}
}

func (i *Index) retryPolicy() retry.Backoff {
	return retry.WithMaxRetries(i.attempts, retry.NewExponential(i.backoff))
}

// QueryBackedUp returns the subset of ids with a backup record, as one
// batched query per attempt.
func (i *Index) QueryBackedUp(ctx context.Context, ids []string) (map[string]struct{}, error) {
	var result map[string]struct{}

	err := retry.Do(ctx, i.retryPolicy(), func(ctx context.Context) error {
		r, err := i.repo.QueryExistingIDs(ctx, ids)
		if err != nil {
			i.log.Warn(ctx, "backup index query failed, retrying", "error", err)
			return retry.RetryableError(err)
		}
		result = r
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrIndexUnavailable, err)
	}
	return result, nil
}

// ListAllAssets returns every backup record of userID as a remote-origin
// asset view, ordered by (mediaType, creationTime).
func (i *Index) ListAllAssets(ctx context.Context, userID string) ([]models.Asset, error) {
	var records []*models.BackupRecord

	err := retry.Do(ctx, i.retryPolicy(), func(ctx context.Context) error {
		r, err := i.repo.ListAll(ctx, userID)
		if err != nil {
			i.log.Warn(ctx, "backup index listing failed, retrying", "error", err)
			return retry.RetryableError(err)
		}
		records = r
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrIndexUnavailable, err)
	}

	assets := make([]models.Asset, len(records))
	for n, r := range records {
		assets[n] = r.AssetView()
	}
	return assets, nil
}

// Register upserts the backup record produced by a successful upload.
// Failures are reported as common.ErrMetadataWriteFailed: the blob is
// already written, so the caller may retry the whole sync; the re-upload
// overwrites the same key and the upsert converges on one record.
func (i *Index) Register(ctx context.Context, record *models.BackupRecord) error {
	if err := i.repo.Upsert(ctx, record); err != nil {
		return fmt.Errorf("%w: %v", common.ErrMetadataWriteFailed, err)
	}
	return nil
}
