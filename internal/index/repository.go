// Package index tracks which asset identities have a durable backup
// record, answering membership queries in batch and serving the full
// remote listing as asset views.
package index

import (
	"context"

	"github.com/akrylov/photosync/internal/models"
)

// Repository is the relational-store collaborator behind the index.
type Repository interface {
	// Upsert creates or replaces the backup record keyed by record ID.
	// Last write wins on path/object_id; re-running with the same ID never
	// duplicates.
	Upsert(ctx context.Context, record *models.BackupRecord) error

	// QueryExistingIDs returns the subset of ids that have a backup
	// record, in a single round trip.
	QueryExistingIDs(ctx context.Context, ids []string) (map[string]struct{}, error)

	// ListAll returns every backup record owned by userID, ordered by
	// (media_type, creation_time).
	ListAll(ctx context.Context, userID string) ([]*models.BackupRecord, error)
}
