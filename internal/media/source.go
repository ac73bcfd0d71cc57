// Package media provides access to the device media catalog: a paginated
// asset source with a stable total order and per-asset content resolution.
package media

import (
	"context"
	"io"

	"github.com/akrylov/photosync/internal/models"
)

// Page is one slice of the local media listing. NextCursor is an opaque
// continuation token; it is empty exactly when HasNextPage is false.
type Page struct {
	Assets      []models.Asset
	NextCursor  string
	HasNextPage bool
}

// Source is the device media collaborator. Implementations must list
// assets in (mediaType, creationTime, id) order so that cursor advances
// never skip or duplicate an asset, even if new media appears on the
// device mid-pagination.
//
// GetPage with the same cursor returns the same page (best effort; the
// underlying store is not immutable, but the cursor discipline itself must
// not introduce skips). Callers must not overlap GetPage calls on one
// cursor chain; the session's busy flag enforces this.
type Source interface {
	// RequestPermission asks the platform for media access. Returns
	// common.ErrPermissionDenied when the user refused.
	RequestPermission(ctx context.Context) error

	// GetPage returns up to pageSize assets after the given cursor.
	// An empty cursor means the beginning of the listing.
	GetPage(ctx context.Context, cursor string, pageSize int) (Page, error)

	// OpenContent resolves the asset's readable bytes. Returns
	// common.ErrAssetUnreadable when the device cannot materialize the
	// content (deleted asset, placeholder, unresolvable URI).
	OpenContent(ctx context.Context, id string) (io.ReadCloser, error)
}
