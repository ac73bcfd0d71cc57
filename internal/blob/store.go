// Package blob provides the object-storage collaborator used by the sync
// pipeline. Uploads are overwrite-on-conflict: retrying a put with the
// same key replaces the previous content, so partially uploaded blobs are
// recovered by simply syncing again.
package blob

import (
	"context"
	"io"
)

// StoredObject locates an uploaded blob.
type StoredObject struct {
	// Path is the key the blob was stored under.
	Path string
	// ObjectID identifies this particular write (backend version id when
	// available, otherwise a generated id).
	ObjectID string
}

// Store uploads blobs. Failures are reported as common.ErrUploadFailed.
type Store interface {
	Put(ctx context.Context, key, contentType string, body io.Reader) (StoredObject, error)
}
