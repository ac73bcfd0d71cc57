// Package models defines the asset and backup-record types shared by the
// media catalog, the backup index, and the reconciliation layer.
package models

import "time"

// MediaType classifies an asset as a photo or a video.
type MediaType string

const (
	MediaTypePhoto MediaType = "photo"
	MediaTypeVideo MediaType = "video"
)

// LocalRef is the device-side half of an asset: a URI that only the device
// can resolve to content. It is referenced, never copied.
type LocalRef struct {
	URI string
}

// RemoteRef is the remote-side half of an asset: where the uploaded blob
// lives in object storage.
type RemoteRef struct {
	Path     string
	ObjectID string
}

// Asset is one photo or video, identified by a stable ID that is the sole
// deduplication key across local and remote origins. Exactly one of Local
// and Remote is set, keyed by provenance: Local for assets enumerated from
// the device, Remote for assets enumerated from the backup index.
type Asset struct {
	ID           string
	Filename     string
	MediaType    MediaType
	CreationTime time.Time

	Local  *LocalRef
	Remote *RemoteRef

	// BackedUp reports that a durable backup record exists for ID. It is
	// always true for remote-origin assets; for local-origin assets it is
	// stamped by Classify from a batched index lookup.
	BackedUp bool
}

// IsLocal reports whether the asset was enumerated from the device.
func (a Asset) IsLocal() bool {
	return a.Local != nil
}

// Classify stamps a device-origin asset with its backup status, looked up
// in a set produced by one batched index query for the whole page. Pure;
// an asset without an ID is a programming error, not a runtime condition.
func Classify(a Asset, backedUp map[string]struct{}) Asset {
	_, ok := backedUp[a.ID]
	a.BackedUp = ok
	return a
}

// ClassifyPage applies Classify to every asset of a local page.
func ClassifyPage(assets []Asset, backedUp map[string]struct{}) []Asset {
	out := make([]Asset, len(assets))
	for i, a := range assets {
		out[i] = Classify(a, backedUp)
	}
	return out
}
