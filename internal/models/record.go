package models

import "time"

// BackupRecord is the durable remote-side fact that an asset's content has
// been uploaded. Created only by a successful sync run; re-uploads under
// the same ID upsert it (last write wins on Path/ObjectID). Filename and
// CreationTime are carried so the index can serve asset-shaped views with
// a stable ordering.
type BackupRecord struct {
	ID           string
	UserID       string
	Filename     string
	MediaType    MediaType
	CreationTime time.Time
	Path         string
	ObjectID     string
}

// AssetView returns the record as a remote-origin Asset.
func (r *BackupRecord) AssetView() Asset {
	return Asset{
		ID:           r.ID,
		Filename:     r.Filename,
		MediaType:    r.MediaType,
		CreationTime: r.CreationTime,
		Remote:       &RemoteRef{Path: r.Path, ObjectID: r.ObjectID},
		BackedUp:     true,
	}
}
