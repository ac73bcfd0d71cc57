// Package common defines shared sentinel errors used across the sync core.
// Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// Pagination / classification errors. An index failure must never be
	// treated as "nothing is backed up": that would re-upload everything.
	ErrIndexUnavailable = errors.New("backup index unavailable")

	// Per-asset sync pipeline errors.
	ErrAssetUnreadable     = errors.New("asset unreadable")
	ErrUploadFailed        = errors.New("upload failed")
	ErrMetadataWriteFailed = errors.New("metadata write failed")

	// Surfaced before the core is ever invoked; kept here so callers share
	// one taxonomy.
	ErrPermissionDenied = errors.New("media permission denied")
)
