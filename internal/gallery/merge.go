// Package gallery implements the reconciliation and sync core: merging the
// remote-authoritative backup listing with local-only pages into one
// deduplicated view, and driving the per-asset upload-and-register
// pipeline.
package gallery

import "github.com/akrylov/photosync/internal/models"

// MergeRemoteAndLocal combines the remote listing with a classified local
// page: the remote assets followed by the local assets that are not backed
// up. The filtering is asymmetric on purpose: the remote listing is already
// the canonical backed-up view, so a local asset marked backed up is a
// duplicate of a remote entry and is dropped; only not-yet-backed-up local
// assets need to surface from the local stream. Each id appears exactly
// once, with the remote record winning on collision (backup state and
// display fields alike).
func MergeRemoteAndLocal(remote, local []models.Asset) []models.Asset {
	merged := make([]models.Asset, 0, len(remote)+len(local))
	seen := make(map[string]struct{}, len(remote)+len(local))

	merged = append(merged, remote...)
	for _, a := range remote {
		seen[a.ID] = struct{}{}
	}

	appendLocalPage(&merged, seen, local)
	return merged
}

// appendLocalPage adds a classified local page to an existing merged view,
// skipping backed-up assets and ids already present. Incremental: the cost
// of folding in a new page is O(len(page)), never a re-scan of the
// accumulated set.
func appendLocalPage(merged *[]models.Asset, seen map[string]struct{}, page []models.Asset) {
	for _, a := range page {
		if a.BackedUp {
			continue
		}
		if _, ok := seen[a.ID]; ok {
			continue
		}
		seen[a.ID] = struct{}{}
		*merged = append(*merged, a)
	}
}
