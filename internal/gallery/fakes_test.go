package gallery

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/akrylov/photosync/internal/blob"
	"github.com/akrylov/photosync/internal/common"
	"github.com/akrylov/photosync/internal/logging"
	"github.com/akrylov/photosync/internal/media"
	"github.com/akrylov/photosync/internal/models"
)

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func localAsset(id string, created int64) models.Asset {
	return models.Asset{
		ID:           id,
		Filename:     id + ".jpg",
		MediaType:    models.MediaTypePhoto,
		CreationTime: time.UnixMilli(created),
		Local:        &models.LocalRef{URI: "file:///dcim/" + id + ".jpg"},
	}
}

func remoteAsset(id string) models.Asset {
	return models.Asset{
		ID:        id,
		Filename:  id + ".jpg",
		MediaType: models.MediaTypePhoto,
		Remote:    &models.RemoteRef{Path: "u1/" + id + ".jpg", ObjectID: "o-" + id},
		BackedUp:  true,
	}
}

// fakeSource serves fixed pages and in-memory content.
type fakeSource struct {
	mu       sync.Mutex
	assets   []models.Asset // already in (mediaType, creationTime, id) order
	content  map[string][]byte
	openErr  map[string]error
	getCalls int
}

func newFakeSource(assets ...models.Asset) *fakeSource {
	return &fakeSource{
		assets:  assets,
		content: map[string][]byte{},
		openErr: map[string]error{},
	}
}

func (f *fakeSource) RequestPermission(ctx context.Context) error { return nil }

func (f *fakeSource) GetPage(ctx context.Context, cursor string, pageSize int) (media.Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getCalls++

	start := 0
	if cursor != "" {
		for i, a := range f.assets {
			if a.ID == cursor {
				start = i + 1
				break
			}
		}
	}

	end := start + pageSize
	if end >= len(f.assets) {
		return media.Page{Assets: f.assets[start:]}, nil
	}
	return media.Page{
		Assets:      f.assets[start:end],
		NextCursor:  f.assets[end-1].ID,
		HasNextPage: true,
	}, nil
}

func (f *fakeSource) OpenContent(ctx context.Context, id string) (io.ReadCloser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.openErr[id]; err != nil {
		return nil, err
	}
	b, ok := f.content[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", common.ErrAssetUnreadable, id)
	}
	return io.NopCloser(bytes.NewReader(b)), nil
}

// fakeBlobStore records uploads by key, overwriting on conflict like S3.
type fakeBlobStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	puts    int
	failOn  map[string]int // key -> number of failures left
}

func newFakeBlobStore() *fakeBlobStore {
	return &fakeBlobStore{objects: map[string][]byte{}, failOn: map[string]int{}}
}

func (f *fakeBlobStore) Put(ctx context.Context, key, contentType string, body io.Reader) (blob.StoredObject, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.puts++

	if n := f.failOn[key]; n > 0 {
		f.failOn[key] = n - 1
		return blob.StoredObject{}, fmt.Errorf("%w: injected", common.ErrUploadFailed)
	}

	b, err := io.ReadAll(body)
	if err != nil {
		return blob.StoredObject{}, fmt.Errorf("%w: %v", common.ErrUploadFailed, err)
	}
	f.objects[key] = b
	return blob.StoredObject{Path: key, ObjectID: fmt.Sprintf("obj-%d", f.puts)}, nil
}

// fakeIndex is an in-memory BackupIndex with injectable failures.
type fakeIndex struct {
	mu          sync.Mutex
	records     map[string]*models.BackupRecord
	queryErr    error
	registerErr map[string]int // id -> failures left
	queryCalls  int
}

func newFakeIndex() *fakeIndex {
	return &fakeIndex{records: map[string]*models.BackupRecord{}, registerErr: map[string]int{}}
}

func (f *fakeIndex) QueryBackedUp(ctx context.Context, ids []string) (map[string]struct{}, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queryCalls++
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	out := map[string]struct{}{}
	for _, id := range ids {
		if _, ok := f.records[id]; ok {
			out[id] = struct{}{}
		}
	}
	return out, nil
}

func (f *fakeIndex) ListAllAssets(ctx context.Context, userID string) ([]models.Asset, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Asset
	for _, r := range f.records {
		if r.UserID == userID {
			out = append(out, r.AssetView())
		}
	}
	return out, nil
}

func (f *fakeIndex) Register(ctx context.Context, record *models.BackupRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if n := f.registerErr[record.ID]; n > 0 {
		f.registerErr[record.ID] = n - 1
		return fmt.Errorf("%w: injected", common.ErrMetadataWriteFailed)
	}
	f.records[record.ID] = record
	return nil
}

var errIndexDown = errors.New("index down")
