package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akrylov/photosync/internal/common"
	"github.com/akrylov/photosync/internal/models"
)

func setupLibrary(t *testing.T) *SQLiteLibrary {
	t.Helper()
	lib, err := OpenSQLiteLibrary(filepath.Join(t.TempDir(), "media.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = lib.Close() })
	return lib
}

func catalogAsset(id string, mt models.MediaType, created time.Time, uri string) models.Asset {
	return models.Asset{
		ID:           id,
		Filename:     id + ".jpg",
		MediaType:    mt,
		CreationTime: created,
		Local:        &models.LocalRef{URI: uri},
	}
}

func TestGetPage_CoversEveryAssetExactlyOnceInOrder(t *testing.T) {
	lib := setupLibrary(t)
	ctx := context.Background()

	base := time.UnixMilli(1700000000000)
	var want []string
	var batch []models.Asset
	// interleave photos and videos with some identical timestamps
	for i := 0; i < 17; i++ {
		mt := models.MediaTypePhoto
		if i%3 == 0 {
			mt = models.MediaTypeVideo
		}
		created := base.Add(time.Duration(i/2) * time.Minute)
		id := fmt.Sprintf("asset-%02d", i)
		batch = append(batch, catalogAsset(id, mt, created, "file:///dcim/"+id))
		want = append(want, id)
	}
	require.NoError(t, lib.AddBatch(ctx, batch))

	var got []models.Asset
	cursor := ""
	for {
		page, err := lib.GetPage(ctx, cursor, 5)
		require.NoError(t, err)
		got = append(got, page.Assets...)
		if !page.HasNextPage {
			assert.Empty(t, page.NextCursor)
			break
		}
		require.NotEmpty(t, page.NextCursor)
		cursor = page.NextCursor
	}

	require.Len(t, got, len(want))

	seen := map[string]int{}
	for _, a := range got {
		seen[a.ID]++
	}
	for _, id := range want {
		assert.Equal(t, 1, seen[id], "asset %s must appear exactly once", id)
	}

	// (mediaType, creationTime, id) order is total across pages
	ordered := sort.SliceIsSorted(got, func(i, j int) bool {
		a, b := got[i], got[j]
		if a.MediaType != b.MediaType {
			return a.MediaType < b.MediaType
		}
		if !a.CreationTime.Equal(b.CreationTime) {
			return a.CreationTime.Before(b.CreationTime)
		}
		return a.ID < b.ID
	})
	assert.True(t, ordered)
}

func TestGetPage_SameCursorSamePage(t *testing.T) {
	lib := setupLibrary(t)
	ctx := context.Background()

	base := time.UnixMilli(1700000000000)
	for i := 0; i < 8; i++ {
		id := fmt.Sprintf("a%d", i)
		require.NoError(t, lib.Add(ctx, catalogAsset(id, models.MediaTypePhoto, base.Add(time.Duration(i)*time.Second), "file:///x/"+id)))
	}

	first, err := lib.GetPage(ctx, "", 3)
	require.NoError(t, err)

	second, err := lib.GetPage(ctx, first.NextCursor, 3)
	require.NoError(t, err)
	again, err := lib.GetPage(ctx, first.NextCursor, 3)
	require.NoError(t, err)

	assert.Equal(t, second, again)
}

func TestGetPage_MalformedCursor(t *testing.T) {
	lib := setupLibrary(t)

	_, err := lib.GetPage(context.Background(), "not-a-cursor!!!", 5)
	assert.Error(t, err)
}

func TestAdd_IsUpsert(t *testing.T) {
	lib := setupLibrary(t)
	ctx := context.Background()

	a := catalogAsset("dup", models.MediaTypePhoto, time.UnixMilli(1), "file:///old")
	require.NoError(t, lib.Add(ctx, a))

	a.Local.URI = "file:///new"
	require.NoError(t, lib.Add(ctx, a))

	page, err := lib.GetPage(ctx, "", 10)
	require.NoError(t, err)
	require.Len(t, page.Assets, 1)
	assert.Equal(t, "file:///new", page.Assets[0].Local.URI)
}

func TestAddBatch_RollsBackOnInvalidAsset(t *testing.T) {
	lib := setupLibrary(t)
	ctx := context.Background()

	batch := []models.Asset{
		catalogAsset("good", models.MediaTypePhoto, time.UnixMilli(1), "file:///g"),
		{ID: "bad", Filename: "bad.jpg", MediaType: models.MediaTypePhoto}, // no local ref
	}
	require.Error(t, lib.AddBatch(ctx, batch))

	page, err := lib.GetPage(ctx, "", 10)
	require.NoError(t, err)
	assert.Empty(t, page.Assets)
}

func TestOpenContent(t *testing.T) {
	lib := setupLibrary(t)
	ctx := context.Background()

	dir := t.TempDir()
	path := filepath.Join(dir, "IMG_1.jpg")
	require.NoError(t, os.WriteFile(path, []byte("jpeg-bytes"), 0o600))

	require.NoError(t, lib.Add(ctx, catalogAsset("ok", models.MediaTypePhoto, time.UnixMilli(1), "file://"+path)))
	require.NoError(t, lib.Add(ctx, catalogAsset("gone", models.MediaTypePhoto, time.UnixMilli(2), "file://"+filepath.Join(dir, "missing.jpg"))))

	rc, err := lib.OpenContent(ctx, "ok")
	require.NoError(t, err)
	defer rc.Close()
	b, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "jpeg-bytes", string(b))

	_, err = lib.OpenContent(ctx, "gone")
	assert.True(t, errors.Is(err, common.ErrAssetUnreadable))

	_, err = lib.OpenContent(ctx, "never-registered")
	assert.True(t, errors.Is(err, common.ErrAssetUnreadable))
}
