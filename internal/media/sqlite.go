package media

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/akrylov/photosync/internal/common"
	"github.com/akrylov/photosync/internal/dbx"
	"github.com/akrylov/photosync/internal/models"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteLibrary is a Source over an on-device sqlite media catalog. The
// catalog mirrors what a platform media store exposes: one row per asset
// with its local URI. Content is resolved by opening the URI's file path.
type SQLiteLibrary struct {
	db *sql.DB
}

// OpenSQLiteLibrary opens (or creates) the media catalog at path.
func OpenSQLiteLibrary(path string) (*SQLiteLibrary, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("media catalog open error: %w", err)
	}

	lib := &SQLiteLibrary{db: db}
	if err := lib.initialize(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("media catalog init error: %w", err)
	}
	return lib, nil
}

func (l *SQLiteLibrary) initialize() error {
	_, err := l.db.Exec(`
		CREATE TABLE IF NOT EXISTS media_assets (
			id TEXT PRIMARY KEY,
			filename TEXT NOT NULL,
			media_type TEXT NOT NULL,
			creation_time INTEGER NOT NULL,
			local_uri TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_media_assets_order
			ON media_assets(media_type, creation_time, id);
		PRAGMA journal_mode=WAL;
		PRAGMA synchronous=NORMAL;
	`)
	return err
}

func (l *SQLiteLibrary) Close() error {
	return l.db.Close()
}

// RequestPermission is a no-op for a catalog the process already owns.
// Platform-backed sources surface common.ErrPermissionDenied here.
func (l *SQLiteLibrary) RequestPermission(ctx context.Context) error {
	return nil
}

// Add registers an asset in the catalog. Upserts so re-scans of the
// device are idempotent.
func (l *SQLiteLibrary) Add(ctx context.Context, a models.Asset) error {
	return addAsset(ctx, l.db, a)
}

// AddBatch registers a scan's worth of assets in one transaction, so a
// partially applied re-scan never leaves the catalog in a mixed state.
func (l *SQLiteLibrary) AddBatch(ctx context.Context, assets []models.Asset) error {
	return dbx.WithTx(ctx, l.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		for _, a := range assets {
			if err := addAsset(ctx, tx, a); err != nil {
				return err
			}
		}
		return nil
	})
}

func addAsset(ctx context.Context, db dbx.DBTX, a models.Asset) error {
	if a.Local == nil {
		return errors.New("catalog accepts only device-origin assets")
	}
	query := `
		INSERT INTO media_assets (id, filename, media_type, creation_time, local_uri)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			filename = excluded.filename,
			media_type = excluded.media_type,
			creation_time = excluded.creation_time,
			local_uri = excluded.local_uri
	`
	_, err := db.ExecContext(ctx, query,
		a.ID, a.Filename, string(a.MediaType), a.CreationTime.UnixMilli(), a.Local.URI)
	if err != nil {
		return fmt.Errorf("failed to upsert asset: %w", err)
	}
	return nil
}

// GetPage returns up to pageSize assets strictly after cursor in
// (media_type, creation_time, id) order. One extra row is fetched to
// decide HasNextPage without a second query.
func (l *SQLiteLibrary) GetPage(ctx context.Context, cursor string, pageSize int) (Page, error) {
	if pageSize <= 0 {
		return Page{}, fmt.Errorf("invalid page size: %d", pageSize)
	}

	query := `
		SELECT id, filename, media_type, creation_time, local_uri
		FROM media_assets
	`
	var args []any

	if cursor != "" {
		k, err := decodeCursor(cursor)
		if err != nil {
			return Page{}, err
		}
		query += `
		WHERE media_type > ?
		   OR (media_type = ? AND creation_time > ?)
		   OR (media_type = ? AND creation_time = ? AND id > ?)
		`
		mt := string(k.MediaType)
		args = append(args, mt, mt, k.CreationTime, mt, k.CreationTime, k.ID)
	}

	query += `
		ORDER BY media_type, creation_time, id
		LIMIT ?
	`
	args = append(args, pageSize+1)

	rows, err := l.db.QueryContext(ctx, query, args...)
	if err != nil {
		return Page{}, fmt.Errorf("failed to select assets: %w", err)
	}
	defer rows.Close()

	var assets []models.Asset
	for rows.Next() {
		var (
			a         models.Asset
			mediaType string
			created   int64
			uri       string
		)
		if err := rows.Scan(&a.ID, &a.Filename, &mediaType, &created, &uri); err != nil {
			return Page{}, err
		}
		a.MediaType = models.MediaType(mediaType)
		a.CreationTime = time.UnixMilli(created)
		a.Local = &models.LocalRef{URI: uri}
		assets = append(assets, a)
	}
	if err := rows.Err(); err != nil {
		return Page{}, err
	}

	page := Page{}
	if len(assets) > pageSize {
		page.Assets = assets[:pageSize]
		page.HasNextPage = true
		page.NextCursor = encodeCursor(page.Assets[pageSize-1])
	} else {
		page.Assets = assets
	}
	return page, nil
}

// OpenContent resolves the asset's local URI to a readable file.
func (l *SQLiteLibrary) OpenContent(ctx context.Context, id string) (io.ReadCloser, error) {
	var uri string
	err := l.db.QueryRowContext(ctx,
		`SELECT local_uri FROM media_assets WHERE id = ?`, id).Scan(&uri)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: asset %s not in catalog", common.ErrAssetUnreadable, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve asset %s: %w", id, err)
	}

	f, err := os.Open(strings.TrimPrefix(uri, "file://"))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrAssetUnreadable, err)
	}
	return f, nil
}
