package index

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/akrylov/photosync/internal/dbx"
	"github.com/akrylov/photosync/internal/index/migrations"
	"github.com/akrylov/photosync/internal/models"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// PostgresRepository implements Repository over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// OpenPostgres opens the backup index database via the pgx stdlib driver
// and applies the embedded migrations.
func OpenPostgres(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return nil, fmt.Errorf("migration dialect error: %w", err)
	}
	if err := goose.UpContext(ctx, db, "."); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	return db, nil
}

// Upsert writes the backup record keyed by id. On conflict the blob
// coordinates are replaced, implementing last-write-wins for re-uploads.
func (r *PostgresRepository) Upsert(ctx context.Context, record *models.BackupRecord) error {
	query := `
		INSERT INTO backup_records (id, user_id, filename, media_type, creation_time, path, object_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id)
		DO UPDATE SET
			path = EXCLUDED.path,
			object_id = EXCLUDED.object_id;
	`
	res, err := r.db.ExecContext(ctx, query,
		record.ID, record.UserID, record.Filename, string(record.MediaType),
		record.CreationTime, record.Path, record.ObjectID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n != 1 {
		return fmt.Errorf("unexpected rows affected: %d", n)
	}
	return nil
}

// QueryExistingIDs answers the backed-up membership question for a whole
// page of ids in one query. A per-id round trip here would turn every page
// load into pageSize network calls.
func (r *PostgresRepository) QueryExistingIDs(ctx context.Context, ids []string) (map[string]struct{}, error) {
	result := make(map[string]struct{}, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}

	query := fmt.Sprintf(
		`SELECT id FROM backup_records WHERE id IN (%s)`,
		strings.Join(placeholders, ", "))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query existing ids: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		result[id] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// ListAll returns every backup record for userID ordered by
// (media_type, creation_time), matching the local listing order.
func (r *PostgresRepository) ListAll(ctx context.Context, userID string) ([]*models.BackupRecord, error) {
	query := `
		SELECT id, user_id, filename, media_type, creation_time, path, object_id
		FROM backup_records
		WHERE user_id = $1
		ORDER BY media_type, creation_time, id
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to select backup records: %w", err)
	}
	defer rows.Close()

	var result []*models.BackupRecord
	for rows.Next() {
		var (
			item      models.BackupRecord
			mediaType string
		)
		if err := rows.Scan(&item.ID, &item.UserID, &item.Filename, &mediaType,
			&item.CreationTime, &item.Path, &item.ObjectID); err != nil {
			return nil, err
		}
		item.MediaType = models.MediaType(mediaType)
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
