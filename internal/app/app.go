// Package app wires the configuration, media catalog, backup index, blob
// store and session together, and runs one full backup pass: paginate the
// local catalog to exhaustion, reconcile against the index, and upload
// everything that is not backed up yet.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/cheggaaa/pb/v3"

	"github.com/akrylov/photosync/internal/blob"
	"github.com/akrylov/photosync/internal/config"
	"github.com/akrylov/photosync/internal/gallery"
	"github.com/akrylov/photosync/internal/index"
	"github.com/akrylov/photosync/internal/logging"
	"github.com/akrylov/photosync/internal/media"
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	library *media.SQLiteLibrary
	indexDB *sql.DB
	session *gallery.Session
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	logger := logging.NewLogger(cfg.Environment)

	library, err := media.OpenSQLiteLibrary(cfg.MediaDBPath)
	if err != nil {
		return nil, fmt.Errorf("media catalog error: %w", err)
	}

	db, err := index.OpenPostgres(ctx, cfg.DatabaseDSN)
	if err != nil {
		_ = library.Close()
		return nil, fmt.Errorf("backup index error: %w", err)
	}

	idx := index.New(index.NewPostgresRepository(db),
		cfg.IndexRetryAttempts, cfg.IndexRetryBackoff, logger)

	store := blob.NewS3Store(blob.S3Options{
		AccessKey:    cfg.S3AccessKey,
		SecretKey:    cfg.S3SecretKey,
		Bucket:       cfg.S3Bucket,
		Region:       cfg.S3Region,
		BaseEndpoint: cfg.S3BaseEndpoint,
	})

	syncer := gallery.NewSyncer(cfg.UserID, library, store, idx, logger)
	session := gallery.NewSession(cfg.UserID, library, cfg.PageSize, idx, syncer, logger)

	return &App{
		config:  cfg,
		logger:  logger,
		library: library,
		indexDB: db,
		session: session,
	}, nil
}

func (app *App) Close() error {
	if err := app.library.Close(); err != nil {
		return err
	}
	return app.indexDB.Close()
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run executes one backup pass and returns the first hard failure, if any.
// Per-asset sync failures are logged and counted but do not abort the pass.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.initSignalHandler(cancelFunc)

	app.logger.Info(ctx, "starting backup pass", "user", app.config.UserID)

	if err := app.library.RequestPermission(ctx); err != nil {
		return err
	}

	if err := app.session.LoadRemote(ctx); err != nil {
		return err
	}

	for app.session.HasNextPage() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := app.session.LoadNextPage(ctx); err != nil {
			return err
		}
	}

	pending := app.session.UnbackedAssets()
	if len(pending) == 0 {
		app.logger.Info(ctx, "nothing to back up")
		return nil
	}

	app.logger.Info(ctx, "syncing assets", "count", len(pending), "workers", app.config.SyncWorkers)

	bar := pb.StartNew(len(pending))
	results := app.session.SyncAll(ctx, pending, app.config.SyncWorkers)
	var failed int
	for _, r := range results {
		bar.Increment()
		if r.Err != nil {
			failed++
		}
	}
	bar.Finish()

	app.logger.Info(ctx, "backup pass finished",
		"synced", len(results)-failed, "failed", failed)

	if failed > 0 {
		return fmt.Errorf("%d of %d assets failed to sync", failed, len(results))
	}
	return nil
}
