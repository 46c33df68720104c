// Package server initializes and runs the main application server. It wires
// configuration, logging, the database and object store, the change feed hub
// and the HTTP endpoint, and handles graceful shutdown on OS signals.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/askelund/proofdeck/internal/logging"
	"github.com/askelund/proofdeck/internal/server/config"
	"github.com/askelund/proofdeck/internal/server/feed"
	"github.com/askelund/proofdeck/internal/server/repositories/repomanager"
	"github.com/askelund/proofdeck/internal/server/services"
	"github.com/askelund/proofdeck/internal/server/storage"
	"github.com/askelund/proofdeck/internal/server/web"
)

type App struct {
	config         *config.Config
	logger         logging.Logger
	db             *sql.DB
	projectService *services.ProjectService
	reviewService  *services.ReviewService
	commentService *services.CommentService
	hub            *feed.Hub
}

func NewApp(cfg *config.Config) (*App, error) {

	logger := logging.NewDefault()

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm, err := repomanager.NewPostgresRepositoryManager(db)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	if err := rm.RunMigrations(context.Background(), db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	store := storage.NewS3Store(storage.S3Config{
		RootUser:     cfg.S3RootUser,
		RootPassword: cfg.S3RootPassword,
		Bucket:       cfg.S3Bucket,
		Region:       cfg.S3Region,
		BaseEndpoint: cfg.S3BaseEndpoint,
	})

	hub := feed.NewHub(logger)

	ps := services.NewProjectService(db, rm, cfg, hub, store, logger)
	rs := services.NewReviewService(db, rm, cfg, hub, store, logger)
	cs := services.NewCommentService(db, rm, hub, logger)

	return &App{
		config:         cfg,
		logger:         logger,
		db:             db,
		projectService: ps,
		reviewService:  rs,
		commentService: cs,
		hub:            hub,
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := web.NewServer(app.config, app.logger, app.projectService, app.reviewService, app.commentService, app.hub)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "error closing db", "error", err.Error())
	}
}
