// Package server wires the event feed backend: Postgres repositories,
// S3 image storage, the websocket push hub and the gRPC endpoint.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/eventfeed/internal/logging"
	"github.com/dmitrijs2005/eventfeed/internal/server/config"
	"github.com/dmitrijs2005/eventfeed/internal/server/images"
	"github.com/dmitrijs2005/eventfeed/internal/server/push"
	"github.com/dmitrijs2005/eventfeed/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/eventfeed/internal/server/services"

	gs "github.com/dmitrijs2005/eventfeed/internal/server/grpc"
)

type App struct {
	config       *config.Config
	logger       logging.Logger
	db           *sql.DB
	hub          *push.Hub
	userService  *services.UserService
	eventService *services.EventService
}

// NewApp opens the database, applies migrations and connects object
// storage.
func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {

	db, err := repomanager.OpenPostgres(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	store, err := images.NewS3Store(ctx, c)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("image store init error: %w", err)
	}

	hub := push.NewHub(logger.With("module", "push"))

	return &App{
		config:       c,
		logger:       logger,
		db:           db,
		hub:          hub,
		userService:  services.NewUserService(db, rm, c),
		eventService: services.NewEventService(db, rm, store, hub, logger.With("module", "events")),
	}, nil
}

// Migrate applies pending migrations and exits.
func Migrate(ctx context.Context, c *config.Config, logger logging.Logger) error {
	db, err := repomanager.OpenPostgres(ctx, c.DatabaseDSN)
	if err != nil {
		return fmt.Errorf("db init error: %w", err)
	}
	defer db.Close()

	if err := repomanager.NewPostgresRepositoryManager().RunMigrations(ctx, db); err != nil {
		return fmt.Errorf("migrations error: %w", err)
	}
	logger.Info(ctx, "Migrations applied")
	return nil
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.userService, app.eventService, app.config.SecretKey)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startPushServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.hub.Run(ctx, app.config.EndpointAddrPush); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run serves gRPC and the push hub until ctx is done or either fails.
func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.startPushServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err)
	}
	app.logger.Info(ctx, "App stopped")
}
