package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/stridelabs/stride-backend/app/api"
	"github.com/stridelabs/stride-backend/app/modules/league"
	userservice "github.com/stridelabs/stride-backend/app/modules/user/application"
	"github.com/stridelabs/stride-backend/config"
	"github.com/stridelabs/stride-backend/internal/db/bundb"
	"github.com/stridelabs/stride-backend/internal/eventbus"
	"github.com/stridelabs/stride-backend/internal/observability"
)

// App owns the backend's long-lived resources: the database pool, the
// event bus, the league module, and the HTTP server.
type App struct {
	Cfg     *config.Config
	Logger  *slog.Logger
	Metrics *observability.Metrics

	db       *bundb.DBService
	eventBus eventbus.EventBus
	league   *league.Module
	server   *api.Server
}

// NewApp initializes every component in dependency order. Nothing is
// started yet; Run does that.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	logger := observability.NewLogger(cfg.Observability.Environment, cfg.Observability.LogLevel)
	metrics := observability.NewMetrics()

	dbService, err := bundb.NewDBService(ctx, cfg.Postgres.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database service: %w", err)
	}

	bus, err := eventbus.NewEventBus(ctx, cfg.NATS.URL, logger)
	if err != nil {
		dbService.Close()
		return nil, fmt.Errorf("failed to initialize event bus: %w", err)
	}
	if err := eventbus.InitializeStreams(ctx, bus); err != nil {
		bus.Close()
		dbService.Close()
		return nil, fmt.Errorf("failed to initialize streams: %w", err)
	}

	catalog, err := dbService.League.LoadCatalog(ctx, nil)
	if err != nil {
		bus.Close()
		dbService.Close()
		return nil, fmt.Errorf("failed to load tier catalog: %w", err)
	}

	userSvc := userservice.NewUserService(dbService.User, catalog, logger)

	leagueModule, err := league.NewModule(ctx, cfg, dbService.League, userSvc, catalog, bus, metrics, logger)
	if err != nil {
		bus.Close()
		dbService.Close()
		return nil, fmt.Errorf("failed to initialize league module: %w", err)
	}

	server := api.NewServer(cfg, leagueModule.Service, userSvc, leagueModule.Queue, logger)

	return &App{
		Cfg:      cfg,
		Logger:   logger,
		Metrics:  metrics,
		db:       dbService,
		eventBus: bus,
		league:   leagueModule,
		server:   server,
	}, nil
}

// Run starts the queue workers and serves HTTP until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	if err := a.league.Start(ctx); err != nil {
		return fmt.Errorf("failed to start league module: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- a.server.Start()
	}()

	select {
	case <-ctx.Done():
		return nil
	case err := <-errCh:
		return err
	}
}

// Shutdown stops components in reverse order of startup.
func (a *App) Shutdown(ctx context.Context) {
	if err := a.server.Shutdown(ctx); err != nil {
		a.Logger.Error("http server shutdown", slog.Any("error", err))
	}
	if err := a.league.Stop(ctx); err != nil {
		a.Logger.Error("league module shutdown", slog.Any("error", err))
	}
	if err := a.eventBus.Close(); err != nil {
		a.Logger.Error("event bus shutdown", slog.Any("error", err))
	}
	if err := a.db.Close(); err != nil {
		a.Logger.Error("database shutdown", slog.Any("error", err))
	}
}
