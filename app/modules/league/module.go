package league

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	leagueservice "github.com/stridelabs/stride-backend/app/modules/league/application"
	leaguedomain "github.com/stridelabs/stride-backend/app/modules/league/domain"
	leagueevents "github.com/stridelabs/stride-backend/app/modules/league/events"
	leaguehandlers "github.com/stridelabs/stride-backend/app/modules/league/infrastructure/handlers"
	leaguequeue "github.com/stridelabs/stride-backend/app/modules/league/infrastructure/queue"
	leaguedb "github.com/stridelabs/stride-backend/app/modules/league/infrastructure/repositories"
	"github.com/stridelabs/stride-backend/config"
	"github.com/stridelabs/stride-backend/internal/eventbus"
	"github.com/stridelabs/stride-backend/internal/observability"
)

// Module wires the league engine: service, event handlers, and the
// rollover queue.
type Module struct {
	Service  leagueservice.Service
	Handlers leaguehandlers.Handlers
	Queue    leaguequeue.QueueService

	logger *slog.Logger
}

// NewModule loads the tier catalog, builds the service, and registers the
// activity subscription. The queue service is constructed but not started;
// the app starts it alongside the HTTP server.
func NewModule(
	ctx context.Context,
	cfg *config.Config,
	repo leaguedb.Repository,
	tiers leagueservice.TierMutator,
	catalog *leaguedomain.Catalog,
	bus eventbus.EventBus,
	metrics *observability.Metrics,
	logger *slog.Logger,
) (*Module, error) {
	loc, err := time.LoadLocation(cfg.League.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid league timezone %q: %w", cfg.League.Timezone, err)
	}

	service := leagueservice.NewLeagueService(
		repo,
		tiers,
		bus,
		catalog,
		loc,
		leagueservice.SystemClock{},
		logger,
		metrics,
	)

	handlers := leaguehandlers.NewHandlers(service, logger)

	queue, err := leaguequeue.NewService(ctx, repo.DB(), logger, cfg.Postgres.DSN, metrics, service, loc)
	if err != nil {
		return nil, fmt.Errorf("build league queue: %w", err)
	}

	if err := bus.Subscribe(ctx, leagueevents.ActivityPointsEarned, handlers.HandlePointsEarned); err != nil {
		return nil, fmt.Errorf("subscribe to activity points: %w", err)
	}

	return &Module{
		Service:  service,
		Handlers: handlers,
		Queue:    queue,
		logger:   logger,
	}, nil
}

// Start launches the rollover queue workers.
func (m *Module) Start(ctx context.Context) error {
	return m.Queue.Start(ctx)
}

// Stop drains the queue workers.
func (m *Module) Stop(ctx context.Context) error {
	return m.Queue.Stop(ctx)
}
