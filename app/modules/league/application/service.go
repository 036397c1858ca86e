package leagueservice

import (
	"context"
	"log/slog"
	"time"

	leaguedomain "github.com/stridelabs/stride-backend/app/modules/league/domain"
	leaguedb "github.com/stridelabs/stride-backend/app/modules/league/infrastructure/repositories"
)

const serviceName = "LeagueService"

// LeagueService implements the weekly league competition engine: room
// allocation, point crediting, and epoch finalization over the leaguedb
// repository.
type LeagueService struct {
	repo     leaguedb.Repository
	tiers    TierMutator
	eventBus EventPublisher
	catalog  *leaguedomain.Catalog
	loc      *time.Location
	clock    Clock
	logger   *slog.Logger
	metrics  Metrics
}

// NewLeagueService wires the engine. The catalog is an injected value
// loaded once at startup; loc is the business timezone epoch boundaries
// are evaluated in.
func NewLeagueService(
	repo leaguedb.Repository,
	tiers TierMutator,
	eventBus EventPublisher,
	catalog *leaguedomain.Catalog,
	loc *time.Location,
	clock Clock,
	logger *slog.Logger,
	metrics Metrics,
) *LeagueService {
	if clock == nil {
		clock = SystemClock{}
	}
	return &LeagueService{
		repo:     repo,
		tiers:    tiers,
		eventBus: eventBus,
		catalog:  catalog,
		loc:      loc,
		clock:    clock,
		logger:   logger,
		metrics:  metrics,
	}
}

var _ Service = (*LeagueService)(nil)

// CurrentEpochKey names the week currently open for joins.
func (s *LeagueService) CurrentEpochKey() leaguedomain.EpochKey {
	return leaguedomain.KeyFor(s.clock.Now(), s.loc)
}

// instrument runs fn under the standard attempt/success/failure/duration
// metric envelope.
func (s *LeagueService) instrument(ctx context.Context, operation string, fn func(ctx context.Context) error) error {
	start := time.Now()
	s.metrics.RecordOperationAttempt(ctx, operation, serviceName)

	err := fn(ctx)

	s.metrics.RecordOperationDuration(ctx, operation, serviceName, time.Since(start))
	if err != nil {
		s.metrics.RecordOperationFailure(ctx, operation, serviceName)
		return err
	}
	s.metrics.RecordOperationSuccess(ctx, operation, serviceName)
	return nil
}
