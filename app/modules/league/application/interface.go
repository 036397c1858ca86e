package leagueservice

import (
	"context"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"

	leaguedomain "github.com/stridelabs/stride-backend/app/modules/league/domain"
)

// Service is the league engine's contract toward transports and jobs.
type Service interface {
	// JoinEpoch places a user into a room for (tier, epoch), creating a
	// room when none has spare capacity. Idempotent per (user, epoch).
	JoinEpoch(ctx context.Context, userID leaguedomain.UserID, tierName leaguedomain.TierName, epochKey leaguedomain.EpochKey) (JoinResult, error)

	// CreditPoints adds delta to the user's open membership for the epoch.
	// A missing membership is a silent no-op by contract.
	CreditPoints(ctx context.Context, userID leaguedomain.UserID, epochKey leaguedomain.EpochKey, delta leaguedomain.Points) error

	// FinalizeEpoch ranks and settles every unprocessed room of a closed
	// epoch. Safe to re-run; rooms fail independently.
	FinalizeEpoch(ctx context.Context, epochKey leaguedomain.EpochKey) (FinalizeSummary, error)

	// CurrentEpochKey names the week currently open for joins.
	CurrentEpochKey() leaguedomain.EpochKey

	// Read projections for the thin query endpoints.
	CurrentStanding(ctx context.Context, userID leaguedomain.UserID) (*Standing, error)
	RoomLeaderboard(ctx context.Context, roomID uuid.UUID) ([]LeaderboardEntry, error)
	OutcomeHistory(ctx context.Context, userID leaguedomain.UserID, limit int) ([]OutcomeRecord, error)
	ListTiers(ctx context.Context) ([]leaguedomain.Tier, error)
}

// TierMutator updates the user-profile aggregate's current tier. The
// league engine only knows the tier value; the user module owns the rest.
// Failures are logged, not propagated — the outcome record must exist
// whether or not the profile write lands.
type TierMutator interface {
	SetCurrentTier(ctx context.Context, userID string, tierName string) error
}

// EventPublisher is the narrow slice of the event bus the service needs.
type EventPublisher interface {
	Publish(ctx context.Context, topic string, msg *message.Message) error
}

// Metrics records per-operation outcomes for the league engine.
type Metrics interface {
	RecordOperationAttempt(ctx context.Context, operation, service string)
	RecordOperationSuccess(ctx context.Context, operation, service string)
	RecordOperationFailure(ctx context.Context, operation, service string)
	RecordOperationDuration(ctx context.Context, operation, service string, duration time.Duration)
	RecordFinalizeOutcomes(ctx context.Context, epochKey string, promoted, demoted, stayed int)
}

// Clock abstracts time so epoch-boundary behavior is deterministic in
// tests.
type Clock interface {
	Now() time.Time
}

// SystemClock is the production Clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now()
}
