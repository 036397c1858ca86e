package leagueservice

import (
	"time"

	"github.com/google/uuid"

	leaguedomain "github.com/stridelabs/stride-backend/app/modules/league/domain"
)

// JoinResult is the outcome of a JoinEpoch call.
type JoinResult struct {
	RoomID   uuid.UUID
	EpochKey leaguedomain.EpochKey
	TierName leaguedomain.TierName
	// AlreadyJoined is true when the call was an idempotent replay and the
	// returned room is the user's existing placement.
	AlreadyJoined bool
}

// FinalizeSummary aggregates one finalize run, for observability only.
// Counters cover newly written outcomes; a replayed run reports zeros for
// rooms that were already settled.
type FinalizeSummary struct {
	EpochKey       leaguedomain.EpochKey
	RoomsProcessed int
	RoomsFailed    int
	Promoted       int
	Demoted        int
	Stayed         int
}

// Standing is a user's live position in the current epoch.
type Standing struct {
	RoomID   uuid.UUID
	EpochKey leaguedomain.EpochKey
	TierName leaguedomain.TierName
	Points   leaguedomain.Points
	Rank     int // live rank among room members, 1 is best
	RoomSize int
}

// LeaderboardEntry is one row of a room leaderboard, in rank order.
type LeaderboardEntry struct {
	UserID   leaguedomain.UserID
	Points   leaguedomain.Points
	Rank     int
	JoinedAt time.Time
}

// OutcomeRecord is one row of a user's weekly history.
type OutcomeRecord struct {
	EpochKey   leaguedomain.EpochKey
	TierName   leaguedomain.TierName
	Points     leaguedomain.Points
	RankInRoom int
	Result     leaguedomain.Result
	CreatedAt  time.Time
}
