package leaguedb

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	leaguedomain "github.com/stridelabs/stride-backend/app/modules/league/domain"
)

// Repository is the full persistence contract of the league module.
// Every method accepts a bun.IDB so the service layer can compose calls
// inside one transaction; nil means "use the root connection".
type Repository interface {
	DB() *bun.DB

	// Rooms
	CreateRoom(ctx context.Context, db bun.IDB, room *Room) error
	GetRoom(ctx context.Context, db bun.IDB, roomID uuid.UUID) (*Room, error)
	FindJoinableRooms(ctx context.Context, db bun.IDB, tierName string, epochKey string, limit int) ([]Room, error)
	TryAddMember(ctx context.Context, db bun.IDB, roomID uuid.UUID) (bool, error)
	UnprocessedRooms(ctx context.Context, db bun.IDB, epochKey string) ([]Room, error)
	MarkRoomProcessed(ctx context.Context, db bun.IDB, roomID uuid.UUID, processedAt time.Time) error
	LatestEpochKey(ctx context.Context, db bun.IDB) (string, error)

	// Memberships
	InsertMember(ctx context.Context, db bun.IDB, member *RoomMember) error
	GetMembership(ctx context.Context, db bun.IDB, userID string, epochKey string) (*RoomMember, error)
	AddPoints(ctx context.Context, db bun.IDB, userID string, epochKey string, delta int64) (bool, error)
	ListRoomMembersRanked(ctx context.Context, db bun.IDB, roomID uuid.UUID) ([]RoomMember, error)
	SetRankSnapshot(ctx context.Context, db bun.IDB, roomID uuid.UUID, userID string, rank int) error

	// Composite atomic operations (own their transactions)
	AddMemberToRoom(ctx context.Context, member *RoomMember) (bool, error)
	CreateRoomWithMember(ctx context.Context, room *Room, member *RoomMember) error
	RecordOutcome(ctx context.Context, outcome *WeeklyOutcome, rank int) (bool, error)

	// Outcome ledger
	InsertOutcome(ctx context.Context, db bun.IDB, outcome *WeeklyOutcome) (bool, error)
	GetOutcome(ctx context.Context, db bun.IDB, userID string, epochKey string) (*WeeklyOutcome, error)
	OutcomeHistory(ctx context.Context, db bun.IDB, userID string, limit int) ([]WeeklyOutcome, error)

	// Tier catalog
	ListTiers(ctx context.Context, db bun.IDB) ([]TierConfig, error)
	SeedTiers(ctx context.Context, db bun.IDB, tiers []leaguedomain.Tier) error
	LoadCatalog(ctx context.Context, db bun.IDB) (*leaguedomain.Catalog, error)
}

var _ Repository = (*Impl)(nil)
