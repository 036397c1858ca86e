package leaguedb

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	leaguedomain "github.com/stridelabs/stride-backend/app/modules/league/domain"
)

// Room is one capacity-bounded competition cohort for a (tier, epoch) pair.
// Size bounds are copied from the tier catalog at creation time so a later
// catalog edit cannot affect an already-open room. Rooms are never deleted.
type Room struct {
	bun.BaseModel `bun:"table:league_rooms,alias:lr"`

	ID          uuid.UUID  `bun:"id,pk,type:uuid"`
	EpochKey    string     `bun:"epoch_key,notnull"`
	TierName    string     `bun:"tier_name,notnull"`
	TierOrder   int        `bun:"tier_order,notnull"`
	MemberCount int        `bun:"member_count,notnull,default:0"`
	MinSize     int        `bun:"min_size,notnull"`
	MaxSize     int        `bun:"max_size,notnull"`
	OpensAt     time.Time  `bun:"opens_at,notnull"`
	ClosesAt    time.Time  `bun:"closes_at,notnull"`
	IsProcessed bool       `bun:"is_processed,notnull,default:false"`
	ProcessedAt *time.Time `bun:"processed_at,nullzero"`

	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

var _ bun.BeforeInsertHook = (*Room)(nil)

func (r *Room) BeforeInsert(ctx context.Context, _ *bun.InsertQuery) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// RoomMember is a user's enrollment in a room. One membership per
// (epoch_key, user_id) globally, enforced by a unique index. Points only
// ever increase during the epoch; RankSnapshot is set once by finalization.
type RoomMember struct {
	bun.BaseModel `bun:"table:league_room_members,alias:lm"`

	RoomID       uuid.UUID `bun:"room_id,pk,type:uuid"`
	UserID       string    `bun:"user_id,pk"`
	EpochKey     string    `bun:"epoch_key,notnull"`
	Points       int64     `bun:"points,notnull,default:0"`
	RankSnapshot *int      `bun:"rank_snapshot,nullzero"`
	JoinedAt     time.Time `bun:"joined_at,nullzero,notnull,default:current_timestamp"`
}

// WeeklyOutcome is one immutable per-user-per-epoch result. The unique
// (user_id, epoch_key) constraint is what makes finalization re-runnable:
// a replayed insert is a no-op, never a duplicate.
type WeeklyOutcome struct {
	bun.BaseModel `bun:"table:league_weekly_outcomes,alias:lo"`

	ID         int64     `bun:"id,pk,autoincrement"`
	UserID     string    `bun:"user_id,notnull"`
	EpochKey   string    `bun:"epoch_key,notnull"`
	RoomID     uuid.UUID `bun:"room_id,type:uuid,notnull"`
	Points     int64     `bun:"points,notnull"`
	RankInRoom int       `bun:"rank_in_room,notnull"`
	TierName   string    `bun:"tier_name,notnull"`
	Result     string    `bun:"result,notnull"`

	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

// TierConfig is the persisted tier catalog row.
type TierConfig struct {
	bun.BaseModel `bun:"table:league_tiers,alias:lt"`

	Name           string `bun:"name,pk"`
	TierOrder      int    `bun:"tier_order,notnull,unique"`
	PromotePercent int    `bun:"promote_percent,notnull"`
	DemotePercent  int    `bun:"demote_percent,notnull"`
	MinRoomSize    int    `bun:"min_room_size,notnull"`
	MaxRoomSize    int    `bun:"max_room_size,notnull"`
}

// ToDomain converts a catalog row to the domain tier value.
func (t TierConfig) ToDomain() leaguedomain.Tier {
	return leaguedomain.Tier{
		Name:           leaguedomain.TierName(t.Name),
		Order:          t.TierOrder,
		PromotePercent: t.PromotePercent,
		DemotePercent:  t.DemotePercent,
		MinRoomSize:    t.MinRoomSize,
		MaxRoomSize:    t.MaxRoomSize,
	}
}
