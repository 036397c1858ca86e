package leaguedb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// InsertMember creates a membership with zero points. A hit on the
// one-membership-per-epoch unique index comes back as ErrDuplicateMember so
// the allocator can fall into its idempotent path.
func (r *Impl) InsertMember(ctx context.Context, db bun.IDB, member *RoomMember) error {
	if db == nil {
		db = r.db
	}
	if _, err := db.NewInsert().Model(member).Exec(ctx); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateMember
		}
		return fmt.Errorf("leaguedb.InsertMember: %w", err)
	}
	return nil
}

// GetMembership retrieves a user's membership for an epoch, nil when none.
func (r *Impl) GetMembership(ctx context.Context, db bun.IDB, userID string, epochKey string) (*RoomMember, error) {
	if db == nil {
		db = r.db
	}
	member := new(RoomMember)
	err := db.NewSelect().
		Model(member).
		Where("user_id = ?", userID).
		Where("epoch_key = ?", epochKey).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("leaguedb.GetMembership: %w", err)
	}
	return member, nil
}

// AddPoints accumulates delta onto a membership as a single atomic add, so
// concurrent credits never lose updates. Returns false when the user has no
// membership for the epoch (the credit is dropped by contract, not an
// error) or the room is already processed.
func (r *Impl) AddPoints(ctx context.Context, db bun.IDB, userID string, epochKey string, delta int64) (bool, error) {
	if db == nil {
		db = r.db
	}
	res, err := db.NewUpdate().
		Model((*RoomMember)(nil)).
		Set("points = points + ?", delta).
		Where("user_id = ?", userID).
		Where("epoch_key = ?", epochKey).
		Where("EXISTS (SELECT 1 FROM league_rooms lr WHERE lr.id = lm.room_id AND lr.is_processed = false)").
		Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("leaguedb.AddPoints: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("leaguedb.AddPoints: rows affected: %w", err)
	}
	return affected == 1, nil
}

// ListRoomMembersRanked loads a room's memberships in final ranking order:
// points descending, earlier joiner first on ties, user ID as the last
// deterministic tie-break. The order is a pure function of immutable inputs
// once the epoch closes, so re-running finalization reproduces it.
func (r *Impl) ListRoomMembersRanked(ctx context.Context, db bun.IDB, roomID uuid.UUID) ([]RoomMember, error) {
	if db == nil {
		db = r.db
	}
	var members []RoomMember
	err := db.NewSelect().
		Model(&members).
		Where("room_id = ?", roomID).
		Order("points DESC", "joined_at ASC", "user_id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("leaguedb.ListRoomMembersRanked: %w", err)
	}
	return members, nil
}

// SetRankSnapshot stamps the finalized rank onto a membership.
func (r *Impl) SetRankSnapshot(ctx context.Context, db bun.IDB, roomID uuid.UUID, userID string, rank int) error {
	if db == nil {
		db = r.db
	}
	_, err := db.NewUpdate().
		Model((*RoomMember)(nil)).
		Set("rank_snapshot = ?", rank).
		Where("room_id = ?", roomID).
		Where("user_id = ?", userID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("leaguedb.SetRankSnapshot: %w", err)
	}
	return nil
}
