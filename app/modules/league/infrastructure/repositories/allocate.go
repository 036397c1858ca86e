package leaguedb

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/uptrace/bun"
)

// Composite operations that must be atomic run on the root connection with
// their own transaction; the single-call mutations elsewhere in this
// package stay single statements.

// AddMemberToRoom claims a seat and inserts the membership in one
// transaction. Returns false when the capacity race was lost (no seat, no
// membership, nothing to undo). A duplicate-membership violation rolls the
// seat claim back and surfaces ErrDuplicateMember so the caller can fall
// into the idempotent-join path.
func (r *Impl) AddMemberToRoom(ctx context.Context, member *RoomMember) (bool, error) {
	var claimed bool
	err := r.db.RunInTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted}, func(ctx context.Context, tx bun.Tx) error {
		ok, err := r.TryAddMember(ctx, tx, member.RoomID)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		if err := r.InsertMember(ctx, tx, member); err != nil {
			// Rolls back the seat claim too.
			return err
		}
		claimed = true
		return nil
	})
	if err != nil {
		if err == ErrDuplicateMember {
			return false, ErrDuplicateMember
		}
		return false, fmt.Errorf("leaguedb.AddMemberToRoom: %w", err)
	}
	return claimed, nil
}

// CreateRoomWithMember opens a brand-new room already holding its first
// member, in one transaction.
func (r *Impl) CreateRoomWithMember(ctx context.Context, room *Room, member *RoomMember) error {
	err := r.db.RunInTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted}, func(ctx context.Context, tx bun.Tx) error {
		room.MemberCount = 1
		if err := r.CreateRoom(ctx, tx, room); err != nil {
			return err
		}
		member.RoomID = room.ID
		return r.InsertMember(ctx, tx, member)
	})
	if err != nil {
		if err == ErrDuplicateMember {
			return ErrDuplicateMember
		}
		return fmt.Errorf("leaguedb.CreateRoomWithMember: %w", err)
	}
	return nil
}

// RecordOutcome writes one member's weekly result and, only when the
// ledger row is new, stamps the rank snapshot onto the membership. A
// replay that finds the outcome already written changes nothing and
// reports inserted=false.
func (r *Impl) RecordOutcome(ctx context.Context, outcome *WeeklyOutcome, rank int) (bool, error) {
	var inserted bool
	err := r.db.RunInTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted}, func(ctx context.Context, tx bun.Tx) error {
		var err error
		inserted, err = r.InsertOutcome(ctx, tx, outcome)
		if err != nil {
			return err
		}
		if !inserted {
			return nil
		}
		return r.SetRankSnapshot(ctx, tx, outcome.RoomID, outcome.UserID, rank)
	})
	if err != nil {
		return false, fmt.Errorf("leaguedb.RecordOutcome: %w", err)
	}
	return inserted, nil
}
