package leaguedb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Impl is the league repository backed by bun. Methods take a bun.IDB so
// the service layer can run several of them inside one transaction; a nil
// db falls back to the root connection.
type Impl struct {
	db *bun.DB
}

// NewRepository creates the league repository.
func NewRepository(db *bun.DB) *Impl {
	return &Impl{db: db}
}

// DB exposes the root connection for transaction management.
func (r *Impl) DB() *bun.DB {
	return r.db
}

// CreateRoom inserts a new room. The caller is expected to have snapshotted
// tier bounds onto it already.
func (r *Impl) CreateRoom(ctx context.Context, db bun.IDB, room *Room) error {
	if db == nil {
		db = r.db
	}
	if _, err := db.NewInsert().Model(room).Exec(ctx); err != nil {
		return fmt.Errorf("leaguedb.CreateRoom: %w", err)
	}
	return nil
}

// GetRoom retrieves one room by ID, or ErrNotFound.
func (r *Impl) GetRoom(ctx context.Context, db bun.IDB, roomID uuid.UUID) (*Room, error) {
	if db == nil {
		db = r.db
	}
	room := new(Room)
	err := db.NewSelect().Model(room).Where("id = ?", roomID).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("leaguedb.GetRoom: %w", err)
	}
	return room, nil
}

// FindJoinableRooms lists open rooms for a (tier, epoch) with spare
// capacity, oldest first so earlier rooms fill toward their minimum size
// before new ones are opened.
func (r *Impl) FindJoinableRooms(ctx context.Context, db bun.IDB, tierName string, epochKey string, limit int) ([]Room, error) {
	if db == nil {
		db = r.db
	}
	var rooms []Room
	q := db.NewSelect().
		Model(&rooms).
		Where("tier_name = ?", tierName).
		Where("epoch_key = ?", epochKey).
		Where("is_processed = false").
		Where("member_count < max_size").
		Order("created_at ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("leaguedb.FindJoinableRooms: %w", err)
	}
	return rooms, nil
}

// TryAddMember claims one seat in the room with a single conditional
// update: the increment only lands while the room is open and below its
// snapshotted capacity. Returns false when the seat was lost to a
// concurrent joiner or the room filled; the caller retries elsewhere.
// This is the atomic check-and-increment the capacity invariant rests on.
func (r *Impl) TryAddMember(ctx context.Context, db bun.IDB, roomID uuid.UUID) (bool, error) {
	if db == nil {
		db = r.db
	}
	res, err := db.NewUpdate().
		Model((*Room)(nil)).
		Set("member_count = member_count + 1").
		Where("id = ?", roomID).
		Where("is_processed = false").
		Where("member_count < max_size").
		Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("leaguedb.TryAddMember: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("leaguedb.TryAddMember: rows affected: %w", err)
	}
	return affected == 1, nil
}

// UnprocessedRooms lists the rooms of an epoch still awaiting finalization.
func (r *Impl) UnprocessedRooms(ctx context.Context, db bun.IDB, epochKey string) ([]Room, error) {
	if db == nil {
		db = r.db
	}
	var rooms []Room
	err := db.NewSelect().
		Model(&rooms).
		Where("epoch_key = ?", epochKey).
		Where("is_processed = false").
		Order("created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("leaguedb.UnprocessedRooms: %w", err)
	}
	return rooms, nil
}

// MarkRoomProcessed flips a room open -> processed. The transition happens
// at most once; a replay that finds the flag already set reports
// ErrNoRowsAffected so the caller can treat the room as done.
func (r *Impl) MarkRoomProcessed(ctx context.Context, db bun.IDB, roomID uuid.UUID, processedAt time.Time) error {
	if db == nil {
		db = r.db
	}
	res, err := db.NewUpdate().
		Model((*Room)(nil)).
		Set("is_processed = true").
		Set("processed_at = ?", processedAt).
		Where("id = ?", roomID).
		Where("is_processed = false").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("leaguedb.MarkRoomProcessed: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("leaguedb.MarkRoomProcessed: rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNoRowsAffected
	}
	return nil
}

// LatestEpochKey returns the newest epoch key any room exists for, or ""
// when no rooms exist yet. Epoch keys sort lexicographically in time order.
func (r *Impl) LatestEpochKey(ctx context.Context, db bun.IDB) (string, error) {
	if db == nil {
		db = r.db
	}
	var key string
	err := db.NewSelect().
		Model((*Room)(nil)).
		ColumnExpr("COALESCE(MAX(epoch_key), '')").
		Scan(ctx, &key)
	if err != nil {
		return "", fmt.Errorf("leaguedb.LatestEpochKey: %w", err)
	}
	return key, nil
}
