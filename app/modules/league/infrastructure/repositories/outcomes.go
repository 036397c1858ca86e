package leaguedb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"
)

// InsertOutcome appends one weekly result. The ledger is insert-or-ignore
// on (user_id, epoch_key): a replayed write reports inserted=false and the
// caller treats that as success. No update or delete exists for outcomes.
func (r *Impl) InsertOutcome(ctx context.Context, db bun.IDB, outcome *WeeklyOutcome) (bool, error) {
	if db == nil {
		db = r.db
	}
	res, err := db.NewInsert().
		Model(outcome).
		On("CONFLICT (user_id, epoch_key) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("leaguedb.InsertOutcome: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("leaguedb.InsertOutcome: rows affected: %w", err)
	}
	return affected == 1, nil
}

// GetOutcome retrieves a single (user, epoch) outcome, nil when none.
func (r *Impl) GetOutcome(ctx context.Context, db bun.IDB, userID string, epochKey string) (*WeeklyOutcome, error) {
	if db == nil {
		db = r.db
	}
	outcome := new(WeeklyOutcome)
	err := db.NewSelect().
		Model(outcome).
		Where("user_id = ?", userID).
		Where("epoch_key = ?", epochKey).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("leaguedb.GetOutcome: %w", err)
	}
	return outcome, nil
}

// OutcomeHistory lists a user's weekly results, newest epoch first.
func (r *Impl) OutcomeHistory(ctx context.Context, db bun.IDB, userID string, limit int) ([]WeeklyOutcome, error) {
	if db == nil {
		db = r.db
	}
	var outcomes []WeeklyOutcome
	q := db.NewSelect().
		Model(&outcomes).
		Where("user_id = ?", userID).
		Order("epoch_key DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("leaguedb.OutcomeHistory: %w", err)
	}
	return outcomes, nil
}
