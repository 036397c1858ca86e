package userdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"
)

// Impl is the bun-backed user repository.
type Impl struct {
	db *bun.DB
}

func NewRepository(db *bun.DB) *Impl {
	return &Impl{db: db}
}

func (r *Impl) idb(db bun.IDB) bun.IDB {
	if db != nil {
		return db
	}
	return r.db
}

func (r *Impl) GetUser(ctx context.Context, db bun.IDB, userID string) (*User, error) {
	user := new(User)
	err := r.idb(db).NewSelect().
		Model(user).
		Where("u.id = ?", userID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("userdb.GetUser: %w", err)
	}
	return user, nil
}

func (r *Impl) CreateUser(ctx context.Context, db bun.IDB, user *User) error {
	_, err := r.idb(db).NewInsert().
		Model(user).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("userdb.CreateUser: %w", err)
	}
	return nil
}

func (r *Impl) UpdateUser(ctx context.Context, db bun.IDB, userID string, updates *UserUpdateFields) error {
	query := r.idb(db).NewUpdate().
		Model((*User)(nil)).
		Where("id = ?", userID).
		Set("updated_at = ?", time.Now())

	changed := false
	if updates.DisplayName != nil {
		query = query.Set("display_name = ?", *updates.DisplayName)
		changed = true
	}
	if updates.Timezone != nil {
		query = query.Set("timezone = ?", *updates.Timezone)
		changed = true
	}
	if !changed {
		return nil
	}

	res, err := query.Exec(ctx)
	if err != nil {
		return fmt.Errorf("userdb.UpdateUser: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("userdb.UpdateUser: rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// SetCurrentTier moves the user's ladder position. Called by the league
// finalize engine after each weekly settlement.
func (r *Impl) SetCurrentTier(ctx context.Context, db bun.IDB, userID string, tierName string) error {
	res, err := r.idb(db).NewUpdate().
		Model((*User)(nil)).
		Where("id = ?", userID).
		Set("current_tier = ?", tierName).
		Set("updated_at = ?", time.Now()).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("userdb.SetCurrentTier: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("userdb.SetCurrentTier: rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
