package userdb

import (
	"context"

	"github.com/uptrace/bun"
)

// Repository is the persistence contract of the user module. Methods take
// a bun.IDB so callers can pass a transaction; nil uses the root
// connection.
type Repository interface {
	GetUser(ctx context.Context, db bun.IDB, userID string) (*User, error)
	CreateUser(ctx context.Context, db bun.IDB, user *User) error
	UpdateUser(ctx context.Context, db bun.IDB, userID string, updates *UserUpdateFields) error
	SetCurrentTier(ctx context.Context, db bun.IDB, userID string, tierName string) error
}

var _ Repository = (*Impl)(nil)
