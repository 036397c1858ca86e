package userservice

import (
	"context"

	"github.com/uptrace/bun"

	userdb "github.com/stridelabs/stride-backend/app/modules/user/infrastructure/repositories"
)

// FakeUserRepository is a programmable stub for userdb.Repository.
type FakeUserRepository struct {
	trace []string

	GetUserFunc        func(ctx context.Context, db bun.IDB, userID string) (*userdb.User, error)
	CreateUserFunc     func(ctx context.Context, db bun.IDB, user *userdb.User) error
	UpdateUserFunc     func(ctx context.Context, db bun.IDB, userID string, updates *userdb.UserUpdateFields) error
	SetCurrentTierFunc func(ctx context.Context, db bun.IDB, userID string, tierName string) error
}

func NewFakeUserRepository() *FakeUserRepository {
	return &FakeUserRepository{trace: []string{}}
}

func (f *FakeUserRepository) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

func (f *FakeUserRepository) record(step string) {
	f.trace = append(f.trace, step)
}

func (f *FakeUserRepository) GetUser(ctx context.Context, db bun.IDB, userID string) (*userdb.User, error) {
	f.record("GetUser")
	if f.GetUserFunc != nil {
		return f.GetUserFunc(ctx, db, userID)
	}
	return nil, userdb.ErrNotFound
}

func (f *FakeUserRepository) CreateUser(ctx context.Context, db bun.IDB, user *userdb.User) error {
	f.record("CreateUser")
	if f.CreateUserFunc != nil {
		return f.CreateUserFunc(ctx, db, user)
	}
	return nil
}

func (f *FakeUserRepository) UpdateUser(ctx context.Context, db bun.IDB, userID string, updates *userdb.UserUpdateFields) error {
	f.record("UpdateUser")
	if f.UpdateUserFunc != nil {
		return f.UpdateUserFunc(ctx, db, userID, updates)
	}
	return nil
}

func (f *FakeUserRepository) SetCurrentTier(ctx context.Context, db bun.IDB, userID string, tierName string) error {
	f.record("SetCurrentTier")
	if f.SetCurrentTierFunc != nil {
		return f.SetCurrentTierFunc(ctx, db, userID, tierName)
	}
	return nil
}

var _ userdb.Repository = (*FakeUserRepository)(nil)
