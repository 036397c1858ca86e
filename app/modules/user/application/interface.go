package userservice

import (
	"context"

	userdb "github.com/stridelabs/stride-backend/app/modules/user/infrastructure/repositories"
)

// Service is the user module's contract toward transports and the league
// engine. SetCurrentTier satisfies the league's tier-mutation dependency.
type Service interface {
	GetUser(ctx context.Context, userID string) (*userdb.User, error)
	RegisterUser(ctx context.Context, userID string, displayName string, timezone string) (*userdb.User, error)
	UpdateProfile(ctx context.Context, userID string, updates *userdb.UserUpdateFields) error
	SetCurrentTier(ctx context.Context, userID string, tierName string) error
}
