package userservice

import (
	"context"
	"fmt"
	"log/slog"

	leaguedomain "github.com/stridelabs/stride-backend/app/modules/league/domain"
	userdb "github.com/stridelabs/stride-backend/app/modules/user/infrastructure/repositories"
)

// UserService owns the fitness profile aggregate.
type UserService struct {
	repo    userdb.Repository
	catalog *leaguedomain.Catalog
	logger  *slog.Logger
}

func NewUserService(repo userdb.Repository, catalog *leaguedomain.Catalog, logger *slog.Logger) *UserService {
	return &UserService{
		repo:    repo,
		catalog: catalog,
		logger:  logger,
	}
}

var _ Service = (*UserService)(nil)

func (s *UserService) GetUser(ctx context.Context, userID string) (*userdb.User, error) {
	return s.repo.GetUser(ctx, nil, userID)
}

// RegisterUser creates a profile starting in the bottom tier. An empty
// timezone keeps the column default.
func (s *UserService) RegisterUser(ctx context.Context, userID string, displayName string, timezone string) (*userdb.User, error) {
	user := &userdb.User{
		ID:          userID,
		DisplayName: displayName,
		CurrentTier: string(s.catalog.Lowest().Name),
	}
	if timezone != "" {
		user.Timezone = timezone
	}
	if err := s.repo.CreateUser(ctx, nil, user); err != nil {
		return nil, fmt.Errorf("register user: %w", err)
	}
	s.logger.InfoContext(ctx, "user registered",
		slog.String("user_id", userID),
		slog.String("tier", user.CurrentTier),
	)
	return user, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, userID string, updates *userdb.UserUpdateFields) error {
	return s.repo.UpdateUser(ctx, nil, userID, updates)
}

// SetCurrentTier validates the target tier against the catalog and writes
// it to the profile. The league's finalize engine is the only caller.
func (s *UserService) SetCurrentTier(ctx context.Context, userID string, tierName string) error {
	if _, ok := s.catalog.ByName(leaguedomain.TierName(tierName)); !ok {
		return fmt.Errorf("%w: %s", leaguedomain.ErrUnknownTier, tierName)
	}
	if err := s.repo.SetCurrentTier(ctx, nil, userID, tierName); err != nil {
		return fmt.Errorf("set current tier: %w", err)
	}
	s.logger.InfoContext(ctx, "tier updated",
		slog.String("user_id", userID),
		slog.String("tier", tierName),
	)
	return nil
}
