package api

import (
	"context"
	"time"

	"github.com/google/uuid"

	leagueservice "github.com/stridelabs/stride-backend/app/modules/league/application"
	leaguedomain "github.com/stridelabs/stride-backend/app/modules/league/domain"
	leaguequeue "github.com/stridelabs/stride-backend/app/modules/league/infrastructure/queue"
	userservice "github.com/stridelabs/stride-backend/app/modules/user/application"
	userdb "github.com/stridelabs/stride-backend/app/modules/user/infrastructure/repositories"
)

type fakeLeagueService struct {
	JoinEpochFunc       func(ctx context.Context, userID leaguedomain.UserID, tierName leaguedomain.TierName, epochKey leaguedomain.EpochKey) (leagueservice.JoinResult, error)
	CreditPointsFunc    func(ctx context.Context, userID leaguedomain.UserID, epochKey leaguedomain.EpochKey, delta leaguedomain.Points) error
	FinalizeEpochFunc   func(ctx context.Context, epochKey leaguedomain.EpochKey) (leagueservice.FinalizeSummary, error)
	CurrentStandingFunc func(ctx context.Context, userID leaguedomain.UserID) (*leagueservice.Standing, error)
	RoomLeaderboardFunc func(ctx context.Context, roomID uuid.UUID) ([]leagueservice.LeaderboardEntry, error)
	OutcomeHistoryFunc  func(ctx context.Context, userID leaguedomain.UserID, limit int) ([]leagueservice.OutcomeRecord, error)
}

func (f *fakeLeagueService) JoinEpoch(ctx context.Context, userID leaguedomain.UserID, tierName leaguedomain.TierName, epochKey leaguedomain.EpochKey) (leagueservice.JoinResult, error) {
	if f.JoinEpochFunc != nil {
		return f.JoinEpochFunc(ctx, userID, tierName, epochKey)
	}
	return leagueservice.JoinResult{RoomID: uuid.New(), EpochKey: epochKey, TierName: tierName}, nil
}

func (f *fakeLeagueService) CreditPoints(ctx context.Context, userID leaguedomain.UserID, epochKey leaguedomain.EpochKey, delta leaguedomain.Points) error {
	if f.CreditPointsFunc != nil {
		return f.CreditPointsFunc(ctx, userID, epochKey, delta)
	}
	return nil
}

func (f *fakeLeagueService) FinalizeEpoch(ctx context.Context, epochKey leaguedomain.EpochKey) (leagueservice.FinalizeSummary, error) {
	if f.FinalizeEpochFunc != nil {
		return f.FinalizeEpochFunc(ctx, epochKey)
	}
	return leagueservice.FinalizeSummary{EpochKey: epochKey}, nil
}

func (f *fakeLeagueService) CurrentEpochKey() leaguedomain.EpochKey {
	return leaguedomain.KeyFor(time.Date(2025, 8, 20, 10, 0, 0, 0, time.UTC), time.UTC)
}

func (f *fakeLeagueService) CurrentStanding(ctx context.Context, userID leaguedomain.UserID) (*leagueservice.Standing, error) {
	if f.CurrentStandingFunc != nil {
		return f.CurrentStandingFunc(ctx, userID)
	}
	return nil, nil
}

func (f *fakeLeagueService) RoomLeaderboard(ctx context.Context, roomID uuid.UUID) ([]leagueservice.LeaderboardEntry, error) {
	if f.RoomLeaderboardFunc != nil {
		return f.RoomLeaderboardFunc(ctx, roomID)
	}
	return nil, nil
}

func (f *fakeLeagueService) OutcomeHistory(ctx context.Context, userID leaguedomain.UserID, limit int) ([]leagueservice.OutcomeRecord, error) {
	if f.OutcomeHistoryFunc != nil {
		return f.OutcomeHistoryFunc(ctx, userID, limit)
	}
	return nil, nil
}

func (f *fakeLeagueService) ListTiers(ctx context.Context) ([]leaguedomain.Tier, error) {
	return leaguedomain.DefaultTiers(), nil
}

var _ leagueservice.Service = (*fakeLeagueService)(nil)

type fakeUserService struct {
	GetUserFunc        func(ctx context.Context, userID string) (*userdb.User, error)
	RegisterUserFunc   func(ctx context.Context, userID, displayName, timezone string) (*userdb.User, error)
	UpdateProfileFunc  func(ctx context.Context, userID string, updates *userdb.UserUpdateFields) error
	SetCurrentTierFunc func(ctx context.Context, userID, tierName string) error
}

func (f *fakeUserService) GetUser(ctx context.Context, userID string) (*userdb.User, error) {
	if f.GetUserFunc != nil {
		return f.GetUserFunc(ctx, userID)
	}
	return nil, userdb.ErrNotFound
}

func (f *fakeUserService) RegisterUser(ctx context.Context, userID, displayName, timezone string) (*userdb.User, error) {
	if f.RegisterUserFunc != nil {
		return f.RegisterUserFunc(ctx, userID, displayName, timezone)
	}
	return &userdb.User{ID: userID, DisplayName: displayName, CurrentTier: "Isinma"}, nil
}

func (f *fakeUserService) UpdateProfile(ctx context.Context, userID string, updates *userdb.UserUpdateFields) error {
	if f.UpdateProfileFunc != nil {
		return f.UpdateProfileFunc(ctx, userID, updates)
	}
	return nil
}

func (f *fakeUserService) SetCurrentTier(ctx context.Context, userID, tierName string) error {
	if f.SetCurrentTierFunc != nil {
		return f.SetCurrentTierFunc(ctx, userID, tierName)
	}
	return nil
}

var _ userservice.Service = (*fakeUserService)(nil)

type fakeQueueService struct {
	ScheduleRolloverFunc func(ctx context.Context, epochKey leaguedomain.EpochKey) error
}

func (f *fakeQueueService) ScheduleRollover(ctx context.Context, epochKey leaguedomain.EpochKey) error {
	if f.ScheduleRolloverFunc != nil {
		return f.ScheduleRolloverFunc(ctx, epochKey)
	}
	return nil
}

func (f *fakeQueueService) GetScheduledJobs(ctx context.Context) ([]leaguequeue.JobInfo, error) {
	return nil, nil
}

func (f *fakeQueueService) HealthCheck(ctx context.Context) error { return nil }
func (f *fakeQueueService) Start(ctx context.Context) error       { return nil }
func (f *fakeQueueService) Stop(ctx context.Context) error        { return nil }

var _ leaguequeue.QueueService = (*fakeQueueService)(nil)
