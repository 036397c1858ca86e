package leaguehandlers

import (
	"context"
	"time"

	"github.com/google/uuid"

	leagueservice "github.com/stridelabs/stride-backend/app/modules/league/application"
	leaguedomain "github.com/stridelabs/stride-backend/app/modules/league/domain"
)

// FakeLeagueService is a programmable stub for leagueservice.Service.
type FakeLeagueService struct {
	trace []string

	JoinEpochFunc       func(ctx context.Context, userID leaguedomain.UserID, tierName leaguedomain.TierName, epochKey leaguedomain.EpochKey) (leagueservice.JoinResult, error)
	CreditPointsFunc    func(ctx context.Context, userID leaguedomain.UserID, epochKey leaguedomain.EpochKey, delta leaguedomain.Points) error
	FinalizeEpochFunc   func(ctx context.Context, epochKey leaguedomain.EpochKey) (leagueservice.FinalizeSummary, error)
	CurrentEpochKeyFunc func() leaguedomain.EpochKey
	CurrentStandingFunc func(ctx context.Context, userID leaguedomain.UserID) (*leagueservice.Standing, error)
	RoomLeaderboardFunc func(ctx context.Context, roomID uuid.UUID) ([]leagueservice.LeaderboardEntry, error)
	OutcomeHistoryFunc  func(ctx context.Context, userID leaguedomain.UserID, limit int) ([]leagueservice.OutcomeRecord, error)
	ListTiersFunc       func(ctx context.Context) ([]leaguedomain.Tier, error)
}

func NewFakeLeagueService() *FakeLeagueService {
	return &FakeLeagueService{trace: []string{}}
}

func (f *FakeLeagueService) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

func (f *FakeLeagueService) record(step string) {
	f.trace = append(f.trace, step)
}

func (f *FakeLeagueService) JoinEpoch(ctx context.Context, userID leaguedomain.UserID, tierName leaguedomain.TierName, epochKey leaguedomain.EpochKey) (leagueservice.JoinResult, error) {
	f.record("JoinEpoch")
	if f.JoinEpochFunc != nil {
		return f.JoinEpochFunc(ctx, userID, tierName, epochKey)
	}
	return leagueservice.JoinResult{}, nil
}

func (f *FakeLeagueService) CreditPoints(ctx context.Context, userID leaguedomain.UserID, epochKey leaguedomain.EpochKey, delta leaguedomain.Points) error {
	f.record("CreditPoints")
	if f.CreditPointsFunc != nil {
		return f.CreditPointsFunc(ctx, userID, epochKey, delta)
	}
	return nil
}

func (f *FakeLeagueService) FinalizeEpoch(ctx context.Context, epochKey leaguedomain.EpochKey) (leagueservice.FinalizeSummary, error) {
	f.record("FinalizeEpoch")
	if f.FinalizeEpochFunc != nil {
		return f.FinalizeEpochFunc(ctx, epochKey)
	}
	return leagueservice.FinalizeSummary{EpochKey: epochKey}, nil
}

func (f *FakeLeagueService) CurrentEpochKey() leaguedomain.EpochKey {
	f.record("CurrentEpochKey")
	if f.CurrentEpochKeyFunc != nil {
		return f.CurrentEpochKeyFunc()
	}
	return leaguedomain.KeyFor(time.Date(2025, 8, 20, 10, 0, 0, 0, time.UTC), time.UTC)
}

func (f *FakeLeagueService) CurrentStanding(ctx context.Context, userID leaguedomain.UserID) (*leagueservice.Standing, error) {
	f.record("CurrentStanding")
	if f.CurrentStandingFunc != nil {
		return f.CurrentStandingFunc(ctx, userID)
	}
	return nil, nil
}

func (f *FakeLeagueService) RoomLeaderboard(ctx context.Context, roomID uuid.UUID) ([]leagueservice.LeaderboardEntry, error) {
	f.record("RoomLeaderboard")
	if f.RoomLeaderboardFunc != nil {
		return f.RoomLeaderboardFunc(ctx, roomID)
	}
	return nil, nil
}

func (f *FakeLeagueService) OutcomeHistory(ctx context.Context, userID leaguedomain.UserID, limit int) ([]leagueservice.OutcomeRecord, error) {
	f.record("OutcomeHistory")
	if f.OutcomeHistoryFunc != nil {
		return f.OutcomeHistoryFunc(ctx, userID, limit)
	}
	return nil, nil
}

func (f *FakeLeagueService) ListTiers(ctx context.Context) ([]leaguedomain.Tier, error) {
	f.record("ListTiers")
	if f.ListTiersFunc != nil {
		return f.ListTiersFunc(ctx)
	}
	return leaguedomain.DefaultTiers(), nil
}

var _ leagueservice.Service = (*FakeLeagueService)(nil)
