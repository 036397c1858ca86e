package leagueservice

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	leaguedomain "github.com/stridelabs/stride-backend/app/modules/league/domain"
)

const defaultHistoryLimit = 12

// CurrentStanding returns the user's live position in this epoch's room,
// or nil when they have not joined.
func (s *LeagueService) CurrentStanding(ctx context.Context, userID leaguedomain.UserID) (*Standing, error) {
	var standing *Standing

	err := s.instrument(ctx, "current_standing", func(ctx context.Context) error {
		epochKey := s.CurrentEpochKey()

		membership, err := s.repo.GetMembership(ctx, nil, string(userID), string(epochKey))
		if err != nil {
			return fmt.Errorf("lookup membership: %w", err)
		}
		if membership == nil {
			return nil
		}

		room, err := s.repo.GetRoom(ctx, nil, membership.RoomID)
		if err != nil {
			return fmt.Errorf("load room: %w", err)
		}

		members, err := s.repo.ListRoomMembersRanked(ctx, nil, membership.RoomID)
		if err != nil {
			return fmt.Errorf("list room members: %w", err)
		}

		rank := 0
		for i := range members {
			if members[i].UserID == string(userID) {
				rank = i + 1
				break
			}
		}

		standing = &Standing{
			RoomID:   membership.RoomID,
			EpochKey: epochKey,
			TierName: leaguedomain.TierName(room.TierName),
			Points:   leaguedomain.Points(membership.Points),
			Rank:     rank,
			RoomSize: len(members),
		}
		return nil
	})

	return standing, err
}

// RoomLeaderboard returns a room's members in live rank order.
func (s *LeagueService) RoomLeaderboard(ctx context.Context, roomID uuid.UUID) ([]LeaderboardEntry, error) {
	var entries []LeaderboardEntry

	err := s.instrument(ctx, "room_leaderboard", func(ctx context.Context) error {
		members, err := s.repo.ListRoomMembersRanked(ctx, nil, roomID)
		if err != nil {
			return fmt.Errorf("list room members: %w", err)
		}

		entries = make([]LeaderboardEntry, len(members))
		for i, m := range members {
			entries[i] = LeaderboardEntry{
				UserID:   leaguedomain.UserID(m.UserID),
				Points:   leaguedomain.Points(m.Points),
				Rank:     i + 1,
				JoinedAt: m.JoinedAt,
			}
		}
		return nil
	})

	return entries, err
}

// OutcomeHistory returns the user's most recent weekly results, newest
// first. limit <= 0 falls back to the default page size.
func (s *LeagueService) OutcomeHistory(ctx context.Context, userID leaguedomain.UserID, limit int) ([]OutcomeRecord, error) {
	var records []OutcomeRecord

	err := s.instrument(ctx, "outcome_history", func(ctx context.Context) error {
		if limit <= 0 {
			limit = defaultHistoryLimit
		}

		outcomes, err := s.repo.OutcomeHistory(ctx, nil, string(userID), limit)
		if err != nil {
			return fmt.Errorf("load outcome history: %w", err)
		}

		records = make([]OutcomeRecord, len(outcomes))
		for i, oc := range outcomes {
			records[i] = OutcomeRecord{
				EpochKey:   leaguedomain.EpochKey(oc.EpochKey),
				TierName:   leaguedomain.TierName(oc.TierName),
				Points:     leaguedomain.Points(oc.Points),
				RankInRoom: oc.RankInRoom,
				Result:     leaguedomain.Result(oc.Result),
				CreatedAt:  oc.CreatedAt,
			}
		}
		return nil
	})

	return records, err
}

// ListTiers returns the ladder configuration in ascending order.
func (s *LeagueService) ListTiers(ctx context.Context) ([]leaguedomain.Tier, error) {
	return s.catalog.Tiers(), nil
}
