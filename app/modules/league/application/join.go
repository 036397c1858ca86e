package leagueservice

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"

	leaguedomain "github.com/stridelabs/stride-backend/app/modules/league/domain"
	leagueevents "github.com/stridelabs/stride-backend/app/modules/league/events"
	leaguedb "github.com/stridelabs/stride-backend/app/modules/league/infrastructure/repositories"
)

// maxJoinAttempts bounds the capacity-race retry loop. Each attempt scans
// a fresh batch of candidate rooms, so losing this many races in a row
// means the tier/epoch is under heavy churn and we open a new room instead.
const maxJoinAttempts = 4

// joinableRoomBatch is how many candidate rooms one attempt considers.
const joinableRoomBatch = 5

// JoinEpoch places a user into a room for the given tier and epoch.
//
// The call is idempotent per (user, epoch): a retry after an ambiguous
// timeout returns the existing placement without touching counts. Capacity
// races between concurrent joiners are resolved by the repository's
// conditional seat claim; a losing attempt retries against other rooms and
// finally opens a new one.
func (s *LeagueService) JoinEpoch(ctx context.Context, userID leaguedomain.UserID, tierName leaguedomain.TierName, epochKey leaguedomain.EpochKey) (JoinResult, error) {
	var result JoinResult

	err := s.instrument(ctx, "join_epoch", func(ctx context.Context) error {
		logger := s.logger.With(
			slog.String("operation", "join_epoch"),
			slog.String("user_id", string(userID)),
			slog.String("tier", string(tierName)),
			slog.String("epoch_key", string(epochKey)),
		)

		tier, ok := s.catalog.ByName(tierName)
		if !ok {
			return leaguedomain.ErrUnknownTier
		}

		if epochKey.Before(s.CurrentEpochKey()) {
			return leaguedomain.ErrStaleEpoch
		}

		// Idempotent replay: the HTTP layer may retry after a timeout.
		existing, err := s.repo.GetMembership(ctx, nil, string(userID), string(epochKey))
		if err != nil {
			return fmt.Errorf("lookup existing membership: %w", err)
		}
		if existing != nil {
			result = JoinResult{RoomID: existing.RoomID, EpochKey: epochKey, TierName: tierName, AlreadyJoined: true}
			logger.InfoContext(ctx, "join replay, returning existing placement", slog.String("room_id", existing.RoomID.String()))
			return nil
		}

		member := &leaguedb.RoomMember{
			UserID:   string(userID),
			EpochKey: string(epochKey),
			JoinedAt: s.clock.Now(),
		}

		for attempt := 0; attempt < maxJoinAttempts; attempt++ {
			rooms, err := s.repo.FindJoinableRooms(ctx, nil, string(tierName), string(epochKey), joinableRoomBatch)
			if err != nil {
				return fmt.Errorf("scan joinable rooms: %w", err)
			}
			for i := range rooms {
				member.RoomID = rooms[i].ID
				claimed, err := s.repo.AddMemberToRoom(ctx, member)
				if errors.Is(err, leaguedb.ErrDuplicateMember) {
					return s.resolveDuplicateJoin(ctx, userID, tierName, epochKey, &result)
				}
				if err != nil {
					return fmt.Errorf("claim seat: %w", err)
				}
				if claimed {
					result = JoinResult{RoomID: rooms[i].ID, EpochKey: epochKey, TierName: tierName}
					s.announceJoin(ctx, logger, result, member)
					return nil
				}
				// Lost the capacity race, try the next candidate.
			}
			if len(rooms) == 0 {
				break
			}
			logger.DebugContext(ctx, "all candidate rooms contended, rescanning", slog.Int("attempt", attempt+1))
		}

		// No open room took us: start a new one with bounds snapshotted
		// from the catalog as of now.
		opensAt, closesAt, err := leaguedomain.EpochBounds(epochKey, s.loc)
		if err != nil {
			return fmt.Errorf("epoch bounds: %w", err)
		}
		room := &leaguedb.Room{
			EpochKey:  string(epochKey),
			TierName:  string(tierName),
			TierOrder: tier.Order,
			MinSize:   tier.MinRoomSize,
			MaxSize:   tier.MaxRoomSize,
			OpensAt:   opensAt,
			ClosesAt:  closesAt,
		}
		if err := s.repo.CreateRoomWithMember(ctx, room, member); err != nil {
			if errors.Is(err, leaguedb.ErrDuplicateMember) {
				return s.resolveDuplicateJoin(ctx, userID, tierName, epochKey, &result)
			}
			return fmt.Errorf("create room: %w", err)
		}
		result = JoinResult{RoomID: room.ID, EpochKey: epochKey, TierName: tierName}
		logger.InfoContext(ctx, "opened new room", slog.String("room_id", room.ID.String()))
		s.announceJoin(ctx, logger, result, member)
		return nil
	})

	return result, err
}

// resolveDuplicateJoin handles the race where another request for the same
// user inserted the membership first: re-read and return that placement.
func (s *LeagueService) resolveDuplicateJoin(ctx context.Context, userID leaguedomain.UserID, tierName leaguedomain.TierName, epochKey leaguedomain.EpochKey, result *JoinResult) error {
	existing, err := s.repo.GetMembership(ctx, nil, string(userID), string(epochKey))
	if err != nil {
		return fmt.Errorf("resolve duplicate join: %w", err)
	}
	if existing == nil {
		return fmt.Errorf("membership vanished after duplicate-join conflict for user %s", userID)
	}
	*result = JoinResult{RoomID: existing.RoomID, EpochKey: epochKey, TierName: tierName, AlreadyJoined: true}
	return nil
}

// announceJoin publishes the placement event. Join succeeds whether or not
// the announcement lands.
func (s *LeagueService) announceJoin(ctx context.Context, logger *slog.Logger, result JoinResult, member *leaguedb.RoomMember) {
	if s.eventBus == nil {
		return
	}
	payload, err := json.Marshal(leagueevents.MemberJoinedPayload{
		UserID:   member.UserID,
		EpochKey: member.EpochKey,
		RoomID:   result.RoomID.String(),
		TierName: string(result.TierName),
		JoinedAt: member.JoinedAt,
	})
	if err != nil {
		logger.ErrorContext(ctx, "marshal member joined payload", slog.Any("error", err))
		return
	}
	msg := message.NewMessage(watermill.NewUUID(), payload)
	if err := s.eventBus.Publish(ctx, leagueevents.MemberJoined, msg); err != nil {
		logger.ErrorContext(ctx, "publish member joined", slog.Any("error", err))
	}
}
