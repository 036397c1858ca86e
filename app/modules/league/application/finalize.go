package leagueservice

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"

	leaguedomain "github.com/stridelabs/stride-backend/app/modules/league/domain"
	leagueevents "github.com/stridelabs/stride-backend/app/modules/league/events"
	leaguedb "github.com/stridelabs/stride-backend/app/modules/league/infrastructure/repositories"
)

// FinalizeEpoch settles every still-open room of a closed epoch: ranks the
// members, writes promotion/demotion/stay outcomes to the ledger, moves
// each user's current tier, and marks the room processed.
//
// The whole run is replayable. Outcomes land insert-or-ignore on the
// (user, epoch) ledger key and the room flips to processed only after all
// its outcomes are durable, so a crash mid-run resumes cleanly and a full
// replay is a no-op. Rooms settle independently; one bad room does not
// block the rest.
func (s *LeagueService) FinalizeEpoch(ctx context.Context, epochKey leaguedomain.EpochKey) (FinalizeSummary, error) {
	summary := FinalizeSummary{EpochKey: epochKey}

	err := s.instrument(ctx, "finalize_epoch", func(ctx context.Context) error {
		logger := s.logger.With(
			slog.String("operation", "finalize_epoch"),
			slog.String("epoch_key", string(epochKey)),
		)

		// Never settle a week that is still (or not yet) running.
		if !epochKey.Before(s.CurrentEpochKey()) {
			return fmt.Errorf("%w: epoch %s has not closed yet", leaguedomain.ErrStaleEpoch, epochKey)
		}

		rooms, err := s.repo.UnprocessedRooms(ctx, nil, string(epochKey))
		if err != nil {
			return fmt.Errorf("list unprocessed rooms: %w", err)
		}
		if len(rooms) == 0 {
			logger.InfoContext(ctx, "nothing to finalize")
			return nil
		}

		for i := range rooms {
			if err := s.finalizeRoom(ctx, logger, &rooms[i], &summary); err != nil {
				summary.RoomsFailed++
				logger.ErrorContext(ctx, "room finalization failed",
					slog.String("room_id", rooms[i].ID.String()),
					slog.Any("error", err),
				)
				continue
			}
			summary.RoomsProcessed++
		}

		s.metrics.RecordFinalizeOutcomes(ctx, string(epochKey), summary.Promoted, summary.Demoted, summary.Stayed)
		s.announceFinalize(ctx, logger, summary)

		logger.InfoContext(ctx, "finalize run complete",
			slog.Int("rooms_processed", summary.RoomsProcessed),
			slog.Int("rooms_failed", summary.RoomsFailed),
			slog.Int("promoted", summary.Promoted),
			slog.Int("demoted", summary.Demoted),
			slog.Int("stayed", summary.Stayed),
		)

		if summary.RoomsFailed > 0 {
			return fmt.Errorf("finalize epoch %s: %d of %d rooms failed", epochKey, summary.RoomsFailed, len(rooms))
		}
		return nil
	})

	return summary, err
}

// finalizeRoom settles a single room. Outcome counters only move for rows
// newly written in this run, so replay totals stay honest.
func (s *LeagueService) finalizeRoom(ctx context.Context, logger *slog.Logger, room *leaguedb.Room, summary *FinalizeSummary) error {
	tier, ok := s.catalog.ByName(leaguedomain.TierName(room.TierName))
	if !ok {
		return fmt.Errorf("room %s references unknown tier %q", room.ID, room.TierName)
	}

	members, err := s.repo.ListRoomMembersRanked(ctx, nil, room.ID)
	if err != nil {
		return fmt.Errorf("list members: %w", err)
	}

	scores := make([]leaguedomain.MemberScore, len(members))
	for i, m := range members {
		scores[i] = leaguedomain.MemberScore{
			UserID:   leaguedomain.UserID(m.UserID),
			Points:   leaguedomain.Points(m.Points),
			JoinedAt: m.JoinedAt,
		}
	}

	outcomes := leaguedomain.ComputeOutcomes(scores, tier, s.catalog)

	for _, oc := range outcomes {
		row := &leaguedb.WeeklyOutcome{
			UserID:     string(oc.UserID),
			EpochKey:   room.EpochKey,
			RoomID:     room.ID,
			Points:     int64(oc.Points),
			RankInRoom: oc.Rank,
			TierName:   room.TierName,
			Result:     string(oc.Result),
		}
		inserted, err := s.repo.RecordOutcome(ctx, row, oc.Rank)
		if err != nil {
			return fmt.Errorf("record outcome for %s: %w", oc.UserID, err)
		}
		if !inserted {
			continue
		}

		switch oc.Result {
		case leaguedomain.ResultPromoted:
			summary.Promoted++
		case leaguedomain.ResultDemoted:
			summary.Demoted++
		default:
			summary.Stayed++
		}

		s.applyTierMove(ctx, logger, oc, tier)
	}

	if err := s.repo.MarkRoomProcessed(ctx, nil, room.ID, s.clock.Now()); err != nil {
		return fmt.Errorf("mark processed: %w", err)
	}
	return nil
}

// applyTierMove pushes the user's new tier to the user module. A failure
// here is logged, not fatal: the ledger row is the source of truth and a
// repair job can re-derive the tier from it.
func (s *LeagueService) applyTierMove(ctx context.Context, logger *slog.Logger, oc leaguedomain.RankedOutcome, tier leaguedomain.Tier) {
	if s.tiers == nil {
		return
	}

	var next leaguedomain.Tier
	switch oc.Result {
	case leaguedomain.ResultPromoted:
		next = s.catalog.Shift(tier, 1)
	case leaguedomain.ResultDemoted:
		next = s.catalog.Shift(tier, -1)
	default:
		return
	}

	if err := s.tiers.SetCurrentTier(ctx, string(oc.UserID), string(next.Name)); err != nil {
		logger.ErrorContext(ctx, "tier move failed",
			slog.String("user_id", string(oc.UserID)),
			slog.String("new_tier", string(next.Name)),
			slog.Any("error", err),
		)
	}
}

// announceFinalize publishes the end-of-week event for notification fan-out.
func (s *LeagueService) announceFinalize(ctx context.Context, logger *slog.Logger, summary FinalizeSummary) {
	if s.eventBus == nil {
		return
	}
	payload, err := json.Marshal(leagueevents.EpochFinalizedPayload{
		EpochKey:       string(summary.EpochKey),
		RoomsProcessed: summary.RoomsProcessed,
		Promoted:       summary.Promoted,
		Demoted:        summary.Demoted,
		Stayed:         summary.Stayed,
		FinalizedAt:    s.clock.Now(),
	})
	if err != nil {
		logger.ErrorContext(ctx, "marshal epoch finalized payload", slog.Any("error", err))
		return
	}
	msg := message.NewMessage(watermill.NewUUID(), payload)
	if err := s.eventBus.Publish(ctx, leagueevents.EpochFinalized, msg); err != nil {
		logger.ErrorContext(ctx, "publish epoch finalized", slog.Any("error", err))
	}
}
