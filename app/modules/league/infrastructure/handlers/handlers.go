package leaguehandlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill/message"

	leagueservice "github.com/stridelabs/stride-backend/app/modules/league/application"
	leaguedomain "github.com/stridelabs/stride-backend/app/modules/league/domain"
	leagueevents "github.com/stridelabs/stride-backend/app/modules/league/events"
)

// LeagueHandlers consumes activity events and feeds the score accumulator.
type LeagueHandlers struct {
	service leagueservice.Service
	logger  *slog.Logger
}

// NewHandlers creates the league event handlers.
func NewHandlers(service leagueservice.Service, logger *slog.Logger) Handlers {
	return &LeagueHandlers{
		service: service,
		logger:  logger,
	}
}

// HandlePointsEarned credits a points delta from any activity source
// (steps, duels, missions) to the user's membership. Malformed payloads
// and invalid deltas are acked and dropped: redelivering them can never
// succeed, and one bad producer must not wedge the stream.
func (h *LeagueHandlers) HandlePointsEarned(ctx context.Context, msg *message.Message) error {
	var payload leagueevents.PointsEarnedPayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		h.logger.ErrorContext(ctx, "dropping malformed points payload",
			slog.String("message_id", msg.UUID),
			slog.Any("error", err),
		)
		msg.Ack()
		return nil
	}

	epochKey := leaguedomain.EpochKey(payload.EpochKey)
	if payload.EpochKey == "" {
		epochKey = h.service.CurrentEpochKey()
	}

	err := h.service.CreditPoints(ctx, leaguedomain.UserID(payload.UserID), epochKey, leaguedomain.Points(payload.Delta))
	if err != nil {
		if errors.Is(err, leaguedomain.ErrInvalidDelta) {
			h.logger.WarnContext(ctx, "dropping non-positive points delta",
				slog.String("message_id", msg.UUID),
				slog.String("user_id", payload.UserID),
				slog.Int64("delta", payload.Delta),
			)
			msg.Ack()
			return nil
		}
		// Transient failure: nack via error so the subscriber redelivers.
		return fmt.Errorf("credit points for %s: %w", payload.UserID, err)
	}

	msg.Ack()
	return nil
}
