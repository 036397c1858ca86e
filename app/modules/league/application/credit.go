package leagueservice

import (
	"context"
	"fmt"
	"log/slog"

	leaguedomain "github.com/stridelabs/stride-backend/app/modules/league/domain"
)

// CreditPoints adds delta to the caller's score in their current-epoch
// room. A user who never joined this epoch is silently skipped: activity
// ingestion keeps flowing whether or not the user opted into the league.
// Scores in already-processed rooms are frozen and also left untouched.
func (s *LeagueService) CreditPoints(ctx context.Context, userID leaguedomain.UserID, epochKey leaguedomain.EpochKey, delta leaguedomain.Points) error {
	return s.instrument(ctx, "credit_points", func(ctx context.Context) error {
		if delta <= 0 {
			return fmt.Errorf("%w: %d", leaguedomain.ErrInvalidDelta, delta)
		}

		applied, err := s.repo.AddPoints(ctx, nil, string(userID), string(epochKey), int64(delta))
		if err != nil {
			return fmt.Errorf("credit points: %w", err)
		}
		if !applied {
			s.logger.DebugContext(ctx, "points dropped, no open membership",
				slog.String("user_id", string(userID)),
				slog.String("epoch_key", string(epochKey)),
				slog.Int64("delta", int64(delta)),
			)
		}
		return nil
	})
}
