package leaguequeue

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/riverqueue/river"

	leagueservice "github.com/stridelabs/stride-backend/app/modules/league/application"
	leaguedomain "github.com/stridelabs/stride-backend/app/modules/league/domain"
)

// EpochRolloverWorker runs the finalize engine for one closed epoch.
// Finalization is replayable end to end, so River's default retry policy
// is safe: a partially-settled epoch just continues where it stopped.
type EpochRolloverWorker struct {
	river.WorkerDefaults[EpochRolloverJob]

	service leagueservice.Service
	logger  *slog.Logger
}

func NewEpochRolloverWorker(service leagueservice.Service, logger *slog.Logger) *EpochRolloverWorker {
	return &EpochRolloverWorker{service: service, logger: logger}
}

func (w *EpochRolloverWorker) Work(ctx context.Context, job *river.Job[EpochRolloverJob]) error {
	logger := w.logger.With(
		slog.String("job_kind", job.Kind),
		slog.Int64("job_id", job.ID),
		slog.String("epoch_key", job.Args.EpochKey),
	)
	logger.InfoContext(ctx, "running epoch rollover")

	summary, err := w.service.FinalizeEpoch(ctx, leaguedomain.EpochKey(job.Args.EpochKey))
	if err != nil {
		logger.ErrorContext(ctx, "epoch rollover failed", slog.Any("error", err))
		return fmt.Errorf("finalize epoch %s: %w", job.Args.EpochKey, err)
	}

	logger.InfoContext(ctx, "epoch rollover complete",
		slog.Int("rooms_processed", summary.RoomsProcessed),
		slog.Int("promoted", summary.Promoted),
		slog.Int("demoted", summary.Demoted),
		slog.Int("stayed", summary.Stayed),
	)
	return nil
}
