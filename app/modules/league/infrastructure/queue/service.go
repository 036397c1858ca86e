package leaguequeue

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/uptrace/bun"

	leagueservice "github.com/stridelabs/stride-backend/app/modules/league/application"
	leaguedomain "github.com/stridelabs/stride-backend/app/modules/league/domain"
)

// rolloverCheckInterval is how often the periodic scheduler enqueues a
// rollover job for the previous epoch. The job is unique by epoch key, so
// running hourly only means a crashed or partial finalize gets retried
// within the hour, not that finalization runs repeatedly.
const rolloverCheckInterval = time.Hour

// Metrics mirrors the per-operation envelope used across services.
type Metrics interface {
	RecordOperationAttempt(ctx context.Context, operation, service string)
	RecordOperationSuccess(ctx context.Context, operation, service string)
	RecordOperationFailure(ctx context.Context, operation, service string)
	RecordOperationDuration(ctx context.Context, operation, service string, duration time.Duration)
}

// QueueService schedules and runs epoch rollover jobs.
type QueueService interface {
	// ScheduleRollover enqueues a finalize job for the given epoch.
	// Duplicate scheduling for the same epoch collapses into one job.
	ScheduleRollover(ctx context.Context, epochKey leaguedomain.EpochKey) error
	// GetScheduledJobs lists queued rollover jobs for debugging.
	GetScheduledJobs(ctx context.Context) ([]JobInfo, error)
	// HealthCheck verifies the queue service is reachable.
	HealthCheck(ctx context.Context) error
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

var _ QueueService = (*Service)(nil)

// Service runs the league's scheduled work on River.
type Service struct {
	client  *river.Client[pgx.Tx]
	pool    *pgxpool.Pool
	db      *bun.DB
	logger  *slog.Logger
	metrics Metrics
}

// NewService builds the River client with the rollover worker registered
// and an hourly periodic job that targets the most recently closed epoch.
func NewService(ctx context.Context, bunDB *bun.DB, logger *slog.Logger, dsn string, metrics Metrics, svc leagueservice.Service, loc *time.Location) (*Service, error) {
	ctxLogger := logger.With(
		slog.String("operation", "new_league_queue_service"),
		slog.String("component", "river_queue"),
	)

	start := time.Now()
	metrics.RecordOperationAttempt(ctx, "initialize_service", "river")

	// River requires pgx, not database/sql.
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		metrics.RecordOperationFailure(ctx, "initialize_service", "river")
		return nil, fmt.Errorf("failed to parse DSN: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		metrics.RecordOperationFailure(ctx, "initialize_service", "river")
		return nil, fmt.Errorf("failed to create pgx pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		metrics.RecordOperationFailure(ctx, "initialize_service", "river")
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	workers := river.NewWorkers()
	river.AddWorker(workers, NewEpochRolloverWorker(svc, ctxLogger))

	periodic := river.NewPeriodicJob(
		river.PeriodicInterval(rolloverCheckInterval),
		func() (river.JobArgs, *river.InsertOpts) {
			epochKey := leaguedomain.PreviousKey(time.Now(), loc)
			return EpochRolloverJob{EpochKey: string(epochKey)}, &river.InsertOpts{
				Queue:      "league",
				UniqueOpts: river.UniqueOpts{ByArgs: true},
			}
		},
		&river.PeriodicJobOpts{RunOnStart: true},
	)

	riverClient, err := river.NewClient(riverpgxv5.New(pool), &river.Config{
		Queues: map[string]river.QueueConfig{
			river.QueueDefault: {MaxWorkers: 10},
			"league":           {MaxWorkers: 2}, // rollover is bursty but rare
		},
		Workers:      workers,
		PeriodicJobs: []*river.PeriodicJob{periodic},
	})
	if err != nil {
		pool.Close()
		metrics.RecordOperationFailure(ctx, "initialize_service", "river")
		return nil, fmt.Errorf("failed to create River client: %w", err)
	}

	service := &Service{
		client:  riverClient,
		pool:    pool,
		db:      bunDB,
		logger:  ctxLogger,
		metrics: metrics,
	}

	metrics.RecordOperationSuccess(ctx, "initialize_service", "river")
	metrics.RecordOperationDuration(ctx, "initialize_service", "river", time.Since(start))
	ctxLogger.InfoContext(ctx, "league queue service initialized")
	return service, nil
}

func (s *Service) Start(ctx context.Context) error {
	if err := s.client.Start(ctx); err != nil {
		return fmt.Errorf("failed to start River client: %w", err)
	}
	s.logger.InfoContext(ctx, "league queue service started")
	return nil
}

func (s *Service) Stop(ctx context.Context) error {
	if err := s.client.Stop(ctx); err != nil {
		return fmt.Errorf("failed to stop River client: %w", err)
	}
	s.pool.Close()
	s.logger.InfoContext(ctx, "league queue service stopped")
	return nil
}

// ScheduleRollover enqueues a finalize job for epochKey immediately. Used
// by the admin endpoint to re-run a failed week without waiting for the
// periodic tick.
func (s *Service) ScheduleRollover(ctx context.Context, epochKey leaguedomain.EpochKey) error {
	start := time.Now()
	s.metrics.RecordOperationAttempt(ctx, "schedule_rollover", "river")

	result, err := s.client.Insert(ctx, EpochRolloverJob{EpochKey: string(epochKey)}, &river.InsertOpts{
		Queue:      "league",
		UniqueOpts: river.UniqueOpts{ByArgs: true},
	})
	if err != nil {
		s.metrics.RecordOperationFailure(ctx, "schedule_rollover", "river")
		return fmt.Errorf("failed to schedule rollover: %w", err)
	}

	s.metrics.RecordOperationSuccess(ctx, "schedule_rollover", "river")
	s.metrics.RecordOperationDuration(ctx, "schedule_rollover", "river", time.Since(start))
	s.logger.InfoContext(ctx, "rollover scheduled",
		slog.String("epoch_key", string(epochKey)),
		slog.Int64("job_id", result.Job.ID),
	)
	return nil
}

// GetScheduledJobs lists pending rollover jobs straight from the river_job
// table, the same way operational tooling inspects the queue.
func (s *Service) GetScheduledJobs(ctx context.Context) ([]JobInfo, error) {
	type riverJobRow struct {
		ID          int64          `bun:"id"`
		Kind        string         `bun:"kind"`
		State       string         `bun:"state"`
		Args        map[string]any `bun:"args"`
		ScheduledAt *time.Time     `bun:"scheduled_at"`
		CreatedAt   time.Time      `bun:"created_at"`
		Attempt     int16          `bun:"attempt"`
		MaxAttempts int16          `bun:"max_attempts"`
	}

	var jobs []riverJobRow
	err := s.db.NewSelect().
		Table("river_job").
		Column("id", "kind", "state", "args", "scheduled_at", "created_at", "attempt", "max_attempts").
		Where("kind = ?", EpochRolloverJob{}.Kind()).
		Where("state IN (?, ?, ?)", "available", "scheduled", "running").
		OrderExpr("scheduled_at ASC NULLS LAST, created_at ASC").
		Scan(ctx, &jobs)
	if err != nil {
		return nil, fmt.Errorf("failed to query scheduled jobs: %w", err)
	}

	result := make([]JobInfo, len(jobs))
	for i, job := range jobs {
		scheduledAt := ""
		if job.ScheduledAt != nil {
			scheduledAt = job.ScheduledAt.Format(time.RFC3339)
		}
		epochKey, _ := job.Args["epoch_key"].(string)
		result[i] = JobInfo{
			ID:          job.ID,
			Kind:        job.Kind,
			EpochKey:    epochKey,
			State:       job.State,
			ScheduledAt: scheduledAt,
			CreatedAt:   job.CreatedAt.Format(time.RFC3339),
			Attempt:     int(job.Attempt),
			MaxAttempts: int(job.MaxAttempts),
		}
	}
	return result, nil
}

// HealthCheck verifies queue storage connectivity.
func (s *Service) HealthCheck(ctx context.Context) error {
	if s.client == nil {
		return fmt.Errorf("river client is nil")
	}
	var count int
	err := s.db.NewSelect().
		Table("river_job").
		ColumnExpr("COUNT(*)").
		Scan(ctx, &count)
	if err != nil {
		return fmt.Errorf("queue health check failed: %w", err)
	}
	return nil
}
