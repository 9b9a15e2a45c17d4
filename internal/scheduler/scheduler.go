// Package scheduler runs the recurring background jobs: the daily watering
// scan and the weekly push-token cleanup. Jobs are asynq tasks backed by
// Redis; cron entries enqueue them and a small worker pool executes them.
// The manual trigger endpoint enqueues the very same task type, so there is
// one execution path for scheduled and on-demand runs.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/okhomenko/plantkeeper/internal/config"
	"github.com/okhomenko/plantkeeper/internal/dto"
	"github.com/okhomenko/plantkeeper/internal/service"
	"go.uber.org/zap"
)

// Task type names
const (
	TaskWateringScan = "watering:scan"
	TaskTokenCleanup = "push_tokens:cleanup"
)

const shutdownTimeout = 30 * time.Second

// Scheduler owns the cron entries, the worker pool and the client used for
// manual triggers.
type Scheduler struct {
	cfg       config.SchedulerConfig
	logger    *zap.Logger
	scheduler *asynq.Scheduler
	server    *asynq.Server
	mux       *asynq.ServeMux
	client    *asynq.Client
}

// New wires the scheduler against the reminder and notification services.
func New(
	redisOpt asynq.RedisClientOpt,
	cfg config.SchedulerConfig,
	logger *zap.Logger,
	reminders *service.ReminderService,
	notifications service.NotificationService,
) (*Scheduler, error) {
	location, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		logger.Warn("Invalid scheduler timezone, falling back to UTC",
			zap.String("timezone", cfg.Timezone),
			zap.Error(err),
		)
		location = time.UTC
	}

	adapter := &zapLoggerAdapter{logger: logger.Sugar()}

	cronScheduler := asynq.NewScheduler(redisOpt, &asynq.SchedulerOpts{
		Location: location,
		LogLevel: asynq.InfoLevel,
		Logger:   adapter,
	})

	if _, err := cronScheduler.Register(cfg.WateringCron, newWateringTask()); err != nil {
		return nil, fmt.Errorf("failed to register watering schedule: %w", err)
	}
	if _, err := cronScheduler.Register(cfg.CleanupCron, newCleanupTask()); err != nil {
		return nil, fmt.Errorf("failed to register cleanup schedule: %w", err)
	}

	server := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency:     cfg.Concurrency,
		ShutdownTimeout: shutdownTimeout,
		Logger:          adapter,
	})

	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskWateringScan, handleWateringScan(reminders))
	mux.HandleFunc(TaskTokenCleanup, handleTokenCleanup(notifications))

	return &Scheduler{
		cfg:       cfg,
		logger:    logger,
		scheduler: cronScheduler,
		server:    server,
		mux:       mux,
		client:    asynq.NewClient(redisOpt),
	}, nil
}

// Start launches the cron entries and the worker pool (non-blocking).
func (s *Scheduler) Start() error {
	if err := s.server.Start(s.mux); err != nil {
		return fmt.Errorf("failed to start job worker: %w", err)
	}
	if err := s.scheduler.Start(); err != nil {
		s.server.Shutdown()
		return fmt.Errorf("failed to start cron scheduler: %w", err)
	}

	s.logger.Info("Scheduler started",
		zap.String("watering_cron", s.cfg.WateringCron),
		zap.String("cleanup_cron", s.cfg.CleanupCron),
		zap.String("timezone", s.cfg.Timezone),
	)

	return nil
}

// Stop shuts everything down, letting in-flight tasks finish.
func (s *Scheduler) Stop() {
	s.scheduler.Shutdown()
	s.server.Shutdown()
	if err := s.client.Close(); err != nil {
		s.logger.Warn("Failed to close scheduler client", zap.Error(err))
	}
	s.logger.Info("Scheduler stopped")
}

// TriggerWateringScan enqueues an on-demand watering scan. A scan already
// queued or running surfaces as ErrScanInProgress.
func (s *Scheduler) TriggerWateringScan(ctx context.Context) error {
	_, err := s.client.EnqueueContext(ctx, newWateringTask())
	if err != nil {
		if errors.Is(err, asynq.ErrDuplicateTask) {
			return service.ErrScanInProgress
		}
		return fmt.Errorf("failed to enqueue watering scan: %w", err)
	}
	return nil
}

// Schedules lists the registered cron entries for the status endpoint.
func (s *Scheduler) Schedules() []dto.ScheduleInfo {
	return []dto.ScheduleInfo{
		{Task: TaskWateringScan, CronSpec: s.cfg.WateringCron},
		{Task: TaskTokenCleanup, CronSpec: s.cfg.CleanupCron},
	}
}

// Uniqueness doubles as the overlap guard: while a scan is queued or
// running, another enqueue of the same task is rejected.
func newWateringTask() *asynq.Task {
	return asynq.NewTask(TaskWateringScan, nil,
		asynq.MaxRetry(2),
		asynq.Timeout(10*time.Minute),
		asynq.Unique(time.Hour),
	)
}

func newCleanupTask() *asynq.Task {
	return asynq.NewTask(TaskTokenCleanup, nil,
		asynq.MaxRetry(2),
		asynq.Timeout(10*time.Minute),
		asynq.Unique(time.Hour),
	)
}

func handleWateringScan(reminders *service.ReminderService) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		_, err := reminders.RunWateringScan(ctx)
		if errors.Is(err, service.ErrScanInProgress) {
			// Another run holds the guard; retrying would only pile up.
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		}
		return err
	}
}

func handleTokenCleanup(notifications service.NotificationService) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		_, err := notifications.CleanupStaleTokens(ctx)
		return err
	}
}
