package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/okhomenko/plantkeeper/internal/domain"
	"github.com/okhomenko/plantkeeper/internal/notify"
	"github.com/okhomenko/plantkeeper/internal/repository"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// ErrScanInProgress is returned when a watering scan is requested while a
// previous run has not finished yet.
var ErrScanInProgress = errors.New("watering scan already in progress")

// RunSummary reports the outcome of one watering scan.
type RunSummary struct {
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Checked    int       `json:"checked"`
	Processed  int       `json:"processed"`
	Sent       int       `json:"sent"`
	Failed     int       `json:"failed"`
	Errors     []string  `json:"errors,omitempty"`
}

// ReminderService runs the watering scan: it walks all reminder candidates,
// derives due-ness at scan time and dispatches at most one push per plant
// per run. Individual failures never abort the batch.
type ReminderService struct {
	plantRepo     repository.PlantRepository
	notifier      notify.Notifier
	logger        *zap.Logger
	channelID     string
	dispatchDelay time.Duration

	runMu sync.Mutex // run-in-progress guard

	lastMu  sync.RWMutex
	lastRun *RunSummary

	sentCounter   metric.Int64Counter
	failedCounter metric.Int64Counter
}

// NewReminderService creates a new reminder service
func NewReminderService(
	plantRepo repository.PlantRepository,
	notifier notify.Notifier,
	logger *zap.Logger,
	channelID string,
	dispatchDelay time.Duration,
) *ReminderService {
	meter := otel.Meter("plantkeeper/reminders")
	sent, _ := meter.Int64Counter("watering_reminders_sent_total")
	failed, _ := meter.Int64Counter("watering_reminders_failed_total")

	return &ReminderService{
		plantRepo:     plantRepo,
		notifier:      notifier,
		logger:        logger,
		channelID:     channelID,
		dispatchDelay: dispatchDelay,
		sentCounter:   sent,
		failedCounter: failed,
	}
}

// RunWateringScan executes one scan. Only the initial candidate query can
// fail the run; everything after is per-plant and aggregated into the
// summary. A concurrent invocation returns ErrScanInProgress instead of
// overlapping the running scan.
func (s *ReminderService) RunWateringScan(ctx context.Context) (*RunSummary, error) {
	if !s.runMu.TryLock() {
		return nil, ErrScanInProgress
	}
	defer s.runMu.Unlock()

	summary := &RunSummary{StartedAt: time.Now()}

	candidates, err := s.plantRepo.ListReminderCandidates(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load reminder candidates: %w", err)
	}

	now := time.Now()
	for i, candidate := range candidates {
		if err := ctx.Err(); err != nil {
			summary.Errors = append(summary.Errors, fmt.Sprintf("scan interrupted: %v", err))
			break
		}

		summary.Checked++

		daysOverdue := PlantDaysOverdue(&candidate.Plant, now)
		if daysOverdue < 0 {
			continue
		}
		summary.Processed++

		if err := s.notifier.Send(ctx, candidate.PushToken, s.buildReminder(&candidate.Plant, daysOverdue)); err != nil {
			summary.Failed++
			summary.Errors = append(summary.Errors, fmt.Sprintf("plant %s: %v", candidate.Plant.ID, err))
			s.failedCounter.Add(ctx, 1)
			s.logger.Warn("Failed to send watering reminder",
				zap.String("plant_id", candidate.Plant.ID),
				zap.String("user_id", candidate.OwnerID),
				zap.Error(err),
			)
		} else {
			summary.Sent++
			s.sentCounter.Add(ctx, 1)
		}

		// Pace calls to the push provider.
		if s.dispatchDelay > 0 && i < len(candidates)-1 {
			select {
			case <-time.After(s.dispatchDelay):
			case <-ctx.Done():
			}
		}
	}

	summary.FinishedAt = time.Now()
	s.setLastRun(summary)

	s.logger.Info("Watering scan finished",
		zap.Int("checked", summary.Checked),
		zap.Int("processed", summary.Processed),
		zap.Int("sent", summary.Sent),
		zap.Int("failed", summary.Failed),
		zap.Duration("took", summary.FinishedAt.Sub(summary.StartedAt)),
	)

	return summary, nil
}

// LastRun returns a copy of the most recent scan summary, or nil if no scan
// has completed since the process started.
func (s *ReminderService) LastRun() *RunSummary {
	s.lastMu.RLock()
	defer s.lastMu.RUnlock()

	if s.lastRun == nil {
		return nil
	}
	run := *s.lastRun
	run.Errors = append([]string(nil), s.lastRun.Errors...)
	return &run
}

func (s *ReminderService) setLastRun(summary *RunSummary) {
	s.lastMu.Lock()
	defer s.lastMu.Unlock()
	s.lastRun = summary
}

func (s *ReminderService) buildReminder(plant *domain.Plant, daysOverdue int) notify.Message {
	lastWatered := ""
	if plant.LastWatered != nil {
		lastWatered = plant.LastWatered.Format(time.RFC3339)
	}

	return notify.Message{
		Title: "Watering reminder",
		Body:  ReminderBody(plant.Name, daysOverdue),
		Data: map[string]string{
			"plantId":     plant.ID,
			"plantName":   plant.Name,
			"daysOverdue": strconv.Itoa(daysOverdue),
			"lastWatered": lastWatered,
		},
		ChannelID: s.channelID,
	}
}
