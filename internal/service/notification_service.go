package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/okhomenko/plantkeeper/internal/dto"
	"github.com/okhomenko/plantkeeper/internal/notify"
	"github.com/okhomenko/plantkeeper/internal/repository"
	"go.uber.org/zap"
)

// Notification service errors
var (
	// ErrInvalidPushToken is returned when a token fails provider validation
	ErrInvalidPushToken = errors.New("push token is not valid")

	// ErrNoPushToken is returned when an operation needs a registered token
	ErrNoPushToken = errors.New("no push token registered")
)

// CleanupSummary reports the outcome of one push-token cleanup run.
type CleanupSummary struct {
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Checked    int       `json:"checked"`
	Cleared    int       `json:"cleared"`
	Errors     []string  `json:"errors,omitempty"`
}

// notificationService implements NotificationService interface
type notificationService struct {
	userRepo      repository.UserRepository
	notifier      notify.Notifier
	logger        *zap.Logger
	channelID     string
	staleTokenAge time.Duration

	lastMu      sync.RWMutex
	lastCleanup *CleanupSummary
}

// NewNotificationService creates a new notification service
func NewNotificationService(
	userRepo repository.UserRepository,
	notifier notify.Notifier,
	logger *zap.Logger,
	channelID string,
	staleTokenAge time.Duration,
) NotificationService {
	return &notificationService{
		userRepo:      userRepo,
		notifier:      notifier,
		logger:        logger,
		channelID:     channelID,
		staleTokenAge: staleTokenAge,
	}
}

// RegisterToken validates and stores a device push token for the user.
func (s *notificationService) RegisterToken(ctx context.Context, userID, token string) error {
	if err := s.notifier.ValidateToken(token); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPushToken, err)
	}

	return s.userRepo.SetPushToken(ctx, userID, &token)
}

// ClearToken removes the user's push token.
func (s *notificationService) ClearToken(ctx context.Context, userID string) error {
	return s.userRepo.SetPushToken(ctx, userID, nil)
}

// UpdatePreferences toggles reminder delivery for the user.
func (s *notificationService) UpdatePreferences(ctx context.Context, userID string, enabled bool) error {
	return s.userRepo.SetNotificationsEnabled(ctx, userID, enabled)
}

// Settings returns the user's notification settings.
func (s *notificationService) Settings(ctx context.Context, userID string) (*dto.NotificationSettings, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &dto.NotificationSettings{
		Enabled:            user.NotificationsEnabled,
		HasPushToken:       user.HasPushToken(),
		PushTokenUpdatedAt: user.PushTokenUpdatedAt,
	}, nil
}

// SendTest delivers a test push to the user's registered device.
func (s *notificationService) SendTest(ctx context.Context, userID string) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	if !user.HasPushToken() {
		return ErrNoPushToken
	}

	return s.notifier.Send(ctx, *user.PushToken, notify.Message{
		Title:     "Test notification",
		Body:      "Push notifications are working.",
		Data:      map[string]string{"type": "test"},
		ChannelID: s.channelID,
	})
}

// CleanupStaleTokens re-validates tokens that have not been refreshed within
// the stale window and clears the ones the provider no longer accepts.
// Per-user failures are collected, never fatal to the run.
func (s *notificationService) CleanupStaleTokens(ctx context.Context) (*CleanupSummary, error) {
	summary := &CleanupSummary{StartedAt: time.Now()}

	cutoff := time.Now().Add(-s.staleTokenAge)
	users, err := s.userRepo.ListStalePushTokens(ctx, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to load stale push tokens: %w", err)
	}

	for _, user := range users {
		summary.Checked++

		if !user.HasPushToken() {
			continue
		}

		if err := s.notifier.ValidateToken(*user.PushToken); err == nil {
			continue
		}

		if err := s.userRepo.SetPushToken(ctx, user.ID, nil); err != nil {
			summary.Errors = append(summary.Errors, fmt.Sprintf("user %s: %v", user.ID, err))
			s.logger.Warn("Failed to clear invalid push token",
				zap.String("user_id", user.ID),
				zap.Error(err),
			)
			continue
		}
		summary.Cleared++
	}

	summary.FinishedAt = time.Now()
	s.setLastCleanup(summary)

	s.logger.Info("Push token cleanup finished",
		zap.Int("checked", summary.Checked),
		zap.Int("cleared", summary.Cleared),
	)

	return summary, nil
}

// LastCleanup returns a copy of the most recent cleanup summary, or nil.
func (s *notificationService) LastCleanup() *CleanupSummary {
	s.lastMu.RLock()
	defer s.lastMu.RUnlock()

	if s.lastCleanup == nil {
		return nil
	}
	run := *s.lastCleanup
	run.Errors = append([]string(nil), s.lastCleanup.Errors...)
	return &run
}

func (s *notificationService) setLastCleanup(summary *CleanupSummary) {
	s.lastMu.Lock()
	defer s.lastMu.Unlock()
	s.lastCleanup = summary
}
