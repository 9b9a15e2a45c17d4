package repository

import (
	"context"
	"time"

	"github.com/okhomenko/plantkeeper/internal/domain"
)

// UserRepository defines methods for user operations
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	UpdateProfile(ctx context.Context, user *domain.User) error
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
	UpdateLastLogin(ctx context.Context, userID string) error
	SetPushToken(ctx context.Context, userID string, token *string) error
	SetNotificationsEnabled(ctx context.Context, userID string, enabled bool) error
	ListStalePushTokens(ctx context.Context, olderThan time.Time) ([]*domain.User, error)
}

// PlantRepository defines methods for plant operations. All single-plant
// reads and writes are scoped by the owning user: a plant belonging to
// someone else behaves exactly like a missing one.
type PlantRepository interface {
	Create(ctx context.Context, plant *domain.Plant) error
	GetByID(ctx context.Context, userID, plantID string) (*domain.Plant, error)
	List(ctx context.Context, userID string, filter PlantFilter) ([]*domain.Plant, int, error)
	ListAll(ctx context.Context, userID string) ([]*domain.Plant, error)
	Update(ctx context.Context, plant *domain.Plant) error
	Delete(ctx context.Context, userID, plantID string) error
	SetLastWatered(ctx context.Context, userID, plantID string, wateredAt time.Time) error
	ListReminderCandidates(ctx context.Context) ([]*domain.ReminderCandidate, error)
}

// PlantFilter narrows and pages the plant list.
type PlantFilter struct {
	Search        string
	Species       string
	WateredAfter  *time.Time
	WateredBefore *time.Time
	Page          int
	Limit         int
}

// CareEventRepository defines methods for care event operations
type CareEventRepository interface {
	Create(ctx context.Context, event *domain.CareEvent) error
	ListByPlant(ctx context.Context, plantID string, page, limit int) ([]*domain.CareEvent, int, error)
}

// TokenRepository defines methods for refresh token operations
type TokenRepository interface {
	Replace(ctx context.Context, token *domain.RefreshToken) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*domain.RefreshToken, error)
	DeleteByUserID(ctx context.Context, userID string) error
	DeleteByTokenHash(ctx context.Context, tokenHash string) error
	DeleteExpired(ctx context.Context) error
}
