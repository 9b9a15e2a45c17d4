package service

import (
	"context"
	"time"

	"github.com/okhomenko/plantkeeper/internal/domain"
	"github.com/okhomenko/plantkeeper/internal/dto"
)

// AuthService defines methods for authentication operations
type AuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthData, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthData, error)
	RefreshToken(ctx context.Context, refreshToken string) (*dto.AuthData, error)
	Logout(ctx context.Context, userID, refreshToken string) error
	GetUser(ctx context.Context, userID string) (*dto.UserResponse, error)
	UpdateProfile(ctx context.Context, userID string, req *dto.UpdateProfileRequest) (*dto.UserResponse, error)
	ChangePassword(ctx context.Context, userID string, req *dto.ChangePasswordRequest) error
	ValidateToken(ctx context.Context, token string) (*domain.TokenClaims, error)
}

// PlantService defines methods for plant operations
type PlantService interface {
	Create(ctx context.Context, userID string, req *dto.CreatePlantRequest, image *ImageUpload) (*domain.Plant, error)
	Get(ctx context.Context, userID, plantID string) (*domain.Plant, error)
	List(ctx context.Context, userID string, req *dto.ListPlantsRequest) ([]*domain.Plant, int, error)
	Update(ctx context.Context, userID, plantID string, req *dto.UpdatePlantRequest, image *ImageUpload) (*domain.Plant, error)
	Delete(ctx context.Context, userID, plantID string) error
	Water(ctx context.Context, userID, plantID string, wateredAt *time.Time) (*domain.Plant, error)
	NeedsWater(ctx context.Context, userID string) ([]*domain.Plant, error)
	Stats(ctx context.Context, userID string) (*domain.PlantStats, error)
	History(ctx context.Context, userID, plantID string, page, limit int) ([]*domain.CareEvent, int, error)
}

// NotificationService defines methods for push notification settings and
// the token cleanup job
type NotificationService interface {
	RegisterToken(ctx context.Context, userID, token string) error
	ClearToken(ctx context.Context, userID string) error
	UpdatePreferences(ctx context.Context, userID string, enabled bool) error
	Settings(ctx context.Context, userID string) (*dto.NotificationSettings, error)
	SendTest(ctx context.Context, userID string) error
	CleanupStaleTokens(ctx context.Context) (*CleanupSummary, error)
	LastCleanup() *CleanupSummary
}
