package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/okhomenko/plantkeeper/internal/domain"
	"github.com/okhomenko/plantkeeper/internal/dto"
	"github.com/okhomenko/plantkeeper/internal/repository"
	"github.com/okhomenko/plantkeeper/internal/utils"
)

// Auth service errors
var (
	// ErrInvalidCredentials is returned for a wrong email/password pair
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrWeakPassword is returned when the password fails policy checks
	ErrWeakPassword = errors.New("password must be at least 8 characters long and contain uppercase, lowercase, and number")

	// ErrInvalidRefreshToken is returned for unknown, expired or revoked refresh tokens
	ErrInvalidRefreshToken = errors.New("invalid refresh token")

	// ErrWrongPassword is returned when the current password does not match on change
	ErrWrongPassword = errors.New("current password is incorrect")
)

// authService implements AuthService interface
type authService struct {
	userRepo           repository.UserRepository
	tokenRepo          repository.TokenRepository
	jwtManager         *utils.JWTManager
	blacklistService   *TokenBlacklistService
	bcryptCost         int
	refreshTokenExpiry time.Duration
}

// NewAuthService creates a new auth service
func NewAuthService(
	userRepo repository.UserRepository,
	tokenRepo repository.TokenRepository,
	jwtManager *utils.JWTManager,
	blacklistService *TokenBlacklistService,
	bcryptCost int,
	refreshTokenExpiry time.Duration,
) AuthService {
	return &authService{
		userRepo:           userRepo,
		tokenRepo:          tokenRepo,
		jwtManager:         jwtManager,
		blacklistService:   blacklistService,
		bcryptCost:         bcryptCost,
		refreshTokenExpiry: refreshTokenExpiry,
	}
}

// Register registers a new user
func (s *authService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthData, error) {
	if !utils.ValidatePassword(req.Password) {
		return nil, ErrWeakPassword
	}

	email := utils.SanitizeEmail(req.Email)

	_, err := s.userRepo.GetByEmail(ctx, email)
	if err == nil {
		return nil, fmt.Errorf("user with email %s: %w", email, repository.ErrDuplicateEmail)
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to check user existence: %w", err)
	}

	passwordHash, err := utils.HashPassword(req.Password, s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &domain.User{
		Email:                email,
		PasswordHash:         passwordHash,
		Name:                 req.Name,
		NotificationsEnabled: true,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return s.issueTokens(ctx, user)
}

// Login authenticates a user
func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthData, error) {
	user, err := s.userRepo.GetByEmail(ctx, utils.SanitizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if !utils.CheckPasswordHash(req.Password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	if err := s.userRepo.UpdateLastLogin(ctx, user.ID); err != nil {
		// Not worth failing the login over.
		_ = err
	}

	return s.issueTokens(ctx, user)
}

// RefreshToken rotates the token pair. The presented refresh token must be
// the single stored one for its user; rotation replaces it and blacklists
// the old JWT for its remaining lifetime.
func (s *authService) RefreshToken(ctx context.Context, refreshToken string) (*dto.AuthData, error) {
	userID, err := s.jwtManager.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRefreshToken, err)
	}

	tokenHash := hashToken(refreshToken)

	dbToken, err := s.tokenRepo.GetByTokenHash(ctx, tokenHash)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, fmt.Errorf("failed to get token: %w", err)
	}

	if time.Now().After(dbToken.ExpiresAt) {
		return nil, ErrInvalidRefreshToken
	}

	isBlacklisted, err := s.blacklistService.IsTokenBlacklisted(ctx, refreshToken)
	if err != nil {
		return nil, fmt.Errorf("failed to check token blacklist: %w", err)
	}
	if isBlacklisted {
		return nil, ErrInvalidRefreshToken
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if err := s.blacklistService.AddToken(ctx, refreshToken, s.refreshTokenExpiry); err != nil {
		_ = err
	}

	return s.issueTokens(ctx, user)
}

// Logout invalidates the user's refresh token. Failures past the ownership
// check are swallowed so the client can always transition to logged out.
func (s *authService) Logout(ctx context.Context, userID, refreshToken string) error {
	if refreshToken != "" {
		tokenHash := hashToken(refreshToken)

		dbToken, err := s.tokenRepo.GetByTokenHash(ctx, tokenHash)
		if err == nil && dbToken.UserID == userID {
			if err := s.blacklistService.AddToken(ctx, refreshToken, s.refreshTokenExpiry); err != nil {
				_ = err
			}
			if err := s.tokenRepo.DeleteByTokenHash(ctx, tokenHash); err != nil {
				_ = err
			}
		}
	}

	return nil
}

// GetUser gets user information
func (s *authService) GetUser(ctx context.Context, userID string) (*dto.UserResponse, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return userResponse(user), nil
}

// UpdateProfile updates display name and/or email
func (s *authService) UpdateProfile(ctx context.Context, userID string, req *dto.UpdateProfileRequest) (*dto.UserResponse, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Email != nil {
		user.Email = utils.SanitizeEmail(*req.Email)
	}

	if err := s.userRepo.UpdateProfile(ctx, user); err != nil {
		return nil, err
	}

	return userResponse(user), nil
}

// ChangePassword replaces the credential hash after verifying the current
// password. The stored refresh token is deleted so existing sessions end.
func (s *authService) ChangePassword(ctx context.Context, userID string, req *dto.ChangePasswordRequest) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}

	if !utils.CheckPasswordHash(req.CurrentPassword, user.PasswordHash) {
		return ErrWrongPassword
	}

	if !utils.ValidatePassword(req.NewPassword) {
		return ErrWeakPassword
	}

	passwordHash, err := utils.HashPassword(req.NewPassword, s.bcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.userRepo.UpdatePassword(ctx, userID, passwordHash); err != nil {
		return err
	}

	if err := s.tokenRepo.DeleteByUserID(ctx, userID); err != nil {
		_ = err
	}

	return nil
}

// ValidateToken validates an access token
func (s *authService) ValidateToken(ctx context.Context, token string) (*domain.TokenClaims, error) {
	isBlacklisted, err := s.blacklistService.IsTokenBlacklisted(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("failed to check token blacklist: %w", err)
	}
	if isBlacklisted {
		return nil, fmt.Errorf("token is blacklisted")
	}

	claims, err := s.jwtManager.ValidateToken(token)
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	return claims, nil
}

func userResponse(user *domain.User) *dto.UserResponse {
	response := &dto.UserResponse{
		ID:                   user.ID,
		Email:                user.Email,
		Name:                 user.Name,
		NotificationsEnabled: user.NotificationsEnabled,
		CreatedAt:            user.CreatedAt.Format(time.RFC3339),
		UpdatedAt:            user.UpdatedAt.Format(time.RFC3339),
	}

	if user.LastLoginAt != nil {
		lastLogin := user.LastLoginAt.Format(time.RFC3339)
		response.LastLoginAt = &lastLogin
	}

	return response
}

// hashToken hashes a token using SHA256
func hashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}
