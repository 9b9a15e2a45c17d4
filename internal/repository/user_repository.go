package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/okhomenko/plantkeeper/internal/domain"
	"github.com/okhomenko/plantkeeper/pkg/database"
)

// userRepository implements UserRepository interface
type userRepository struct {
	db *database.Postgres
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *database.Postgres) UserRepository {
	return &userRepository{db: db}
}

const userColumns = `id, email, password_hash, name, notifications_enabled, push_token, push_token_updated_at, created_at, updated_at, last_login_at`

// Create creates a new user in the database
func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (id, email, password_hash, name, notifications_enabled, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	if user.ID == "" {
		user.ID = uuid.New().String()
	}

	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	if user.UpdatedAt.IsZero() {
		user.UpdatedAt = now
	}

	_, err := r.db.DB.ExecContext(ctx, query,
		user.ID,
		user.Email,
		user.PasswordHash,
		user.Name,
		user.NotificationsEnabled,
		user.CreatedAt,
		user.UpdatedAt,
	)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Code == "23505" { // unique_violation
				return fmt.Errorf("user with email %s already exists: %w", user.Email, ErrDuplicateEmail)
			}
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetByEmail retrieves a user by email
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE email = $1`, userColumns)

	user, err := r.scanUser(r.db.DB.QueryRowContext(ctx, query, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user with email %s not found: %w", email, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return user, nil
}

// GetByID retrieves a user by ID
func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE id = $1`, userColumns)

	user, err := r.scanUser(r.db.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user with id %s not found: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}

	return user, nil
}

// UpdateProfile updates name and email
func (r *userRepository) UpdateProfile(ctx context.Context, user *domain.User) error {
	query := `
		UPDATE users
		SET email = $2, name = $3, updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.db.DB.ExecContext(ctx, query, user.ID, user.Email, user.Name)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Code == "23505" { // unique_violation
				return fmt.Errorf("user with email %s already exists: %w", user.Email, ErrDuplicateEmail)
			}
		}
		return fmt.Errorf("failed to update user: %w", err)
	}

	return r.requireRow(result, user.ID)
}

// UpdatePassword replaces the credential hash
func (r *userRepository) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	query := `
		UPDATE users
		SET password_hash = $2, updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.db.DB.ExecContext(ctx, query, userID, passwordHash)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	return r.requireRow(result, userID)
}

// UpdateLastLogin updates the last login timestamp for a user
func (r *userRepository) UpdateLastLogin(ctx context.Context, userID string) error {
	query := `
		UPDATE users
		SET last_login_at = $2
		WHERE id = $1
	`

	result, err := r.db.DB.ExecContext(ctx, query, userID, time.Now())
	if err != nil {
		return fmt.Errorf("failed to update last login: %w", err)
	}

	return r.requireRow(result, userID)
}

// SetPushToken stores or clears the push token; the update timestamp tracks
// both directions so the weekly cleanup can age tokens out.
func (r *userRepository) SetPushToken(ctx context.Context, userID string, token *string) error {
	query := `
		UPDATE users
		SET push_token = $2, push_token_updated_at = NOW(), updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.db.DB.ExecContext(ctx, query, userID, token)
	if err != nil {
		return fmt.Errorf("failed to set push token: %w", err)
	}

	return r.requireRow(result, userID)
}

// SetNotificationsEnabled toggles reminder delivery for the user
func (r *userRepository) SetNotificationsEnabled(ctx context.Context, userID string, enabled bool) error {
	query := `
		UPDATE users
		SET notifications_enabled = $2, updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.db.DB.ExecContext(ctx, query, userID, enabled)
	if err != nil {
		return fmt.Errorf("failed to set notification preference: %w", err)
	}

	return r.requireRow(result, userID)
}

// ListStalePushTokens returns users whose push token was last updated before
// the cutoff, or whose token has no recorded update timestamp at all.
func (r *userRepository) ListStalePushTokens(ctx context.Context, olderThan time.Time) ([]*domain.User, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM users
		WHERE push_token IS NOT NULL
		  AND (push_token_updated_at IS NULL OR push_token_updated_at < $1)
	`, userColumns)

	rows, err := r.db.DB.QueryContext(ctx, query, olderThan)
	if err != nil {
		return nil, fmt.Errorf("failed to list stale push tokens: %w", err)
	}
	defer rows.Close()

	var users []*domain.User
	for rows.Next() {
		user, err := r.scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate users: %w", err)
	}

	return users, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *userRepository) scanUser(row rowScanner) (*domain.User, error) {
	user := &domain.User{}
	var pushToken sql.NullString
	var pushTokenUpdatedAt, lastLoginAt sql.NullTime

	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.Name,
		&user.NotificationsEnabled,
		&pushToken,
		&pushTokenUpdatedAt,
		&user.CreatedAt,
		&user.UpdatedAt,
		&lastLoginAt,
	)
	if err != nil {
		return nil, err
	}

	if pushToken.Valid {
		user.PushToken = &pushToken.String
	}
	if pushTokenUpdatedAt.Valid {
		user.PushTokenUpdatedAt = &pushTokenUpdatedAt.Time
	}
	if lastLoginAt.Valid {
		user.LastLoginAt = &lastLoginAt.Time
	}

	return user, nil
}

func (r *userRepository) requireRow(result sql.Result, userID string) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("user with id %s not found: %w", userID, ErrNotFound)
	}

	return nil
}
