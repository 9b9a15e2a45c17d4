package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/okhomenko/plantkeeper/internal/domain"
	"github.com/okhomenko/plantkeeper/pkg/database"
)

// tokenRepository implements TokenRepository interface
type tokenRepository struct {
	db *database.Postgres
}

// NewTokenRepository creates a new token repository
func NewTokenRepository(db *database.Postgres) TokenRepository {
	return &tokenRepository{db: db}
}

// Replace stores the user's refresh token, displacing any previous one.
// Each user holds at most one active refresh token at a time.
func (r *tokenRepository) Replace(ctx context.Context, token *domain.RefreshToken) error {
	query := `
		INSERT INTO refresh_tokens (id, user_id, token_hash, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id) DO UPDATE
		SET token_hash = EXCLUDED.token_hash,
		    expires_at = EXCLUDED.expires_at,
		    created_at = EXCLUDED.created_at
	`

	if token.ID == "" {
		token.ID = uuid.New().String()
	}
	if token.CreatedAt.IsZero() {
		token.CreatedAt = time.Now()
	}

	_, err := r.db.DB.ExecContext(ctx, query,
		token.ID,
		token.UserID,
		token.TokenHash,
		token.ExpiresAt,
		token.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to store refresh token: %w", err)
	}

	return nil
}

// GetByTokenHash retrieves a refresh token by its hash
func (r *tokenRepository) GetByTokenHash(ctx context.Context, tokenHash string) (*domain.RefreshToken, error) {
	query := `
		SELECT id, user_id, token_hash, expires_at, created_at
		FROM refresh_tokens
		WHERE token_hash = $1
	`

	token := &domain.RefreshToken{}
	err := r.db.DB.QueryRowContext(ctx, query, tokenHash).Scan(
		&token.ID,
		&token.UserID,
		&token.TokenHash,
		&token.ExpiresAt,
		&token.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("token with hash not found: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get token by hash: %w", err)
	}

	return token, nil
}

// DeleteByUserID removes the user's stored refresh token, if any.
func (r *tokenRepository) DeleteByUserID(ctx context.Context, userID string) error {
	_, err := r.db.DB.ExecContext(ctx, `DELETE FROM refresh_tokens WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("failed to delete tokens for user: %w", err)
	}

	return nil
}

// DeleteByTokenHash deletes a refresh token by its hash
func (r *tokenRepository) DeleteByTokenHash(ctx context.Context, tokenHash string) error {
	result, err := r.db.DB.ExecContext(ctx, `DELETE FROM refresh_tokens WHERE token_hash = $1`, tokenHash)
	if err != nil {
		return fmt.Errorf("failed to delete token by hash: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("token with hash not found: %w", ErrNotFound)
	}

	return nil
}

// DeleteExpired deletes all expired refresh tokens
func (r *tokenRepository) DeleteExpired(ctx context.Context) error {
	_, err := r.db.DB.ExecContext(ctx, `DELETE FROM refresh_tokens WHERE expires_at < $1`, time.Now())
	if err != nil {
		return fmt.Errorf("failed to delete expired tokens: %w", err)
	}

	return nil
}
