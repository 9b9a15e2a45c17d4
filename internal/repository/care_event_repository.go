package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/okhomenko/plantkeeper/internal/domain"
	"github.com/okhomenko/plantkeeper/pkg/database"
)

// careEventRepository implements CareEventRepository interface
type careEventRepository struct {
	db *database.Postgres
}

// NewCareEventRepository creates a new care event repository
func NewCareEventRepository(db *database.Postgres) CareEventRepository {
	return &careEventRepository{db: db}
}

// Create creates a new care event in the database
func (r *careEventRepository) Create(ctx context.Context, event *domain.CareEvent) error {
	query := `
		INSERT INTO care_events (id, plant_id, event_type, completed, completed_at, note, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	_, err := r.db.DB.ExecContext(ctx, query,
		event.ID,
		event.PlantID,
		event.EventType,
		event.Completed,
		event.CompletedAt,
		event.Note,
		event.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create care event: %w", err)
	}

	return nil
}

// ListByPlant returns a page of a plant's care events, newest first.
func (r *careEventRepository) ListByPlant(ctx context.Context, plantID string, page, limit int) ([]*domain.CareEvent, int, error) {
	var total int
	if err := r.db.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM care_events WHERE plant_id = $1`, plantID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count care events: %w", err)
	}

	if limit <= 0 {
		limit = 20
	}
	if page <= 0 {
		page = 1
	}

	query := `
		SELECT id, plant_id, event_type, completed, completed_at, note, created_at
		FROM care_events
		WHERE plant_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.DB.QueryContext(ctx, query, plantID, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list care events: %w", err)
	}
	defer rows.Close()

	var events []*domain.CareEvent
	for rows.Next() {
		event := &domain.CareEvent{}
		var completedAt sql.NullTime
		var note sql.NullString

		err := rows.Scan(
			&event.ID,
			&event.PlantID,
			&event.EventType,
			&event.Completed,
			&completedAt,
			&note,
			&event.CreatedAt,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan care event: %w", err)
		}

		if completedAt.Valid {
			event.CompletedAt = &completedAt.Time
		}
		if note.Valid {
			event.Note = &note.String
		}

		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate care events: %w", err)
	}

	return events, total, nil
}
