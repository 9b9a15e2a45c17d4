package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/okhomenko/plantkeeper/internal/domain"
	"github.com/okhomenko/plantkeeper/pkg/database"
)

// plantRepository implements PlantRepository interface
type plantRepository struct {
	db *database.Postgres
}

// NewPlantRepository creates a new plant repository
func NewPlantRepository(db *database.Postgres) PlantRepository {
	return &plantRepository{db: db}
}

const plantColumns = `id, user_id, name, species, notes, location, image_url, watering_frequency, last_watered, created_at, updated_at`

// Create creates a new plant in the database
func (r *plantRepository) Create(ctx context.Context, plant *domain.Plant) error {
	query := `
		INSERT INTO plants (id, user_id, name, species, notes, location, image_url, watering_frequency, last_watered, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	if plant.ID == "" {
		plant.ID = uuid.New().String()
	}

	now := time.Now()
	if plant.CreatedAt.IsZero() {
		plant.CreatedAt = now
	}
	if plant.UpdatedAt.IsZero() {
		plant.UpdatedAt = now
	}

	_, err := r.db.DB.ExecContext(ctx, query,
		plant.ID,
		plant.UserID,
		plant.Name,
		plant.Species,
		plant.Notes,
		plant.Location,
		plant.ImageURL,
		plant.WateringFrequency,
		plant.LastWatered,
		plant.CreatedAt,
		plant.UpdatedAt,
	)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Code == "23505" { // unique_violation on (user_id, lower(name))
				return fmt.Errorf("plant named %q already exists: %w", plant.Name, ErrDuplicatePlantName)
			}
		}
		return fmt.Errorf("failed to create plant: %w", err)
	}

	return nil
}

// GetByID retrieves a plant by ID, scoped by owner
func (r *plantRepository) GetByID(ctx context.Context, userID, plantID string) (*domain.Plant, error) {
	query := fmt.Sprintf(`SELECT %s FROM plants WHERE id = $1 AND user_id = $2`, plantColumns)

	plant, err := r.scanPlant(r.db.DB.QueryRowContext(ctx, query, plantID, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("plant with id %s not found: %w", plantID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get plant: %w", err)
	}

	return plant, nil
}

// List returns a page of the user's plants matching the filter, with the
// total match count for pagination.
func (r *plantRepository) List(ctx context.Context, userID string, filter PlantFilter) ([]*domain.Plant, int, error) {
	where := []string{"user_id = $1"}
	args := []any{userID}

	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		n := len(args)
		where = append(where, fmt.Sprintf("(name ILIKE $%d OR species ILIKE $%d OR notes ILIKE $%d)", n, n, n))
	}
	if filter.Species != "" {
		args = append(args, filter.Species)
		where = append(where, fmt.Sprintf("species ILIKE $%d", len(args)))
	}
	if filter.WateredAfter != nil {
		args = append(args, *filter.WateredAfter)
		where = append(where, fmt.Sprintf("last_watered >= $%d", len(args)))
	}
	if filter.WateredBefore != nil {
		args = append(args, *filter.WateredBefore)
		where = append(where, fmt.Sprintf("last_watered <= $%d", len(args)))
	}

	whereClause := strings.Join(where, " AND ")

	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM plants WHERE %s`, whereClause)
	if err := r.db.DB.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count plants: %w", err)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	page := filter.Page
	if page <= 0 {
		page = 1
	}
	args = append(args, limit, (page-1)*limit)

	query := fmt.Sprintf(`
		SELECT %s FROM plants
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, plantColumns, whereClause, len(args)-1, len(args))

	rows, err := r.db.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list plants: %w", err)
	}
	defer rows.Close()

	plants, err := r.collectPlants(rows)
	if err != nil {
		return nil, 0, err
	}

	return plants, total, nil
}

// ListAll returns every plant of a user, unpaginated. Used by the stats and
// needs-water endpoints, which re-derive due dates in memory.
func (r *plantRepository) ListAll(ctx context.Context, userID string) ([]*domain.Plant, error) {
	query := fmt.Sprintf(`SELECT %s FROM plants WHERE user_id = $1 ORDER BY created_at DESC`, plantColumns)

	rows, err := r.db.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list plants: %w", err)
	}
	defer rows.Close()

	return r.collectPlants(rows)
}

// Update updates an existing plant, scoped by owner
func (r *plantRepository) Update(ctx context.Context, plant *domain.Plant) error {
	query := `
		UPDATE plants
		SET name = $3, species = $4, notes = $5, location = $6, image_url = $7, watering_frequency = $8, updated_at = NOW()
		WHERE id = $1 AND user_id = $2
	`

	result, err := r.db.DB.ExecContext(ctx, query,
		plant.ID,
		plant.UserID,
		plant.Name,
		plant.Species,
		plant.Notes,
		plant.Location,
		plant.ImageURL,
		plant.WateringFrequency,
	)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Code == "23505" { // unique_violation
				return fmt.Errorf("plant named %q already exists: %w", plant.Name, ErrDuplicatePlantName)
			}
		}
		return fmt.Errorf("failed to update plant: %w", err)
	}

	return r.requireRow(result, plant.ID)
}

// Delete deletes a plant, scoped by owner. Care events go with it via the
// cascade constraint.
func (r *plantRepository) Delete(ctx context.Context, userID, plantID string) error {
	result, err := r.db.DB.ExecContext(ctx, `DELETE FROM plants WHERE id = $1 AND user_id = $2`, plantID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete plant: %w", err)
	}

	return r.requireRow(result, plantID)
}

// SetLastWatered records a watering timestamp
func (r *plantRepository) SetLastWatered(ctx context.Context, userID, plantID string, wateredAt time.Time) error {
	query := `
		UPDATE plants
		SET last_watered = $3, updated_at = NOW()
		WHERE id = $1 AND user_id = $2
	`

	result, err := r.db.DB.ExecContext(ctx, query, plantID, userID, wateredAt)
	if err != nil {
		return fmt.Errorf("failed to set last watered: %w", err)
	}

	return r.requireRow(result, plantID)
}

// ListReminderCandidates returns all plants whose owner has notifications
// enabled and a registered push token. Due-ness is computed by the caller.
func (r *plantRepository) ListReminderCandidates(ctx context.Context) ([]*domain.ReminderCandidate, error) {
	query := fmt.Sprintf(`
		SELECT %s, u.push_token
		FROM plants p
		JOIN users u ON u.id = p.user_id
		WHERE u.notifications_enabled = TRUE
		  AND u.push_token IS NOT NULL
	`, prefixColumns("p", plantColumns))

	rows, err := r.db.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list reminder candidates: %w", err)
	}
	defer rows.Close()

	var candidates []*domain.ReminderCandidate
	for rows.Next() {
		c := &domain.ReminderCandidate{}
		var species, notes, location, imageURL sql.NullString
		var lastWatered sql.NullTime

		err := rows.Scan(
			&c.Plant.ID,
			&c.Plant.UserID,
			&c.Plant.Name,
			&species,
			&notes,
			&location,
			&imageURL,
			&c.Plant.WateringFrequency,
			&lastWatered,
			&c.Plant.CreatedAt,
			&c.Plant.UpdatedAt,
			&c.PushToken,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reminder candidate: %w", err)
		}

		if species.Valid {
			c.Plant.Species = &species.String
		}
		if notes.Valid {
			c.Plant.Notes = &notes.String
		}
		if location.Valid {
			c.Plant.Location = &location.String
		}
		if imageURL.Valid {
			c.Plant.ImageURL = &imageURL.String
		}
		if lastWatered.Valid {
			c.Plant.LastWatered = &lastWatered.Time
		}
		c.OwnerID = c.Plant.UserID

		candidates = append(candidates, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate reminder candidates: %w", err)
	}

	return candidates, nil
}

func (r *plantRepository) scanPlant(row rowScanner) (*domain.Plant, error) {
	plant := &domain.Plant{}
	var species, notes, location, imageURL sql.NullString
	var lastWatered sql.NullTime

	err := row.Scan(
		&plant.ID,
		&plant.UserID,
		&plant.Name,
		&species,
		&notes,
		&location,
		&imageURL,
		&plant.WateringFrequency,
		&lastWatered,
		&plant.CreatedAt,
		&plant.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if species.Valid {
		plant.Species = &species.String
	}
	if notes.Valid {
		plant.Notes = &notes.String
	}
	if location.Valid {
		plant.Location = &location.String
	}
	if imageURL.Valid {
		plant.ImageURL = &imageURL.String
	}
	if lastWatered.Valid {
		plant.LastWatered = &lastWatered.Time
	}

	return plant, nil
}

func (r *plantRepository) collectPlants(rows *sql.Rows) ([]*domain.Plant, error) {
	var plants []*domain.Plant
	for rows.Next() {
		plant, err := r.scanPlant(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan plant: %w", err)
		}
		plants = append(plants, plant)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate plants: %w", err)
	}

	return plants, nil
}

func (r *plantRepository) requireRow(result sql.Result, plantID string) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("plant with id %s not found: %w", plantID, ErrNotFound)
	}

	return nil
}

// prefixColumns qualifies a comma-separated column list with a table alias.
func prefixColumns(alias, columns string) string {
	parts := strings.Split(columns, ", ")
	for i, p := range parts {
		parts[i] = alias + "." + p
	}
	return strings.Join(parts, ", ")
}
