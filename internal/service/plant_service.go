package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/okhomenko/plantkeeper/internal/domain"
	"github.com/okhomenko/plantkeeper/internal/dto"
	"github.com/okhomenko/plantkeeper/internal/repository"
	"github.com/okhomenko/plantkeeper/pkg/storage"
	"go.uber.org/zap"
)

// Plant service errors
var (
	// ErrWateredInFuture is returned when a watering timestamp lies ahead of now
	ErrWateredInFuture = errors.New("watering timestamp cannot be in the future")

	// ErrInvalidDateFilter is returned for unparseable date range filters
	ErrInvalidDateFilter = errors.New("invalid date filter, expected RFC 3339 or YYYY-MM-DD")
)

// ImageUpload carries a validated image file through to the object store.
type ImageUpload struct {
	Reader      io.Reader
	Size        int64
	ContentType string
	Ext         string
}

// plantService implements PlantService interface
type plantService struct {
	plantRepo repository.PlantRepository
	careRepo  repository.CareEventRepository
	store     storage.ObjectStore
	logger    *zap.Logger
}

// NewPlantService creates a new plant service
func NewPlantService(
	plantRepo repository.PlantRepository,
	careRepo repository.CareEventRepository,
	store storage.ObjectStore,
	logger *zap.Logger,
) PlantService {
	return &plantService{
		plantRepo: plantRepo,
		careRepo:  careRepo,
		store:     store,
		logger:    logger,
	}
}

// Create creates a plant, uploading the optional image first so the row is
// written with its final URL.
func (s *plantService) Create(ctx context.Context, userID string, req *dto.CreatePlantRequest, image *ImageUpload) (*domain.Plant, error) {
	plant := &domain.Plant{
		ID:                uuid.New().String(),
		UserID:            userID,
		Name:              strings.TrimSpace(req.Name),
		Species:           trimOptional(req.Species),
		Notes:             req.Notes,
		Location:          trimOptional(req.Location),
		WateringFrequency: req.WateringFrequency,
	}

	if image != nil {
		url, err := s.storeImage(ctx, plant.ID, image)
		if err != nil {
			return nil, err
		}
		plant.ImageURL = &url
	}

	if err := s.plantRepo.Create(ctx, plant); err != nil {
		if plant.ImageURL != nil {
			s.removeImage(ctx, *plant.ImageURL)
		}
		return nil, err
	}

	return plant, nil
}

// Get retrieves a plant scoped by owner
func (s *plantService) Get(ctx context.Context, userID, plantID string) (*domain.Plant, error) {
	return s.plantRepo.GetByID(ctx, userID, plantID)
}

// List returns a page of the user's plants matching the query filters.
func (s *plantService) List(ctx context.Context, userID string, req *dto.ListPlantsRequest) ([]*domain.Plant, int, error) {
	filter := repository.PlantFilter{
		Search:  strings.TrimSpace(req.Search),
		Species: strings.TrimSpace(req.Species),
		Page:    req.Page,
		Limit:   req.Limit,
	}

	var err error
	if filter.WateredAfter, err = parseDateFilter(req.WateredAfter); err != nil {
		return nil, 0, err
	}
	if filter.WateredBefore, err = parseDateFilter(req.WateredBefore); err != nil {
		return nil, 0, err
	}

	return s.plantRepo.List(ctx, userID, filter)
}

// Update applies the non-nil request fields. An absent image leaves the
// stored image untouched; a new one replaces it and the old object is
// removed best-effort after the row update succeeds.
func (s *plantService) Update(ctx context.Context, userID, plantID string, req *dto.UpdatePlantRequest, image *ImageUpload) (*domain.Plant, error) {
	plant, err := s.plantRepo.GetByID(ctx, userID, plantID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		plant.Name = strings.TrimSpace(*req.Name)
	}
	if req.Species != nil {
		plant.Species = trimOptional(req.Species)
	}
	if req.Notes != nil {
		plant.Notes = req.Notes
	}
	if req.Location != nil {
		plant.Location = trimOptional(req.Location)
	}
	if req.WateringFrequency != nil {
		plant.WateringFrequency = *req.WateringFrequency
	}

	var oldImageURL string
	if image != nil {
		if plant.ImageURL != nil {
			oldImageURL = *plant.ImageURL
		}
		url, err := s.storeImage(ctx, plant.ID, image)
		if err != nil {
			return nil, err
		}
		plant.ImageURL = &url
	}

	if err := s.plantRepo.Update(ctx, plant); err != nil {
		if image != nil && plant.ImageURL != nil {
			s.removeImage(ctx, *plant.ImageURL)
		}
		return nil, err
	}

	if oldImageURL != "" {
		s.removeImage(ctx, oldImageURL)
	}

	return plant, nil
}

// Delete removes a plant and, best-effort, its stored image.
func (s *plantService) Delete(ctx context.Context, userID, plantID string) error {
	plant, err := s.plantRepo.GetByID(ctx, userID, plantID)
	if err != nil {
		return err
	}

	if err := s.plantRepo.Delete(ctx, userID, plantID); err != nil {
		return err
	}

	if plant.ImageURL != nil {
		s.removeImage(ctx, *plant.ImageURL)
	}

	return nil
}

// Water records a watering. The timestamp defaults to now and must not lie
// in the future; a completed WATER care event is written alongside.
func (s *plantService) Water(ctx context.Context, userID, plantID string, wateredAt *time.Time) (*domain.Plant, error) {
	plant, err := s.plantRepo.GetByID(ctx, userID, plantID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	t := now
	if wateredAt != nil {
		if wateredAt.After(now) {
			return nil, ErrWateredInFuture
		}
		t = *wateredAt
	}

	if err := s.plantRepo.SetLastWatered(ctx, userID, plantID, t); err != nil {
		return nil, err
	}
	plant.LastWatered = &t

	event := &domain.CareEvent{
		PlantID:     plant.ID,
		EventType:   domain.CareEventWater,
		Completed:   true,
		CompletedAt: &t,
	}
	if err := s.careRepo.Create(ctx, event); err != nil {
		// The watering itself succeeded; history is secondary.
		s.logger.Warn("Failed to record care event",
			zap.String("plant_id", plant.ID),
			zap.Error(err),
		)
	}

	return plant, nil
}

// NeedsWater returns the user's plants that are due or overdue right now.
func (s *plantService) NeedsWater(ctx context.Context, userID string) ([]*domain.Plant, error) {
	plants, err := s.plantRepo.ListAll(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	due := make([]*domain.Plant, 0, len(plants))
	for _, plant := range plants {
		if NeedsWater(plant, now) {
			due = append(due, plant)
		}
	}

	return due, nil
}

// Stats aggregates the user's collection.
func (s *plantService) Stats(ctx context.Context, userID string) (*domain.PlantStats, error) {
	plants, err := s.plantRepo.ListAll(ctx, userID)
	if err != nil {
		return nil, err
	}

	stats := &domain.PlantStats{Total: len(plants)}
	species := make(map[string]struct{})
	now := time.Now()
	var frequencySum int

	for _, plant := range plants {
		frequencySum += plant.WateringFrequency
		if NeedsWater(plant, now) {
			stats.NeedsWater++
		}
		if plant.Species != nil && *plant.Species != "" {
			species[strings.ToLower(*plant.Species)] = struct{}{}
		}
		if plant.LastWatered != nil && (stats.LastWatered == nil || plant.LastWatered.After(*stats.LastWatered)) {
			stats.LastWatered = plant.LastWatered
		}
	}

	stats.SpeciesCount = len(species)
	if stats.Total > 0 {
		stats.AverageFrequencyDays = float64(frequencySum) / float64(stats.Total)
	}

	return stats, nil
}

// History returns a page of a plant's care events after an ownership check.
func (s *plantService) History(ctx context.Context, userID, plantID string, page, limit int) ([]*domain.CareEvent, int, error) {
	if _, err := s.plantRepo.GetByID(ctx, userID, plantID); err != nil {
		return nil, 0, err
	}

	return s.careRepo.ListByPlant(ctx, plantID, page, limit)
}

func (s *plantService) storeImage(ctx context.Context, plantID string, image *ImageUpload) (string, error) {
	key := fmt.Sprintf("plants/%s/%s%s", plantID, uuid.New().String(), image.Ext)

	url, err := s.store.Put(ctx, key, image.Reader, image.Size, image.ContentType)
	if err != nil {
		return "", fmt.Errorf("failed to store image: %w", err)
	}

	return url, nil
}

// removeImage deletes a stored image object; failures are logged, never
// propagated.
func (s *plantService) removeImage(ctx context.Context, imageURL string) {
	key := s.store.KeyFromURL(imageURL)
	if key == "" {
		return
	}

	if err := s.store.Remove(ctx, key); err != nil {
		s.logger.Warn("Failed to remove stored image",
			zap.String("key", key),
			zap.Error(err),
		)
	}
}

func trimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// parseDateFilter accepts RFC 3339 timestamps or bare dates.
func parseDateFilter(value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}

	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return &t, nil
	}
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return &t, nil
	}

	return nil, fmt.Errorf("%q: %w", value, ErrInvalidDateFilter)
}
