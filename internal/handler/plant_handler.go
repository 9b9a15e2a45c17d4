package handler

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/okhomenko/plantkeeper/internal/domain"
	"github.com/okhomenko/plantkeeper/internal/dto"
	"github.com/okhomenko/plantkeeper/internal/repository"
	"github.com/okhomenko/plantkeeper/internal/service"
)

// Sniffed content types accepted for plant photos, mapped to the file
// extension stored in the object key.
var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// PlantHandler handles plant collection requests
type PlantHandler struct {
	plantService service.PlantService
	maxImageSize int64
}

// NewPlantHandler creates a new plant handler
func NewPlantHandler(plantService service.PlantService, maxImageSize int64) *PlantHandler {
	return &PlantHandler{
		plantService: plantService,
		maxImageSize: maxImageSize,
	}
}

// Create adds a plant, optionally with a photo in a multipart form
// @Summary Create a plant
// @Tags plants
// @Security BearerAuth
// @Accept json
// @Accept multipart/form-data
// @Produce json
// @Success 201 {object} dto.Response
// @Failure 400 {object} dto.Response
// @Failure 409 {object} dto.Response
// @Failure 413 {object} dto.Response
// @Failure 415 {object} dto.Response
// @Router /plants [post]
func (h *PlantHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req dto.CreatePlantRequest
	if err := bindPlantRequest(c, &req); err != nil {
		respondBindError(c, err)
		return
	}

	image, file, ok := h.extractImage(c)
	if !ok {
		return
	}
	if file != nil {
		defer file.Close()
	}

	plant, err := h.plantService.Create(c.Request.Context(), userID, &req, image)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicatePlantName) {
			respondError(c, http.StatusConflict, "You already have a plant with this name")
			return
		}
		respondError(c, http.StatusInternalServerError, "Failed to create plant")
		return
	}

	respond(c, http.StatusCreated, "Plant created successfully", toPlantResponse(plant, time.Now()))
}

// List returns the user's plants with filters and pagination
// @Summary List plants
// @Tags plants
// @Security BearerAuth
// @Produce json
// @Param search query string false "Substring match on name, species and notes"
// @Param species query string false "Exact species filter"
// @Param watered_after query string false "Lower bound on last watering"
// @Param watered_before query string false "Upper bound on last watering"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} dto.Response
// @Router /plants [get]
func (h *PlantHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req dto.ListPlantsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondBindError(c, err)
		return
	}

	plants, total, err := h.plantService.List(c.Request.Context(), userID, &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidDateFilter) {
			respondError(c, http.StatusBadRequest, err.Error())
			return
		}
		respondError(c, http.StatusInternalServerError, "Failed to list plants")
		return
	}

	respondPaginated(c, "Plants retrieved successfully",
		toPlantResponses(plants, time.Now()),
		dto.NewPagination(req.Page, req.Limit, total),
	)
}

// Get returns a single plant
// @Summary Get a plant
// @Tags plants
// @Security BearerAuth
// @Produce json
// @Param id path string true "Plant ID"
// @Success 200 {object} dto.Response
// @Failure 404 {object} dto.Response
// @Router /plants/{id} [get]
func (h *PlantHandler) Get(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	plant, err := h.plantService.Get(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		h.respondPlantError(c, err, "Failed to get plant")
		return
	}

	respond(c, http.StatusOK, "Plant retrieved successfully", toPlantResponse(plant, time.Now()))
}

// Update modifies a plant; absent fields stay unchanged
// @Summary Update a plant
// @Tags plants
// @Security BearerAuth
// @Accept json
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Plant ID"
// @Success 200 {object} dto.Response
// @Failure 404 {object} dto.Response
// @Failure 409 {object} dto.Response
// @Router /plants/{id} [put]
func (h *PlantHandler) Update(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req dto.UpdatePlantRequest
	if err := bindPlantRequest(c, &req); err != nil {
		respondBindError(c, err)
		return
	}

	image, file, ok := h.extractImage(c)
	if !ok {
		return
	}
	if file != nil {
		defer file.Close()
	}

	plant, err := h.plantService.Update(c.Request.Context(), userID, c.Param("id"), &req, image)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicatePlantName) {
			respondError(c, http.StatusConflict, "You already have a plant with this name")
			return
		}
		h.respondPlantError(c, err, "Failed to update plant")
		return
	}

	respond(c, http.StatusOK, "Plant updated successfully", toPlantResponse(plant, time.Now()))
}

// Delete removes a plant and its stored photo
// @Summary Delete a plant
// @Tags plants
// @Security BearerAuth
// @Produce json
// @Param id path string true "Plant ID"
// @Success 200 {object} dto.Response
// @Failure 404 {object} dto.Response
// @Router /plants/{id} [delete]
func (h *PlantHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	if err := h.plantService.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
		h.respondPlantError(c, err, "Failed to delete plant")
		return
	}

	respond(c, http.StatusOK, "Plant deleted successfully", nil)
}

// Water records a watering and resets the due date
// @Summary Water a plant
// @Tags plants
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Plant ID"
// @Success 200 {object} dto.Response
// @Failure 400 {object} dto.Response
// @Failure 404 {object} dto.Response
// @Router /plants/{id}/water [post]
func (h *PlantHandler) Water(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	// Body is optional, an empty POST waters the plant now.
	var req dto.WaterPlantRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}
	}

	var wateredAt *time.Time
	if req.WateredAt != nil {
		parsed, err := time.Parse(time.RFC3339, *req.WateredAt)
		if err != nil {
			respondError(c, http.StatusBadRequest, "watered_at must be an RFC 3339 timestamp")
			return
		}
		wateredAt = &parsed
	}

	plant, err := h.plantService.Water(c.Request.Context(), userID, c.Param("id"), wateredAt)
	if err != nil {
		if errors.Is(err, service.ErrWateredInFuture) {
			respondError(c, http.StatusBadRequest, err.Error())
			return
		}
		h.respondPlantError(c, err, "Failed to water plant")
		return
	}

	respond(c, http.StatusOK, "Plant watered successfully", toPlantResponse(plant, time.Now()))
}

// NeedsWater lists the plants due or overdue today
// @Summary List plants needing water
// @Tags plants
// @Security BearerAuth
// @Produce json
// @Success 200 {object} dto.Response
// @Router /plants/needs-water [get]
func (h *PlantHandler) NeedsWater(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	plants, err := h.plantService.NeedsWater(c.Request.Context(), userID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to list plants needing water")
		return
	}

	respond(c, http.StatusOK, "Plants needing water", toPlantResponses(plants, time.Now()))
}

// Stats summarizes the user's collection
// @Summary Collection statistics
// @Tags plants
// @Security BearerAuth
// @Produce json
// @Success 200 {object} dto.Response
// @Router /plants/stats [get]
func (h *PlantHandler) Stats(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	stats, err := h.plantService.Stats(c.Request.Context(), userID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to compute statistics")
		return
	}

	respond(c, http.StatusOK, "Collection statistics", stats)
}

// History lists a plant's care events, newest first
// @Summary Plant care history
// @Tags plants
// @Security BearerAuth
// @Produce json
// @Param id path string true "Plant ID"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} dto.Response
// @Failure 404 {object} dto.Response
// @Router /plants/{id}/history [get]
func (h *PlantHandler) History(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req dto.ListPlantsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondBindError(c, err)
		return
	}

	events, total, err := h.plantService.History(c.Request.Context(), userID, c.Param("id"), req.Page, req.Limit)
	if err != nil {
		h.respondPlantError(c, err, "Failed to get care history")
		return
	}

	responses := make([]dto.CareEventResponse, 0, len(events))
	for _, event := range events {
		responses = append(responses, dto.CareEventResponse{
			ID:          event.ID,
			EventType:   event.EventType,
			Completed:   event.Completed,
			CompletedAt: event.CompletedAt,
			Note:        event.Note,
			CreatedAt:   event.CreatedAt,
		})
	}

	respondPaginated(c, "Care history retrieved successfully",
		responses, dto.NewPagination(req.Page, req.Limit, total))
}

func (h *PlantHandler) respondPlantError(c *gin.Context, err error, fallback string) {
	if errors.Is(err, repository.ErrNotFound) {
		respondError(c, http.StatusNotFound, "Plant not found")
		return
	}
	respondError(c, http.StatusInternalServerError, fallback)
}

// bindPlantRequest binds either a JSON body or the text fields of a
// multipart form into the same request struct.
func bindPlantRequest(c *gin.Context, req any) error {
	if isMultipart(c) {
		return c.ShouldBind(req)
	}
	return c.ShouldBindJSON(req)
}

func isMultipart(c *gin.Context) bool {
	return strings.HasPrefix(c.ContentType(), "multipart/form-data")
}

// extractImage pulls the optional "image" part out of a multipart request
// and validates size and sniffed content type. It writes the error response
// itself and reports ok=false when the request must not proceed.
func (h *PlantHandler) extractImage(c *gin.Context) (*service.ImageUpload, multipart.File, bool) {
	if !isMultipart(c) {
		return nil, nil, true
	}

	header, err := c.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil, true
		}
		respondError(c, http.StatusBadRequest, "Invalid image upload")
		return nil, nil, false
	}

	if header.Size > h.maxImageSize {
		respondError(c, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("Image exceeds the maximum size of %d bytes", h.maxImageSize))
		return nil, nil, false
	}

	file, err := header.Open()
	if err != nil {
		respondError(c, http.StatusBadRequest, "Failed to read image upload")
		return nil, nil, false
	}

	// Sniff the real content type, the client-supplied header is not trusted.
	head := make([]byte, 512)
	n, err := file.Read(head)
	if err != nil && n == 0 {
		file.Close()
		respondError(c, http.StatusBadRequest, "Failed to read image upload")
		return nil, nil, false
	}
	contentType := http.DetectContentType(head[:n])

	ext, allowed := allowedImageTypes[contentType]
	if !allowed {
		file.Close()
		respondError(c, http.StatusUnsupportedMediaType, "Image must be JPEG, PNG or WebP")
		return nil, nil, false
	}

	if _, err := file.Seek(0, 0); err != nil {
		file.Close()
		respondError(c, http.StatusBadRequest, "Failed to read image upload")
		return nil, nil, false
	}

	// Prefer the original extension when it matches the sniffed type.
	if orig := strings.ToLower(filepath.Ext(header.Filename)); orig == ".jpeg" && ext == ".jpg" {
		ext = ".jpeg"
	}

	return &service.ImageUpload{
		Reader:      file,
		Size:        header.Size,
		ContentType: contentType,
		Ext:         ext,
	}, file, true
}

func toPlantResponse(plant *domain.Plant, now time.Time) *dto.PlantResponse {
	due := service.NextWateringDue(plant.LastWatered, plant.CreatedAt, plant.WateringFrequency)
	daysOverdue := service.DaysOverdue(due, now)
	needsWater := daysOverdue >= 0
	if daysOverdue < 0 {
		daysOverdue = 0
	}

	return &dto.PlantResponse{
		ID:                plant.ID,
		Name:              plant.Name,
		Species:           plant.Species,
		Notes:             plant.Notes,
		Location:          plant.Location,
		ImageURL:          plant.ImageURL,
		WateringFrequency: plant.WateringFrequency,
		LastWatered:       plant.LastWatered,
		NextDue:           due,
		DaysOverdue:       daysOverdue,
		NeedsWater:        needsWater,
		CreatedAt:         plant.CreatedAt,
		UpdatedAt:         plant.UpdatedAt,
	}
}

func toPlantResponses(plants []*domain.Plant, now time.Time) []*dto.PlantResponse {
	responses := make([]*dto.PlantResponse, 0, len(plants))
	for _, plant := range plants {
		responses = append(responses, toPlantResponse(plant, now))
	}
	return responses
}
