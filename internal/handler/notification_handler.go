package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/okhomenko/plantkeeper/internal/dto"
	"github.com/okhomenko/plantkeeper/internal/service"
)

// WateringTrigger enqueues an on-demand watering scan and reports the
// registered schedules.
type WateringTrigger interface {
	TriggerWateringScan(ctx context.Context) error
	Schedules() []dto.ScheduleInfo
}

// NotificationHandler handles push token and reminder settings requests
type NotificationHandler struct {
	notifications service.NotificationService
	reminders     *service.ReminderService
	trigger       WateringTrigger
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(
	notifications service.NotificationService,
	reminders *service.ReminderService,
	trigger WateringTrigger,
) *NotificationHandler {
	return &NotificationHandler{
		notifications: notifications,
		reminders:     reminders,
		trigger:       trigger,
	}
}

// RegisterToken stores the device's Expo push token
// @Summary Register push token
// @Tags notifications
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.RegisterPushTokenRequest true "Push token"
// @Success 200 {object} dto.Response
// @Failure 400 {object} dto.Response
// @Router /notifications/register-token [post]
func (h *NotificationHandler) RegisterToken(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req dto.RegisterPushTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	if err := h.notifications.RegisterToken(c.Request.Context(), userID, req.PushToken); err != nil {
		if errors.Is(err, service.ErrInvalidPushToken) {
			respondError(c, http.StatusBadRequest, "Invalid Expo push token")
			return
		}
		respondError(c, http.StatusInternalServerError, "Failed to register push token")
		return
	}

	respond(c, http.StatusOK, "Push token registered successfully", nil)
}

// ClearToken removes the stored push token
// @Summary Remove push token
// @Tags notifications
// @Security BearerAuth
// @Produce json
// @Success 200 {object} dto.Response
// @Router /notifications/token [delete]
func (h *NotificationHandler) ClearToken(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	if err := h.notifications.ClearToken(c.Request.Context(), userID); err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to remove push token")
		return
	}

	respond(c, http.StatusOK, "Push token removed successfully", nil)
}

// UpdatePreferences toggles reminder delivery
// @Summary Update notification preferences
// @Tags notifications
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.UpdateNotificationPreferencesRequest true "Preferences"
// @Success 200 {object} dto.Response
// @Failure 400 {object} dto.Response
// @Router /notifications/preferences [put]
func (h *NotificationHandler) UpdatePreferences(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req dto.UpdateNotificationPreferencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	if err := h.notifications.UpdatePreferences(c.Request.Context(), userID, *req.Enabled); err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to update preferences")
		return
	}

	respond(c, http.StatusOK, "Notification preferences updated", nil)
}

// Settings returns the user's notification state
// @Summary Get notification settings
// @Tags notifications
// @Security BearerAuth
// @Produce json
// @Success 200 {object} dto.Response
// @Router /notifications/settings [get]
func (h *NotificationHandler) Settings(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	settings, err := h.notifications.Settings(c.Request.Context(), userID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to get notification settings")
		return
	}

	respond(c, http.StatusOK, "Notification settings", settings)
}

// SendTest delivers a test notification to the caller's device
// @Summary Send test notification
// @Tags notifications
// @Security BearerAuth
// @Produce json
// @Success 200 {object} dto.Response
// @Failure 400 {object} dto.Response
// @Router /notifications/test [post]
func (h *NotificationHandler) SendTest(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	if err := h.notifications.SendTest(c.Request.Context(), userID); err != nil {
		if errors.Is(err, service.ErrNoPushToken) {
			respondError(c, http.StatusBadRequest, "No push token registered for this account")
			return
		}
		respondError(c, http.StatusInternalServerError, "Failed to send test notification")
		return
	}

	respond(c, http.StatusOK, "Test notification sent", nil)
}

// TriggerWateringCheck enqueues a watering scan immediately
// @Summary Trigger watering check
// @Tags notifications
// @Security BearerAuth
// @Produce json
// @Success 202 {object} dto.Response
// @Failure 409 {object} dto.Response
// @Router /notifications/trigger-watering-check [post]
func (h *NotificationHandler) TriggerWateringCheck(c *gin.Context) {
	if _, ok := currentUserID(c); !ok {
		return
	}

	if err := h.trigger.TriggerWateringScan(c.Request.Context()); err != nil {
		if errors.Is(err, service.ErrScanInProgress) {
			respondError(c, http.StatusConflict, "A watering scan is already running")
			return
		}
		respondError(c, http.StatusInternalServerError, "Failed to trigger watering scan")
		return
	}

	respond(c, http.StatusAccepted, "Watering scan triggered", nil)
}

// CronStatus reports the registered schedules and last run outcomes
// @Summary Scheduler status
// @Tags notifications
// @Security BearerAuth
// @Produce json
// @Success 200 {object} dto.Response
// @Router /notifications/cron-status [get]
func (h *NotificationHandler) CronStatus(c *gin.Context) {
	if _, ok := currentUserID(c); !ok {
		return
	}

	status := dto.CronStatus{
		Schedules: h.trigger.Schedules(),
	}
	if run := h.reminders.LastRun(); run != nil {
		status.LastWateringRun = run
	}
	if cleanup := h.notifications.LastCleanup(); cleanup != nil {
		status.LastCleanupRun = cleanup
	}

	respond(c, http.StatusOK, "Scheduler status", status)
}
