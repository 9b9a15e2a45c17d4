package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/okhomenko/plantkeeper/internal/dto"
	"github.com/okhomenko/plantkeeper/internal/repository"
	"github.com/okhomenko/plantkeeper/internal/service"
)

// AuthHandler handles authentication and profile requests
type AuthHandler struct {
	authService service.AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// Register handles user registration
// @Summary Register a new user
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.RegisterRequest true "Registration request"
// @Success 201 {object} dto.Response
// @Failure 400 {object} dto.Response
// @Failure 409 {object} dto.Response
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	auth, err := h.authService.Register(c.Request.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateEmail):
			respondError(c, http.StatusConflict, "A user with this email already exists")
		case errors.Is(err, service.ErrWeakPassword):
			respondError(c, http.StatusBadRequest, err.Error())
		default:
			respondError(c, http.StatusInternalServerError, "Failed to register user")
		}
		return
	}

	respond(c, http.StatusCreated, "User registered successfully", auth)
}

// Login handles user login
// @Summary Login user
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Login request"
// @Success 200 {object} dto.Response
// @Failure 400 {object} dto.Response
// @Failure 401 {object} dto.Response
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	auth, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			respondError(c, http.StatusUnauthorized, err.Error())
			return
		}
		respondError(c, http.StatusInternalServerError, "Failed to login")
		return
	}

	respond(c, http.StatusOK, "Login successful", auth)
}

// Refresh rotates the token pair. The refresh token arrives in the JSON
// body, mobile clients have no cookie jar.
// @Summary Refresh tokens
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.RefreshRequest true "Refresh request"
// @Success 200 {object} dto.Response
// @Failure 400 {object} dto.Response
// @Failure 401 {object} dto.Response
// @Router /auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req dto.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	auth, err := h.authService.RefreshToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		if errors.Is(err, service.ErrInvalidRefreshToken) {
			respondError(c, http.StatusUnauthorized, "Invalid or expired refresh token")
			return
		}
		respondError(c, http.StatusInternalServerError, "Failed to refresh tokens")
		return
	}

	respond(c, http.StatusOK, "Tokens refreshed successfully", auth)
}

// Logout invalidates the current session
// @Summary Logout user
// @Tags auth
// @Security BearerAuth
// @Accept json
// @Produce json
// @Success 200 {object} dto.Response
// @Failure 401 {object} dto.Response
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	// Body is optional here, the access token alone identifies the session.
	var req dto.LogoutRequest
	_ = c.ShouldBindJSON(&req)

	if err := h.authService.Logout(c.Request.Context(), userID, req.RefreshToken); err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to logout")
		return
	}

	respond(c, http.StatusOK, "Logged out successfully", nil)
}

// GetMe returns the current user's profile
// @Summary Get current user profile
// @Tags auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} dto.Response
// @Failure 401 {object} dto.Response
// @Router /auth/me [get]
func (h *AuthHandler) GetMe(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	user, err := h.authService.GetUser(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			respondError(c, http.StatusNotFound, "User not found")
			return
		}
		respondError(c, http.StatusInternalServerError, "Failed to get user")
		return
	}

	respond(c, http.StatusOK, "User profile", user)
}

// UpdateProfile updates name and/or email of the current user
// @Summary Update current user profile
// @Tags auth
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.UpdateProfileRequest true "Profile update"
// @Success 200 {object} dto.Response
// @Failure 400 {object} dto.Response
// @Failure 409 {object} dto.Response
// @Router /auth/profile [put]
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req dto.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	user, err := h.authService.UpdateProfile(c.Request.Context(), userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateEmail):
			respondError(c, http.StatusConflict, "A user with this email already exists")
		case errors.Is(err, repository.ErrNotFound):
			respondError(c, http.StatusNotFound, "User not found")
		default:
			respondError(c, http.StatusInternalServerError, "Failed to update profile")
		}
		return
	}

	respond(c, http.StatusOK, "Profile updated successfully", user)
}

// ChangePassword replaces the current user's password
// @Summary Change password
// @Tags auth
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.ChangePasswordRequest true "Password change"
// @Success 200 {object} dto.Response
// @Failure 400 {object} dto.Response
// @Failure 401 {object} dto.Response
// @Router /auth/password [put]
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req dto.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	if err := h.authService.ChangePassword(c.Request.Context(), userID, &req); err != nil {
		switch {
		case errors.Is(err, service.ErrWrongPassword):
			respondError(c, http.StatusUnauthorized, err.Error())
		case errors.Is(err, service.ErrWeakPassword):
			respondError(c, http.StatusBadRequest, err.Error())
		default:
			respondError(c, http.StatusInternalServerError, "Failed to change password")
		}
		return
	}

	respond(c, http.StatusOK, "Password changed successfully", nil)
}
