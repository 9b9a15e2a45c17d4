package dto

// RegisterRequest represents a registration request
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Name     string `json:"name" binding:"required,max=100"`
}

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest carries the refresh token; the mobile client sends it in
// the body rather than a cookie.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// LogoutRequest optionally carries the refresh token to invalidate.
type LogoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// UpdateProfileRequest updates display name and/or email.
type UpdateProfileRequest struct {
	Name  *string `json:"name" binding:"omitempty,max=100"`
	Email *string `json:"email" binding:"omitempty,email"`
}

// ChangePasswordRequest replaces the user's password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8"`
}

// CreatePlantRequest creates a plant; fields double as multipart form
// fields so the optional image can ride along in the same request.
type CreatePlantRequest struct {
	Name              string  `form:"name" json:"name" binding:"required,max=100"`
	Species           *string `form:"species" json:"species" binding:"omitempty,max=100"`
	Notes             *string `form:"notes" json:"notes"`
	Location          *string `form:"location" json:"location" binding:"omitempty,max=100"`
	WateringFrequency int     `form:"watering_frequency" json:"watering_frequency" binding:"required,min=1,max=365"`
}

// UpdatePlantRequest updates a plant; nil fields are left unchanged.
type UpdatePlantRequest struct {
	Name              *string `form:"name" json:"name" binding:"omitempty,max=100"`
	Species           *string `form:"species" json:"species" binding:"omitempty,max=100"`
	Notes             *string `form:"notes" json:"notes"`
	Location          *string `form:"location" json:"location" binding:"omitempty,max=100"`
	WateringFrequency *int    `form:"watering_frequency" json:"watering_frequency" binding:"omitempty,min=1,max=365"`
}

// ListPlantsRequest holds the query parameters of GET /plants.
type ListPlantsRequest struct {
	Search        string `form:"search"`
	Species       string `form:"species"`
	WateredAfter  string `form:"watered_after"`
	WateredBefore string `form:"watered_before"`
	Page          int    `form:"page,default=1" binding:"omitempty,min=1"`
	Limit         int    `form:"limit,default=20" binding:"omitempty,min=1,max=100"`
}

// WaterPlantRequest optionally overrides the watering timestamp.
type WaterPlantRequest struct {
	WateredAt *string `json:"watered_at"`
}

// RegisterPushTokenRequest registers a device push token.
type RegisterPushTokenRequest struct {
	PushToken string `json:"push_token" binding:"required"`
}

// UpdateNotificationPreferencesRequest toggles reminder delivery.
type UpdateNotificationPreferencesRequest struct {
	Enabled *bool `json:"enabled" binding:"required"`
}
