package dto

import "time"

// Response is the uniform envelope every endpoint answers with.
type Response struct {
	Success    bool         `json:"success"`
	Message    string       `json:"message"`
	Data       any          `json:"data,omitempty"`
	Errors     []FieldError `json:"errors,omitempty"`
	Pagination *Pagination  `json:"pagination,omitempty"`
}

// FieldError describes a single validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Value   any    `json:"value,omitempty"`
}

// Pagination describes the page window of a list response.
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// NewPagination computes the page count from the total.
func NewPagination(page, limit, total int) *Pagination {
	totalPages := 0
	if limit > 0 {
		totalPages = (total + limit - 1) / limit
	}
	return &Pagination{Page: page, Limit: limit, Total: total, TotalPages: totalPages}
}

// AuthData is the payload of successful register/login/refresh responses.
type AuthData struct {
	AccessToken  string   `json:"access_token"`
	RefreshToken string   `json:"refresh_token"`
	TokenType    string   `json:"token_type"`
	ExpiresIn    int      `json:"expires_in"`
	User         UserInfo `json:"user"`
}

// UserInfo represents user information in auth responses
type UserInfo struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// UserResponse represents a full user profile
type UserResponse struct {
	ID                   string  `json:"id"`
	Email                string  `json:"email"`
	Name                 string  `json:"name"`
	NotificationsEnabled bool    `json:"notifications_enabled"`
	CreatedAt            string  `json:"created_at"`
	UpdatedAt            string  `json:"updated_at"`
	LastLoginAt          *string `json:"last_login_at"`
}

// PlantResponse represents a plant together with its derived watering state.
type PlantResponse struct {
	ID                string     `json:"id"`
	Name              string     `json:"name"`
	Species           *string    `json:"species"`
	Notes             *string    `json:"notes"`
	Location          *string    `json:"location"`
	ImageURL          *string    `json:"image_url"`
	WateringFrequency int        `json:"watering_frequency"`
	LastWatered       *time.Time `json:"last_watered"`
	NextDue           time.Time  `json:"next_due"`
	DaysOverdue       int        `json:"days_overdue"`
	NeedsWater        bool       `json:"needs_water"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// CareEventResponse represents one entry of a plant's care history.
type CareEventResponse struct {
	ID          string     `json:"id"`
	EventType   string     `json:"event_type"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completed_at"`
	Note        *string    `json:"note"`
	CreatedAt   time.Time  `json:"created_at"`
}

// NotificationSettings is the payload of GET /notifications/settings.
type NotificationSettings struct {
	Enabled            bool       `json:"enabled"`
	HasPushToken       bool       `json:"has_push_token"`
	PushTokenUpdatedAt *time.Time `json:"push_token_updated_at"`
}

// ScheduleInfo describes one registered cron entry.
type ScheduleInfo struct {
	Task     string `json:"task"`
	CronSpec string `json:"cron_spec"`
}

// CronStatus is the payload of GET /notifications/cron-status.
type CronStatus struct {
	Schedules       []ScheduleInfo `json:"schedules"`
	LastWateringRun any            `json:"last_watering_run"`
	LastCleanupRun  any            `json:"last_cleanup_run"`
}
