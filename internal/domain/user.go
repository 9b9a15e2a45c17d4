package domain

import "time"

// User represents a user in the system
type User struct {
	ID                   string     `json:"id" db:"id"`
	Email                string     `json:"email" db:"email"`
	PasswordHash         string     `json:"-" db:"password_hash"`
	Name                 string     `json:"name" db:"name"`
	NotificationsEnabled bool       `json:"notifications_enabled" db:"notifications_enabled"`
	PushToken            *string    `json:"-" db:"push_token"`
	PushTokenUpdatedAt   *time.Time `json:"push_token_updated_at" db:"push_token_updated_at"`
	CreatedAt            time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at" db:"updated_at"`
	LastLoginAt          *time.Time `json:"last_login_at" db:"last_login_at"`
}

// HasPushToken reports whether the user has a non-empty push token registered.
func (u *User) HasPushToken() bool {
	return u.PushToken != nil && *u.PushToken != ""
}
