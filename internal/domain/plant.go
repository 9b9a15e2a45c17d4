package domain

import "time"

// Watering frequency bounds, in days.
const (
	MinWateringFrequency = 1
	MaxWateringFrequency = 365
)

// Plant represents a plant owned by a user
type Plant struct {
	ID                string     `json:"id" db:"id"`
	UserID            string     `json:"user_id" db:"user_id"`
	Name              string     `json:"name" db:"name"`
	Species           *string    `json:"species" db:"species"`
	Notes             *string    `json:"notes" db:"notes"`
	Location          *string    `json:"location" db:"location"`
	ImageURL          *string    `json:"image_url" db:"image_url"`
	WateringFrequency int        `json:"watering_frequency" db:"watering_frequency"`
	LastWatered       *time.Time `json:"last_watered" db:"last_watered"`
	CreatedAt         time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at" db:"updated_at"`
}

// PlantStats aggregates a user's collection for the stats endpoint.
type PlantStats struct {
	Total                int        `json:"total"`
	NeedsWater           int        `json:"needs_water"`
	SpeciesCount         int        `json:"species_count"`
	AverageFrequencyDays float64    `json:"average_frequency_days"`
	LastWatered          *time.Time `json:"last_watered"`
}

// ReminderCandidate is a plant joined with its owner's push token; only
// owners with notifications enabled and a registered token are candidates.
type ReminderCandidate struct {
	Plant     Plant
	OwnerID   string
	PushToken string
}
