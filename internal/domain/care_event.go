package domain

import "time"

// Care event types
const (
	CareEventWater     = "WATER"
	CareEventFertilize = "FERTILIZE"
)

// CareEvent records a care action for a plant, cascade-deleted with it.
type CareEvent struct {
	ID          string     `json:"id" db:"id"`
	PlantID     string     `json:"plant_id" db:"plant_id"`
	EventType   string     `json:"event_type" db:"event_type"`
	Completed   bool       `json:"completed" db:"completed"`
	CompletedAt *time.Time `json:"completed_at" db:"completed_at"`
	Note        *string    `json:"note" db:"note"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
}
