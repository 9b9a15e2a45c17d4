package service

import (
	"fmt"
	"time"

	"github.com/okhomenko/plantkeeper/internal/domain"
)

// NextWateringDue computes when a plant is next due for watering: the last
// watering (or creation, for a never-watered plant) plus the configured
// frequency in days. A brand-new plant therefore becomes due exactly
// frequencyDays after creation, not immediately.
func NextWateringDue(lastWatered *time.Time, createdAt time.Time, frequencyDays int) time.Time {
	base := createdAt
	if lastWatered != nil {
		base = *lastWatered
	}
	return base.AddDate(0, 0, frequencyDays)
}

// DaysOverdue returns the whole calendar days between the due date and now,
// both normalized to start of day. Zero means due today; negative means not
// yet due. Rounding the hour difference absorbs DST offsets.
func DaysOverdue(due, now time.Time) int {
	diff := startOfDay(now).Sub(startOfDay(due))
	days := diff.Hours() / 24
	if days >= 0 {
		return int(days + 0.5)
	}
	return -int(-days + 0.5)
}

// NeedsWater reports whether a plant is due or overdue at the given instant.
// Only zero-or-positive overdue triggers a reminder; negative never does.
func NeedsWater(plant *domain.Plant, now time.Time) bool {
	return PlantDaysOverdue(plant, now) >= 0
}

// PlantDaysOverdue applies DaysOverdue to a plant's own fields.
func PlantDaysOverdue(plant *domain.Plant, now time.Time) int {
	due := NextWateringDue(plant.LastWatered, plant.CreatedAt, plant.WateringFrequency)
	return DaysOverdue(due, now)
}

// ReminderBody renders the reminder text for a plant by how overdue it is.
func ReminderBody(plantName string, daysOverdue int) string {
	switch {
	case daysOverdue <= 0:
		return fmt.Sprintf("%s needs watering today", plantName)
	case daysOverdue == 1:
		return fmt.Sprintf("%s is overdue, it was due yesterday", plantName)
	default:
		return fmt.Sprintf("%s is %d days overdue for watering", plantName, daysOverdue)
	}
}

func startOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}
