package service

import (
	"testing"
	"time"

	"github.com/okhomenko/plantkeeper/internal/domain"
	"github.com/stretchr/testify/assert"
)

func day(offset int) time.Time {
	base := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	return base.AddDate(0, 0, offset)
}

func TestNextWateringDue_FromLastWatered(t *testing.T) {
	watered := day(0)
	due := NextWateringDue(&watered, day(-30), 7)
	assert.Equal(t, day(7), due)
}

func TestNextWateringDue_FallsBackToCreatedAt(t *testing.T) {
	due := NextWateringDue(nil, day(0), 7)
	assert.Equal(t, day(7), due)
}

func TestDaysOverdue(t *testing.T) {
	tests := []struct {
		name string
		due  time.Time
		now  time.Time
		want int
	}{
		{"due today", day(0), day(0), 0},
		{"one day before due", day(7), day(6), -1},
		{"due day reached", day(7), day(7), 0},
		{"two days past due", day(7), day(9), 2},
		{"ignores time of day", day(0), day(3).Add(11 * time.Hour), 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DaysOverdue(tt.due, tt.now))
		})
	}
}

func TestDaysOverdue_AcrossDSTChange(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Berlin")
	if err != nil {
		t.Skip("tzdata unavailable")
	}

	// DST starts 2026-03-29 in Berlin; that day is 23 hours long.
	due := time.Date(2026, time.March, 28, 9, 0, 0, 0, loc)
	now := time.Date(2026, time.March, 30, 9, 0, 0, 0, loc)
	assert.Equal(t, 2, DaysOverdue(due, now))
}

func TestNeedsWater(t *testing.T) {
	watered := day(-7)
	plant := &domain.Plant{WateringFrequency: 7, LastWatered: &watered, CreatedAt: day(-30)}

	assert.True(t, NeedsWater(plant, day(0)), "due exactly today")
	assert.True(t, NeedsWater(plant, day(2)), "overdue")
	assert.False(t, NeedsWater(plant, day(-1)), "not yet due")
}

func TestNeedsWater_WateringResets(t *testing.T) {
	watered := day(-10)
	plant := &domain.Plant{WateringFrequency: 7, LastWatered: &watered, CreatedAt: day(-30)}
	assert.True(t, NeedsWater(plant, day(0)))

	rewatered := day(0)
	plant.LastWatered = &rewatered
	assert.False(t, NeedsWater(plant, day(0)))
}

func TestPlantDaysOverdue_NeverWatered(t *testing.T) {
	plant := &domain.Plant{WateringFrequency: 7, CreatedAt: day(-9)}
	assert.Equal(t, 2, PlantDaysOverdue(plant, day(0)))
}

func TestReminderBody(t *testing.T) {
	assert.Equal(t, "Monstera needs watering today", ReminderBody("Monstera", 0))
	assert.Equal(t, "Monstera is overdue, it was due yesterday", ReminderBody("Monstera", 1))
	assert.Equal(t, "Monstera is 3 days overdue for watering", ReminderBody("Monstera", 3))
}
