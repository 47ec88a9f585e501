package utils

import (
	"time"

	"github.com/expertlink/expert_marketplace/models"
)

// SlotsOnDate returns the open slots whose start time falls on the given
// calendar date in loc. Booked or otherwise unavailable slots are dropped.
func SlotsOnDate(slots []models.AvailabilitySlot, date time.Time, loc *time.Location) []models.AvailabilitySlot {
	if loc == nil {
		loc = time.UTC
	}
	year, month, day := date.In(loc).Date()

	matched := make([]models.AvailabilitySlot, 0, len(slots))
	for _, slot := range slots {
		if slot.Status != "available" {
			continue
		}
		y, m, d := slot.StartTime.In(loc).Date()
		if y == year && m == month && d == day {
			matched = append(matched, slot)
		}
	}
	return matched
}

// AvailableDates collects the distinct calendar dates (YYYY-MM-DD in loc)
// that still have at least one open slot.
func AvailableDates(slots []models.AvailabilitySlot, loc *time.Location) []string {
	if loc == nil {
		loc = time.UTC
	}

	seen := make(map[string]bool)
	dates := make([]string, 0)
	for _, slot := range slots {
		if slot.Status != "available" {
			continue
		}
		date := slot.StartTime.In(loc).Format("2006-01-02")
		if !seen[date] {
			seen[date] = true
			dates = append(dates, date)
		}
	}
	return dates
}
