package utils

import (
	"testing"
	"time"

	"github.com/expertlink/expert_marketplace/models"
	"github.com/google/uuid"
)

func slot(start string, status string) models.AvailabilitySlot {
	startTime, err := time.Parse(time.RFC3339, start)
	if err != nil {
		panic(err)
	}
	return models.AvailabilitySlot{
		ID:        uuid.New(),
		StartTime: startTime,
		EndTime:   startTime.Add(time.Hour),
		Status:    status,
	}
}

func TestSlotsOnDate(t *testing.T) {
	slots := []models.AvailabilitySlot{
		slot("2024-02-20T10:00:00Z", "available"),
		slot("2024-02-20T14:00:00Z", "booked"),
		slot("2024-02-20T16:00:00Z", "available"),
		slot("2024-02-21T10:00:00Z", "available"),
	}

	date, _ := time.Parse("2006-01-02", "2024-02-20")
	matched := SlotsOnDate(slots, date, time.UTC)

	if len(matched) != 2 {
		t.Fatalf("expected 2 open slots on 2024-02-20, got %d", len(matched))
	}
	for _, s := range matched {
		if s.Status != "available" {
			t.Errorf("booked slot leaked into result: %s", s.ID)
		}
		if got := s.StartTime.UTC().Format("2006-01-02"); got != "2024-02-20" {
			t.Errorf("slot from wrong date leaked into result: %s", got)
		}
	}
}

func TestSlotsOnDateEmpty(t *testing.T) {
	date, _ := time.Parse("2006-01-02", "2024-02-20")
	if got := SlotsOnDate(nil, date, time.UTC); len(got) != 0 {
		t.Errorf("expected no slots, got %d", len(got))
	}

	slots := []models.AvailabilitySlot{slot("2024-02-20T10:00:00Z", "booked")}
	if got := SlotsOnDate(slots, date, time.UTC); len(got) != 0 {
		t.Errorf("expected fully booked date to yield no slots, got %d", len(got))
	}
}

func TestAvailableDates(t *testing.T) {
	slots := []models.AvailabilitySlot{
		slot("2024-02-20T10:00:00Z", "available"),
		slot("2024-02-20T16:00:00Z", "available"),
		slot("2024-02-21T10:00:00Z", "booked"),
		slot("2024-02-22T09:00:00Z", "available"),
	}

	dates := AvailableDates(slots, time.UTC)
	if len(dates) != 2 {
		t.Fatalf("expected 2 bookable dates, got %v", dates)
	}
	if dates[0] != "2024-02-20" || dates[1] != "2024-02-22" {
		t.Errorf("unexpected dates: %v", dates)
	}
}
