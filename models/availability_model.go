package models

import (
	"time"

	"github.com/google/uuid"
)

// AvailabilitySlot is a single-seat bookable interval. A slot is claimed by
// flipping status to "booked" under a row lock, never by a blind update.
type AvailabilitySlot struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	ExpertID  uuid.UUID `gorm:"not null" json:"expert_id"`
	StartTime time.Time `gorm:"not null" json:"start_time"`
	EndTime   time.Time `gorm:"not null" json:"end_time"`
	Status    string    `gorm:"size:20;not null;default:'available'" json:"status"`

	Expert Expert `gorm:"foreignkey:ExpertID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
}
