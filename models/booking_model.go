package models

import (
	"time"

	"github.com/google/uuid"
)

type Booking struct {
	ID                 uuid.UUID  `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	ClientID           *uuid.UUID `json:"client_id"`
	ExpertID           uuid.UUID  `gorm:"not null" json:"expert_id"`
	ServiceID          uuid.UUID  `gorm:"not null" json:"service_id"`
	AvailabilitySlotID uuid.UUID  `gorm:"not null" json:"availability_slot_id"`

	ScheduledAt     time.Time `gorm:"not null" json:"scheduled_at"`
	DurationMinutes int       `gorm:"not null" json:"duration_minutes"`
	TotalAmount     float64   `gorm:"type:numeric(10,2);not null" json:"total_amount"`
	Currency        string    `gorm:"size:3;default:'INR'" json:"currency"`
	Status          string    `gorm:"size:20;not null;default:'pending'" json:"status"`

	ClientNotes        *string `gorm:"type:text" json:"client_notes"`
	ExpertNotes        *string `gorm:"type:text" json:"expert_notes"`
	CancellationReason *string `gorm:"type:text" json:"cancellation_reason"`
	MeetingURL         *string `gorm:"size:255" json:"meeting_url"`

	// Reschedule chain: the booking this one replaced, if any.
	RescheduledFrom *uuid.UUID `json:"rescheduled_from"`

	Client           *User            `gorm:"foreignkey:ClientID" json:"client,omitempty"`
	Expert           Expert           `gorm:"foreignkey:ExpertID" json:"expert,omitempty"`
	Service          Service          `gorm:"foreignkey:ServiceID" json:"service,omitempty"`
	AvailabilitySlot AvailabilitySlot `gorm:"foreignkey:AvailabilitySlotID" json:"availability_slot,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
