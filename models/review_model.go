package models

import (
	"time"

	"github.com/google/uuid"
)

type Review struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	BookingID  uuid.UUID `gorm:"not null;unique" json:"booking_id"`
	ReviewerID uuid.UUID `gorm:"not null" json:"reviewer_id"`
	ExpertID   uuid.UUID `gorm:"not null" json:"expert_id"`
	Rating     int       `gorm:"not null" json:"rating"`
	Comment    string    `gorm:"type:text" json:"comment"`
	IsPublic   bool      `gorm:"default:true" json:"is_public"`

	Booking  Booking `gorm:"foreignkey:BookingID" json:"-"`
	Reviewer User    `gorm:"foreignkey:ReviewerID" json:"reviewer,omitempty"`
	Expert   Expert  `gorm:"foreignkey:ExpertID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"-"`
}
