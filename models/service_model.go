package models

import (
	"time"

	"github.com/google/uuid"
)

type Service struct {
	ID         uuid.UUID  `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	ExpertID   uuid.UUID  `gorm:"not null" json:"expert_id"`
	CategoryID *uuid.UUID `json:"category_id"`

	Name            string  `gorm:"size:255;not null" json:"name"`
	Description     *string `gorm:"type:text" json:"description"`
	Price           float64 `gorm:"type:numeric(10,2);not null" json:"price"`
	Currency        string  `gorm:"size:3;default:'INR'" json:"currency"`
	DurationMinutes int     `gorm:"not null;default:60" json:"duration_minutes"`
	ServiceType     string  `gorm:"size:20;not null;default:'1on1'" json:"service_type"`
	MaxParticipants int     `gorm:"not null;default:1" json:"max_participants"`
	IsActive        bool    `gorm:"default:true" json:"is_active"`

	Expert   Expert   `gorm:"foreignkey:ExpertID" json:"-"`
	Category Category `gorm:"foreignkey:CategoryID" json:"category,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
