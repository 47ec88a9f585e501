package models

import (
	"time"

	"github.com/google/uuid"
)

// Expert is the public marketplace profile a user gains once their
// application is approved. It hangs off the users table 1:1.
type Expert struct {
	UserID     uuid.UUID `gorm:"primary_key" json:"user_id"`
	Title      string    `gorm:"size:255;not null" json:"title"`
	HourlyRate float64   `gorm:"type:numeric(10,2);default:0.00" json:"hourly_rate"`
	Currency   string    `gorm:"size:3;default:'INR'" json:"currency"`

	IsApproved bool `gorm:"default:false" json:"is_approved"`
	IsFeatured bool `gorm:"default:false" json:"is_featured"`

	AverageRating float32 `gorm:"default:0" json:"average_rating"`
	TotalReviews  int     `gorm:"default:0" json:"total_reviews"`
	TotalSessions int     `gorm:"default:0" json:"total_sessions"`
	TotalEarnings float64 `gorm:"type:numeric(12,2);default:0.00" json:"-"`

	YearsExperience   *int `json:"years_experience"`
	ResponseTimeHours *int `json:"response_time_hours"`

	User User `gorm:"foreignkey:UserID" json:"user"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"-"`
}
