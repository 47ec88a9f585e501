package models

import (
	"time"

	"github.com/google/uuid"
)

type Notification struct {
	ID      uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	UserID  uuid.UUID `gorm:"not null" json:"user_id"`
	Type    string    `gorm:"size:20;not null" json:"type"`
	Title   string    `gorm:"size:255;not null" json:"title"`
	Message string    `gorm:"type:text;not null" json:"message"`
	Data    *string   `gorm:"type:jsonb" json:"data,omitempty"`
	IsRead  bool      `gorm:"default:false" json:"is_read"`

	User User `gorm:"foreignkey:UserID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
}
