package models

import (
	"time"

	"github.com/google/uuid"
)

type Message struct {
	ID          uuid.UUID  `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	SenderID    uuid.UUID  `gorm:"not null" json:"sender_id"`
	RecipientID uuid.UUID  `gorm:"not null" json:"recipient_id"`
	BookingID   *uuid.UUID `json:"booking_id"`
	Subject     *string    `gorm:"size:255" json:"subject"`
	Content     string     `gorm:"type:text;not null" json:"content"`
	IsRead      bool       `gorm:"default:false" json:"is_read"`

	Sender    User `gorm:"foreignkey:SenderID" json:"sender,omitempty"`
	Recipient User `gorm:"foreignkey:RecipientID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
}
