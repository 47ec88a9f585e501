package models

import (
	"time"

	"github.com/google/uuid"
)

type Category struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Name        string    `gorm:"size:100;not null;unique" json:"name"`
	Description *string   `gorm:"type:text" json:"description"`
	Icon        *string   `gorm:"size:100" json:"icon"`
	Color       *string   `gorm:"size:20" json:"color"`
	IsActive    bool      `gorm:"default:true" json:"is_active"`
	SortOrder   int       `gorm:"default:0" json:"sort_order"`

	CreatedAt time.Time `json:"created_at"`
}
