package models

import (
	"time"

	"github.com/google/uuid"
)

type Payment struct {
	ID          uuid.UUID  `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	BookingID   uuid.UUID  `gorm:"not null;unique" json:"booking_id"`
	PayerID     *uuid.UUID `json:"payer_id"`
	RecipientID uuid.UUID  `gorm:"not null" json:"recipient_id"`

	Amount         float64 `gorm:"type:numeric(10,2);not null" json:"amount"`
	Currency       string  `gorm:"size:3;default:'INR'" json:"currency"`
	PlatformFee    float64 `gorm:"type:numeric(10,2);not null" json:"platform_fee"`
	ExpertEarnings float64 `gorm:"type:numeric(10,2);not null" json:"expert_earnings"`

	CashfreeOrderID   string  `gorm:"size:255;not null;unique" json:"cashfree_order_id"`
	CashfreePaymentID *string `gorm:"size:255" json:"cashfree_payment_id"`
	PaymentMethod     *string `gorm:"size:50" json:"payment_method"`

	Status      string     `gorm:"size:20;not null;default:'pending'" json:"status"`
	ProcessedAt *time.Time `json:"processed_at"`
	ReceiptURL  *string    `gorm:"size:255" json:"receipt_url"`

	Booking   Booking `gorm:"foreignkey:BookingID" json:"booking,omitempty"`
	Payer     *User   `gorm:"foreignkey:PayerID" json:"payer,omitempty"`
	Recipient User    `gorm:"foreignkey:RecipientID" json:"recipient,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
