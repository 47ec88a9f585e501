package services

import (
	"testing"

	"github.com/expertlink/expert_marketplace/payments"
)

func TestStatusLabel(t *testing.T) {
	cases := []struct {
		paymentStatus string
		want          string
	}{
		{"completed", payments.OrderStatusSuccess},
		{"failed", payments.OrderStatusFailure},
		{"refunded", payments.OrderStatusFailure},
		{"pending", payments.OrderStatusPending},
	}

	for _, tc := range cases {
		if got := statusLabel(tc.paymentStatus); got != tc.want {
			t.Errorf("statusLabel(%q) = %q, want %q", tc.paymentStatus, got, tc.want)
		}
	}
}
