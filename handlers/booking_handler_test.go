package handlers

import (
	"testing"
	"time"

	"github.com/expertlink/expert_marketplace/payments"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

func TestCreateBookingRequestValidation(t *testing.T) {
	cases := []struct {
		name    string
		req     CreateBookingRequest
		wantErr bool
	}{
		{
			name: "valid authed request",
			req: CreateBookingRequest{
				ServiceID:          uuid.New().String(),
				AvailabilitySlotID: uuid.New().String(),
			},
			wantErr: false,
		},
		{
			name: "valid guest request",
			req: CreateBookingRequest{
				ServiceID:          uuid.New().String(),
				AvailabilitySlotID: uuid.New().String(),
				GuestEmail:         "guest@example.com",
			},
			wantErr: false,
		},
		{
			name: "missing service",
			req: CreateBookingRequest{
				AvailabilitySlotID: uuid.New().String(),
			},
			wantErr: true,
		},
		{
			name: "malformed slot id",
			req: CreateBookingRequest{
				ServiceID:          uuid.New().String(),
				AvailabilitySlotID: "not-a-uuid",
			},
			wantErr: true,
		},
		{
			name: "malformed guest email",
			req: CreateBookingRequest{
				ServiceID:          uuid.New().String(),
				AvailabilitySlotID: uuid.New().String(),
				GuestEmail:         "not-an-email",
			},
			wantErr: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := validate.Struct(tc.req)
			if tc.wantErr && err == nil {
				t.Fatal("expected a validation error, got none")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("expected no validation error, got: %v", err)
			}
		})
	}
}

func TestCanReschedule(t *testing.T) {
	// A pending booking still has a pending payment resolving against its
	// original slot, so only confirmed bookings may move.
	cases := []struct {
		status string
		want   bool
	}{
		{"confirmed", true},
		{"pending", false},
		{"completed", false},
		{"cancelled", false},
		{"rescheduled", false},
	}
	for _, tc := range cases {
		if got := canReschedule(tc.status); got != tc.want {
			t.Errorf("canReschedule(%q) = %v, want %v", tc.status, got, tc.want)
		}
	}
}

func TestSessionDescription(t *testing.T) {
	if got := sessionDescription("Asha Rao", "Mock Interview"); got != "Session with Asha Rao" {
		t.Errorf("sessionDescription with expert name = %q", got)
	}
	if got := sessionDescription("", "Mock Interview"); got != "Session: Mock Interview" {
		t.Errorf("sessionDescription without expert name = %q", got)
	}
}

func TestPlatformFeePercent(t *testing.T) {
	t.Setenv("PLATFORM_FEE_PERCENT", "")
	if got := platformFeePercent(); got != payments.DefaultPlatformFeePercent {
		t.Fatalf("expected default fee percent %.1f, got %.1f", payments.DefaultPlatformFeePercent, got)
	}

	t.Setenv("PLATFORM_FEE_PERCENT", "15")
	if got := platformFeePercent(); got != 15 {
		t.Fatalf("expected overridden fee percent 15, got %.1f", got)
	}

	// Out-of-range and garbage values fall back to the default.
	t.Setenv("PLATFORM_FEE_PERCENT", "150")
	if got := platformFeePercent(); got != payments.DefaultPlatformFeePercent {
		t.Fatalf("expected fallback for out-of-range value, got %.1f", got)
	}
	t.Setenv("PLATFORM_FEE_PERCENT", "ten")
	if got := platformFeePercent(); got != payments.DefaultPlatformFeePercent {
		t.Fatalf("expected fallback for garbage value, got %.1f", got)
	}
}

func TestParseToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	userID := uuid.New()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID.String(),
		"role":    "user",
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}

	claims, err := parseToken(signed)
	if err != nil {
		t.Fatalf("expected token to parse, got: %v", err)
	}
	if claims["user_id"] != userID.String() {
		t.Fatalf("expected user_id %s, got %v", userID, claims["user_id"])
	}

	if _, err := parseToken("not-a-token"); err == nil {
		t.Fatal("expected an error for a malformed token")
	}

	wrongKey, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID.String(),
		"exp":     time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("another-secret"))
	if _, err := parseToken(wrongKey); err == nil {
		t.Fatal("expected an error for a token signed with the wrong key")
	}
}
