package utils

import "testing"

func TestGuestEmailFromNotes(t *testing.T) {
	ptr := func(s string) *string { return &s }

	cases := []struct {
		name  string
		notes *string
		want  string
	}{
		{"nil notes", nil, ""},
		{"plain client notes", ptr("Please call me beforehand"), ""},
		{"guest marker", ptr("Guest booking - Email: jane@example.com"), "jane@example.com"},
		{"guest marker with extra notes", ptr("Guest booking - Email: jane@example.com\nPlease call me"), "jane@example.com"},
		{"guest marker with trailing space", ptr("Guest booking - Email: jane@example.com "), "jane@example.com"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := GuestEmailFromNotes(tc.notes); got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}
