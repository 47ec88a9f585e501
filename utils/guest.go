package utils

import "strings"

const guestNotePrefix = "Guest booking - Email: "

// GuestEmailFromNotes pulls the contact address out of a guest booking's
// client notes. Returns "" when the notes are not a guest marker.
func GuestEmailFromNotes(notes *string) string {
	if notes == nil || !strings.HasPrefix(*notes, guestNotePrefix) {
		return ""
	}
	email := strings.TrimPrefix(*notes, guestNotePrefix)
	if i := strings.IndexByte(email, '\n'); i >= 0 {
		email = email[:i]
	}
	return strings.TrimSpace(email)
}
