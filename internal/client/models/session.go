package models

import "time"

// Session is one server-tracked device or client of the current user.
type Session struct {
	ID        int64
	UserID    int64
	CreatedAt time.Time
	IP        string
	// Location is nil when the server could not resolve one.
	Location *string
	// IsCurrent marks the session backing the caller's own access token.
	// It cannot be revoked through the session directory.
	IsCurrent bool
}
