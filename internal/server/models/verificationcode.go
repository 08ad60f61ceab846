package models

import "time"

// VerificationCode is the pending email confirmation of a user. A user has
// at most one; issuing a new one replaces it.
type VerificationCode struct {
	UserID    int64
	Code      string
	ExpiresAt time.Time
}
