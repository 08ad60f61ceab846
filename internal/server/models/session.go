package models

import "time"

// Session is one login of a user on some device. Only the hash of its
// refresh token is stored; rotating the token replaces the hash.
type Session struct {
	ID               int64
	UserID           int64
	RefreshTokenHash string
	IP               string
	Location         *string
	CreatedAt        time.Time
	ExpiresAt        time.Time
}
