// Package models defines the client-side data of the auth session lifecycle.
package models

// Credentials is the persisted authentication state. An empty token or a zero
// UserID means "absent". AccessToken and RefreshToken are always set and
// cleared together.
type Credentials struct {
	AccessToken  string
	RefreshToken string
	UserID       int64
}

// TokenPair is what login and refresh return. A refresh pair replaces the
// previous one; the old refresh token stops working.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}
