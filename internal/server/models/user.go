// Package models defines server-side data models persisted in the database.
package models

import "time"

type User struct {
	ID           int64
	Email        string
	PasswordHash []byte
	Salt         []byte
	Verified     bool
	CreatedAt    time.Time
}
