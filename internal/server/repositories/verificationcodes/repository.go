// Package verificationcodes stores the pending email confirmation code of
// each unverified user.
package verificationcodes

import (
	"context"

	"github.com/dmitrijs2005/investdesk/internal/server/models"
)

type Repository interface {
	// Upsert replaces any earlier code of the user.
	Upsert(ctx context.Context, code *models.VerificationCode) error
	Find(ctx context.Context, userID int64) (*models.VerificationCode, error)
	Delete(ctx context.Context, userID int64) error
}
