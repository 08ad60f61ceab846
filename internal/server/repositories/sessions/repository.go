// Package sessions stores login sessions and their refresh token hashes.
package sessions

import (
	"context"
	"time"

	"github.com/dmitrijs2005/investdesk/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, s *models.Session) (*models.Session, error)

	// FindByTokenHash returns common.ErrorNotFound for an unknown hash.
	FindByTokenHash(ctx context.Context, hash string) (*models.Session, error)

	Get(ctx context.Context, id int64) (*models.Session, error)

	// Rotate swaps the session's token hash only if it still equals oldHash,
	// so one refresh token can be redeemed once. Otherwise common.ErrorNotFound.
	Rotate(ctx context.Context, id int64, oldHash, newHash string, expiresAt time.Time) error

	// ListByUser returns the user's sessions, newest first.
	ListByUser(ctx context.Context, userID int64) ([]models.Session, error)

	// Delete removes session id if it belongs to userID, else common.ErrorNotFound.
	Delete(ctx context.Context, id, userID int64) error
}
