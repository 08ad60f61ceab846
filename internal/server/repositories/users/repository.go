package users

import (
	"context"

	"github.com/dmitrijs2005/investdesk/internal/server/models"
)

type Repository interface {
	// Create fails with common.ErrorAlreadyExists when the email is taken.
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	MarkVerified(ctx context.Context, id int64) error
}
