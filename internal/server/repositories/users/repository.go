// Package users stores registered accounts.
package users

import (
	"context"

	"github.com/dmitrijs2005/pixo/internal/server/models"
)

// Repository is the credential store. Create fails with
// common.ErrDuplicateUser when the username is taken; lookups of unknown
// usernames fail with common.ErrNotFound.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetUserByLogin(ctx context.Context, userName string) (*models.User, error)
}
