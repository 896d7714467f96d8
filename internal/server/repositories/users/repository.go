// Package users persists credential records.
package users

import (
	"context"

	"github.com/dmitrijs2005/storeauth/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByRefreshLookup(ctx context.Context, lookup string) (*models.User, error)
	// GetByIDForUpdate must run inside a transaction; it locks the row until commit.
	GetByIDForUpdate(ctx context.Context, id string) (*models.User, error)
	// Update writes every mutable column when the stored version still equals
	// user.Version, and bumps user.Version. A stale version yields common.ErrVersionConflict.
	Update(ctx context.Context, user *models.User) error
}
