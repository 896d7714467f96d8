// Package stores reads the tenant catalogue.
package stores

import (
	"context"

	"github.com/dmitrijs2005/storeauth/internal/server/models"
)

type Repository interface {
	GetByID(ctx context.Context, id string) (*models.Store, error)
	ListActive(ctx context.Context) ([]models.Store, error)
}
