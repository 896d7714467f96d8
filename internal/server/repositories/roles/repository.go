// Package roles reads the role catalogue.
package roles

import (
	"context"

	"github.com/dmitrijs2005/storeauth/internal/server/models"
)

type Repository interface {
	GetByID(ctx context.Context, id string) (*models.Role, error)
	List(ctx context.Context) ([]models.Role, error)
}
