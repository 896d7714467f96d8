// Package credentials is the persistence boundary of the authentication
// engine: credential records plus the role and store reference data.
package credentials

import (
	"context"

	"github.com/dmitrijs2005/storeauth/internal/server/models"
)

// Mutator edits a freshly read record inside AtomicUpdate. Returning an error
// aborts the update and leaves the stored record untouched. Mutators must be
// fast and free of I/O; hashing and encryption happen before the update.
type Mutator func(u *models.User) error

// Store persists users and exposes reference data.
//
// Lookups of missing records return common.ErrorNotFound.
type Store interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByRefreshLookup(ctx context.Context, lookup string) (*models.User, error)

	// Create inserts a new user and fills ID, Version and timestamps.
	// A taken email yields common.ErrDuplicateEmail.
	Create(ctx context.Context, u *models.User) (*models.User, error)

	// AtomicUpdate applies mutate to the current record of id as one
	// indivisible read-modify-write and returns the committed record.
	// If expectedVersion is set and differs from the stored version the
	// update fails with common.ErrVersionConflict. Errors from mutate are
	// returned unchanged.
	AtomicUpdate(ctx context.Context, id string, expectedVersion *int64, mutate Mutator) (*models.User, error)

	RoleExists(ctx context.Context, id string) (bool, error)
	// StoreExists reports whether an active store with id exists.
	StoreExists(ctx context.Context, id string) (bool, error)
	GetRole(ctx context.Context, id string) (*models.Role, error)
	GetStore(ctx context.Context, id string) (*models.Store, error)
	ListRoles(ctx context.Context) ([]models.Role, error)
	// ListStores returns active stores only.
	ListStores(ctx context.Context) ([]models.Store, error)
}

var (
	_ Store = (*SQLStore)(nil)
	_ Store = (*MemoryStore)(nil)
)
