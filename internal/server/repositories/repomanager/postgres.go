// Package repomanager provides a concrete RepositoryManager for PostgreSQL,
// wiring together the repository constructors.
package repomanager

import (
	"github.com/dmitrijs2005/storeauth/internal/dbx"
	"github.com/dmitrijs2005/storeauth/internal/server/repositories/roles"
	"github.com/dmitrijs2005/storeauth/internal/server/repositories/stores"
	"github.com/dmitrijs2005/storeauth/internal/server/repositories/users"
)

// PostgresRepositoryManager vends PostgreSQL-backed repository implementations.
type PostgresRepositoryManager struct{}

// Users returns a users.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewPostgresRepository(db)
}

// Roles returns a roles.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Roles(db dbx.DBTX) roles.Repository {
	return roles.NewPostgresRepository(db)
}

// Stores returns a stores.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Stores(db dbx.DBTX) stores.Repository {
	return stores.NewPostgresRepository(db)
}

// NewPostgresRepositoryManager constructs a PostgreSQL-backed RepositoryManager.
func NewPostgresRepositoryManager() RepositoryManager {
	return &PostgresRepositoryManager{}
}
