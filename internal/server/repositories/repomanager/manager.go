package repomanager

import (
	"github.com/dmitrijs2005/storeauth/internal/dbx"
	"github.com/dmitrijs2005/storeauth/internal/server/repositories/roles"
	"github.com/dmitrijs2005/storeauth/internal/server/repositories/stores"
	"github.com/dmitrijs2005/storeauth/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to a DBTX, so the same code
// path works on the pool and inside a transaction.
type RepositoryManager interface {
	Users(db dbx.DBTX) users.Repository
	Roles(db dbx.DBTX) roles.Repository
	Stores(db dbx.DBTX) stores.Repository
}
