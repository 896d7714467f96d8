package credentials

import (
	"context"
	"database/sql"
	"errors"

	"github.com/dmitrijs2005/storeauth/internal/common"
	"github.com/dmitrijs2005/storeauth/internal/dbx"
	"github.com/dmitrijs2005/storeauth/internal/server/models"
	"github.com/dmitrijs2005/storeauth/internal/server/repositories/repomanager"
)

// SQLStore implements Store on top of the PostgreSQL repositories.
type SQLStore struct {
	db    *sql.DB
	repos repomanager.RepositoryManager
}

func NewSQLStore(db *sql.DB, repos repomanager.RepositoryManager) *SQLStore {
	return &SQLStore{db: db, repos: repos}
}

func (s *SQLStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.repos.Users(s.db).GetByEmail(ctx, email)
}

func (s *SQLStore) FindByID(ctx context.Context, id string) (*models.User, error) {
	return s.repos.Users(s.db).GetByID(ctx, id)
}

func (s *SQLStore) FindByRefreshLookup(ctx context.Context, lookup string) (*models.User, error) {
	return s.repos.Users(s.db).GetByRefreshLookup(ctx, lookup)
}

func (s *SQLStore) Create(ctx context.Context, u *models.User) (*models.User, error) {
	return s.repos.Users(s.db).Create(ctx, u)
}

// AtomicUpdate locks the row with SELECT ... FOR UPDATE for the duration of
// the transaction, so concurrent updates of the same user serialize.
func (s *SQLStore) AtomicUpdate(ctx context.Context, id string, expectedVersion *int64, mutate Mutator) (*models.User, error) {
	var updated *models.User

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repos.Users(tx)

		u, err := repo.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if expectedVersion != nil && u.Version != *expectedVersion {
			return common.ErrVersionConflict
		}

		version := u.Version
		if err := mutate(u); err != nil {
			return err
		}
		u.ID, u.Version = id, version

		if err := repo.Update(ctx, u); err != nil {
			return err
		}
		updated = u
		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

func (s *SQLStore) RoleExists(ctx context.Context, id string) (bool, error) {
	_, err := s.GetRole(ctx, id)
	return existence(err)
}

func (s *SQLStore) StoreExists(ctx context.Context, id string) (bool, error) {
	st, err := s.GetStore(ctx, id)
	if ok, err := existence(err); !ok || err != nil {
		return ok, err
	}
	return st.Active, nil
}

func (s *SQLStore) GetRole(ctx context.Context, id string) (*models.Role, error) {
	return s.repos.Roles(s.db).GetByID(ctx, id)
}

func (s *SQLStore) GetStore(ctx context.Context, id string) (*models.Store, error) {
	return s.repos.Stores(s.db).GetByID(ctx, id)
}

func (s *SQLStore) ListRoles(ctx context.Context) ([]models.Role, error) {
	return s.repos.Roles(s.db).List(ctx)
}

func (s *SQLStore) ListStores(ctx context.Context) ([]models.Store, error) {
	return s.repos.Stores(s.db).ListActive(ctx)
}

func existence(err error) (bool, error) {
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, common.ErrorNotFound):
		return false, nil
	default:
		return false, err
	}
}
