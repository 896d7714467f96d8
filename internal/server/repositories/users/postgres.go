package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/storeauth/internal/common"
	"github.com/dmitrijs2005/storeauth/internal/dbx"
	"github.com/dmitrijs2005/storeauth/internal/server/models"
)

const userColumns = `id, email, password_hash, full_name, phone, role_id, store_id, active,
		 mfa_enabled, mfa_secret_encrypted, mfa_pending_token_id,
		 failed_attempts, last_failed_at, locked_until,
		 refresh_token_hash, refresh_token_lookup, refresh_token_expires_at,
		 version, created_at, updated_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func scanUser(row *sql.Row) (*models.User, error) {
	u := &models.User{}
	err := row.Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.FullName, &u.Phone, &u.RoleID, &u.StoreID, &u.Active,
		&u.MfaEnabled, &u.MfaSecretEncrypted, &u.MfaPendingTokenID,
		&u.FailedAttempts, &u.LastFailedAt, &u.LockedUntil,
		&u.RefreshTokenHash, &u.RefreshTokenLookup, &u.RefreshTokenExpiresAt,
		&u.Version, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || dbx.IsInvalidText(err) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return u, nil
}

func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {

	query :=
		`INSERT INTO users (email, password_hash, full_name, phone, role_id, store_id, active, mfa_enabled, failed_attempts)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING id, version, created_at, updated_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		user.Email, user.PasswordHash, user.FullName, user.Phone, user.RoleID, user.StoreID,
		user.Active, user.MfaEnabled, user.FailedAttempts,
	).Scan(&user.ID, &user.Version, &user.CreatedAt, &user.UpdatedAt)

	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, common.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + `
		 FROM users
		 WHERE email = $1
		 `
	return scanUser(r.db.QueryRowContext(ctx, query, email))
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + `
		 FROM users
		 WHERE id = $1
		 `
	return scanUser(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepository) GetByRefreshLookup(ctx context.Context, lookup string) (*models.User, error) {
	query := `SELECT ` + userColumns + `
		 FROM users
		 WHERE refresh_token_lookup = $1
		 `
	return scanUser(r.db.QueryRowContext(ctx, query, lookup))
}

func (r *PostgresRepository) GetByIDForUpdate(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + `
		 FROM users
		 WHERE id = $1
		 FOR UPDATE
		 `
	return scanUser(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepository) Update(ctx context.Context, user *models.User) error {

	query :=
		`UPDATE users SET
		   password_hash = $2, full_name = $3, phone = $4, role_id = $5, store_id = $6, active = $7,
		   mfa_enabled = $8, mfa_secret_encrypted = $9, mfa_pending_token_id = $10,
		   failed_attempts = $11, last_failed_at = $12, locked_until = $13,
		   refresh_token_hash = $14, refresh_token_lookup = $15, refresh_token_expires_at = $16,
		   version = version + 1, updated_at = now()
		 WHERE id = $1 AND version = $17
		 RETURNING version, updated_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		user.ID, user.PasswordHash, user.FullName, user.Phone, user.RoleID, user.StoreID, user.Active,
		user.MfaEnabled, user.MfaSecretEncrypted, user.MfaPendingTokenID,
		user.FailedAttempts, user.LastFailedAt, user.LockedUntil,
		user.RefreshTokenHash, user.RefreshTokenLookup, user.RefreshTokenExpiresAt,
		user.Version,
	).Scan(&user.Version, &user.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return common.ErrVersionConflict
		}
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}
