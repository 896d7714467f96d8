package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/storeauth/internal/common"
	"github.com/dmitrijs2005/storeauth/internal/cryptox"
	"github.com/dmitrijs2005/storeauth/internal/logging"
	"github.com/dmitrijs2005/storeauth/internal/server/auth"
	"github.com/dmitrijs2005/storeauth/internal/server/credentials"
	"github.com/dmitrijs2005/storeauth/internal/server/models"
)

// TokenLifetimes sets how long each kind of token stays valid.
type TokenLifetimes struct {
	Access  time.Duration
	Refresh time.Duration
	Pending time.Duration
}

var DefaultTokenLifetimes = TokenLifetimes{
	Access:  24 * time.Hour,
	Refresh: 7 * 24 * time.Hour,
	Pending: 5 * time.Minute,
}

// TokenIssuer mints access, refresh and MFA-pending tokens and owns the
// refresh-token lineage stored on the user.
type TokenIssuer struct {
	store       credentials.Store
	signer      *auth.Signer
	hasher      *cryptox.Hasher
	fingerprint *cryptox.Fingerprinter
	lifetimes   TokenLifetimes
	now         func() time.Time
	logger      logging.Logger
}

func NewTokenIssuer(
	store credentials.Store,
	signer *auth.Signer,
	hasher *cryptox.Hasher,
	fingerprint *cryptox.Fingerprinter,
	lifetimes TokenLifetimes,
	now func() time.Time,
	logger logging.Logger,
) *TokenIssuer {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = logging.Nop{}
	}
	return &TokenIssuer{
		store:       store,
		signer:      signer,
		hasher:      hasher,
		fingerprint: fingerprint,
		lifetimes:   lifetimes,
		now:         now,
		logger:      logger,
	}
}

type refreshMaterial struct {
	token     string
	hash      string
	lookup    string
	expiresAt time.Time
}

func (t *TokenIssuer) newRefresh() (*refreshMaterial, error) {
	token, err := common.MakeRandHexString(common.RefreshTokenSize)
	if err != nil {
		return nil, fmt.Errorf("%w: refresh token: %v", common.ErrorInternal, err)
	}
	hash, err := t.hasher.Hash(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}
	return &refreshMaterial{
		token:     token,
		hash:      hash,
		lookup:    t.fingerprint.Fingerprint(token),
		expiresAt: t.now().Add(t.lifetimes.Refresh),
	}, nil
}

// Issue mints a fresh pair for u and replaces its refresh lineage. guard, if
// set, runs on the fresh record inside the same update and may veto it or
// change more fields.
func (t *TokenIssuer) Issue(ctx context.Context, u *models.User, guard credentials.Mutator) (*Grant, error) {
	role, err := t.store.GetRole(ctx, u.RoleID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrReferenceNotFound
		}
		return nil, storageErr(err)
	}

	access, accessExp, err := t.signer.GenerateAccessToken(auth.Subject{
		UserID: u.ID,
		Email:  u.Email,
		Role:   role.Name,
		Store:  u.StoreID,
	}, t.lifetimes.Access)
	if err != nil {
		return nil, fmt.Errorf("%w: sign access token: %v", common.ErrorInternal, err)
	}

	refresh, err := t.newRefresh()
	if err != nil {
		return nil, err
	}

	updated, err := t.store.AtomicUpdate(ctx, u.ID, nil, func(x *models.User) error {
		if !x.Active {
			return common.ErrAccountInactive
		}
		if guard != nil {
			if err := guard(x); err != nil {
				return err
			}
		}
		x.SetRefreshToken(refresh.hash, refresh.lookup, refresh.expiresAt)
		return nil
	})
	if err != nil {
		return nil, storageErr(err)
	}

	return &Grant{
		User: updated,
		Role: role,
		Tokens: &TokenPair{
			AccessToken:      access,
			RefreshToken:     refresh.token,
			AccessExpiresAt:  accessExp,
			RefreshExpiresAt: refresh.expiresAt,
		},
	}, nil
}

// IssuePending mints an MFA-pending token and records its id as the only
// one VerifyMfa will accept for u.
func (t *TokenIssuer) IssuePending(ctx context.Context, u *models.User) (string, error) {
	token, jti, err := t.signer.GeneratePendingToken(u.ID, t.lifetimes.Pending)
	if err != nil {
		return "", fmt.Errorf("%w: sign pending token: %v", common.ErrorInternal, err)
	}

	_, err = t.store.AtomicUpdate(ctx, u.ID, nil, func(x *models.User) error {
		x.MfaPendingTokenID = &jti
		return nil
	})
	if err != nil {
		return "", storageErr(err)
	}
	return token, nil
}

// Refresh exchanges a refresh token for a new pair. The presented token is
// spent: a second exchange of the same token fails.
func (t *TokenIssuer) Refresh(ctx context.Context, token string) (*Grant, error) {
	if len(token) != 2*common.RefreshTokenSize {
		return nil, common.ErrInvalidOrExpiredToken
	}

	u, err := t.store.FindByRefreshLookup(ctx, t.fingerprint.Fingerprint(token))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrInvalidOrExpiredToken
		}
		return nil, storageErr(err)
	}
	if !u.Active || !u.HasRefreshToken() || !t.hasher.Compare(*u.RefreshTokenHash, token) {
		return nil, common.ErrInvalidOrExpiredToken
	}

	spent := *u.RefreshTokenHash
	sameLineage := func(x *models.User) error {
		if x.RefreshTokenHash == nil || *x.RefreshTokenHash != spent {
			return common.ErrInvalidOrExpiredToken
		}
		return nil
	}

	if u.RefreshTokenExpiresAt == nil || !t.now().Before(*u.RefreshTokenExpiresAt) {
		_, err := t.store.AtomicUpdate(ctx, u.ID, nil, func(x *models.User) error {
			if err := sameLineage(x); err != nil {
				return err
			}
			x.ClearRefreshToken()
			return nil
		})
		if err != nil && !errors.Is(err, common.ErrInvalidOrExpiredToken) {
			return nil, storageErr(err)
		}
		t.logger.Info(ctx, "expired refresh token cleared", "user_id", u.ID)
		return nil, common.ErrInvalidOrExpiredToken
	}

	grant, err := t.Issue(ctx, u, sameLineage)
	if err != nil {
		if errors.Is(err, common.ErrAccountInactive) {
			return nil, common.ErrInvalidOrExpiredToken
		}
		return nil, err
	}

	t.logger.Info(ctx, "refresh token rotated", "user_id", u.ID)
	return grant, nil
}

// Revoke ends the refresh lineage of id. Access tokens already handed out
// stay valid until they expire.
func (t *TokenIssuer) Revoke(ctx context.Context, id string) error {
	_, err := t.store.AtomicUpdate(ctx, id, nil, func(x *models.User) error {
		x.ClearRefreshToken()
		return nil
	})
	return storageErr(err)
}
