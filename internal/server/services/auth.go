// Package services contains server-side business logic. AuthService drives
// the authentication protocol: registration, password login with lockout,
// TOTP second factor, refresh rotation and revocation.
package services

import (
	"context"
	"errors"
	"net/mail"
	"time"

	"github.com/dmitrijs2005/storeauth/internal/common"
	"github.com/dmitrijs2005/storeauth/internal/cryptox"
	"github.com/dmitrijs2005/storeauth/internal/logging"
	"github.com/dmitrijs2005/storeauth/internal/server/auth"
	"github.com/dmitrijs2005/storeauth/internal/server/credentials"
	"github.com/dmitrijs2005/storeauth/internal/server/models"
	"github.com/dmitrijs2005/storeauth/internal/server/passwordpolicy"
)

// Deps lists what AuthService is assembled from. Zero-valued policies fall
// back to their defaults.
type Deps struct {
	Store         credentials.Store
	Hasher        *cryptox.Hasher
	Cipher        *cryptox.SecretCipher
	Fingerprinter *cryptox.Fingerprinter
	Signer        *auth.Signer

	Policy    passwordpolicy.Policy
	Lockout   LockoutPolicy
	Lifetimes TokenLifetimes
	MfaIssuer string

	Now    func() time.Time
	Logger logging.Logger
}

// AuthService is the orchestrator consumed by the transport layer.
type AuthService struct {
	store   credentials.Store
	hasher  *cryptox.Hasher
	signer  *auth.Signer
	policy  passwordpolicy.Policy
	lockout *LockoutGuard
	mfa     *MfaEnroller
	tokens  *TokenIssuer
	now     func() time.Time
	logger  logging.Logger
}

func NewAuthService(d Deps) *AuthService {
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Logger == nil {
		d.Logger = logging.Nop{}
	}
	if d.Policy == (passwordpolicy.Policy{}) {
		d.Policy = passwordpolicy.Default
	}
	if d.Lockout == (LockoutPolicy{}) {
		d.Lockout = DefaultLockoutPolicy
	}
	if d.Lifetimes == (TokenLifetimes{}) {
		d.Lifetimes = DefaultTokenLifetimes
	}

	logger := d.Logger.With("module", "auth_service")
	return &AuthService{
		store:   d.Store,
		hasher:  d.Hasher,
		signer:  d.Signer,
		policy:  d.Policy,
		lockout: NewLockoutGuard(d.Store, d.Lockout, d.Now, logger),
		mfa:     NewMfaEnroller(d.Store, d.Cipher, d.MfaIssuer, d.Now, logger),
		tokens:  NewTokenIssuer(d.Store, d.Signer, d.Hasher, d.Fingerprinter, d.Lifetimes, d.Now, logger),
		now:     d.Now,
		logger:  logger,
	}
}

// Register creates an active account and signs it in.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	storeOK, err := s.store.StoreExists(ctx, in.StoreID)
	if err != nil {
		return nil, storageErr(err)
	}
	roleOK, err := s.store.RoleExists(ctx, in.RoleID)
	if err != nil {
		return nil, storageErr(err)
	}
	if !storeOK || !roleOK {
		return nil, common.ErrReferenceNotFound
	}

	email := common.NormalizeEmail(in.Email)
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return nil, common.ErrInvalidInput
	}

	if res := s.policy.Evaluate(in.Password); !res.Accepted {
		return nil, res.Err()
	}

	if _, err := s.store.FindByEmail(ctx, email); err == nil {
		return nil, common.ErrDuplicateEmail
	} else if !errors.Is(err, common.ErrorNotFound) {
		return nil, storageErr(err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, common.ErrorInternal
	}

	created, err := s.store.Create(ctx, &models.User{
		Email:        email,
		PasswordHash: hash,
		FullName:     in.FullName,
		Phone:        in.Phone,
		RoleID:       in.RoleID,
		StoreID:      in.StoreID,
		Active:       true,
	})
	if err != nil {
		return nil, storageErr(err)
	}

	grant, err := s.tokens.Issue(ctx, created, nil)
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "user registered", "user_id", created.ID)
	return sessionFrom(grant), nil
}

// Login checks email and password. For MFA accounts it returns only a
// pending token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	u, err := s.store.FindByEmail(ctx, common.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.hasher.Burn(password)
			return nil, common.ErrInvalidCredentials
		}
		return nil, storageErr(err)
	}

	if err := s.lockout.Check(u); err != nil {
		s.logger.Info(ctx, "login refused, account locked", "user_id", u.ID)
		return nil, err
	}

	if !s.hasher.Compare(u.PasswordHash, password) {
		if err := s.lockout.RecordFailure(ctx, u.ID); err != nil {
			return nil, err
		}
		return nil, common.ErrInvalidCredentials
	}

	if !u.Active {
		s.logger.Info(ctx, "login refused, account inactive", "user_id", u.ID)
		return nil, common.ErrAccountInactive
	}

	// For MFA accounts the counter is reset only once VerifyMfa succeeds.
	if u.MfaEnabled {
		pending, err := s.tokens.IssuePending(ctx, u)
		if err != nil {
			return nil, err
		}
		s.logger.Info(ctx, "password accepted, mfa required", "user_id", u.ID)
		return &LoginResult{MfaRequired: true, PendingToken: pending}, nil
	}

	if err := s.lockout.RecordSuccess(ctx, u); err != nil {
		return nil, err
	}

	grant, err := s.tokens.Issue(ctx, u, s.notLocked)
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "login succeeded", "user_id", u.ID)
	return &LoginResult{Session: sessionFrom(grant)}, nil
}

// VerifyMfa exchanges a pending token plus a TOTP code for a session. A
// wrong code leaves the pending token usable until it expires.
func (s *AuthService) VerifyMfa(ctx context.Context, pendingToken, code string) (*Session, error) {
	claims, err := s.signer.ParsePendingToken(pendingToken)
	if err != nil {
		return nil, common.ErrInvalidOrExpiredToken
	}

	u, err := s.store.FindByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrMfaNotConfigured
		}
		return nil, storageErr(err)
	}
	if !u.MfaEnabled || u.MfaSecretEncrypted == nil {
		return nil, common.ErrMfaNotConfigured
	}
	if err := s.lockout.Check(u); err != nil {
		return nil, err
	}
	if !u.Active {
		return nil, common.ErrAccountInactive
	}
	if u.MfaPendingTokenID == nil || *u.MfaPendingTokenID != claims.ID {
		return nil, common.ErrInvalidOrExpiredToken
	}

	if err := s.mfa.Verify(u, code); err != nil {
		if errors.Is(err, common.ErrInvalidMfaCode) {
			if lerr := s.lockout.RecordFailure(ctx, u.ID); lerr != nil {
				return nil, lerr
			}
		}
		return nil, err
	}

	grant, err := s.tokens.Issue(ctx, u, func(x *models.User) error {
		if err := s.notLocked(x); err != nil {
			return err
		}
		if x.MfaPendingTokenID == nil || *x.MfaPendingTokenID != claims.ID {
			return common.ErrInvalidOrExpiredToken
		}
		x.MfaPendingTokenID = nil
		x.ResetFailures()
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "mfa verified, login succeeded", "user_id", u.ID)
	return sessionFrom(grant), nil
}

func (s *AuthService) EnableMfa(ctx context.Context, userID string) (*Enrollment, error) {
	return s.mfa.Begin(ctx, userID)
}

func (s *AuthService) ConfirmMfaEnrollment(ctx context.Context, userID, code string) error {
	return s.mfa.Confirm(ctx, userID, code)
}

// DisableMfa requires only an authenticated session, not a fresh code.
func (s *AuthService) DisableMfa(ctx context.Context, userID string) error {
	return s.mfa.Disable(ctx, userID)
}

func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*Session, error) {
	grant, err := s.tokens.Refresh(ctx, refreshToken)
	if err != nil {
		return nil, err
	}
	return sessionFrom(grant), nil
}

func (s *AuthService) Logout(ctx context.Context, userID string) error {
	if err := s.tokens.Revoke(ctx, userID); err != nil {
		return err
	}
	s.logger.Info(ctx, "logged out", "user_id", userID)
	return nil
}

// RevokeAllSessions has the same effect as Logout while a user holds a
// single refresh lineage.
func (s *AuthService) RevokeAllSessions(ctx context.Context, userID string) error {
	if err := s.tokens.Revoke(ctx, userID); err != nil {
		return err
	}
	s.logger.Info(ctx, "all sessions revoked", "user_id", userID)
	return nil
}

func (s *AuthService) GetProfile(ctx context.Context, userID string) (*Profile, error) {
	u, err := s.store.FindByID(ctx, userID)
	if err != nil {
		return nil, storageErr(err)
	}

	role, err := s.store.GetRole(ctx, u.RoleID)
	if err != nil && !errors.Is(err, common.ErrorNotFound) {
		return nil, storageErr(err)
	}
	return newProfile(u, role), nil
}

func (s *AuthService) ListRoles(ctx context.Context) ([]models.Role, error) {
	roles, err := s.store.ListRoles(ctx)
	return roles, storageErr(err)
}

func (s *AuthService) ListStores(ctx context.Context) ([]models.Store, error) {
	stores, err := s.store.ListStores(ctx)
	return stores, storageErr(err)
}

// ParseAccessToken exposes access-token verification to the transport layer.
func (s *AuthService) ParseAccessToken(token string) (*auth.Claims, error) {
	return s.signer.ParseAccessToken(token)
}

func (s *AuthService) notLocked(x *models.User) error {
	return s.lockout.Check(x)
}

func sessionFrom(g *Grant) *Session {
	return &Session{Tokens: g.Tokens, User: newProfile(g.User, g.Role)}
}
