// Package auth signs and verifies the JWTs handed to clients: long-lived
// access tokens and short-lived MFA-pending tokens.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/storeauth/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	TokenTypeAccess     = "access"
	TokenTypeMfaPending = "mfa_pending"
)

// Subject is the identity copied into an access token.
type Subject struct {
	UserID string
	Email  string
	Role   string
	Store  string
}

// Claims are the access-token claims. Role and Store are opaque to this
// package; downstream services evaluate them.
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
	Role  string `json:"role"`
	Store string `json:"store"`
	Type  string `json:"typ"`
}

// PendingClaims mark a password-verified login still awaiting its TOTP code.
type PendingClaims struct {
	jwt.RegisteredClaims
	MfaPending bool   `json:"mfa_pending"`
	Type       string `json:"typ"`
}

// Signer issues and verifies HS256 tokens with one secret.
type Signer struct {
	key []byte
	now func() time.Time
}

// NewSigner returns a Signer. A nil now defaults to time.Now.
func NewSigner(secretKey []byte, now func() time.Time) (*Signer, error) {
	if len(secretKey) == 0 {
		return nil, errors.New("empty signing secret")
	}
	if now == nil {
		now = time.Now
	}
	return &Signer{key: secretKey, now: now}, nil
}

func (s *Signer) registered(subject string, validity time.Duration) jwt.RegisteredClaims {
	now := s.now()
	return jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(validity)),
		ID:        uuid.NewString(),
	}
}

// GenerateAccessToken returns a signed access token and its expiry.
func (s *Signer) GenerateAccessToken(sub Subject, validity time.Duration) (string, time.Time, error) {
	claims := Claims{
		RegisteredClaims: s.registered(sub.UserID, validity),
		Email:            sub.Email,
		Role:             sub.Role,
		Store:            sub.Store,
		Type:             TokenTypeAccess,
	}

	tokenString, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
	if err != nil {
		return "", time.Time{}, err
	}

	return tokenString, claims.ExpiresAt.Time, nil
}

// GeneratePendingToken returns a signed MFA-pending token and its id (jti).
func (s *Signer) GeneratePendingToken(userID string, validity time.Duration) (string, string, error) {
	claims := PendingClaims{
		RegisteredClaims: s.registered(userID, validity),
		MfaPending:       true,
		Type:             TokenTypeMfaPending,
	}

	tokenString, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
	if err != nil {
		return "", "", err
	}

	return tokenString, claims.ID, nil
}

func (s *Signer) parse(tokenString string, claims jwt.Claims) error {
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return s.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrInvalidOrExpiredToken, err)
	}
	if !token.Valid {
		return common.ErrInvalidOrExpiredToken
	}
	return nil
}

// ParseAccessToken verifies an access token. Tokens of any other type,
// MFA-pending tokens included, are rejected.
func (s *Signer) ParseAccessToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	if err := s.parse(tokenString, claims); err != nil {
		return nil, err
	}
	if claims.Type != TokenTypeAccess || claims.Subject == "" {
		return nil, common.ErrInvalidOrExpiredToken
	}
	return claims, nil
}

// ParsePendingToken verifies an MFA-pending token.
func (s *Signer) ParsePendingToken(tokenString string) (*PendingClaims, error) {
	claims := &PendingClaims{}
	if err := s.parse(tokenString, claims); err != nil {
		return nil, err
	}
	if claims.Type != TokenTypeMfaPending || !claims.MfaPending || claims.Subject == "" || claims.ID == "" {
		return nil, common.ErrInvalidOrExpiredToken
	}
	return claims, nil
}
