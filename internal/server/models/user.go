// Package models holds the persisted records the authentication engine
// reads and mutates.
package models

import "time"

// User is the credential record of a human user. Nullable columns are
// pointers; a nil pointer means the column is NULL.
//
// Invariants kept by the services:
//   - LockedUntil is set only after FailedAttempts reached the lockout threshold;
//   - MfaSecretEncrypted is set whenever MfaEnabled is true;
//   - RefreshTokenHash, RefreshTokenLookup and RefreshTokenExpiresAt are set together.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	FullName     string
	Phone        string
	RoleID       string
	StoreID      string
	Active       bool

	MfaEnabled         bool
	MfaSecretEncrypted *string
	MfaPendingTokenID  *string

	FailedAttempts int
	LastFailedAt   *time.Time
	LockedUntil    *time.Time

	RefreshTokenHash      *string
	RefreshTokenLookup    *string
	RefreshTokenExpiresAt *time.Time

	Version   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsLocked reports whether authentication must be refused at now.
func (u *User) IsLocked(now time.Time) bool {
	return u.LockedUntil != nil && now.Before(*u.LockedUntil)
}

// HasRefreshToken reports whether a refresh-token lineage is active.
func (u *User) HasRefreshToken() bool {
	return u.RefreshTokenHash != nil
}

// SetRefreshToken replaces the refresh-token lineage.
func (u *User) SetRefreshToken(hash, lookup string, expiresAt time.Time) {
	u.RefreshTokenHash = &hash
	u.RefreshTokenLookup = &lookup
	u.RefreshTokenExpiresAt = &expiresAt
}

// ClearRefreshToken ends the refresh-token lineage.
func (u *User) ClearRefreshToken() {
	u.RefreshTokenHash = nil
	u.RefreshTokenLookup = nil
	u.RefreshTokenExpiresAt = nil
}

// ResetFailures clears the lockout counters.
func (u *User) ResetFailures() {
	u.FailedAttempts = 0
	u.LastFailedAt = nil
	u.LockedUntil = nil
}

// Clone returns a deep copy, so callers holding the copy never observe or
// cause changes through shared pointers.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	c.MfaSecretEncrypted = cloneString(u.MfaSecretEncrypted)
	c.MfaPendingTokenID = cloneString(u.MfaPendingTokenID)
	c.LastFailedAt = cloneTime(u.LastFailedAt)
	c.LockedUntil = cloneTime(u.LockedUntil)
	c.RefreshTokenHash = cloneString(u.RefreshTokenHash)
	c.RefreshTokenLookup = cloneString(u.RefreshTokenLookup)
	c.RefreshTokenExpiresAt = cloneTime(u.RefreshTokenExpiresAt)
	return &c
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
