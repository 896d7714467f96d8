// Package common defines shared constants and sentinel errors used across
// the storage, service and transport layers of storeauth. Callers should use
// errors.Is to match these values.
package common

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrVersionConflict = errors.New("version conflict")

	// Service-level errors (generic/internal flow control).
	ErrorInternal         = errors.New("internal error")
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrInvalidInput       = errors.New("invalid input")

	// Authentication errors.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountLocked      = errors.New("account locked")
	ErrAccountInactive    = errors.New("account inactive")
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrPolicyViolation    = errors.New("password policy violation")
	ErrReferenceNotFound  = errors.New("referenced record not found")

	// MFA errors.
	ErrMfaNotConfigured  = errors.New("mfa not configured")
	ErrMfaAlreadyEnabled = errors.New("mfa already enabled")
	ErrInvalidMfaCode    = errors.New("invalid mfa code")

	// Token lifecycle errors. Covers malformed or expired pending tokens and
	// refresh tokens alike.
	ErrInvalidOrExpiredToken = errors.New("invalid or expired token")
)

// LockedError reports a temporary account lockout. It matches ErrAccountLocked.
type LockedError struct {
	RetryAfter time.Duration
}

// NewLockedError builds a LockedError for a lock that ends at until.
func NewLockedError(now, until time.Time) *LockedError {
	return &LockedError{RetryAfter: until.Sub(now)}
}

// RetryMinutes is the remaining lock time rounded up to whole minutes.
func (e *LockedError) RetryMinutes() int {
	if e.RetryAfter <= 0 {
		return 0
	}
	return int(math.Ceil(e.RetryAfter.Minutes()))
}

func (e *LockedError) Error() string {
	return fmt.Sprintf("%s, retry in %d minutes", ErrAccountLocked, e.RetryMinutes())
}

func (e *LockedError) Is(target error) bool {
	return target == ErrAccountLocked
}

// PolicyError lists every password rule a candidate violated. It matches
// ErrPolicyViolation.
type PolicyError struct {
	Reasons []string
}

func (e *PolicyError) Error() string {
	if len(e.Reasons) == 0 {
		return ErrPolicyViolation.Error()
	}
	return "password policy: " + strings.Join(e.Reasons, "; ")
}

func (e *PolicyError) Is(target error) bool {
	return target == ErrPolicyViolation
}
