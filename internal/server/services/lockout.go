package services

import (
	"context"
	"time"

	"github.com/dmitrijs2005/storeauth/internal/common"
	"github.com/dmitrijs2005/storeauth/internal/logging"
	"github.com/dmitrijs2005/storeauth/internal/server/credentials"
	"github.com/dmitrijs2005/storeauth/internal/server/models"
)

// LockoutPolicy configures brute-force protection.
type LockoutPolicy struct {
	MaxFailedAttempts int
	LockoutDuration   time.Duration
}

// DefaultLockoutPolicy locks for 15 minutes after 5 consecutive failures.
var DefaultLockoutPolicy = LockoutPolicy{MaxFailedAttempts: 5, LockoutDuration: 15 * time.Minute}

// LockoutGuard tracks failed authentications on the credential record so the
// state survives restarts and is shared by every server instance.
type LockoutGuard struct {
	store  credentials.Store
	policy LockoutPolicy
	now    func() time.Time
	logger logging.Logger
}

func NewLockoutGuard(store credentials.Store, policy LockoutPolicy, now func() time.Time, logger logging.Logger) *LockoutGuard {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = logging.Nop{}
	}
	return &LockoutGuard{store: store, policy: policy, now: now, logger: logger}
}

// Check returns a *common.LockedError while u is locked.
func (g *LockoutGuard) Check(u *models.User) error {
	now := g.now()
	if u.IsLocked(now) {
		return common.NewLockedError(now, *u.LockedUntil)
	}
	return nil
}

// RecordFailure counts one failed attempt. When the count reaches the
// threshold the account is locked and a *common.LockedError is returned.
func (g *LockoutGuard) RecordFailure(ctx context.Context, id string) error {
	now := g.now()
	var locked *common.LockedError

	u, err := g.store.AtomicUpdate(ctx, id, nil, func(u *models.User) error {
		locked = nil
		if u.IsLocked(now) {
			return common.NewLockedError(now, *u.LockedUntil)
		}
		if u.LockedUntil != nil {
			// The previous lock has run out; start a new count.
			u.ResetFailures()
		}

		u.FailedAttempts++
		u.LastFailedAt = &now
		if u.FailedAttempts >= g.policy.MaxFailedAttempts {
			until := now.Add(g.policy.LockoutDuration)
			u.LockedUntil = &until
			locked = common.NewLockedError(now, until)
		}
		return nil
	})
	if err != nil {
		return storageErr(err)
	}

	if locked != nil {
		g.logger.Warn(ctx, "account locked", "user_id", id, "attempts", u.FailedAttempts, "retry_minutes", locked.RetryMinutes())
		return locked
	}
	g.logger.Info(ctx, "authentication failed", "user_id", id, "attempts", u.FailedAttempts)
	return nil
}

// RecordSuccess clears the counters. A clean record is not rewritten.
func (g *LockoutGuard) RecordSuccess(ctx context.Context, u *models.User) error {
	if u.FailedAttempts == 0 && u.LastFailedAt == nil && u.LockedUntil == nil {
		return nil
	}

	now := g.now()
	_, err := g.store.AtomicUpdate(ctx, u.ID, nil, func(x *models.User) error {
		if x.IsLocked(now) {
			return common.NewLockedError(now, *x.LockedUntil)
		}
		x.ResetFailures()
		return nil
	})
	return storageErr(err)
}
