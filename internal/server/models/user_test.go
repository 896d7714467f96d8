package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUser_CloneIsDeep(t *testing.T) {
	now := time.Now()
	u := &User{ID: "u1", FailedAttempts: 2, LockedUntil: &now}
	u.SetRefreshToken("h", "l", now)

	c := u.Clone()
	require.Equal(t, u, c)

	*c.RefreshTokenHash = "changed"
	*c.LockedUntil = now.Add(time.Hour)
	assert.Equal(t, "h", *u.RefreshTokenHash)
	assert.Equal(t, now, *u.LockedUntil)

	assert.Nil(t, (*User)(nil).Clone())
}

func TestUser_RefreshTokenHelpers(t *testing.T) {
	u := &User{}
	assert.False(t, u.HasRefreshToken())

	u.SetRefreshToken("h", "l", time.Now())
	assert.True(t, u.HasRefreshToken())
	assert.NotNil(t, u.RefreshTokenLookup)
	assert.NotNil(t, u.RefreshTokenExpiresAt)

	u.ClearRefreshToken()
	assert.Nil(t, u.RefreshTokenHash)
	assert.Nil(t, u.RefreshTokenLookup)
	assert.Nil(t, u.RefreshTokenExpiresAt)
}

func TestUser_IsLockedAndReset(t *testing.T) {
	now := time.Now()
	until := now.Add(time.Minute)
	u := &User{FailedAttempts: 5, LastFailedAt: &now, LockedUntil: &until}

	assert.True(t, u.IsLocked(now))
	assert.False(t, u.IsLocked(until))

	u.ResetFailures()
	assert.Zero(t, u.FailedAttempts)
	assert.Nil(t, u.LastFailedAt)
	assert.False(t, u.IsLocked(now))
}
