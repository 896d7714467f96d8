package services

import (
	"context"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/storeauth/internal/common"
	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnableMfa_ReturnsEnrollment(t *testing.T) {
	f := newFixture(t)
	reg := f.register(t, "a@x.com")

	enr, err := f.svc.EnableMfa(context.Background(), reg.User.ID)
	require.NoError(t, err)

	assert.Len(t, enr.Secret, 32, "160-bit base32 seed")
	assert.True(t, strings.HasPrefix(enr.QRCode, "data:image/png;base64,"))

	uri, err := url.Parse(enr.ProvisioningURI)
	require.NoError(t, err)
	assert.Equal(t, "otpauth", uri.Scheme)
	assert.Equal(t, "totp", uri.Host)
	assert.Equal(t, "System Management", uri.Query().Get("issuer"))
	assert.Equal(t, enr.Secret, uri.Query().Get("secret"))
	assert.Contains(t, uri.Path, "a@x.com")

	u := f.user(t, reg.User.ID)
	assert.False(t, u.MfaEnabled, "not enabled until confirmed")
	require.NotNil(t, u.MfaSecretEncrypted)
	assert.NotContains(t, *u.MfaSecretEncrypted, enr.Secret)

	seed, err := f.cipher.Decrypt(*u.MfaSecretEncrypted)
	require.NoError(t, err)
	assert.Equal(t, enr.Secret, seed)
}

func TestConfirmMfa_CorrectAndWrongSeed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	reg := f.register(t, "a@x.com")

	enr, err := f.svc.EnableMfa(ctx, reg.User.ID)
	require.NoError(t, err)

	other, err := totp.Generate(totp.GenerateOpts{Issuer: "x", AccountName: "y"})
	require.NoError(t, err)

	err = f.svc.ConfirmMfaEnrollment(ctx, reg.User.ID, f.code(t, other.Secret()))
	require.ErrorIs(t, err, common.ErrInvalidMfaCode)
	assert.False(t, f.user(t, reg.User.ID).MfaEnabled)

	require.NoError(t, f.svc.ConfirmMfaEnrollment(ctx, reg.User.ID, f.code(t, enr.Secret)))
	assert.True(t, f.user(t, reg.User.ID).MfaEnabled)
}

func TestConfirmMfa_ClockSkew(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	reg := f.register(t, "a@x.com")

	enr, err := f.svc.EnableMfa(ctx, reg.User.ID)
	require.NoError(t, err)

	prev, err := totp.GenerateCodeCustom(enr.Secret, f.clock.Now().Add(-30*time.Second), totpValidateOpts)
	require.NoError(t, err)
	stale, err := totp.GenerateCodeCustom(enr.Secret, f.clock.Now().Add(-5*time.Minute), totpValidateOpts)
	require.NoError(t, err)

	if stale != prev {
		require.ErrorIs(t, f.svc.ConfirmMfaEnrollment(ctx, reg.User.ID, stale), common.ErrInvalidMfaCode)
	}
	require.NoError(t, f.svc.ConfirmMfaEnrollment(ctx, reg.User.ID, prev))
}

func TestMfaStateErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	reg := f.register(t, "a@x.com")

	err := f.svc.ConfirmMfaEnrollment(ctx, reg.User.ID, "123456")
	require.ErrorIs(t, err, common.ErrMfaNotConfigured)

	f.enableMfa(t, reg.User.ID)

	_, err = f.svc.EnableMfa(ctx, reg.User.ID)
	require.ErrorIs(t, err, common.ErrMfaAlreadyEnabled)

	err = f.svc.ConfirmMfaEnrollment(ctx, reg.User.ID, "123456")
	require.ErrorIs(t, err, common.ErrMfaAlreadyEnabled)

	_, err = f.svc.EnableMfa(ctx, "nope")
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestConfirmMfa_ReenrollInvalidatesOldSeed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	reg := f.register(t, "a@x.com")

	first, err := f.svc.EnableMfa(ctx, reg.User.ID)
	require.NoError(t, err)
	second, err := f.svc.EnableMfa(ctx, reg.User.ID)
	require.NoError(t, err)
	require.NotEqual(t, first.Secret, second.Secret)

	require.ErrorIs(t, f.svc.ConfirmMfaEnrollment(ctx, reg.User.ID, f.code(t, first.Secret)), common.ErrInvalidMfaCode)
	require.NoError(t, f.svc.ConfirmMfaEnrollment(ctx, reg.User.ID, f.code(t, second.Secret)))
}

func TestMfaEnroller_VerifyRequiresEnabled(t *testing.T) {
	f := newFixture(t)
	reg := f.register(t, "a@x.com")

	err := f.svc.mfa.Verify(f.user(t, reg.User.ID), "123456")
	require.ErrorIs(t, err, common.ErrMfaNotConfigured)
}
