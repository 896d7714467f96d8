package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image/png"
	"time"

	"github.com/dmitrijs2005/storeauth/internal/common"
	"github.com/dmitrijs2005/storeauth/internal/cryptox"
	"github.com/dmitrijs2005/storeauth/internal/logging"
	"github.com/dmitrijs2005/storeauth/internal/server/credentials"
	"github.com/dmitrijs2005/storeauth/internal/server/models"
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

const (
	totpPeriod     = 30
	totpSkew       = 1
	totpSecretSize = 20
	qrCodeSize     = 256
)

// DefaultMfaIssuer is the label authenticator apps show for enrolled accounts.
const DefaultMfaIssuer = "System Management"

var totpValidateOpts = totp.ValidateOpts{
	Period:    totpPeriod,
	Skew:      totpSkew,
	Digits:    otp.DigitsSix,
	Algorithm: otp.AlgorithmSHA1,
}

// MfaEnroller runs the TOTP enrollment protocol and verifies codes against
// the encrypted seed stored on the user.
type MfaEnroller struct {
	store  credentials.Store
	cipher *cryptox.SecretCipher
	issuer string
	now    func() time.Time
	logger logging.Logger
}

func NewMfaEnroller(store credentials.Store, cipher *cryptox.SecretCipher, issuer string, now func() time.Time, logger logging.Logger) *MfaEnroller {
	if issuer == "" {
		issuer = DefaultMfaIssuer
	}
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = logging.Nop{}
	}
	return &MfaEnroller{store: store, cipher: cipher, issuer: issuer, now: now, logger: logger}
}

// Begin generates and stores a new seed for an account without active MFA.
// Calling it again before confirmation replaces the pending seed.
func (e *MfaEnroller) Begin(ctx context.Context, id string) (*Enrollment, error) {
	u, err := e.store.FindByID(ctx, id)
	if err != nil {
		return nil, storageErr(err)
	}
	if u.MfaEnabled {
		return nil, common.ErrMfaAlreadyEnabled
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      e.issuer,
		AccountName: u.Email,
		Period:      totpPeriod,
		SecretSize:  totpSecretSize,
		Digits:      otp.DigitsSix,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: totp generate: %v", common.ErrorInternal, err)
	}

	envelope, err := e.cipher.Encrypt(key.Secret())
	if err != nil {
		return nil, fmt.Errorf("%w: encrypt seed: %v", common.ErrorInternal, err)
	}

	qr, err := qrDataURL(key)
	if err != nil {
		return nil, fmt.Errorf("%w: qr code: %v", common.ErrorInternal, err)
	}

	_, err = e.store.AtomicUpdate(ctx, id, nil, func(x *models.User) error {
		if x.MfaEnabled {
			return common.ErrMfaAlreadyEnabled
		}
		x.MfaSecretEncrypted = &envelope
		x.MfaPendingTokenID = nil
		return nil
	})
	if err != nil {
		return nil, storageErr(err)
	}

	e.logger.Info(ctx, "mfa enrollment started", "user_id", id)
	return &Enrollment{Secret: key.Secret(), ProvisioningURI: key.URL(), QRCode: qr}, nil
}

// Confirm enables MFA once the user proves possession of the pending seed.
func (e *MfaEnroller) Confirm(ctx context.Context, id, code string) error {
	u, err := e.store.FindByID(ctx, id)
	if err != nil {
		return storageErr(err)
	}
	if u.MfaEnabled {
		return common.ErrMfaAlreadyEnabled
	}
	if u.MfaSecretEncrypted == nil {
		return common.ErrMfaNotConfigured
	}

	envelope := *u.MfaSecretEncrypted
	if !e.validate(envelope, code) {
		e.logger.Info(ctx, "mfa confirmation rejected", "user_id", id)
		return common.ErrInvalidMfaCode
	}

	_, err = e.store.AtomicUpdate(ctx, id, nil, func(x *models.User) error {
		if x.MfaEnabled {
			return common.ErrMfaAlreadyEnabled
		}
		if x.MfaSecretEncrypted == nil || *x.MfaSecretEncrypted != envelope {
			// A newer enrollment replaced the seed the code was checked against.
			return common.ErrInvalidMfaCode
		}
		x.MfaEnabled = true
		return nil
	})
	if err != nil {
		return storageErr(err)
	}

	e.logger.Info(ctx, "mfa enabled", "user_id", id)
	return nil
}

// Verify checks code against an enabled seed. A seed that fails to decrypt
// is reported exactly like a wrong code.
func (e *MfaEnroller) Verify(u *models.User, code string) error {
	if !u.MfaEnabled || u.MfaSecretEncrypted == nil {
		return common.ErrMfaNotConfigured
	}
	if !e.validate(*u.MfaSecretEncrypted, code) {
		return common.ErrInvalidMfaCode
	}
	return nil
}

// Disable turns MFA off and drops the seed.
func (e *MfaEnroller) Disable(ctx context.Context, id string) error {
	_, err := e.store.AtomicUpdate(ctx, id, nil, func(x *models.User) error {
		x.MfaEnabled = false
		x.MfaSecretEncrypted = nil
		x.MfaPendingTokenID = nil
		return nil
	})
	if err != nil {
		return storageErr(err)
	}

	e.logger.Info(ctx, "mfa disabled", "user_id", id)
	return nil
}

func (e *MfaEnroller) validate(envelope, code string) bool {
	seed, err := e.cipher.Decrypt(envelope)
	if err != nil {
		return false
	}
	ok, err := totp.ValidateCustom(code, seed, e.now().UTC(), totpValidateOpts)
	return err == nil && ok
}

func qrDataURL(key *otp.Key) (string, error) {
	img, err := key.Image(qrCodeSize, qrCodeSize)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
