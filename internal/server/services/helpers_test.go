package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/storeauth/internal/cryptox"
	"github.com/dmitrijs2005/storeauth/internal/server/auth"
	"github.com/dmitrijs2005/storeauth/internal/server/credentials"
	"github.com/dmitrijs2005/storeauth/internal/server/models"
	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const (
	testPassword = "Secur3!Pass"
	testSecret   = "jwt-test-secret"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type fixture struct {
	svc    *AuthService
	store  *credentials.MemoryStore
	clock  *fakeClock
	cipher *cryptox.SecretCipher
	signer *auth.Signer
	role   models.Role
	shop   models.Store
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWithStore(t, credentials.NewMemoryStore(), nil)
}

// newFixtureWithStore wires the service on top of mem, or on top of wrap if set.
func newFixtureWithStore(t *testing.T, mem *credentials.MemoryStore, wrap credentials.Store) *fixture {
	t.Helper()

	clk := newFakeClock()
	role := mem.AddRole(models.Role{Name: "manager", Description: "Store manager"})
	shop := mem.AddStore(models.Store{Name: "Harbor", Active: true})

	hasher, err := cryptox.NewHasher(bcrypt.MinCost)
	require.NoError(t, err)
	cipher, err := cryptox.NewSecretCipher("encryption-test-secret")
	require.NoError(t, err)
	fp, err := cryptox.NewFingerprinter([]byte(testSecret))
	require.NoError(t, err)
	signer, err := auth.NewSigner([]byte(testSecret), clk.Now)
	require.NoError(t, err)

	var store credentials.Store = mem
	if wrap != nil {
		store = wrap
	}

	svc := NewAuthService(Deps{
		Store:         store,
		Hasher:        hasher,
		Cipher:        cipher,
		Fingerprinter: fp,
		Signer:        signer,
		Now:           clk.Now,
	})

	return &fixture{svc: svc, store: mem, clock: clk, cipher: cipher, signer: signer, role: role, shop: shop}
}

func (f *fixture) register(t *testing.T, email string) *Session {
	t.Helper()
	sess, err := f.svc.Register(context.Background(), RegisterInput{
		Email:    email,
		Password: testPassword,
		FullName: "Test User",
		RoleID:   f.role.ID,
		StoreID:  f.shop.ID,
	})
	require.NoError(t, err)
	return sess
}

func (f *fixture) user(t *testing.T, id string) *models.User {
	t.Helper()
	u, err := f.store.FindByID(context.Background(), id)
	require.NoError(t, err)
	return u
}

// enableMfa enrolls and confirms MFA for id and returns the plaintext seed.
func (f *fixture) enableMfa(t *testing.T, id string) string {
	t.Helper()
	ctx := context.Background()
	enr, err := f.svc.EnableMfa(ctx, id)
	require.NoError(t, err)
	require.NoError(t, f.svc.ConfirmMfaEnrollment(ctx, id, f.code(t, enr.Secret)))
	return enr.Secret
}

func (f *fixture) code(t *testing.T, secret string) string {
	t.Helper()
	c, err := totp.GenerateCodeCustom(secret, f.clock.Now(), totpValidateOpts)
	require.NoError(t, err)
	return c
}

var errConnRefused = errors.New("dial tcp: connection refused")

// brokenStore fails every read by email.
type brokenStore struct {
	*credentials.MemoryStore
}

func (b brokenStore) FindByEmail(context.Context, string) (*models.User, error) {
	return nil, errConnRefused
}
