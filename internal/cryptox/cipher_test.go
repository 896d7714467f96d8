package cryptox

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCipher(t *testing.T) *SecretCipher {
	t.Helper()
	c, err := NewSecretCipher("unit-test-encryption-secret")
	require.NoError(t, err)
	return c
}

func TestNewSecretCipher_EmptySecret(t *testing.T) {
	_, err := NewSecretCipher("")
	require.Error(t, err)
}

func TestEncryptDecrypt_RoundTrip(t *testing.T) {
	c := newTestCipher(t)

	inputs := []string{
		"",
		"JBSWY3DPEHPK3PXP",
		"GEZDGNBVGY3TQOJQGEZDGNBVGY3TQOJQ",
		strings.Repeat("x", 4096),
		"ünïcødé ✓",
	}
	for _, in := range inputs {
		env, err := c.Encrypt(in)
		require.NoError(t, err)

		parts := strings.Split(env, ":")
		require.Len(t, parts, 3)
		assert.Len(t, parts[0], nonceSize*2)
		assert.Len(t, parts[1], tagSize*2)
		assert.Len(t, parts[2], len(in)*2)

		out, err := c.Decrypt(env)
		require.NoError(t, err)
		assert.Equal(t, in, out)
	}
}

func TestEncrypt_FreshNoncePerCall(t *testing.T) {
	c := newTestCipher(t)

	a, err := c.Encrypt("same")
	require.NoError(t, err)
	b, err := c.Encrypt("same")
	require.NoError(t, err)

	assert.NotEqual(t, strings.Split(a, ":")[0], strings.Split(b, ":")[0])
}

func TestDecrypt_AnySingleBitFlipFails(t *testing.T) {
	c := newTestCipher(t)

	env, err := c.Encrypt("JBSWY3DPEHPK3PXPJBSWY3DPEHPK3PXP")
	require.NoError(t, err)

	raw := []byte(env)
	for i := range raw {
		for bit := 0; bit < 8; bit++ {
			flipped := make([]byte, len(raw))
			copy(flipped, raw)
			flipped[i] ^= 1 << bit

			_, err := c.Decrypt(string(flipped))
			if !errors.Is(err, ErrTamperedOrInvalid) {
				t.Fatalf("flip byte %d bit %d: want ErrTamperedOrInvalid, got %v", i, bit, err)
			}
		}
	}
}

func TestDecrypt_MalformedEnvelopes(t *testing.T) {
	c := newTestCipher(t)
	good, err := c.Encrypt("seed")
	require.NoError(t, err)
	parts := strings.Split(good, ":")

	tests := map[string]string{
		"empty":           "",
		"two parts":       parts[0] + ":" + parts[1],
		"four parts":      good + ":00",
		"short nonce":     parts[0][2:] + ":" + parts[1] + ":" + parts[2],
		"short tag":       parts[0] + ":" + parts[1][2:] + ":" + parts[2],
		"not hex":         "zz" + parts[0][2:] + ":" + parts[1] + ":" + parts[2],
		"uppercase hex":   strings.ToUpper(parts[0]) + ":" + parts[1] + ":" + parts[2],
		"truncated ct":    parts[0] + ":" + parts[1] + ":" + parts[2][2:],
		"odd length":      parts[0] + ":" + parts[1] + ":" + parts[2] + "0",
		"swapped nonce":   parts[1] + ":" + parts[0] + ":" + parts[2],
		"plaintext value": "seed",
	}
	for name, env := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := c.Decrypt(env)
			assert.ErrorIs(t, err, ErrTamperedOrInvalid)
		})
	}
}

func TestDecrypt_WrongKey(t *testing.T) {
	a := newTestCipher(t)
	b, err := NewSecretCipher("another-secret")
	require.NoError(t, err)

	env, err := a.Encrypt("seed")
	require.NoError(t, err)

	_, err = b.Decrypt(env)
	assert.ErrorIs(t, err, ErrTamperedOrInvalid)
}
