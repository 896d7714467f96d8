package cryptox

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFingerprinter(t *testing.T) {
	_, err := NewFingerprinter(nil)
	require.Error(t, err)

	a, err := NewFingerprinter([]byte("secret-a"))
	require.NoError(t, err)
	b, err := NewFingerprinter([]byte("secret-b"))
	require.NoError(t, err)

	fp := a.Fingerprint("token")
	raw, err := hex.DecodeString(fp)
	require.NoError(t, err)
	assert.Len(t, raw, 32)

	assert.Equal(t, fp, a.Fingerprint("token"), "must be deterministic")
	assert.NotEqual(t, fp, a.Fingerprint("token2"))
	assert.NotEqual(t, fp, b.Fingerprint("token"), "must depend on the secret")
}
