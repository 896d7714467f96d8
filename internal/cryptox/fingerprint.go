package cryptox

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"

	"golang.org/x/crypto/hkdf"
)

const fingerprintInfo = "storeauth refresh-token lookup v1"

// Fingerprinter computes deterministic, non-reversible lookup keys for
// high-entropy tokens: HMAC-SHA256 under a key derived with HKDF from the
// server secret. The fingerprint locates a row in O(1); the bcrypt hash
// stored next to it remains the verifier.
type Fingerprinter struct {
	key []byte
}

// NewFingerprinter derives the HMAC key from secret.
func NewFingerprinter(secret []byte) (*Fingerprinter, error) {
	if len(secret) == 0 {
		return nil, errors.New("fingerprint secret must not be empty")
	}

	key := make([]byte, sha256.Size)
	if _, err := io.ReadFull(hkdf.New(sha256.New, secret, nil, []byte(fingerprintInfo)), key); err != nil {
		return nil, err
	}

	return &Fingerprinter{key: key}, nil
}

// Fingerprint returns the hex-encoded HMAC of token.
func (f *Fingerprinter) Fingerprint(token string) string {
	mac := hmac.New(sha256.New, f.key)
	mac.Write([]byte(token))
	return hex.EncodeToString(mac.Sum(nil))
}
