// Package cryptox holds the cryptographic primitives used by the
// authentication engine: envelope encryption of small secrets at rest,
// adaptive hashing of passwords and refresh tokens, and keyed lookup
// fingerprints.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"

	"github.com/dmitrijs2005/storeauth/internal/common"
)

const (
	nonceSize = 16
	tagSize   = 16
)

// ErrTamperedOrInvalid is the only error Decrypt ever returns. Malformed
// envelopes and failed authentication are deliberately indistinguishable.
var ErrTamperedOrInvalid = errors.New("tampered or invalid ciphertext")

// SecretCipher encrypts small secrets (TOTP seeds) with AES-256-GCM.
//
// The key is derived once from an operator supplied secret with SHA-256 and
// never changes for the lifetime of the value. Envelopes have the form
//
//	hex(nonce):hex(tag):hex(ciphertext)
//
// with a 16-byte random nonce per call and a 16-byte authentication tag.
type SecretCipher struct {
	aead cipher.AEAD
}

// NewSecretCipher derives the AES-256 key from secret and builds the cipher.
func NewSecretCipher(secret string) (*SecretCipher, error) {
	if secret == "" {
		return nil, errors.New("encryption secret must not be empty")
	}

	key := sha256.Sum256([]byte(secret))
	defer common.WipeByteArray(key[:])

	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, err
	}

	aead, err := cipher.NewGCMWithNonceSize(block, nonceSize)
	if err != nil {
		return nil, err
	}

	return &SecretCipher{aead: aead}, nil
}

// Encrypt seals plaintext and returns the colon-joined hex envelope.
func (c *SecretCipher) Encrypt(plaintext string) (string, error) {
	nonce := common.GenerateRandByteArray(nonceSize)
	sealed := c.aead.Seal(nil, nonce, []byte(plaintext), nil)
	ct, tag := sealed[:len(sealed)-tagSize], sealed[len(sealed)-tagSize:]

	return hex.EncodeToString(nonce) + ":" + hex.EncodeToString(tag) + ":" + hex.EncodeToString(ct), nil
}

// Decrypt opens an envelope produced by Encrypt. Any deviation from the
// canonical format, or a tag mismatch, yields ErrTamperedOrInvalid.
func (c *SecretCipher) Decrypt(envelope string) (string, error) {
	parts := strings.Split(envelope, ":")
	if len(parts) != 3 {
		return "", ErrTamperedOrInvalid
	}

	nonce, ok := decodeCanonicalHex(parts[0])
	if !ok || len(nonce) != nonceSize {
		return "", ErrTamperedOrInvalid
	}
	tag, ok := decodeCanonicalHex(parts[1])
	if !ok || len(tag) != tagSize {
		return "", ErrTamperedOrInvalid
	}
	ct, ok := decodeCanonicalHex(parts[2])
	if !ok {
		return "", ErrTamperedOrInvalid
	}

	plaintext, err := c.aead.Open(nil, nonce, append(ct, tag...), nil)
	if err != nil {
		return "", ErrTamperedOrInvalid
	}

	return string(plaintext), nil
}

// decodeCanonicalHex accepts lowercase hex only, so that every envelope has
// exactly one valid spelling.
func decodeCanonicalHex(s string) ([]byte, bool) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, false
	}
	if hex.EncodeToString(b) != s {
		return nil, false
	}
	return b, true
}
