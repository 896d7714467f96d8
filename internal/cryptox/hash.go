package cryptox

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/storeauth/internal/common"
	"golang.org/x/crypto/bcrypt"
)

// DefaultCost is the bcrypt work factor used for passwords and refresh tokens.
const DefaultCost = 12

// Hasher produces self-describing bcrypt hashes ("$2a$<cost>$<salt+hash>").
//
// Inputs are pre-hashed with SHA-256 and base64 encoded before bcrypt, so
// that long passwords and 128-character refresh tokens are not silently
// truncated at bcrypt's 72-byte limit.
type Hasher struct {
	cost int

	dummyOnce sync.Once
	dummy     []byte
}

// NewHasher returns a Hasher using the given bcrypt cost.
func NewHasher(cost int) (*Hasher, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("bcrypt cost %d out of range", cost)
	}
	return &Hasher{cost: cost}, nil
}

// Cost reports the configured work factor.
func (h *Hasher) Cost() int {
	return h.cost
}

// Hash returns the encoded hash of secret.
func (h *Hasher) Hash(secret string) (string, error) {
	pre := prehash(secret)
	defer common.WipeByteArray(pre)

	out, err := bcrypt.GenerateFromPassword(pre, h.cost)
	if err != nil {
		return "", fmt.Errorf("bcrypt: %w", err)
	}
	return string(out), nil
}

// Compare reports whether secret matches the encoded hash. Hashes created
// with a different cost still verify.
func (h *Hasher) Compare(hash, secret string) bool {
	if hash == "" {
		return false
	}
	pre := prehash(secret)
	defer common.WipeByteArray(pre)

	return bcrypt.CompareHashAndPassword([]byte(hash), pre) == nil
}

// Burn performs a comparison against a throwaway hash. It is used when no
// stored hash exists so that unknown accounts cost the same work.
func (h *Hasher) Burn(secret string) {
	h.dummyOnce.Do(func() {
		pre := prehash(rand.Text())
		h.dummy, _ = bcrypt.GenerateFromPassword(pre, h.cost)
	})
	pre := prehash(secret)
	defer common.WipeByteArray(pre)
	_ = bcrypt.CompareHashAndPassword(h.dummy, pre)
}

func prehash(secret string) []byte {
	sum := sha256.Sum256([]byte(secret))
	out := make([]byte, base64.StdEncoding.EncodedLen(len(sum)))
	base64.StdEncoding.Encode(out, sum[:])
	return out
}
