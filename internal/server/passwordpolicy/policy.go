// Package passwordpolicy scores candidate passwords against composition,
// blocklist and repetition rules. It is a pure function of its input and is
// reused wherever a new password is accepted.
package passwordpolicy

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dmitrijs2005/storeauth/internal/common"
)

// Symbols is the fixed punctuation set that satisfies the symbol rule.
const Symbols = `!@#$%^&*()_+-=[]{};':"\|,.<>/?`

// Policy holds the tunable limits. The blocklist and rule set are fixed.
type Policy struct {
	MinLength int
	MaxLength int
}

// Default is the policy enforced at registration.
var Default = Policy{MinLength: 8, MaxLength: 128}

// weakPrefixes and weakSubstrings are matched case-insensitively.
var (
	weakPrefixes   = []string{"12345"}
	weakSubstrings = []string{
		"password", "qwerty", "abc123", "111111", "123456",
		"letmein", "welcome", "admin", "login",
	}
)

// Result is the outcome of an evaluation. Reasons is never empty when
// Accepted is false.
type Result struct {
	Accepted bool
	Reasons  []string
}

// Err returns nil for an accepted password, otherwise a *common.PolicyError
// carrying every reason.
func (r Result) Err() error {
	if r.Accepted {
		return nil
	}
	return &common.PolicyError{Reasons: r.Reasons}
}

// Evaluate checks candidate against Default.
func Evaluate(candidate string) Result {
	return Default.Evaluate(candidate)
}

// Evaluate runs every rule and collects all violations in rule order.
func (p Policy) Evaluate(candidate string) Result {
	var reasons []string

	n := utf8.RuneCountInString(candidate)
	if n < p.MinLength {
		reasons = append(reasons, fmt.Sprintf("must be at least %d characters", p.MinLength))
	}
	if n > p.MaxLength {
		reasons = append(reasons, fmt.Sprintf("must not exceed %d characters", p.MaxLength))
	}

	var upper, lower, digit, symbol bool
	for _, r := range candidate {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case strings.ContainsRune(Symbols, r):
			symbol = true
		}
	}
	if !upper {
		reasons = append(reasons, "must contain at least one uppercase letter")
	}
	if !lower {
		reasons = append(reasons, "must contain at least one lowercase letter")
	}
	if !digit {
		reasons = append(reasons, "must contain at least one digit")
	}
	if !symbol {
		reasons = append(reasons, "must contain at least one symbol ("+Symbols+")")
	}

	if isWeak(candidate) {
		reasons = append(reasons, "is too common or predictable")
	}

	if hasRun(candidate, 3) {
		reasons = append(reasons, "must not contain 3 or more identical consecutive characters")
	}

	return Result{Accepted: len(reasons) == 0, Reasons: reasons}
}

func isWeak(candidate string) bool {
	lc := strings.ToLower(candidate)
	for _, p := range weakPrefixes {
		if strings.HasPrefix(lc, p) {
			return true
		}
	}
	for _, s := range weakSubstrings {
		if strings.Contains(lc, s) {
			return true
		}
	}
	return false
}

// hasRun reports whether s contains n or more identical consecutive runes.
func hasRun(s string, n int) bool {
	var prev rune
	count := 0
	for i, r := range s {
		if i > 0 && r == prev {
			count++
		} else {
			count = 1
		}
		if count >= n {
			return true
		}
		prev = r
	}
	return false
}
