package service

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"unicode"
)

// codeMaxAttempts is how many name-derived candidates the registry tries
// before falling back to a prefix-free random code. The fallback guarantees
// termination even if a popular first name has exhausted its suffix space.
const codeMaxAttempts = 5

// ReferralCodeRegistry generates human-readable referral codes. Uniqueness is
// enforced by the unique index on profiles.referral_code; callers treat a
// duplicate-key error on insert as a retry signal and ask for the next
// candidate.
type ReferralCodeRegistry struct{}

// Candidate derives a code from the profile's display name:
// UPPER(first token) + "-" + four random digits, e.g. "JANE-1234".
func (ReferralCodeRegistry) Candidate(displayName string) string {
	prefix := codePrefix(displayName)
	if prefix == "" {
		return ReferralCodeRegistry{}.Fallback()
	}
	return prefix + "-" + randomDigits(4)
}

// Fallback returns a fully random code, e.g. "USER-51234".
func (ReferralCodeRegistry) Fallback() string {
	return "USER-" + randomDigits(5)
}

func codePrefix(displayName string) string {
	fields := strings.Fields(displayName)
	if len(fields) == 0 {
		return ""
	}
	var b strings.Builder
	for _, r := range fields[0] {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToUpper(r))
		}
	}
	return b.String()
}

func randomDigits(n int) string {
	max := big.NewInt(1)
	for i := 0; i < n; i++ {
		max.Mul(max, big.NewInt(10))
	}
	v, err := rand.Int(rand.Reader, max)
	if err != nil {
		// crypto/rand only fails if the platform's entropy source is broken.
		panic(err)
	}
	return fmt.Sprintf("%0*d", n, v)
}
