package identity

import (
	"crypto/rand"
	"encoding/hex"
	"regexp"
)

var re = regexp.MustCompile(`^[a-f0-9]{32}$`)

// New returns a fresh identity: exactly 32 lowercase hex characters
// (no separators/prefixes).
func New() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// IsValid reports whether s is a well-formed identity.
func IsValid(s string) bool { return re.MatchString(s) }
