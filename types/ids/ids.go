package ids

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Fingerprint is a 32-byte content hash used to spot duplicate reviews.
type Fingerprint [32]byte

// NewReviewID returns a fresh random review identifier.
func NewReviewID() string {
	return uuid.NewString()
}

// ParseReviewID checks that s is a UUID and returns it in canonical form.
func ParseReviewID(s string) (string, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return "", fmt.Errorf("invalid review id %q: %w", s, err)
	}
	return id.String(), nil
}

// FingerprintOf hashes the given parts. Parts are case-folded and trimmed so
// trivial resubmissions of the same text collide.
func FingerprintOf(parts ...string) Fingerprint {
	h := sha256.New()
	for _, p := range parts {
		h.Write([]byte(strings.ToLower(strings.TrimSpace(p))))
		h.Write([]byte{0})
	}
	var fp Fingerprint
	copy(fp[:], h.Sum(nil))
	return fp
}

// String converts a Fingerprint to a hex string
func (fp Fingerprint) String() string {
	return hex.EncodeToString(fp[:])
}
