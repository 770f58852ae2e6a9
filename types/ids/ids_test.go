package ids

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewReviewID_Parses(t *testing.T) {
	id := NewReviewID()
	parsed, err := ParseReviewID(id)
	require.NoError(t, err)
	assert.Equal(t, id, parsed)
	assert.NotEqual(t, id, NewReviewID())
}

func TestParseReviewID_Invalid(t *testing.T) {
	_, err := ParseReviewID("not-a-uuid")
	assert.Error(t, err)
}

func TestFingerprintOf_NormalisesCaseAndSpace(t *testing.T) {
	a := FingerprintOf("J.W.", "Great service")
	b := FingerprintOf("j.w.", "  great SERVICE ")
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, FingerprintOf("J.W.", "Great service!"))
	// Part boundaries matter.
	assert.NotEqual(t, FingerprintOf("ab", "c"), FingerprintOf("a", "bc"))
}

func TestFingerprint_String(t *testing.T) {
	s := FingerprintOf("x").String()
	assert.Len(t, s, 64)
	assert.Equal(t, strings.ToLower(s), s)
}
