package review

import (
	"fmt"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var initialsShape = regexp.MustCompile(`^[A-Z](\.[A-Z])?\.$`)

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 12, 0, 0, 0, time.UTC)
}

func TestInitials(t *testing.T) {
	cases := map[string]string{
		"Jane Wilson":        "J.W.",
		"jane wilson":        "J.W.",
		"  Jane\t  Wilson  ": "J.W.",
		"Cher":               "C.",
		"Mary Jane Wilson":   "M.J.W.",
		"":                   "",
		"   ":                "",
	}
	for name, want := range cases {
		assert.Equal(t, want, Initials(name), "name %q", name)
	}
}

func TestInitials_ShapeDependsOnTokenCount(t *testing.T) {
	for _, name := range []string{"Ann", "Ann Lee", "ann lee"} {
		assert.Regexp(t, initialsShape, Initials(name))
	}
	// Three tokens derive three groups; the shape check does not accept them.
	assert.NotRegexp(t, initialsShape, Initials("Mary Jane Wilson"))
}

func TestAgeRange_OldestBracket(t *testing.T) {
	now := day(2024, time.June, 1)
	for year := 1900; year <= 2024-OldestBracketAge; year++ {
		dob := fmt.Sprintf("%04d-01-15", year)
		require.Equal(t, "65+", AgeRange(dob, now), "dob %s", dob)
	}
}

func TestAgeRange_DecadeBuckets(t *testing.T) {
	now := day(2024, time.June, 1)
	for age := 0; age < OldestBracketAge; age++ {
		dob := fmt.Sprintf("%04d-12-31", 2024-age)
		k := age / 10
		want := fmt.Sprintf("%d-%d", 10*k, 10*k+9)
		require.Equal(t, want, AgeRange(dob, now), "age %d", age)
	}
}

func TestAgeRange_YearOnlySubtraction(t *testing.T) {
	// Birthday not reached yet in 2024, still counted as 40.
	assert.Equal(t, "40-49", AgeRange("1984-12-31", day(2024, time.January, 1)))
}

func TestAgeRange_UnusableDOB(t *testing.T) {
	now := day(2024, time.June, 1)
	assert.Equal(t, "", AgeRange("04/02/1988", now))
	assert.Equal(t, "", AgeRange("", now))
	assert.Equal(t, "", AgeRange("2030-01-01", now))
}

func TestAgeRange_RFC3339(t *testing.T) {
	assert.Equal(t, "30-39", AgeRange("1988-04-02T00:00:00Z", day(2024, time.March, 1)))
}

func TestDeriveIdentity(t *testing.T) {
	id := DeriveIdentity(RawPatient{Name: "Jane Wilson", DOB: "1988-04-02"}, day(2024, time.March, 1))
	assert.Equal(t, Identity{PatientInitials: "J.W.", Age: "30-39"}, id)
}
