package review

import (
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// OldestBracketAge is the age at which the decade buckets stop.
const OldestBracketAge = 65

// DeriveIdentity computes the initials and age bracket shown instead of a
// patient's name and date of birth. It never fails: inputs it cannot use
// produce empty strings, which schema validation rejects.
func DeriveIdentity(p RawPatient, now time.Time) Identity {
	return Identity{
		PatientInitials: Initials(p.Name),
		Age:             AgeRange(p.DOB, now),
	}
}

// Initials returns the first letter of every whitespace-separated token of
// name, upper-cased and followed by a dot ("Jane Wilson" -> "J.W.").
// Names with three or more tokens yield three or more groups; they are not
// trimmed here.
func Initials(name string) string {
	var b strings.Builder
	for _, token := range strings.Fields(name) {
		r, _ := utf8.DecodeRuneInString(token)
		b.WriteRune(unicode.ToUpper(r))
		b.WriteByte('.')
	}
	return b.String()
}

// AgeRange derives the age bracket from a date of birth using year-only
// subtraction, so it can be off by one near a birthday.
// Returns "" when dob cannot be parsed or lies in the future.
func AgeRange(dob string, now time.Time) string {
	born, err := parseDOB(dob)
	if err != nil {
		return ""
	}
	age := now.Year() - born.Year()
	if age < 0 {
		return ""
	}
	return ageBracket(age)
}

func ageBracket(age int) string {
	if age >= OldestBracketAge {
		return fmt.Sprintf("%d+", OldestBracketAge)
	}
	lower := (age / 10) * 10
	return fmt.Sprintf("%d-%d", lower, lower+9)
}

func parseDOB(dob string) (time.Time, error) {
	dob = strings.TrimSpace(dob)
	if t, err := time.Parse("2006-01-02", dob); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, dob)
	if err != nil {
		return time.Time{}, fmt.Errorf("dob must be YYYY-MM-DD or RFC3339: %w", err)
	}
	return t, nil
}
