package review

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validCandidate() Candidate {
	return Candidate{
		ReviewID:         "123e4567-e89b-12d3-a456-426614174000",
		PatientInitials:  "J.W.",
		Age:              "30-39",
		Condition:        "Hypertension",
		Rating:           5,
		Review:           "The pharmacy team explained every dose clearly.",
		VerifiedPurchase: true,
		Date:             "2024-03-01",
		HelpfulCount:     2,
	}
}

func requireSchemaError(t *testing.T, err error) *SchemaError {
	t.Helper()
	require.Error(t, err)
	var se *SchemaError
	require.True(t, errors.As(err, &se), "expected *SchemaError, got %T: %v", err, err)
	return se
}

func TestValidateSchema_Valid(t *testing.T) {
	rec, err := ValidateSchema(validCandidate())
	require.NoError(t, err)
	assert.Equal(t, PatientReview(validCandidate()), rec)
}

func TestValidateSchema_Rating(t *testing.T) {
	for _, rating := range []int{0, 6, -1} {
		c := validCandidate()
		c.Rating = rating
		_, err := ValidateSchema(c)
		se := requireSchemaError(t, err)
		assert.Equal(t, []string{"rating"}, se.FieldNames(), "rating %d", rating)
	}
	for rating := 1; rating <= 5; rating++ {
		c := validCandidate()
		c.Rating = rating
		_, err := ValidateSchema(c)
		assert.NoError(t, err, "rating %d", rating)
	}
}

func TestValidateSchema_DateIsShapeOnly(t *testing.T) {
	c := validCandidate()
	c.Date = "2024-13-01"
	_, err := ValidateSchema(c)
	assert.NoError(t, err, "calendar validity is not checked")

	for _, date := range []string{"2024/03/01", "March 1, 2024", "2024-03-01T10:00:00Z", ""} {
		c.Date = date
		_, err := ValidateSchema(c)
		se := requireSchemaError(t, err)
		assert.True(t, se.Has("date"), "date %q", date)
	}
}

func TestValidateSchema_Initials(t *testing.T) {
	for _, initials := range []string{"J.", "J.W."} {
		c := validCandidate()
		c.PatientInitials = initials
		_, err := ValidateSchema(c)
		assert.NoError(t, err, initials)
	}
	for _, initials := range []string{"M.J.W.", "", "JW", "j.w.", "J.W"} {
		c := validCandidate()
		c.PatientInitials = initials
		_, err := ValidateSchema(c)
		se := requireSchemaError(t, err)
		assert.True(t, se.Has("patientInitials"), "initials %q", initials)
	}
}

func TestValidateSchema_Age(t *testing.T) {
	for _, age := range []string{"0-9", "30-39", "60-69", "65+"} {
		c := validCandidate()
		c.Age = age
		_, err := ValidateSchema(c)
		assert.NoError(t, err, age)
	}
	for _, age := range []string{"36", "", "1988", "30 - 39", "65"} {
		c := validCandidate()
		c.Age = age
		_, err := ValidateSchema(c)
		se := requireSchemaError(t, err)
		assert.True(t, se.Has("age"), "age %q", age)
	}
}

func TestValidateSchema_HelpfulCount(t *testing.T) {
	c := validCandidate()
	c.HelpfulCount = -1
	_, err := ValidateSchema(c)
	se := requireSchemaError(t, err)
	assert.Equal(t, []string{"helpfulCount"}, se.FieldNames())
}

func TestValidateSchema_ReviewLengthAfterRedaction(t *testing.T) {
	c := validCandidate()

	c.Review = strings.Repeat("a", 500)
	_, err := ValidateSchema(c)
	assert.NoError(t, err)

	c.Review = strings.Repeat("a", 501)
	se := requireSchemaError(t, func() error { _, err := ValidateSchema(c); return err }())
	assert.True(t, se.Has("review"))

	c.Review = "too short"
	_, err = ValidateSchema(c)
	assert.True(t, requireSchemaError(t, err).Has("review"))

	// Ten characters before redaction, seven after.
	c.Review = "5551234567"
	_, err = ValidateSchema(c)
	assert.True(t, requireSchemaError(t, err).Has("review"))

	// Counted in code points, not bytes.
	c.Review = strings.Repeat("é", 500)
	_, err = ValidateSchema(c)
	assert.NoError(t, err)
}

func TestValidateSchema_RedactsReview(t *testing.T) {
	c := validCandidate()
	c.Review = "Reach me at 555-123-4567 or a@b.com any time."
	rec, err := ValidateSchema(c)
	require.NoError(t, err)
	assert.Equal(t, "Reach me at [PHONE] or [EMAIL] any time.", rec.Review)
}

func TestValidateSchemaJSON_MissingFields(t *testing.T) {
	_, err := ValidateSchemaJSON([]byte(`{"reviewId": "abc"}`))
	se := requireSchemaError(t, err)
	for _, field := range []string{"patientInitials", "age", "condition", "rating", "review", "verifiedPurchase", "date", "helpfulCount"} {
		assert.True(t, se.Has(field), "missing %s not reported", field)
	}
	assert.False(t, se.Has("reviewId"))
}

func TestValidateSchemaJSON_WrongTypes(t *testing.T) {
	payload := `{
  "reviewId": "abc",
  "patientInitials": "J.W.",
  "age": "30-39",
  "condition": "Asthma",
  "rating": "5",
  "review": "Friendly staff and short waiting times.",
  "verifiedPurchase": "yes",
  "date": "2024-03-01",
  "helpfulCount": 1.5
}`
	_, err := ValidateSchemaJSON([]byte(payload))
	se := requireSchemaError(t, err)
	assert.Equal(t, []string{"helpfulCount", "rating", "verifiedPurchase"}, se.FieldNames())
}

func TestValidateSchemaJSON_UnknownField(t *testing.T) {
	payload := `{
  "reviewId": "abc",
  "patientInitials": "J.W.",
  "age": "30-39",
  "condition": "Asthma",
  "rating": 4,
  "review": "Friendly staff and short waiting times.",
  "verifiedPurchase": true,
  "date": "2024-03-01",
  "helpfulCount": 0,
  "dob": "1988-04-02"
}`
	_, err := ValidateSchemaJSON([]byte(payload))
	se := requireSchemaError(t, err)
	assert.Equal(t, []string{"dob"}, se.FieldNames())
}

func TestValidateSchemaJSON_InvalidJSON(t *testing.T) {
	_, err := ValidateSchemaJSON([]byte(`{not json`))
	se := requireSchemaError(t, err)
	assert.Equal(t, []string{"(root)"}, se.FieldNames())
	assert.Contains(t, se.Error(), "invalid JSON")
}
