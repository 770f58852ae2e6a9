package review

import "errors"

// ErrComplianceRejected is returned when a schema-valid review still contains
// text matching a residual PHI pattern. It deliberately carries no detail
// about which pattern matched.
var ErrComplianceRejected = errors.New("review contains information that could identify a patient")

// CheckCompliance validates c and then scans the redacted review text for
// residual PHI. It returns the publishable record, a *SchemaError, or
// ErrComplianceRejected.
func CheckCompliance(c Candidate) (PatientReview, error) {
	rec, err := ValidateSchema(c)
	if err != nil {
		return PatientReview{}, err
	}
	if HasResidualPHI(rec.Review) {
		return PatientReview{}, ErrComplianceRejected
	}
	return rec, nil
}

// IsCompliant reports whether c may be published.
func IsCompliant(c Candidate) bool {
	_, err := CheckCompliance(c)
	return err == nil
}

// IsSchemaViolation reports whether err is (or wraps) a *SchemaError.
func IsSchemaViolation(err error) bool {
	var se *SchemaError
	return errors.As(err, &se)
}
