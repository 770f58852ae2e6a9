package review

import "regexp"

// Pattern is one entry of the syntactic PHI pattern list. Patterns with a
// Replacement are redacted; the others are only detected.
//
// The list is best-effort: it matches common US formats of a few identifier
// categories and knows nothing about context. Passing it is not a guarantee
// that a text is free of PHI.
type Pattern struct {
	Name        string
	Expr        *regexp.Regexp
	Replacement string
}

// Every expression is anchored on word boundaries, so an identifier glued to
// a word ("call5551234567") is neither redacted nor detected.
var (
	PhonePattern = Pattern{
		Name:        "phone",
		Expr:        regexp.MustCompile(`\b\d{3}[-.]?\d{3}[-.]?\d{4}\b`),
		Replacement: "[PHONE]",
	}
	EmailPattern = Pattern{
		Name:        "email",
		Expr:        regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`),
		Replacement: "[EMAIL]",
	}
	SSNPattern = Pattern{
		Name:        "ssn",
		Expr:        regexp.MustCompile(`\b\d{3}-?\d{2}-?\d{4}\b`),
		Replacement: "[SSN]",
	}
	LongDatePattern = Pattern{
		Name: "long_date",
		Expr: regexp.MustCompile(`\b(?i:January|February|March|April|May|June|July|August|September|October|November|December)\s+\d{1,2},?\s+\d{4}\b`),
	}
	StreetAddressPattern = Pattern{
		Name: "street_address",
		// Street names and suffixes must be capitalised, otherwise "3 visits Dr Patel"
		// or "2 pills on the way" would read as addresses.
		Expr: regexp.MustCompile(`\b\d{1,5}\s+(?:[A-Z][A-Za-z'-]*\s+){1,3}(?:Street|St|Avenue|Ave|Road|Rd|Boulevard|Blvd|Lane|Ln|Drive|Dr|Court|Ct|Way|Place|Pl|STREET|ST|AVENUE|AVE|ROAD|RD|DRIVE|DR|LANE|LN)\b`),
	}
)

// RedactionPatterns are applied by TransformReviewText, in this order.
// Phone runs before SSN so a formatted ten-digit number is reported as a phone.
var RedactionPatterns = []Pattern{PhonePattern, EmailPattern, SSNPattern}

// ResidualPatterns are scanned by the compliance gate after redaction.
var ResidualPatterns = []Pattern{PhonePattern, EmailPattern, SSNPattern, LongDatePattern, StreetAddressPattern}

// TransformReviewText replaces every phone number, e-mail address and SSN in
// text with its placeholder token. Applying it twice gives the same result as
// applying it once.
func TransformReviewText(text string) string {
	for _, p := range RedactionPatterns {
		text = p.Expr.ReplaceAllLiteralString(text, p.Replacement)
	}
	return text
}

// HasResidualPHI reports whether text still matches any residual pattern.
func HasResidualPHI(text string) bool {
	for _, p := range ResidualPatterns {
		if p.Expr.MatchString(text) {
			return true
		}
	}
	return false
}
