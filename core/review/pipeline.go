package review

import "time"

// DateLayout is the only accepted shape of a review date.
const DateLayout = "2006-01-02"

// NewCandidate combines a submission with its derived identity.
// An empty date defaults to the day of now.
func NewCandidate(sub Submission, reviewID string, now time.Time) Candidate {
	id := DeriveIdentity(sub.Patient(), now)
	date := sub.Date
	if date == "" {
		date = now.Format(DateLayout)
	}
	return Candidate{
		ReviewID:         reviewID,
		PatientInitials:  id.PatientInitials,
		Age:              id.Age,
		Condition:        sub.Condition,
		Rating:           sub.Rating,
		Review:           sub.Review,
		VerifiedPurchase: sub.VerifiedPurchase,
		Date:             date,
		HelpfulCount:     sub.HelpfulCount,
	}
}

// Sanitize turns a raw submission into a publishable review, or returns the
// reason it cannot be published (*SchemaError or ErrComplianceRejected).
func Sanitize(sub Submission, reviewID string, now time.Time) (PatientReview, error) {
	return CheckCompliance(NewCandidate(sub, reviewID, now))
}
