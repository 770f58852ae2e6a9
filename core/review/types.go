package review

// RawPatient is the subset of an upstream patient record the sanitizer reads.
// The record itself is owned by the caller and never modified here.
type RawPatient struct {
	Name string `json:"name"`
	DOB  string `json:"dob"`
}

// Submission is a raw review as entered on the review form.
// Only the fields listed here are accepted; anything else is rejected by the decoder.
type Submission struct {
	Name             string `json:"name"`
	DOB              string `json:"dob"`
	Condition        string `json:"condition"`
	Review           string `json:"review"`
	Rating           int    `json:"rating"`
	VerifiedPurchase bool   `json:"verifiedPurchase"`
	Date             string `json:"date,omitempty"`
	HelpfulCount     int    `json:"helpfulCount,omitempty"`
}

// Patient returns the identifying part of the submission.
func (s Submission) Patient() RawPatient {
	return RawPatient{Name: s.Name, DOB: s.DOB}
}

// Identity is the de-identified stand-in for a patient's name and date of birth.
type Identity struct {
	PatientInitials string `json:"patientInitials"`
	Age             string `json:"age"`
}

// Candidate is a review record that has not passed validation yet.
type Candidate struct {
	ReviewID         string `json:"reviewId"`
	PatientInitials  string `json:"patientInitials"`
	Age              string `json:"age"`
	Condition        string `json:"condition"`
	Rating           int    `json:"rating"`
	Review           string `json:"review"`
	VerifiedPurchase bool   `json:"verifiedPurchase"`
	Date             string `json:"date"`
	HelpfulCount     int    `json:"helpfulCount"`
}

// PatientReview is a validated, redacted review safe for public display.
type PatientReview struct {
	ReviewID         string `json:"reviewId"`
	PatientInitials  string `json:"patientInitials"`
	Age              string `json:"age"`
	Condition        string `json:"condition"`
	Rating           int    `json:"rating"`
	Review           string `json:"review"`
	VerifiedPurchase bool   `json:"verifiedPurchase"`
	Date             string `json:"date"`
	HelpfulCount     int    `json:"helpfulCount"`
}
