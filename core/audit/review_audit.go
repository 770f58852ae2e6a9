package audit

import (
	"strconv"
	"strings"
	"time"
)

// LogReviewAccepted records a published review.
func LogReviewAccepted(l AuditLogger, reviewID string, rating int) {
	l.LogEvent(AuditEvent{
		Timestamp: time.Now().UTC(),
		EventType: EventReviewSubmitted,
		EntityID:  reviewID,
		Result:    "success",
		Metadata:  map[string]string{"rating": strconv.Itoa(rating)},
	})
}

// LogSchemaViolation records which fields failed validation. Only field names
// are logged; values may contain PHI.
func LogSchemaViolation(l AuditLogger, reviewID string, fields []string) {
	l.LogEvent(AuditEvent{
		Timestamp: time.Now().UTC(),
		EventType: EventReviewRejected,
		EntityID:  reviewID,
		Result:    "schema_violation",
		Reason:    "invalid fields",
		Metadata:  map[string]string{"fields": strings.Join(fields, ",")},
	})
}

// LogComplianceRejection records a review blocked by the residual PHI scan.
func LogComplianceRejection(l AuditLogger, reviewID string) {
	l.LogEvent(AuditEvent{
		Timestamp: time.Now().UTC(),
		EventType: EventReviewRejected,
		EntityID:  reviewID,
		Result:    "compliance_rejection",
		Reason:    "residual sensitive content",
	})
}

// LogReviewDeleted records a moderator deletion.
func LogReviewDeleted(l AuditLogger, reviewID, moderator string) {
	l.LogEvent(AuditEvent{
		Timestamp: time.Now().UTC(),
		EventType: EventReviewDeleted,
		EntityID:  reviewID,
		Result:    "success",
		Metadata:  map[string]string{"moderator": moderator},
	})
}

// LogModeratorAuth records a moderator authentication attempt.
func LogModeratorAuth(l AuditLogger, subject, result, reason string) {
	l.LogEvent(AuditEvent{
		Timestamp: time.Now().UTC(),
		EventType: EventModeratorAuth,
		EntityID:  subject,
		Result:    result,
		Reason:    reason,
	})
}
