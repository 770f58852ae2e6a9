package audit

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Event types recorded by the review service.
const (
	EventReviewSubmitted = "ReviewSubmitted"
	EventReviewRejected  = "ReviewRejected"
	EventReviewDeleted   = "ReviewDeleted"
	EventModeratorAuth   = "ModeratorAuth"
)

// AuditEvent represents a review lifecycle or authorization event.
// It must never carry review text, names or dates of birth.
type AuditEvent struct {
	Timestamp time.Time
	EventType string            // e.g. "ReviewSubmitted", "ModeratorAuth"
	EntityID  string            // review ID or token subject
	Result    string            // e.g. "success", "schema_violation", "compliance_rejection"
	Reason    string            // error message or reason code
	Metadata  map[string]string // any extra details
}

// AuditLogger is the interface for logging audit events.
type AuditLogger interface {
	LogEvent(event AuditEvent)
}

// ZapAuditLogger writes audit events as structured log entries.
type ZapAuditLogger struct {
	logger *zap.Logger
}

// NewZapAuditLogger returns an AuditLogger writing to logger under the "audit" name.
func NewZapAuditLogger(logger *zap.Logger) AuditLogger {
	return &ZapAuditLogger{logger: logger.Named("audit")}
}

func (l *ZapAuditLogger) LogEvent(event AuditEvent) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	fields := []zap.Field{
		zap.Time("event_time", event.Timestamp),
		zap.String("event_type", event.EventType),
		zap.String("entity_id", event.EntityID),
		zap.String("result", event.Result),
	}
	if event.Reason != "" {
		fields = append(fields, zap.String("reason", event.Reason))
	}
	if len(event.Metadata) > 0 {
		fields = append(fields, zap.Any("metadata", event.Metadata))
	}
	l.logger.Info("audit event", fields...)
}

// MemoryAuditLogger keeps events in memory; used by tests and the CLI dry run.
type MemoryAuditLogger struct {
	mu     sync.Mutex
	events []AuditEvent
}

func (l *MemoryAuditLogger) LogEvent(event AuditEvent) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, event)
}

// Events returns a copy of the recorded events.
func (l *MemoryAuditLogger) Events() []AuditEvent {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]AuditEvent(nil), l.events...)
}
