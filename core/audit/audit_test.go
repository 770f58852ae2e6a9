package audit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestZapAuditLogger_WritesFields(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	l := NewZapAuditLogger(zap.New(core))

	LogSchemaViolation(l, "rev-1", []string{"age", "rating"})

	entries := logs.All()
	require.Len(t, entries, 1)
	ctx := entries[0].ContextMap()
	assert.Equal(t, EventReviewRejected, ctx["event_type"])
	assert.Equal(t, "rev-1", ctx["entity_id"])
	assert.Equal(t, "schema_violation", ctx["result"])
	assert.Equal(t, "audit", entries[0].LoggerName)
}

func TestReviewAuditHelpers(t *testing.T) {
	l := &MemoryAuditLogger{}
	LogReviewAccepted(l, "rev-1", 5)
	LogComplianceRejection(l, "rev-2")
	LogReviewDeleted(l, "rev-1", "mod@example")
	LogModeratorAuth(l, "apikey", "failure", "bad key")

	events := l.Events()
	require.Len(t, events, 4)
	assert.Equal(t, "5", events[0].Metadata["rating"])
	assert.Equal(t, "compliance_rejection", events[1].Result)
	assert.Equal(t, EventReviewDeleted, events[2].EventType)
	assert.Equal(t, EventModeratorAuth, events[3].EventType)
	for _, e := range events {
		assert.False(t, e.Timestamp.IsZero())
	}
}
