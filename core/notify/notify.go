package notify

import (
	"sync"

	"go.uber.org/zap"
)

// NotificationType represents the kind of notification to send
type NotificationType string

const (
	NotifyModerator NotificationType = "moderator"
)

// Notification holds the data for a notification event.
// It never includes the review text.
type Notification struct {
	ReviewID  string
	Reason    string
	Type      NotificationType
	Recipient string // e.g. moderator queue address
}

// Notifier delivers notifications.
type Notifier interface {
	Notify(n Notification)
}

// LogNotifier logs notifications; the delivery transport lives outside this service.
type LogNotifier struct {
	logger    *zap.Logger
	recipient string
}

// NewLogNotifier returns a notifier addressing every notification to recipient.
func NewLogNotifier(logger *zap.Logger, recipient string) *LogNotifier {
	return &LogNotifier{logger: logger.Named("notify"), recipient: recipient}
}

func (l *LogNotifier) Notify(n Notification) {
	if n.Recipient == "" {
		n.Recipient = l.recipient
	}
	l.logger.Info("notification",
		zap.String("to", n.Recipient),
		zap.String("type", string(n.Type)),
		zap.String("review_id", n.ReviewID),
		zap.String("reason", n.Reason),
	)
}

// ComplianceRejected tells moderators that a submission was blocked.
func ComplianceRejected(n Notifier, reviewID string) {
	n.Notify(Notification{
		ReviewID: reviewID,
		Reason:   "submission blocked by the sensitive-content check",
		Type:     NotifyModerator,
	})
}

// Recorder collects notifications in memory.
type Recorder struct {
	mu   sync.Mutex
	Sent []Notification
}

func (r *Recorder) Notify(n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Sent = append(r.Sent, n)
}
