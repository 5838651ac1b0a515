package alert

import (
	"context"
	"log/slog"
	"time"

	"github.com/femar/gestao/internal/security"
)

// Alert is the notification built for a high-risk event.
type Alert struct {
	EventID     string    `json:"event_id"`
	Action      string    `json:"action"`
	User        string    `json:"user"`
	Details     string    `json:"details"`
	Destination string    `json:"destination"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// Dispatcher delivers alerts.
type Dispatcher interface {
	Dispatch(ctx context.Context, a Alert) error
}

// Notifier forwards high-risk events to a Dispatcher. It implements
// security.AlertHook.
type Notifier struct {
	dest       *Destination
	dispatcher Dispatcher
	logger     *slog.Logger
}

// NewNotifier constructs a Notifier. A nil dispatcher logs only.
func NewNotifier(dest *Destination, dispatcher Dispatcher, logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	if dispatcher == nil {
		dispatcher = LogDispatcher{Logger: logger}
	}
	return &Notifier{dest: dest, dispatcher: dispatcher, logger: logger}
}

// HighRiskAppended dispatches an alert for e. Dispatch errors are logged and
// never reach the caller that appended the event.
func (n *Notifier) HighRiskAppended(ctx context.Context, e security.Event) {
	a := Alert{
		EventID:     e.ID,
		Action:      e.Action,
		User:        e.User,
		Details:     e.Details,
		Destination: n.dest.Email(),
		OccurredAt:  e.Timestamp,
	}
	if err := n.dispatcher.Dispatch(ctx, a); err != nil {
		n.logger.Error("dispatch security alert",
			slog.Any("error", err),
			slog.String("event_id", e.ID),
		)
	}
}
