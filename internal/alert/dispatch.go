package alert

import (
	"context"
	"log/slog"

	"github.com/femar/gestao/jobs"
)

// LogDispatcher writes alerts to the structured log.
type LogDispatcher struct {
	Logger *slog.Logger
}

// Dispatch implements Dispatcher.
func (d LogDispatcher) Dispatch(_ context.Context, a Alert) error {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Warn("security alert",
		slog.String("event_id", a.EventID),
		slog.String("action", a.Action),
		slog.String("user", a.User),
		slog.String("to", a.Destination),
	)
	return nil
}

// QueueDispatcher hands alerts to the background worker.
type QueueDispatcher struct {
	client *jobs.Client
}

// NewQueueDispatcher wraps a jobs client.
func NewQueueDispatcher(client *jobs.Client) *QueueDispatcher {
	return &QueueDispatcher{client: client}
}

// Dispatch implements Dispatcher.
func (d *QueueDispatcher) Dispatch(ctx context.Context, a Alert) error {
	_, err := d.client.EnqueueSecurityAlert(ctx, jobs.SecurityAlertPayload{
		EventID:     a.EventID,
		Action:      a.Action,
		User:        a.User,
		Details:     a.Details,
		Destination: a.Destination,
		OccurredAt:  a.OccurredAt,
	})
	return err
}
