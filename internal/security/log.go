package security

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// AlertHook is notified after a high-risk event enters the log.
type AlertHook interface {
	HighRiskAppended(ctx context.Context, e Event)
}

// Observer receives workflow transitions, typically for metrics.
type Observer interface {
	EventAppended(e Event)
	EventAuthorized(e Event)
	AuthorizationRejected(reason string)
}

// Filter narrows a query. Zero values match everything.
type Filter struct {
	Risks       []RiskLevel
	PendingOnly bool
	User        string
	Action      string
}

func (f Filter) match(e *Event) bool {
	if len(f.Risks) > 0 {
		found := false
		for _, r := range f.Risks {
			if e.Risk == r {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.PendingOnly && !e.Pending() {
		return false
	}
	if f.User != "" && !strings.EqualFold(e.User, strings.TrimSpace(f.User)) {
		return false
	}
	if f.Action != "" && !strings.Contains(strings.ToLower(e.Action), strings.ToLower(strings.TrimSpace(f.Action))) {
		return false
	}
	return true
}

// Log owns the ordered sequence of events. Events are exposed newest first;
// internally they are kept in insertion order.
type Log struct {
	mu        sync.RWMutex
	events    []*Event
	index     map[string]*Event
	dismissed map[string]struct{}
	last      time.Time

	now      func() time.Time
	newID    func() string
	hook     AlertHook
	observer Observer
	logger   *slog.Logger
}

// LogOption customises a Log.
type LogOption func(*Log)

// WithClock overrides the time source.
func WithClock(now func() time.Time) LogOption {
	return func(l *Log) { l.now = now }
}

// WithIDGenerator overrides event id generation.
func WithIDGenerator(gen func() string) LogOption {
	return func(l *Log) { l.newID = gen }
}

// WithAlertHook sets the high-risk notification hook.
func WithAlertHook(h AlertHook) LogOption {
	return func(l *Log) { l.hook = h }
}

// WithObserver sets the transition observer.
func WithObserver(o Observer) LogOption {
	return func(l *Log) { l.observer = o }
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) LogOption {
	return func(l *Log) { l.logger = logger }
}

// NewLog constructs an empty Log.
func NewLog(opts ...LogOption) *Log {
	l := &Log{
		index:     make(map[string]*Event),
		dismissed: make(map[string]struct{}),
		now:       func() time.Time { return time.Now().UTC() },
		newID:     uuid.NewString,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.logger == nil {
		l.logger = slog.Default()
	}
	return l
}

// Append stores a new event at the head of the log and returns it with its
// generated id and timestamp. Timestamps never go backwards across appends.
func (l *Log) Append(ctx context.Context, n NewEvent) (Event, error) {
	if err := n.validate(); err != nil {
		return Event{}, err
	}
	l.mu.Lock()
	ts := l.now()
	if ts.Before(l.last) {
		ts = l.last
	}
	l.last = ts
	e := &Event{
		ID:        l.newID(),
		Timestamp: ts,
		User:      strings.TrimSpace(n.User),
		Action:    strings.TrimSpace(n.Action),
		Details:   n.Details,
		Risk:      n.Risk,
	}
	l.events = append(l.events, e)
	l.index[e.ID] = e
	out := e.clone()
	l.mu.Unlock()

	l.logger.Info("security event",
		slog.String("event_id", out.ID),
		slog.String("user", out.User),
		slog.String("action", out.Action),
		slog.String("risk", string(out.Risk)),
	)
	if l.observer != nil {
		l.observer.EventAppended(out)
	}
	if out.Risk == RiskHigh && l.hook != nil {
		l.hook.HighRiskAppended(ctx, out.clone())
	}
	return out, nil
}

// Authorize attaches an authorization to a pending high-risk event. It never
// overwrites an existing authorization.
func (l *Log) Authorize(_ context.Context, id, by, justification string) (Event, error) {
	justification = strings.TrimSpace(justification)
	by = strings.TrimSpace(by)

	l.mu.Lock()
	e, ok := l.index[id]
	if !ok {
		l.mu.Unlock()
		return Event{}, ErrEventNotFound
	}
	if e.Authorization != nil {
		l.mu.Unlock()
		return Event{}, ErrAlreadyAuthorized
	}
	if e.Risk != RiskHigh {
		l.mu.Unlock()
		return Event{}, ErrNotAuthorizable
	}
	if justification == "" || by == "" {
		l.mu.Unlock()
		return Event{}, ErrJustificationRequired
	}
	at := l.now()
	if at.Before(e.Timestamp) {
		at = e.Timestamp
	}
	e.Authorization = &AuthorizationInfo{AuthorizedBy: by, Timestamp: at, Justification: justification}
	out := e.clone()
	l.mu.Unlock()

	l.logger.Info("security event authorized",
		slog.String("event_id", out.ID),
		slog.String("authorized_by", by),
	)
	if l.observer != nil {
		l.observer.EventAuthorized(out)
	}
	return out, nil
}

// Get returns the event with id.
func (l *Log) Get(id string) (Event, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	e, ok := l.index[id]
	if !ok {
		return Event{}, ErrEventNotFound
	}
	return e.clone(), nil
}

// Events returns every event, newest first.
func (l *Log) Events() []Event {
	return l.Query(Filter{})
}

// Query returns the events matching f, newest first.
func (l *Log) Query(f Filter) []Event {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Event, 0, len(l.events))
	for i := len(l.events) - 1; i >= 0; i-- {
		if f.match(l.events[i]) {
			out = append(out, l.events[i].clone())
		}
	}
	return out
}

// Len returns the number of events.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.events)
}

// PendingAlert returns the most recent pending event whose banner has not been
// dismissed, together with the number of pending events overall.
func (l *Log) PendingAlert() (Event, int, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var (
		current Event
		found   bool
		pending int
	)
	for i := len(l.events) - 1; i >= 0; i-- {
		e := l.events[i]
		if !e.Pending() {
			continue
		}
		pending++
		if found {
			continue
		}
		if _, hidden := l.dismissed[e.ID]; !hidden {
			current = e.clone()
			found = true
		}
	}
	return current, pending, found
}

// DismissAlert hides the banner for a pending event. The event itself stays
// pending and reachable through Query.
func (l *Log) DismissAlert(id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.index[id]
	if !ok {
		return ErrEventNotFound
	}
	if !e.Pending() {
		return ErrNotPending
	}
	l.dismissed[id] = struct{}{}
	return nil
}
