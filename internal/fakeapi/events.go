package fakeapi

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/citycare/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventIssueReported      EventType = "issue_reported"
	EventIssueStatusChanged EventType = "issue_status_changed"
	EventPasswordReset      EventType = "password_reset"
)

// Event represents something a handler did that others may react to.
type Event struct {
	Type      EventType
	IssueID   int64
	UserID    int64
	Timestamp time.Time
	Payload   any
}

// StatusChangedPayload accompanies EventIssueStatusChanged.
type StatusChangedPayload struct {
	OldStatus domain.ComplaintStatus
	NewStatus domain.ComplaintStatus
}

// PasswordResetPayload accompanies EventPasswordReset.
type PasswordResetPayload struct {
	Email             string
	TemporaryPassword string
}

// EventHandler handles a published event.
type EventHandler func(context.Context, Event) error

// Dispatcher interface allows event publication/subscription.
type Dispatcher interface {
	Publish(ctx context.Context, event Event)
	Subscribe(eventType EventType, handler EventHandler)
}

// inMemoryDispatcher is a simple synchronous dispatcher.
type inMemoryDispatcher struct {
	mu        sync.RWMutex
	logger    *zap.Logger
	listeners map[EventType][]EventHandler
}

// NewInMemoryDispatcher creates a dispatcher instance.
func NewInMemoryDispatcher(logger *zap.Logger) Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &inMemoryDispatcher{
		logger:    logger,
		listeners: make(map[EventType][]EventHandler),
	}
}

// Publish synchronously invokes handlers for the given event. Handler
// failures are logged and do not stop the others.
func (d *inMemoryDispatcher) Publish(ctx context.Context, event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	d.mu.RLock()
	handlers := append([]EventHandler{}, d.listeners[event.Type]...)
	d.mu.RUnlock()

	for _, handler := range handlers {
		if err := handler(ctx, event); err != nil {
			d.logger.Warn("event handler failed",
				zap.String("event", string(event.Type)),
				zap.Int64("issue_id", event.IssueID),
				zap.Error(err))
		}
	}
}

// Subscribe registers a handler for the given event type.
func (d *inMemoryDispatcher) Subscribe(eventType EventType, handler EventHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.listeners[eventType] = append(d.listeners[eventType], handler)
}
