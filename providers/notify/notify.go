package notify

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Event is one fire-and-forget notification. ID and Time are assigned by
// [NewEvent]; Payload is an event-specific struct owned by the emitter.
type Event struct {
	ID      string    `json:"id"`
	Name    string    `json:"name"`
	Time    time.Time `json:"time"`
	Payload any       `json:"payload,omitempty"`
}

// NewEvent assembles an Event with a fresh identifier and the current time.
func NewEvent(name string, payload any) Event {
	return Event{
		ID:      uuid.NewString(),
		Name:    name,
		Time:    time.Now(),
		Payload: payload,
	}
}

// Sink receives events emitted by instrumented code. Emit is fire-and-forget:
// implementations must not block for long and must not panic. Emitters treat
// a panicking sink as a sink bug, not as a pipeline failure, and callers such
// as the healing loop actively shield themselves from it.
type Sink interface {
	Emit(ctx context.Context, event Event)
}

// Nop returns a Sink that discards every event.
func Nop() Sink {
	return nopSink{}
}

type nopSink struct{}

func (nopSink) Emit(context.Context, Event) {}

// Func adapts a plain function into a Sink.
type Func func(ctx context.Context, event Event)

func (f Func) Emit(ctx context.Context, event Event) { f(ctx, event) }

// SlogSink logs every event through a slog.Logger at debug level. Useful as a
// lightweight default sink in examples and tests.
type SlogSink struct {
	Logger *slog.Logger
}

func (s SlogSink) Emit(ctx context.Context, event Event) {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.LogAttrs(ctx, slog.LevelDebug, "Notification",
		slog.String("event", event.Name),
		slog.String("id", event.ID),
		slog.Any("payload", event.Payload),
	)
}
