// Package audit emits structured events to the external log sink over the
// message bus. Emission is fire-and-forget: a failed emit never fails or
// alters the saga that produced it.
package audit

import (
	"context"
	"encoding/json"
	"log/slog"

	"ordermesh/internal/bus"
)

type payload struct {
	Service string  `json:"service"`
	Content content `json:"content"`
}

type content struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

// Logger publishes audit events to the log topic.
type Logger struct {
	bus     bus.Publisher
	topic   string
	service string
	diag    *slog.Logger
}

// NewLogger constructs a Logger emitting on behalf of service. diag receives
// local diagnostics about failed emits; nil falls back to slog.Default.
func NewLogger(publisher bus.Publisher, topic, service string, diag *slog.Logger) *Logger {
	if diag == nil {
		diag = slog.Default()
	}
	return &Logger{
		bus:     publisher,
		topic:   topic,
		service: service,
		diag:    diag,
	}
}

// Emit publishes one audit event. Failures are swallowed and surfaced only to
// the local diagnostic logger.
func (l *Logger) Emit(ctx context.Context, level, message string) {
	body, err := json.Marshal(payload{
		Service: l.service,
		Content: content{Level: level, Message: message},
	})
	if err != nil {
		l.diag.DebugContext(ctx, "audit marshal failed", "error", err)
		return
	}
	if err := l.bus.Publish(ctx, l.topic, body); err != nil {
		l.diag.DebugContext(ctx, "audit emit failed", "topic", l.topic, "error", err)
	}
}

// Noop is an AuditLogger that discards everything.
type Noop struct{}

func (Noop) Emit(context.Context, string, string) {}
