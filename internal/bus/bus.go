// Package bus wraps the message broker with a blocking request/reply
// primitive. Requests are pushed onto a topic list together with a reply key;
// the caller blocks on that key until the remote service answers or the wait
// elapses.
package bus

import (
	"context"
	"errors"
)

// ErrTimeout signals no reply arrived within the configured wait.
var ErrTimeout = errors.New("bus: reply timeout")

// ErrUnreachable signals a transport-level failure sending or receiving.
var ErrUnreachable = errors.New("bus: broker unreachable")

// ErrEmptyResponse signals a reply arrived with an empty body.
var ErrEmptyResponse = errors.New("bus: empty response")

// Caller performs a blocking request/reply call over the bus.
type Caller interface {
	Call(ctx context.Context, topic string, payload []byte) ([]byte, error)
}

// Publisher sends a message without waiting for a reply.
type Publisher interface {
	Publish(ctx context.Context, topic string, payload []byte) error
}
