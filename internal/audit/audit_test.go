package audit

import (
	"context"
	"errors"
	"testing"

	"ordermesh/internal/orders"
)

type spyPublisher struct {
	topics   []string
	payloads []string
	err      error
}

func (s *spyPublisher) Publish(ctx context.Context, topic string, payload []byte) error {
	s.topics = append(s.topics, topic)
	s.payloads = append(s.payloads, string(payload))
	return s.err
}

func TestLogger_EmitPayloadShape(t *testing.T) {
	spy := &spyPublisher{}
	logger := NewLogger(spy, "log_service_queue", "order-service", nil)

	logger.Emit(context.Background(), orders.LevelInfo, "create order process started for userId: 101, cartId: 1")

	if len(spy.payloads) != 1 {
		t.Fatalf("expected 1 publish, got %d", len(spy.payloads))
	}
	if spy.topics[0] != "log_service_queue" {
		t.Fatalf("unexpected topic %q", spy.topics[0])
	}
	want := `{"service":"order-service","content":{"level":"INFO","message":"create order process started for userId: 101, cartId: 1"}}`
	if spy.payloads[0] != want {
		t.Fatalf("unexpected payload:\n got %s\nwant %s", spy.payloads[0], want)
	}
}

func TestLogger_EmitSwallowsPublishFailure(t *testing.T) {
	spy := &spyPublisher{err: errors.New("broker down")}
	logger := NewLogger(spy, "log_service_queue", "order-service", nil)

	// Must not panic or propagate anything.
	logger.Emit(context.Background(), orders.LevelError, "boom")

	if len(spy.payloads) != 1 {
		t.Fatalf("expected the publish attempt, got %d", len(spy.payloads))
	}
}
