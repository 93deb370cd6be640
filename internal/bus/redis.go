package bus

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Envelope is the transport framing around a request. The business payload is
// carried verbatim; responders push their reply onto ReplyTo.
type Envelope struct {
	ReplyTo       string          `json:"reply_to"`
	CorrelationID string          `json:"correlation_id"`
	Payload       json.RawMessage `json:"payload"`
}

// RedisCommands is the minimal client surface used by RedisRPC.
type RedisCommands interface {
	RPush(ctx context.Context, key string, values ...any) *redis.IntCmd
	BLPop(ctx context.Context, timeout time.Duration, keys ...string) *redis.StringSliceCmd
}

// RedisRPC implements request/reply over Redis lists. Each call pushes an
// Envelope onto the topic list and blocks on a per-call reply key.
type RedisRPC struct {
	client  RedisCommands
	timeout time.Duration
	newID   func() string
}

// NewRedisRPC constructs a gateway with the given bounded wait per call.
func NewRedisRPC(client RedisCommands, timeout time.Duration) *RedisRPC {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &RedisRPC{
		client:  client,
		timeout: timeout,
		newID:   uuid.NewString,
	}
}

// Call sends payload to topic and blocks until a reply arrives on the
// correlated reply key or the wait elapses. It never returns an empty
// successful reply. The saga never retries at this layer.
func (r *RedisRPC) Call(ctx context.Context, topic string, payload []byte) ([]byte, error) {
	if topic == "" {
		return nil, fmt.Errorf("%w: empty topic", ErrUnreachable)
	}

	id := r.newID()
	replyKey := topic + ":reply:" + id
	env, err := json.Marshal(Envelope{
		ReplyTo:       replyKey,
		CorrelationID: id,
		Payload:       payload,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: marshal envelope: %w", ErrUnreachable, err)
	}

	if err := r.client.RPush(ctx, topic, env).Err(); err != nil {
		return nil, fmt.Errorf("%w: push to %s: %w", ErrUnreachable, topic, err)
	}

	wait := r.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < wait {
			wait = remaining
		}
	}
	if wait <= 0 {
		return nil, context.DeadlineExceeded
	}

	res, err := r.client.BLPop(ctx, wait, replyKey).Result()
	switch {
	case err == redis.Nil:
		return nil, fmt.Errorf("%w: no reply on %s within %s", ErrTimeout, topic, wait)
	case err != nil:
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: wait on %s: %w", ErrUnreachable, replyKey, err)
	}

	// BLPOP yields [key, value].
	if len(res) < 2 || res[1] == "" {
		return nil, fmt.Errorf("%w: topic %s", ErrEmptyResponse, topic)
	}
	return []byte(res[1]), nil
}

// Publish pushes payload to topic without waiting for a reply.
func (r *RedisRPC) Publish(ctx context.Context, topic string, payload []byte) error {
	if topic == "" {
		return fmt.Errorf("%w: empty topic", ErrUnreachable)
	}
	if err := r.client.RPush(ctx, topic, payload).Err(); err != nil {
		return fmt.Errorf("%w: push to %s: %w", ErrUnreachable, topic, err)
	}
	return nil
}
