package clients

import (
	"context"

	"ordermesh/internal/orders"
	"ordermesh/internal/reliability"
)

// ReliableCartClient wraps a CartClient with reliability controls. With the
// default single-attempt policy it behaves exactly like its base client.
type ReliableCartClient struct {
	base    orders.CartClient
	limiter *reliability.RateLimiter
	breaker *reliability.CircuitBreaker
	retry   reliability.RetryPolicy
}

// NewReliableCartClient constructs a reliability-wrapped cart client.
func NewReliableCartClient(base orders.CartClient, limiter *reliability.RateLimiter, breaker *reliability.CircuitBreaker, retry reliability.RetryPolicy) *ReliableCartClient {
	return &ReliableCartClient{
		base:    base,
		limiter: limiter,
		breaker: breaker,
		retry:   retry,
	}
}

func (c *ReliableCartClient) FetchCart(ctx context.Context, cartID int64) (orders.CartSnapshot, error) {
	var snapshot orders.CartSnapshot
	err := do(ctx, c.limiter, c.breaker, c.retry, func() error {
		var err error
		snapshot, err = c.base.FetchCart(ctx, cartID)
		return err
	})
	if err != nil {
		return orders.CartSnapshot{}, err
	}
	return snapshot, nil
}

func (c *ReliableCartClient) ClearCart(ctx context.Context, cartID int64) error {
	return do(ctx, c.limiter, c.breaker, c.retry, func() error {
		return c.base.ClearCart(ctx, cartID)
	})
}

// ReliableInventoryClient wraps an InventoryClient with reliability controls.
type ReliableInventoryClient struct {
	base    orders.InventoryClient
	limiter *reliability.RateLimiter
	breaker *reliability.CircuitBreaker
	retry   reliability.RetryPolicy
}

// NewReliableInventoryClient constructs a reliability-wrapped inventory client.
func NewReliableInventoryClient(base orders.InventoryClient, limiter *reliability.RateLimiter, breaker *reliability.CircuitBreaker, retry reliability.RetryPolicy) *ReliableInventoryClient {
	return &ReliableInventoryClient{
		base:    base,
		limiter: limiter,
		breaker: breaker,
		retry:   retry,
	}
}

func (c *ReliableInventoryClient) AdjustStock(ctx context.Context, direction orders.StockDirection, items []orders.LineItem) error {
	return do(ctx, c.limiter, c.breaker, c.retry, func() error {
		return c.base.AdjustStock(ctx, direction, items)
	})
}

func do(ctx context.Context, limiter *reliability.RateLimiter, breaker *reliability.CircuitBreaker, retry reliability.RetryPolicy, fn func() error) error {
	attempt := func() error {
		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				return err
			}
		}
		if breaker != nil {
			return breaker.Execute(fn)
		}
		return fn()
	}
	return retry.Do(ctx, attempt)
}
