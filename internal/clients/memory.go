package clients

import (
	"context"
	"fmt"
	"sync"

	"ordermesh/internal/orders"
)

// NewInMemoryCartClient constructs an in-memory cart client.
func NewInMemoryCartClient() *InMemoryCartClient {
	return &InMemoryCartClient{
		carts:   make(map[int64]orders.CartSnapshot),
		cleared: make(map[int64]int),
	}
}

// InMemoryCartClient serves seeded carts from memory and records clears.
type InMemoryCartClient struct {
	mu      sync.Mutex
	carts   map[int64]orders.CartSnapshot
	cleared map[int64]int
}

// Seed registers a cart snapshot to be served by FetchCart.
func (c *InMemoryCartClient) Seed(cart orders.CartSnapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	cart.Products = append([]orders.LineItem(nil), cart.Products...)
	c.carts[cart.ID] = cart
}

func (c *InMemoryCartClient) FetchCart(ctx context.Context, cartID int64) (orders.CartSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return orders.CartSnapshot{}, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	cart, ok := c.carts[cartID]
	if !ok {
		return orders.CartSnapshot{}, fmt.Errorf("cart %d not found", cartID)
	}
	cart.Products = append([]orders.LineItem(nil), cart.Products...)
	return cart, nil
}

func (c *InMemoryCartClient) ClearCart(ctx context.Context, cartID int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cleared[cartID]++
	delete(c.carts, cartID)
	return nil
}

// ClearCount reports how many times a cart was cleared (for testing/inspection).
func (c *InMemoryCartClient) ClearCount(cartID int64) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cleared[cartID]
}

// NewInMemoryInventoryClient constructs an in-memory inventory client.
func NewInMemoryInventoryClient() *InMemoryInventoryClient {
	return &InMemoryInventoryClient{stock: make(map[int64]int)}
}

// InMemoryInventoryClient tracks per-product stock levels in memory.
type InMemoryInventoryClient struct {
	mu    sync.Mutex
	stock map[int64]int
}

// SetStock seeds the available quantity for a product.
func (c *InMemoryInventoryClient) SetStock(productID int64, quantity int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stock[productID] = quantity
}

func (c *InMemoryInventoryClient) AdjustStock(ctx context.Context, direction orders.StockDirection, items []orders.LineItem) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if direction == orders.StockDecrease {
		for _, item := range items {
			if c.stock[item.ProductID] < item.Quantity {
				return fmt.Errorf("insufficient stock for product %d", item.ProductID)
			}
		}
	}
	for _, item := range items {
		if direction == orders.StockDecrease {
			c.stock[item.ProductID] -= item.Quantity
		} else {
			c.stock[item.ProductID] += item.Quantity
		}
	}
	return nil
}

// Stock reports the current quantity for a product (for testing/inspection).
func (c *InMemoryInventoryClient) Stock(productID int64) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stock[productID]
}
