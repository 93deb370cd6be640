// Package clients holds the typed proxies over the message bus for the cart
// and product/inventory services, the reliability decorators around them, and
// in-memory stand-ins for local development.
package clients

import (
	"context"
	"encoding/json"
	"fmt"

	"ordermesh/internal/bus"
	"ordermesh/internal/orders"
)

// Wire actions understood by the cart and product services.
const (
	actionGetCart       = "get_cart_by_id"
	actionDeleteCart    = "delete_cart"
	actionDecreaseStock = "decrease_stock"
	actionIncreaseStock = "increase_stock"
)

type cartCommand struct {
	Action string `json:"action"`
	CartID int64  `json:"cart_id"`
}

type wireProduct struct {
	ID     int64 `json:"id"`
	Amount int   `json:"amount"`
}

type cartResponse struct {
	ID       int64         `json:"id"`
	UserID   int64         `json:"userId"`
	Products []wireProduct `json:"products"`
}

// CartClient is the bus-backed proxy for the cart service. It builds the
// request payload, invokes the gateway, and parses the response. No retries,
// no caching.
type CartClient struct {
	bus          bus.Caller
	fetchTopic   string
	commandTopic string
}

// NewCartClient constructs a proxy publishing fetches to fetchTopic and
// mutations to commandTopic.
func NewCartClient(caller bus.Caller, fetchTopic, commandTopic string) *CartClient {
	return &CartClient{
		bus:          caller,
		fetchTopic:   fetchTopic,
		commandTopic: commandTopic,
	}
}

// FetchCart retrieves the current snapshot of a cart.
func (c *CartClient) FetchCart(ctx context.Context, cartID int64) (orders.CartSnapshot, error) {
	payload, err := json.Marshal(cartCommand{Action: actionGetCart, CartID: cartID})
	if err != nil {
		return orders.CartSnapshot{}, fmt.Errorf("%w: marshal %s: %w", orders.ErrSerialization, actionGetCart, err)
	}

	reply, err := c.bus.Call(ctx, c.fetchTopic, payload)
	if err != nil {
		return orders.CartSnapshot{}, fmt.Errorf("%w: %s: %w", orders.ErrUpstream, actionGetCart, err)
	}

	var resp cartResponse
	if err := json.Unmarshal(reply, &resp); err != nil {
		return orders.CartSnapshot{}, fmt.Errorf("%w: parse cart %d: %w", orders.ErrSerialization, cartID, err)
	}

	snapshot := orders.CartSnapshot{
		ID:       resp.ID,
		UserID:   resp.UserID,
		Products: make([]orders.LineItem, 0, len(resp.Products)),
	}
	for _, p := range resp.Products {
		snapshot.Products = append(snapshot.Products, orders.LineItem{ProductID: p.ID, Quantity: p.Amount})
	}
	return snapshot, nil
}

// ClearCart asks the cart service to delete a cart's contents.
func (c *CartClient) ClearCart(ctx context.Context, cartID int64) error {
	payload, err := json.Marshal(cartCommand{Action: actionDeleteCart, CartID: cartID})
	if err != nil {
		return fmt.Errorf("%w: marshal %s: %w", orders.ErrSerialization, actionDeleteCart, err)
	}
	if _, err := c.bus.Call(ctx, c.commandTopic, payload); err != nil {
		return fmt.Errorf("%w: %s: %w", orders.ErrUpstream, actionDeleteCart, err)
	}
	return nil
}
