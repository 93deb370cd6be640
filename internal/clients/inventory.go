package clients

import (
	"context"
	"encoding/json"
	"fmt"

	"ordermesh/internal/bus"
	"ordermesh/internal/orders"
)

type stockCommand struct {
	Action   string        `json:"action"`
	Products []wireProduct `json:"products"`
}

// InventoryClient is the bus-backed proxy for the product/inventory service.
type InventoryClient struct {
	bus   bus.Caller
	topic string
}

// NewInventoryClient constructs a proxy publishing stock adjustments to topic.
func NewInventoryClient(caller bus.Caller, topic string) *InventoryClient {
	return &InventoryClient{bus: caller, topic: topic}
}

// AdjustStock moves stock for the given line items in the given direction.
func (c *InventoryClient) AdjustStock(ctx context.Context, direction orders.StockDirection, items []orders.LineItem) error {
	var action string
	switch direction {
	case orders.StockDecrease:
		action = actionDecreaseStock
	case orders.StockIncrease:
		action = actionIncreaseStock
	default:
		return fmt.Errorf("unknown stock direction %q", direction)
	}

	cmd := stockCommand{Action: action, Products: make([]wireProduct, 0, len(items))}
	for _, item := range items {
		cmd.Products = append(cmd.Products, wireProduct{ID: item.ProductID, Amount: item.Quantity})
	}

	payload, err := json.Marshal(cmd)
	if err != nil {
		return fmt.Errorf("%w: marshal %s: %w", orders.ErrSerialization, action, err)
	}
	if _, err := c.bus.Call(ctx, c.topic, payload); err != nil {
		return fmt.Errorf("%w: %s: %w", orders.ErrUpstream, action, err)
	}
	return nil
}
