package orders

import (
	"context"
	"errors"
	"time"
)

// PaymentStatus records the settlement outcome of an order.
type PaymentStatus string

const (
	// PaymentPending only exists while an order is being built in memory;
	// it is never persisted.
	PaymentPending  PaymentStatus = "PENDING"
	PaymentSuccess  PaymentStatus = "SUCCESS"
	PaymentFailed   PaymentStatus = "FAILED"
	PaymentCanceled PaymentStatus = "CANCELED"
)

// LineItem is a (product, quantity) pair recorded against an order at
// creation time. The quantity is the quantity requested at order time,
// independent of later inventory state.
type LineItem struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

// Order is the aggregate the saga operates on. UserID, CartID, CreatedAt and
// Products are set once at creation and never mutated afterward. Canceled is
// the authoritative cancellation flag; PaymentStatus is the settlement record.
type Order struct {
	ID            int64         `json:"id"`
	UserID        int64         `json:"userId"`
	CartID        int64         `json:"cartId"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
	PaymentStatus PaymentStatus `json:"paymentStatus"`
	Canceled      bool          `json:"canceled"`
	Products      []LineItem    `json:"products"`
}

// CartSnapshot is the cart service's view of a cart, fetched fresh on every
// create-order call and never cached.
type CartSnapshot struct {
	ID       int64
	UserID   int64
	Products []LineItem
}

// StockDirection selects whether an inventory adjustment adds or removes stock.
type StockDirection string

const (
	StockDecrease StockDirection = "decrease"
	StockIncrease StockDirection = "increase"
)

// CartClient talks to the external cart service.
type CartClient interface {
	FetchCart(ctx context.Context, cartID int64) (CartSnapshot, error)
	ClearCart(ctx context.Context, cartID int64) error
}

// InventoryClient talks to the external product/inventory service.
type InventoryClient interface {
	AdjustStock(ctx context.Context, direction StockDirection, items []LineItem) error
}

// Store persists orders. Create assigns the order's ID on first successful
// persistence; implementations must make each write atomic per record.
type Store interface {
	Create(ctx context.Context, order *Order) error
	Update(ctx context.Context, order *Order) error
	FindByID(ctx context.Context, id int64) (Order, error)
	FindByUser(ctx context.Context, userID int64) ([]Order, error)
	FindAll(ctx context.Context) ([]Order, error)
}

// AuditLogger emits structured events to the external log sink. Emitting is
// best-effort and must never influence the saga's outcome.
type AuditLogger interface {
	Emit(ctx context.Context, level, message string)
}

// EventSink receives order lifecycle notifications. Implementations must not
// block the calling saga.
type EventSink interface {
	OrderCreated(order Order)
	OrderCanceled(order Order)
}

// ErrCartUnavailable signals the cart snapshot could not be fetched.
var ErrCartUnavailable = errors.New("cart unavailable")

// ErrCartEmpty signals the fetched cart holds no line items.
var ErrCartEmpty = errors.New("cart is empty")

// ErrCartOwnerMismatch signals the cart belongs to a different user.
var ErrCartOwnerMismatch = errors.New("cart does not belong to user")

// ErrOrderNotFound signals no order exists for the given id.
var ErrOrderNotFound = errors.New("order not found")

// ErrAlreadyCanceled signals a cancel was attempted on a canceled order.
var ErrAlreadyCanceled = errors.New("order already canceled")

// ErrUpstream signals a failure talking to an external service.
var ErrUpstream = errors.New("upstream service error")

// ErrPersistence signals the order store rejected a write.
var ErrPersistence = errors.New("persistence error")

// ErrSerialization signals a malformed external response.
var ErrSerialization = errors.New("malformed upstream response")
