package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ordermesh/internal/orders/journal"

	"github.com/google/uuid"
)

// Audit levels understood by the log sink.
const (
	LevelInfo  = "INFO"
	LevelWarn  = "WARN"
	LevelError = "ERROR"
)

// Service drives the order saga: it coordinates the cart and inventory
// services, applies the payment decision, and persists the resulting order
// state. It holds no mutable state across calls and is safe for concurrent
// use.
type Service struct {
	store     Store
	carts     CartClient
	inventory InventoryClient
	policy    PaymentPolicy
	audit     AuditLogger

	journal journal.Recorder // optional; nil disables effect journaling
	events  EventSink        // optional; nil disables lifecycle notifications

	now       func() time.Time
	newSagaID func() string
}

// NewService constructs the orchestrator. journal and events may be nil;
// audit may be nil to disable audit emission entirely.
func NewService(store Store, carts CartClient, inventory InventoryClient, policy PaymentPolicy, audit AuditLogger, rec journal.Recorder, events EventSink) *Service {
	return &Service{
		store:     store,
		carts:     carts,
		inventory: inventory,
		policy:    policy,
		audit:     audit,
		journal:   rec,
		events:    events,
		now:       time.Now,
		newSagaID: uuid.NewString,
	}
}

// CreateOrder runs the create saga: fetch the cart snapshot, validate it,
// decide payment, apply side effects on approval, and persist the order.
// Validation and upstream failures are terminal; no order is persisted and
// no side effect is issued after a failure.
func (s *Service) CreateOrder(ctx context.Context, userID, cartID int64) (Order, error) {
	s.emit(ctx, LevelInfo, fmt.Sprintf("create order process started for userId: %d, cartId: %d", userID, cartID))

	cart, err := s.carts.FetchCart(ctx, cartID)
	if err != nil {
		s.emit(ctx, LevelError, fmt.Sprintf("cart is empty or not found for cartId: %d", cartID))
		return Order{}, fmt.Errorf("%w: fetch cart %d: %w", ErrCartUnavailable, cartID, err)
	}
	if len(cart.Products) == 0 {
		s.emit(ctx, LevelError, fmt.Sprintf("cart is empty or not found for cartId: %d", cartID))
		return Order{}, fmt.Errorf("%w: cart %d", ErrCartEmpty, cartID)
	}
	if cart.UserID != userID {
		s.emit(ctx, LevelError, fmt.Sprintf("cart does not belong to userId: %d", userID))
		return Order{}, fmt.Errorf("%w: cart %d belongs to user %d, not %d", ErrCartOwnerMismatch, cartID, cart.UserID, userID)
	}

	now := s.now()
	order := Order{
		UserID:        userID,
		CartID:        cartID,
		CreatedAt:     now,
		UpdatedAt:     now,
		PaymentStatus: PaymentPending,
		Products:      append([]LineItem(nil), cart.Products...),
	}

	effectsIssued := false
	if s.policy.Decide(order) == PaymentApproved {
		order.PaymentStatus = PaymentSuccess
		sagaID := s.newSagaID()

		// A caller-supplied deadline aborts before the next external
		// call, never mid-call.
		if err := ctx.Err(); err != nil {
			return Order{}, err
		}
		s.record(ctx, sagaID, 0, journal.EffectCartClear, journal.StatusPending, "")
		if err := s.carts.ClearCart(ctx, cartID); err != nil {
			// Best-effort: the order is still persisted as SUCCESS.
			// The journal and the audit trail carry the gap.
			s.record(ctx, sagaID, 0, journal.EffectCartClear, journal.StatusFailed, err.Error())
			s.emit(ctx, LevelError, fmt.Sprintf("cart clear failed for cartId: %d: %v", cartID, err))
		} else {
			effectsIssued = true
			s.record(ctx, sagaID, 0, journal.EffectCartClear, journal.StatusApplied, "")
			s.emit(ctx, LevelInfo, fmt.Sprintf("cart cleared successfully for cartId: %d", cartID))
		}

		if err := ctx.Err(); err != nil {
			return Order{}, err
		}
		s.record(ctx, sagaID, 0, journal.EffectStockDecrease, journal.StatusPending, "")
		if err := s.inventory.AdjustStock(ctx, StockDecrease, order.Products); err != nil {
			s.record(ctx, sagaID, 0, journal.EffectStockDecrease, journal.StatusFailed, err.Error())
			s.emit(ctx, LevelError, fmt.Sprintf("stock decrease failed for cartId: %d: %v", cartID, err))
		} else {
			effectsIssued = true
			s.record(ctx, sagaID, 0, journal.EffectStockDecrease, journal.StatusApplied, "")
			s.emit(ctx, LevelInfo, "product stock updated with action: decrease_stock")
		}
	} else {
		order.PaymentStatus = PaymentFailed
		s.emit(ctx, LevelWarn, fmt.Sprintf("order creation failed for userId: %d, cartId: %d", userID, cartID))
	}

	if err := s.store.Create(ctx, &order); err != nil {
		if effectsIssued {
			// Side effects landed externally but the order record did
			// not. Surface this distinctly from an ordinary failure.
			s.emit(ctx, LevelError, fmt.Sprintf("order not persisted after side effects for cartId: %d: %v", cartID, err))
			return Order{}, fmt.Errorf("%w: side effects applied but order not persisted: %w", ErrPersistence, err)
		}
		return Order{}, fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	if order.PaymentStatus == PaymentSuccess {
		s.emit(ctx, LevelInfo, fmt.Sprintf("order created successfully for userId: %d, cartId: %d", userID, cartID))
	}
	if s.events != nil {
		s.events.OrderCreated(order)
	}
	return order, nil
}

// CancelOrder marks an existing order canceled and restores the stock that
// was decremented at creation. Canceling an already-canceled order fails
// with ErrAlreadyCanceled and issues no inventory call.
func (s *Service) CancelOrder(ctx context.Context, orderID int64) (Order, error) {
	s.emit(ctx, LevelInfo, fmt.Sprintf("cancel order process started for orderId: %d", orderID))

	order, err := s.store.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			s.emit(ctx, LevelError, fmt.Sprintf("order not found for orderId: %d", orderID))
			return Order{}, err
		}
		return Order{}, fmt.Errorf("%w: load order %d: %w", ErrPersistence, orderID, err)
	}
	if order.Canceled {
		s.emit(ctx, LevelWarn, fmt.Sprintf("order already canceled for orderId: %d", orderID))
		return Order{}, fmt.Errorf("%w: order %d", ErrAlreadyCanceled, orderID)
	}

	wasPaid := order.PaymentStatus == PaymentSuccess
	order.Canceled = true
	order.PaymentStatus = PaymentCanceled
	order.UpdatedAt = s.now()

	// Stock was only decremented on the approval path, so only restore it
	// for orders that settled as SUCCESS.
	if wasPaid {
		if err := ctx.Err(); err != nil {
			return Order{}, err
		}
		sagaID := s.newSagaID()
		s.record(ctx, sagaID, orderID, journal.EffectStockIncrease, journal.StatusPending, "")
		if err := s.inventory.AdjustStock(ctx, StockIncrease, order.Products); err != nil {
			s.record(ctx, sagaID, orderID, journal.EffectStockIncrease, journal.StatusFailed, err.Error())
			s.emit(ctx, LevelError, fmt.Sprintf("stock restore failed for orderId: %d: %v", orderID, err))
		} else {
			s.record(ctx, sagaID, orderID, journal.EffectStockIncrease, journal.StatusApplied, "")
			s.emit(ctx, LevelInfo, "product stock updated with action: increase_stock")
		}
	}

	if err := s.store.Update(ctx, &order); err != nil {
		return Order{}, fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	s.emit(ctx, LevelInfo, fmt.Sprintf("order canceled successfully for orderId: %d", orderID))
	if s.events != nil {
		s.events.OrderCanceled(order)
	}
	return order, nil
}

// GetOrder returns a single order by id.
func (s *Service) GetOrder(ctx context.Context, id int64) (Order, error) {
	s.emit(ctx, LevelInfo, fmt.Sprintf("fetching order by ID: %d", id))
	order, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			s.emit(ctx, LevelError, fmt.Sprintf("order not found with ID: %d", id))
			return Order{}, err
		}
		return Order{}, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	return order, nil
}

// GetOrdersByUser returns every order placed by a user.
func (s *Service) GetOrdersByUser(ctx context.Context, userID int64) ([]Order, error) {
	s.emit(ctx, LevelInfo, fmt.Sprintf("fetching orders for user ID: %d", userID))
	list, err := s.store.FindByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	return list, nil
}

// ListOrders returns every stored order.
func (s *Service) ListOrders(ctx context.Context) ([]Order, error) {
	s.emit(ctx, LevelInfo, "fetching all orders")
	list, err := s.store.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	return list, nil
}

func (s *Service) emit(ctx context.Context, level, message string) {
	if s.audit == nil {
		return
	}
	s.audit.Emit(ctx, level, message)
}

func (s *Service) record(ctx context.Context, sagaID string, orderID int64, effect journal.Effect, status journal.Status, detail string) {
	if s.journal == nil {
		return
	}
	// Journal failures are swallowed: the journal is a diagnostic aid, not
	// a participant in the saga.
	_ = s.journal.Record(ctx, sagaID, orderID, effect, status, detail)
}
