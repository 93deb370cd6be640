package orders

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// NewMemoryStore constructs an in-memory order store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{orders: make(map[int64]Order)}
}

// MemoryStore keeps orders in memory. It backs tests and local development
// when no database is configured.
type MemoryStore struct {
	mu     sync.Mutex
	nextID int64
	orders map[int64]Order
}

func (s *MemoryStore) Create(ctx context.Context, order *Order) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	order.ID = s.nextID
	s.orders[order.ID] = copyOrder(*order)
	return nil
}

func (s *MemoryStore) Update(ctx context.Context, order *Order) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.orders[order.ID]; !ok {
		return fmt.Errorf("%w: %d", ErrOrderNotFound, order.ID)
	}
	s.orders[order.ID] = copyOrder(*order)
	return nil
}

func (s *MemoryStore) FindByID(ctx context.Context, id int64) (Order, error) {
	if err := ctx.Err(); err != nil {
		return Order{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.orders[id]
	if !ok {
		return Order{}, fmt.Errorf("%w: %d", ErrOrderNotFound, id)
	}
	return copyOrder(order), nil
}

func (s *MemoryStore) FindByUser(ctx context.Context, userID int64) ([]Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Order
	for _, order := range s.orders {
		if order.UserID == userID {
			out = append(out, copyOrder(order))
		}
	}
	sortByID(out)
	return out, nil
}

func (s *MemoryStore) FindAll(ctx context.Context) ([]Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Order, 0, len(s.orders))
	for _, order := range s.orders {
		out = append(out, copyOrder(order))
	}
	sortByID(out)
	return out, nil
}

func copyOrder(order Order) Order {
	order.Products = append([]LineItem(nil), order.Products...)
	return order
}

func sortByID(list []Order) {
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
}
