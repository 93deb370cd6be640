package orders

import (
	"context"
	"errors"
	"testing"
)

func TestMemoryStore_CreateAssignsSequentialIDs(t *testing.T) {
	store := NewMemoryStore()

	first := Order{UserID: 1, CartID: 1, PaymentStatus: PaymentSuccess}
	second := Order{UserID: 2, CartID: 2, PaymentStatus: PaymentFailed}

	if err := store.Create(context.Background(), &first); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := store.Create(context.Background(), &second); err != nil {
		t.Fatalf("Create: %v", err)
	}

	if first.ID != 1 || second.ID != 2 {
		t.Fatalf("expected ids 1 and 2, got %d and %d", first.ID, second.ID)
	}
}

func TestMemoryStore_UpdateUnknownOrder(t *testing.T) {
	store := NewMemoryStore()

	err := store.Update(context.Background(), &Order{ID: 42})
	if !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}
}

func TestMemoryStore_FindByIDReturnsCopy(t *testing.T) {
	store := NewMemoryStore()

	order := Order{UserID: 1, CartID: 1, Products: []LineItem{{ProductID: 10, Quantity: 3}}}
	if err := store.Create(context.Background(), &order); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := store.FindByID(context.Background(), order.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	got.Products[0].Quantity = 99

	again, err := store.FindByID(context.Background(), order.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if again.Products[0].Quantity != 3 {
		t.Fatalf("stored order mutated through a returned copy")
	}
}

func TestMemoryStore_FindByUserFiltersAndSorts(t *testing.T) {
	store := NewMemoryStore()

	for _, userID := range []int64{7, 8, 7} {
		order := Order{UserID: userID, CartID: userID}
		if err := store.Create(context.Background(), &order); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	got, err := store.FindByUser(context.Background(), 7)
	if err != nil {
		t.Fatalf("FindByUser: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 orders, got %d", len(got))
	}
	if got[0].ID >= got[1].ID {
		t.Fatalf("expected ascending ids, got %d then %d", got[0].ID, got[1].ID)
	}
}

func TestMemoryStore_HonorsContext(t *testing.T) {
	store := NewMemoryStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := store.Create(ctx, &Order{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if _, err := store.FindAll(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
