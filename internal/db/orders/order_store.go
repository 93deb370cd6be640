package ordersdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"ordermesh/internal/orders"
)

// OrderStore persists orders and their line items in Postgres.
type OrderStore struct {
	db *sql.DB
}

// NewOrderStore constructs an OrderStore backed by Postgres.
func NewOrderStore(db *sql.DB) *OrderStore {
	return &OrderStore{db: db}
}

// NewOrderStoreWithSchema initializes the schema then returns the store.
func NewOrderStoreWithSchema(ctx context.Context, db *sql.DB) (*OrderStore, error) {
	store := NewOrderStore(db)
	if err := store.InitSchema(ctx); err != nil {
		return nil, err
	}
	return store, nil
}

// InitSchema creates the order tables if they do not exist.
func (s *OrderStore) InitSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS orders (
			id BIGSERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL,
			cart_id BIGINT NOT NULL,
			payment_status TEXT NOT NULL,
			canceled BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS order_items (
			id BIGSERIAL PRIMARY KEY,
			order_id BIGINT NOT NULL,
			product_id BIGINT NOT NULL,
			quantity INT NOT NULL,
			FOREIGN KEY (order_id) REFERENCES orders(id) ON DELETE CASCADE
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}

	return nil
}

// Create inserts the order and its items in one transaction and fills in the
// generated id.
func (s *OrderStore) Create(ctx context.Context, order *orders.Order) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx, `
		INSERT INTO orders (user_id, cart_id, payment_status, canceled, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		order.UserID, order.CartID, string(order.PaymentStatus), order.Canceled, order.CreatedAt, order.UpdatedAt,
	)
	if err := row.Scan(&order.ID); err != nil {
		return err
	}

	for _, item := range order.Products {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO order_items (order_id, product_id, quantity)
			VALUES ($1, $2, $3)`,
			order.ID, item.ProductID, item.Quantity,
		); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// Update rewrites the mutable order columns. Line items never change after
// creation, so they are left alone.
func (s *OrderStore) Update(ctx context.Context, order *orders.Order) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE orders
		SET payment_status = $2, canceled = $3, updated_at = $4
		WHERE id = $1`,
		order.ID, string(order.PaymentStatus), order.Canceled, order.UpdatedAt,
	)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%w: %d", orders.ErrOrderNotFound, order.ID)
	}

	return nil
}

// FindByID loads one order with its line items.
func (s *OrderStore) FindByID(ctx context.Context, id int64) (orders.Order, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, cart_id, payment_status, canceled, created_at, updated_at
		FROM orders
		WHERE id = $1`,
		id,
	)

	order, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return orders.Order{}, fmt.Errorf("%w: %d", orders.ErrOrderNotFound, id)
		}
		return orders.Order{}, err
	}

	order.Products, err = s.loadItems(ctx, order.ID)
	if err != nil {
		return orders.Order{}, err
	}

	return order, nil
}

// FindByUser loads every order placed by a user, oldest first.
func (s *OrderStore) FindByUser(ctx context.Context, userID int64) ([]orders.Order, error) {
	return s.findMany(ctx, `
		SELECT id, user_id, cart_id, payment_status, canceled, created_at, updated_at
		FROM orders
		WHERE user_id = $1
		ORDER BY id`,
		userID,
	)
}

// FindAll loads every stored order, oldest first.
func (s *OrderStore) FindAll(ctx context.Context) ([]orders.Order, error) {
	return s.findMany(ctx, `
		SELECT id, user_id, cart_id, payment_status, canceled, created_at, updated_at
		FROM orders
		ORDER BY id`,
	)
}

func (s *OrderStore) findMany(ctx context.Context, query string, args ...any) ([]orders.Order, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []orders.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, order)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		out[i].Products, err = s.loadItems(ctx, out[i].ID)
		if err != nil {
			return nil, err
		}
	}

	return out, nil
}

func (s *OrderStore) loadItems(ctx context.Context, orderID int64) ([]orders.LineItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT product_id, quantity
		FROM order_items
		WHERE order_id = $1
		ORDER BY id`,
		orderID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []orders.LineItem
	for rows.Next() {
		var item orders.LineItem
		if err := rows.Scan(&item.ProductID, &item.Quantity); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (orders.Order, error) {
	var order orders.Order
	var status string
	if err := row.Scan(&order.ID, &order.UserID, &order.CartID, &status, &order.Canceled, &order.CreatedAt, &order.UpdatedAt); err != nil {
		return orders.Order{}, err
	}
	order.PaymentStatus = orders.PaymentStatus(status)
	return order, nil
}
