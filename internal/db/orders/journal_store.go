package ordersdb

import (
	"context"
	"database/sql"

	"ordermesh/internal/orders/journal"
)

// JournalStore persists side-effect markers in Postgres. Each external call
// the orchestrator issues is recorded as pending before the call and settled
// as applied or failed afterwards.
type JournalStore struct {
	db *sql.DB
}

// NewJournalStore constructs a JournalStore backed by Postgres.
func NewJournalStore(db *sql.DB) *JournalStore {
	return &JournalStore{db: db}
}

// NewJournalStoreWithSchema initializes the schema then returns the store.
func NewJournalStoreWithSchema(ctx context.Context, db *sql.DB) (*JournalStore, error) {
	store := NewJournalStore(db)
	if err := store.InitSchema(ctx); err != nil {
		return nil, err
	}
	return store, nil
}

// InitSchema creates the order_effects table if it does not exist.
func (s *JournalStore) InitSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS order_effects (
			id BIGSERIAL PRIMARY KEY,
			saga_id TEXT NOT NULL,
			order_id BIGINT NOT NULL,
			effect TEXT NOT NULL,
			status TEXT NOT NULL,
			detail TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`)
	return err
}

// Record appends an effect marker row.
func (s *JournalStore) Record(ctx context.Context, sagaID string, orderID int64, effect journal.Effect, status journal.Status, detail string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO order_effects (saga_id, order_id, effect, status, detail)
		VALUES ($1, $2, $3, $4, $5)`,
		sagaID, orderID, string(effect), string(status), detail,
	)
	return err
}

// Entries returns every marker recorded under one saga, oldest first. A
// pending entry with no applied or failed successor means the process died
// mid-call; an applied entry under a saga with no order row is a side effect
// that landed without its order.
func (s *JournalStore) Entries(ctx context.Context, sagaID string) ([]journal.Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT saga_id, order_id, effect, status, detail, created_at
		FROM order_effects
		WHERE saga_id = $1
		ORDER BY id`,
		sagaID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []journal.Entry
	for rows.Next() {
		var entry journal.Entry
		var effect, status string
		if err := rows.Scan(&entry.SagaID, &entry.OrderID, &effect, &status, &entry.Detail, &entry.CreatedAt); err != nil {
			return nil, err
		}
		entry.Effect = journal.Effect(effect)
		entry.Status = journal.Status(status)
		out = append(out, entry)
	}
	return out, rows.Err()
}
