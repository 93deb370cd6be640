package orders

import (
	"context"
	"database/sql"
	"log"
	"time"

	"ordermesh/internal/orders/journal"
)

// SchemaInitializer builds the Postgres-backed store and journal once a
// connection is open. It lives here so the builder does not import the db
// package directly and the db package can depend on this one.
type SchemaInitializer func(ctx context.Context, db *sql.DB) (Store, journal.Recorder, error)

// BuildPersistence opens Postgres and returns a store plus effect journal.
// If the DSN is empty or initialization fails, it falls back to the in-memory
// store with no journal. The returned cleanup closes the DB connection.
func BuildPersistence(ctx context.Context, dsn string, init SchemaInitializer, logf func(format string, args ...any)) (Store, journal.Recorder, func()) {
	if logf == nil {
		logf = log.Printf
	}

	cleanup := func() {}
	var store Store = NewMemoryStore()
	var rec journal.Recorder

	if dsn != "" && init != nil {
		sqlDB, err := sql.Open("pgx", dsn)
		if err != nil {
			logf("postgres open failed, falling back to in-memory orders: %v", err)
		} else {
			setupCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()

			pgStore, pgJournal, err := init(setupCtx, sqlDB)
			if err != nil {
				logf("postgres init failed, falling back to in-memory orders: %v", err)
				_ = sqlDB.Close()
			} else {
				logf("postgres orders enabled")
				store = pgStore
				rec = pgJournal
				cleanup = func() {
					if err := sqlDB.Close(); err != nil {
						logf("close postgres: %v", err)
					}
				}
			}
		}
	}

	return store, rec, cleanup
}
