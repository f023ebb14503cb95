package main

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/openprocure/procurement-pipeline/internal/db"
	"github.com/openprocure/procurement-pipeline/internal/queue"
	"github.com/openprocure/procurement-pipeline/internal/store"
)

// env bundles the store and queue built from configuration.
type env struct {
	store store.Store
	queue queue.Queue
}

// initEnv constructs the configured backends. The postgres queue shares
// the store's pool; the other store drivers pair with the memory queue.
func initEnv(ctx context.Context) (*env, error) {
	switch cfg.Store.Driver {
	case "postgres":
		pool, err := db.Connect(ctx, cfg.Store.DatabaseURL, cfg.Store.MaxConns, cfg.Store.MinConns)
		if err != nil {
			return nil, err
		}
		e := &env{store: store.NewPostgres(pool)}
		if cfg.Queue.Driver == "memory" {
			e.queue = queue.NewMemory()
		} else {
			e.queue = queue.NewPostgres(pool)
		}
		return e, nil

	case "sqlite":
		st, err := store.OpenSQLite(cfg.Store.SQLitePath)
		if err != nil {
			return nil, err
		}
		if cfg.Queue.Driver == "postgres" {
			_ = st.Close()
			return nil, eris.New("env: postgres queue requires the postgres store")
		}
		return &env{store: st, queue: queue.NewMemory()}, nil

	case "memory":
		return &env{store: store.NewMemory(), queue: queue.NewMemory()}, nil

	default:
		return nil, eris.Errorf("env: unknown store driver %q", cfg.Store.Driver)
	}
}

// Close releases the backends.
func (e *env) Close() {
	_ = e.queue.Close()
	_ = e.store.Close()
}

// migrator is implemented by backends that own schema.
type migrator interface {
	Migrate(ctx context.Context) error
}
