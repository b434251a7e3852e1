package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Shibashis-Mandal/Library-Management-System/circulation/config"
	"github.com/Shibashis-Mandal/Library-Management-System/circulation/service"
	"github.com/Shibashis-Mandal/Library-Management-System/eventstore/memoryengine"
	"github.com/Shibashis-Mandal/Library-Management-System/eventstore/postgresengine"
	"github.com/Shibashis-Mandal/Library-Management-System/eventstore/sqliteengine"
)

// engineCollectors drops the engine logger below debug level unless telemetry is on,
// the engines log once per query.
func (a *App) engineCollectors(o service.Observability) service.Observability {
	if !a.Config.OTel.Enabled && !a.Logger.Enabled(context.Background(), slog.LevelDebug) {
		o.ContextualLogger = nil
	}

	return o
}

func (a *App) openEventStore(ctx context.Context, o service.Observability) error {
	c := a.engineCollectors(o)
	store := a.Config.Store

	switch store.Driver {
	case config.DriverMemory:
		opts := []memoryengine.Option{}
		if c.ContextualLogger != nil {
			opts = append(opts, memoryengine.WithContextualLogger(c.ContextualLogger))
		}
		if c.Metrics != nil {
			opts = append(opts, memoryengine.WithMetrics(c.Metrics))
		}
		if c.Tracing != nil {
			opts = append(opts, memoryengine.WithTracing(c.Tracing))
		}

		es, err := memoryengine.NewEventStore(opts...)
		if err != nil {
			return err
		}
		a.eventStore = es

	case config.DriverSQLite:
		opts := []sqliteengine.Option{sqliteengine.WithTableName(store.TableName)}
		if c.ContextualLogger != nil {
			opts = append(opts, sqliteengine.WithContextualLogger(c.ContextualLogger))
		}
		if c.Metrics != nil {
			opts = append(opts, sqliteengine.WithMetrics(c.Metrics))
		}
		if c.Tracing != nil {
			opts = append(opts, sqliteengine.WithTracing(c.Tracing))
		}

		es, err := sqliteengine.Open(store.SQLitePath, opts...)
		if err != nil {
			return err
		}
		a.eventStore = es
		a.onClose(func(context.Context) error { return es.Close() })

	case config.DriverPostgres:
		es, err := a.openPostgres(ctx, c)
		if err != nil {
			return err
		}
		a.eventStore = es
		a.migrations = append(a.migrations, es.CreateSchema)

	default:
		return fmt.Errorf("unsupported store driver %q", store.Driver)
	}

	a.Logger.Debug("event store opened", "driver", store.Driver, "table", store.TableName)

	return nil
}

func (a *App) openPostgres(ctx context.Context, c service.Observability) (*postgresengine.EventStore, error) {
	store := a.Config.Store

	opts := []postgresengine.Option{postgresengine.WithTableName(store.TableName)}
	if c.ContextualLogger != nil {
		opts = append(opts, postgresengine.WithContextualLogger(c.ContextualLogger))
	}
	if c.Metrics != nil {
		opts = append(opts, postgresengine.WithMetrics(c.Metrics))
	}
	if c.Tracing != nil {
		opts = append(opts, postgresengine.WithTracing(c.Tracing))
	}

	switch store.Adapter {
	case config.AdapterSQL:
		db, err := store.OpenSQLDB(ctx, store.PostgresDSN)
		if err != nil {
			return nil, err
		}
		a.onClose(func(context.Context) error { return db.Close() })

		return postgresengine.NewEventStoreFromSQLDB(db, opts...)

	case config.AdapterSQLX:
		db, err := store.OpenSQLX(ctx, store.PostgresDSN)
		if err != nil {
			return nil, err
		}
		a.onClose(func(context.Context) error { return db.Close() })

		return postgresengine.NewEventStoreFromSQLX(db, opts...)

	default:
		pool, err := store.OpenPGXPool(ctx, store.PostgresDSN)
		if err != nil {
			return nil, err
		}
		a.onClose(func(context.Context) error { pool.Close(); return nil })

		if store.ReplicaDSN == "" {
			return postgresengine.NewEventStoreFromPGXPool(pool, opts...)
		}

		replica, err := store.OpenPGXPool(ctx, store.ReplicaDSN)
		if err != nil {
			return nil, err
		}
		a.onClose(func(context.Context) error { replica.Close(); return nil })

		return postgresengine.NewEventStoreFromPGXPoolAndReplica(pool, replica, opts...)
	}
}
