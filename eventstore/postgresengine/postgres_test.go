package postgresengine_test

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shibashis-Mandal/Library-Management-System/eventstore"
	"github.com/Shibashis-Mandal/Library-Management-System/eventstore/postgresengine"
	"github.com/Shibashis-Mandal/Library-Management-System/testutil/eventstoretest"
)

const dsnEnv = "LIBRARY_TEST_POSTGRES_DSN"

var tableCounter atomic.Int64

func testDSN(t *testing.T) string {
	t.Helper()

	dsn := os.Getenv(dsnEnv)
	if dsn == "" {
		t.Skipf("%s not set", dsnEnv)
	}

	return dsn
}

func uniqueTable(t *testing.T, db *sql.DB) string {
	t.Helper()

	table := fmt.Sprintf("events_test_%d_%d", time.Now().UnixNano(), tableCounter.Add(1))
	t.Cleanup(func() { _, _ = db.Exec("DROP TABLE IF EXISTS " + table) })

	return table
}

func Test_PostgresEngine_PGX_Contract(t *testing.T) {
	dsn := testDSN(t)

	cleanupDB, err := sql.Open("postgres", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cleanupDB.Close() })

	pool, err := pgxpool.New(context.Background(), dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	eventstoretest.RunContractTests(t, func(t *testing.T) eventstoretest.EventStore {
		es, err := postgresengine.NewEventStoreFromPGXPool(pool, postgresengine.WithTableName(uniqueTable(t, cleanupDB)))
		require.NoError(t, err)
		require.NoError(t, es.CreateSchema(context.Background()))

		return es
	})
}

func Test_PostgresEngine_SQLDB_Contract(t *testing.T) {
	db, err := sql.Open("postgres", testDSN(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	eventstoretest.RunContractTests(t, func(t *testing.T) eventstoretest.EventStore {
		es, err := postgresengine.NewEventStoreFromSQLDB(db, postgresengine.WithTableName(uniqueTable(t, db)))
		require.NoError(t, err)
		require.NoError(t, es.CreateSchema(context.Background()))

		return es
	})
}

func Test_PostgresEngine_SQLX_RoundTrip(t *testing.T) {
	db, err := sqlx.Open("postgres", testDSN(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	es, err := postgresengine.NewEventStoreFromSQLX(db, postgresengine.WithTableName(uniqueTable(t, db.DB)))
	require.NoError(t, err)
	require.NoError(t, es.CreateSchema(context.Background()))

	ctx := context.Background()
	filter := eventstore.BuildEventFilter().Matching().AnyPredicateOf(eventstore.P("BookID", "book-1")).Finalize()
	event, err := eventstore.BuildStorableEventWithEmptyMetadata("CopyAddedToCirculation", time.Now(), []byte(`{"CopyID":"copy-1","BookID":"book-1"}`))
	require.NoError(t, err)

	require.NoError(t, es.Append(ctx, filter, 0, event))
	events, maxSeq, err := es.Query(eventstore.WithEventualConsistency(ctx), filter)

	require.NoError(t, err)
	assert.Len(t, events, 1)
	assert.Equal(t, eventstore.MaxSequenceNumberUint(1), maxSeq)
}

func Test_PostgresEngine_Constructors_RejectNil(t *testing.T) {
	_, err := postgresengine.NewEventStoreFromPGXPool(nil)
	assert.ErrorIs(t, err, eventstore.ErrNilDatabaseConnection)

	_, err = postgresengine.NewEventStoreFromPGXPoolAndReplica(nil, nil)
	assert.ErrorIs(t, err, eventstore.ErrNilDatabaseConnection)

	_, err = postgresengine.NewEventStoreFromSQLDB(nil)
	assert.ErrorIs(t, err, eventstore.ErrNilDatabaseConnection)

	_, err = postgresengine.NewEventStoreFromSQLX(nil)
	assert.ErrorIs(t, err, eventstore.ErrNilDatabaseConnection)
}
