package sqliteengine

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3" // dialect registration
	_ "github.com/mattn/go-sqlite3"                    // driver registration

	"github.com/Shibashis-Mandal/Library-Management-System/eventstore"
	"github.com/Shibashis-Mandal/Library-Management-System/eventstore/internal/observe"
)

//go:embed schema.sql
var schemaSQL string

const (
	engineName            = "sqlite"
	driverName            = "sqlite3"
	dialectSQLite         = "sqlite3"
	defaultEventTableName = "events"
	schemaVersion         = 1
	occurredAtLayout      = "2006-01-02T15:04:05.000000Z"

	colEventType      = "event_type"
	colOccurredAt     = "occurred_at"
	colPayload        = "payload"
	colMetadata       = "metadata"
	colSequenceNumber = "sequence_number"

	errorTypeBuildQuery     = "build_query_error"
	errorTypeDatabaseQuery  = "database_query_error"
	errorTypeRowScan        = "row_scan_error"
	errorTypeBuildStorable  = "build_storable_error"
	errorTypeTransaction    = "transaction_error"
	errorTypeDatabaseExec   = "database_exec_error"
	logMsgBuildQueryFailed  = "failed to build query"
	logMsgDBQueryFailed     = "database query execution failed"
	logMsgScanRowFailed     = "failed to scan database row"
	logMsgBuildStorable     = "failed to build storable event from database row"
	logMsgTransactionFailed = "sqlite transaction failed"
	logMsgDBExecFailed      = "database execution failed during event append"
	logActionQuery          = "query"
	logActionAppend         = "append"
)

// EventStore is an eventstore engine backed by SQLite.
type EventStore struct {
	db             *sql.DB
	ownsDB         bool
	eventTableName string
	instruments    observe.Instruments
}

// Open opens (or creates) the SQLite file at path, applies the pragmas and migrates the schema.
// The returned EventStore owns the connection; Close releases it.
func Open(path string, options ...Option) (*EventStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	db, err := OpenDB(path)
	if err != nil {
		return nil, err
	}

	es, err := NewEventStoreFromDB(db, options...)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	es.ownsDB = true

	return es, nil
}

// OpenDB opens a SQLite database configured for a single writer: WAL, busy timeout, immediate
// transactions and exactly one connection.
func OpenDB(path string) (*sql.DB, error) {
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_foreign_keys=1&_txlock=immediate", path)

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return db, nil
}

// NewEventStoreFromDB creates an EventStore on an already opened database and migrates the schema.
// The caller keeps ownership of db.
func NewEventStoreFromDB(db *sql.DB, options ...Option) (*EventStore, error) {
	if db == nil {
		return nil, eventstore.ErrNilDatabaseConnection
	}

	es := &EventStore{
		db:             db,
		eventTableName: defaultEventTableName,
		instruments:    observe.Instruments{Engine: engineName},
	}

	for _, option := range options {
		if err := option(es); err != nil {
			return nil, err
		}
	}

	if err := es.migrate(); err != nil {
		return nil, errors.Join(eventstore.ErrMigratingSchemaFailed, err)
	}

	return es, nil
}

// Close closes the database if the EventStore opened it.
func (es *EventStore) Close() error {
	if !es.ownsDB {
		return nil
	}

	return es.db.Close()
}

func (es *EventStore) migrate() error {
	if _, err := es.db.Exec(`CREATE TABLE IF NOT EXISTS meta (key TEXT PRIMARY KEY, value TEXT NOT NULL);`); err != nil {
		return err
	}

	versionKey := es.eventTableName + "_schema_version"

	var current int
	_ = es.db.QueryRow(`SELECT value FROM meta WHERE key = ?;`, versionKey).Scan(&current)
	if current >= schemaVersion {
		return nil
	}

	tx, err := es.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(fmt.Sprintf(schemaSQL, es.eventTableName)); err != nil {
		return fmt.Errorf("apply migration: %w", err)
	}

	if _, err := tx.Exec(
		`INSERT INTO meta (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value;`,
		versionKey,
		schemaVersion,
	); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}

	return tx.Commit()
}

// Query returns all events matching filter in append order and the highest sequence number among them.
func (es *EventStore) Query(ctx context.Context, filter eventstore.Filter) (
	eventstore.StorableEvents,
	eventstore.MaxSequenceNumberUint,
	error,
) {

	var empty eventstore.StorableEvents

	ctx, observation := es.instruments.StartQuery(ctx)

	selectStmt := goqu.Dialect(dialectSQLite).
		From(es.eventTableName).
		Select(colEventType, colOccurredAt, colPayload, colMetadata, colSequenceNumber).
		Where(es.whereClause(filter)).
		Order(goqu.I(colSequenceNumber).Asc())

	sqlQuery, _, toSQLErr := selectStmt.ToSQL()
	if toSQLErr != nil {
		observation.Failed(errorTypeBuildQuery, logMsgBuildQueryFailed, toSQLErr)
		return empty, 0, errors.Join(eventstore.ErrBuildingQueryFailed, toSQLErr)
	}

	start := time.Now()
	rows, queryErr := es.db.QueryContext(ctx, sqlQuery)
	es.instruments.LogSQL(ctx, logActionQuery, sqlQuery, time.Since(start))

	if queryErr != nil {
		observation.Failed(errorTypeDatabaseQuery, logMsgDBQueryFailed, queryErr, observe.LogAttrQuery, sqlQuery)
		return empty, 0, errors.Join(eventstore.ErrQueryingEventsFailed, queryErr)
	}
	defer func() { _ = rows.Close() }()

	eventStream := make(eventstore.StorableEvents, 0)
	maxSequenceNumber := eventstore.MaxSequenceNumberUint(0)

	for rows.Next() {
		var (
			eventType, occurredAt, payload, metadata string
			sequenceNumber                           int64
		)

		if err := rows.Scan(&eventType, &occurredAt, &payload, &metadata, &sequenceNumber); err != nil {
			observation.Failed(errorTypeRowScan, logMsgScanRowFailed, err)
			return empty, 0, errors.Join(eventstore.ErrScanningDBRowFailed, err)
		}

		occurredAtTime, parseErr := time.Parse(occurredAtLayout, occurredAt)
		if parseErr != nil {
			observation.Failed(errorTypeRowScan, logMsgScanRowFailed, parseErr)
			return empty, 0, errors.Join(eventstore.ErrScanningDBRowFailed, parseErr)
		}

		event, buildErr := eventstore.BuildStorableEvent(eventType, occurredAtTime, []byte(payload), []byte(metadata))
		if buildErr != nil {
			observation.Failed(errorTypeBuildStorable, logMsgBuildStorable, buildErr, observe.AttrEventType, eventType)
			return empty, 0, errors.Join(eventstore.ErrBuildingStorableEventFailed, buildErr)
		}

		eventStream = append(eventStream, event)
		maxSequenceNumber = eventstore.MaxSequenceNumberUint(sequenceNumber)
	}

	if err := rows.Err(); err != nil {
		observation.Failed(errorTypeDatabaseQuery, logMsgDBQueryFailed, err)
		return empty, 0, errors.Join(eventstore.ErrQueryingEventsFailed, err)
	}

	observation.QuerySucceeded(len(eventStream), maxSequenceNumber)

	return eventStream, maxSequenceNumber, nil
}

// Append inserts the events inside one immediate transaction if the max sequence number for filter
// still equals expectedMaxSequenceNumber; otherwise it returns eventstore.ErrConcurrencyConflict.
func (es *EventStore) Append(
	ctx context.Context,
	filter eventstore.Filter,
	expectedMaxSequenceNumber eventstore.MaxSequenceNumberUint,
	event eventstore.StorableEvent,
	additionalEvents ...eventstore.StorableEvent,
) error {

	allEvents := eventstore.StorableEvents{event}
	allEvents = append(allEvents, additionalEvents...)

	ctx, observation := es.instruments.StartAppend(ctx, allEvents, expectedMaxSequenceNumber)

	maxSeqQuery, insertQuery, buildErr := es.buildAppendQueries(filter, allEvents)
	if buildErr != nil {
		observation.Failed(errorTypeBuildQuery, logMsgBuildQueryFailed, buildErr)
		return errors.Join(eventstore.ErrBuildingQueryFailed, buildErr)
	}

	tx, txErr := es.db.BeginTx(ctx, nil)
	if txErr != nil {
		observation.Failed(errorTypeTransaction, logMsgTransactionFailed, txErr)
		return errors.Join(eventstore.ErrAppendingEventFailed, txErr)
	}
	defer func() { _ = tx.Rollback() }()

	start := time.Now()
	var currentMaxSequenceNumber int64
	scanErr := tx.QueryRowContext(ctx, maxSeqQuery).Scan(&currentMaxSequenceNumber)
	es.instruments.LogSQL(ctx, logActionAppend, maxSeqQuery, time.Since(start))

	if scanErr != nil {
		observation.Failed(errorTypeDatabaseQuery, logMsgDBQueryFailed, scanErr, observe.LogAttrQuery, maxSeqQuery)
		return errors.Join(eventstore.ErrAppendingEventFailed, scanErr)
	}

	if eventstore.MaxSequenceNumberUint(currentMaxSequenceNumber) != expectedMaxSequenceNumber {
		observation.ConcurrencyConflict(expectedMaxSequenceNumber)
		return eventstore.ErrConcurrencyConflict
	}

	start = time.Now()
	_, execErr := tx.ExecContext(ctx, insertQuery)
	es.instruments.LogSQL(ctx, logActionAppend, insertQuery, time.Since(start))

	if execErr != nil {
		observation.Failed(errorTypeDatabaseExec, logMsgDBExecFailed, execErr, observe.LogAttrQuery, insertQuery)
		return errors.Join(eventstore.ErrAppendingEventFailed, execErr)
	}

	if commitErr := tx.Commit(); commitErr != nil {
		observation.Failed(errorTypeTransaction, logMsgTransactionFailed, commitErr)
		return errors.Join(eventstore.ErrAppendingEventFailed, commitErr)
	}

	observation.AppendSucceeded(len(allEvents))

	return nil
}

func (es *EventStore) buildAppendQueries(
	filter eventstore.Filter,
	events eventstore.StorableEvents,
) (maxSeqQuery string, insertQuery string, err error) {

	builder := goqu.Dialect(dialectSQLite)

	maxSeqQuery, _, err = builder.
		From(es.eventTableName).
		Select(goqu.COALESCE(goqu.MAX(colSequenceNumber), 0)).
		Where(es.whereClause(filter)).
		ToSQL()
	if err != nil {
		return "", "", err
	}

	rows := make([]any, 0, len(events))
	for _, event := range events {
		rows = append(rows, goqu.Record{
			colEventType:  event.EventType,
			colOccurredAt: event.OccurredAt.UTC().Format(occurredAtLayout),
			colPayload:    string(event.PayloadJSON),
			colMetadata:   string(event.MetadataJSON),
		})
	}

	insertQuery, _, err = builder.Insert(es.eventTableName).Rows(rows...).ToSQL()
	if err != nil {
		return "", "", err
	}

	return maxSeqQuery, insertQuery, nil
}

func (es *EventStore) whereClause(filter eventstore.Filter) goqu.Expression {
	itemExpressions := make([]goqu.Expression, 0, len(filter.Items()))

	for _, item := range filter.Items() {
		eventTypeExpressions := make([]goqu.Expression, 0, len(item.EventTypes()))
		for _, eventType := range item.EventTypes() {
			eventTypeExpressions = append(eventTypeExpressions, goqu.Ex{colEventType: eventType})
		}

		predicateExpressions := make([]goqu.Expression, 0, len(item.Predicates()))
		for _, predicate := range item.Predicates() {
			predicateExpressions = append(
				predicateExpressions,
				goqu.L("json_extract(?, ?) = ?", goqu.I(colPayload), "$."+predicate.Key(), predicate.Val()),
			)
		}

		predicates := goqu.Or(predicateExpressions...)
		if item.AllPredicatesMustMatch() {
			predicates = goqu.And(predicateExpressions...)
		}

		itemExpressions = append(itemExpressions, goqu.And(goqu.Or(eventTypeExpressions...), predicates))
	}

	timeExpressions := make([]goqu.Expression, 0, 2)

	if from := filter.OccurredFrom(); !from.IsZero() {
		timeExpressions = append(timeExpressions, goqu.C(colOccurredAt).Gte(from.UTC().Format(occurredAtLayout)))
	}

	if until := filter.OccurredUntil(); !until.IsZero() {
		timeExpressions = append(timeExpressions, goqu.C(colOccurredAt).Lte(until.UTC().Format(occurredAtLayout)))
	}

	return goqu.And(goqu.Or(itemExpressions...), goqu.And(timeExpressions...))
}
