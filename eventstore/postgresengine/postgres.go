package postgresengine

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"hash/fnv"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	jsoniter "github.com/json-iterator/go"

	"github.com/Shibashis-Mandal/Library-Management-System/eventstore"
	"github.com/Shibashis-Mandal/Library-Management-System/eventstore/internal/observe"
	"github.com/Shibashis-Mandal/Library-Management-System/eventstore/postgresengine/internal/adapters"
)

const (
	engineName            = "postgres"
	defaultEventTableName = "events"

	logMsgBuildQueryFailed   = "failed to build query"
	logMsgDBQueryFailed      = "database query execution failed"
	logMsgScanRowFailed      = "failed to scan database row"
	logMsgBuildStorable      = "failed to build storable event from database row"
	logMsgDBExecFailed       = "database execution failed during event append"
	logMsgRowsAffectedFailed = "failed to get rows affected count"
	logActionQuery           = "query"
	logActionAppend          = "append"

	errorTypeBuildQuery    = "build_query_error"
	errorTypeDatabaseQuery = "database_query_error"
	errorTypeRowScan       = "row_scan_error"
	errorTypeBuildStorable = "build_storable_error"
	errorTypeDatabaseExec  = "database_exec_error"
	errorTypeRowsAffected  = "rows_affected_error"

	colEventType      = "event_type"
	colOccurredAt     = "occurred_at"
	colPayload        = "payload"
	colMetadata       = "metadata"
	colSequenceNumber = "sequence_number"
	cteContext        = "context"
	cteVals           = "vals"
	dialectPostgres   = "postgres"
	aliasMaxSeq       = "max_seq"
	castText          = "?::text"
	castTimestamp     = "?::timestamp with time zone"
	castJsonb         = "?::jsonb"
	payloadContains   = "? @> ?::jsonb"
)

var predicateJSON = jsoniter.ConfigCompatibleWithStandardLibrary

// EventStore is an eventstore engine backed by PostgreSQL.
type EventStore struct {
	db             adapters.DBAdapter
	eventTableName string
	instruments    observe.Instruments
}

// NewEventStoreFromPGXPool creates a new EventStore using a pgx Pool with optional configuration.
func NewEventStoreFromPGXPool(db *pgxpool.Pool, options ...Option) (*EventStore, error) {
	if db == nil {
		return nil, eventstore.ErrNilDatabaseConnection
	}

	return newEventStore(adapters.NewPGXAdapter(db), options...)
}

// NewEventStoreFromPGXPoolAndReplica creates an EventStore that serves queries marked with
// eventstore.WithEventualConsistency from replica.
func NewEventStoreFromPGXPoolAndReplica(db *pgxpool.Pool, replica *pgxpool.Pool, options ...Option) (*EventStore, error) {
	if db == nil || replica == nil {
		return nil, eventstore.ErrNilDatabaseConnection
	}

	return newEventStore(adapters.NewPGXAdapterWithReplica(db, replica), options...)
}

// NewEventStoreFromSQLDB creates a new EventStore using a sql.DB with optional configuration.
func NewEventStoreFromSQLDB(db *sql.DB, options ...Option) (*EventStore, error) {
	if db == nil {
		return nil, eventstore.ErrNilDatabaseConnection
	}

	return newEventStore(adapters.NewSQLAdapter(db), options...)
}

// NewEventStoreFromSQLX creates a new EventStore using a sqlx.DB with optional configuration.
func NewEventStoreFromSQLX(db *sqlx.DB, options ...Option) (*EventStore, error) {
	if db == nil {
		return nil, eventstore.ErrNilDatabaseConnection
	}

	return newEventStore(adapters.NewSQLXAdapter(db), options...)
}

func newEventStore(db adapters.DBAdapter, options ...Option) (*EventStore, error) {
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

	return es, nil
}

// CreateSchema creates the events table and its indexes if they do not exist.
func (es *EventStore) CreateSchema(ctx context.Context) error {
	for _, statement := range schemaStatements(es.eventTableName) {
		start := time.Now()
		_, err := es.db.Exec(ctx, statement)
		es.instruments.LogSQL(ctx, "migrate", statement, time.Since(start))

		if err != nil {
			return errors.Join(eventstore.ErrMigratingSchemaFailed, err)
		}
	}

	return nil
}

func schemaStatements(table string) []string {
	return []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %[1]s (
	sequence_number BIGSERIAL PRIMARY KEY,
	event_type TEXT NOT NULL,
	occurred_at TIMESTAMPTZ NOT NULL,
	payload JSONB NOT NULL,
	metadata JSONB NOT NULL,
	appended_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`, table),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %[1]s_event_type_idx ON %[1]s (event_type)`, table),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %[1]s_occurred_at_idx ON %[1]s (occurred_at)`, table),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %[1]s_payload_idx ON %[1]s USING GIN (payload jsonb_path_ops)`, table),
	}
}

// Query retrieves events from the Postgres event store based on the provided eventstore.Filter criteria
// and returns them as eventstore.StorableEvents
// as well as the MaxSequenceNumberUint for this "dynamic event stream" at the time of the query.
//
// Queries on a context marked with eventstore.WithEventualConsistency may be served by a replica.
func (es *EventStore) Query(ctx context.Context, filter eventstore.Filter) (
	eventstore.StorableEvents,
	eventstore.MaxSequenceNumberUint,
	error,
) {

	var empty eventstore.StorableEvents

	ctx, observation := es.instruments.StartQuery(ctx)

	sqlQuery, buildQueryErr := es.buildSelectQuery(filter)
	if buildQueryErr != nil {
		observation.Failed(errorTypeBuildQuery, logMsgBuildQueryFailed, buildQueryErr)
		return empty, 0, buildQueryErr
	}

	start := time.Now()
	rows, queryErr := es.db.Query(ctx, sqlQuery)
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
			eventType         string
			occurredAt        time.Time
			payload, metadata []byte
			rowSequenceNumber int64
		)

		if err := rows.Scan(&eventType, &occurredAt, &payload, &metadata, &rowSequenceNumber); err != nil {
			observation.Failed(errorTypeRowScan, logMsgScanRowFailed, err)
			return empty, 0, errors.Join(eventstore.ErrScanningDBRowFailed, err)
		}

		event, buildStorableErr := eventstore.BuildStorableEvent(eventType, occurredAt, payload, metadata)
		if buildStorableErr != nil {
			observation.Failed(errorTypeBuildStorable, logMsgBuildStorable, buildStorableErr, observe.AttrEventType, eventType)
			return empty, 0, errors.Join(eventstore.ErrBuildingStorableEventFailed, buildStorableErr)
		}

		eventStream = append(eventStream, event)
		maxSequenceNumber = eventstore.MaxSequenceNumberUint(rowSequenceNumber)
	}

	if err := rows.Err(); err != nil {
		observation.Failed(errorTypeDatabaseQuery, logMsgDBQueryFailed, err)
		return empty, 0, errors.Join(eventstore.ErrQueryingEventsFailed, err)
	}

	observation.QuerySucceeded(len(eventStream), maxSequenceNumber)

	return eventStream, maxSequenceNumber, nil
}

// Append attempts to append one or multiple eventstore.StorableEvent(s) respecting concurrency constraints
// for this "dynamic event stream" based on the provided eventstore.Filter criteria and the expected MaxSequenceNumberUint.
//
// The provided eventstore.Filter criteria should be the same as the ones used for the Query before making the business decisions.
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

	sqlQuery, buildQueryErr := es.buildAppendQuery(allEvents, filter, expectedMaxSequenceNumber)
	if buildQueryErr != nil {
		observation.Failed(errorTypeBuildQuery, logMsgBuildQueryFailed, buildQueryErr, observe.LogAttrEventCount, len(allEvents))
		return buildQueryErr
	}

	start := time.Now()
	result, execErr := es.db.Exec(ctx, sqlQuery)
	es.instruments.LogSQL(ctx, logActionAppend, sqlQuery, time.Since(start))

	if execErr != nil {
		observation.Failed(errorTypeDatabaseExec, logMsgDBExecFailed, execErr, observe.LogAttrQuery, sqlQuery)
		return errors.Join(eventstore.ErrAppendingEventFailed, execErr)
	}

	rowsAffected, rowsAffectedErr := result.RowsAffected()
	if rowsAffectedErr != nil {
		observation.Failed(errorTypeRowsAffected, logMsgRowsAffectedFailed, rowsAffectedErr)
		return errors.Join(eventstore.ErrGettingRowsAffectedFailed, rowsAffectedErr)
	}

	if rowsAffected < int64(len(allEvents)) {
		observation.ConcurrencyConflict(expectedMaxSequenceNumber)
		return eventstore.ErrConcurrencyConflict
	}

	observation.AppendSucceeded(len(allEvents))

	return nil
}

// buildAppendQuery prefixes the conditional insert with an advisory lock, the simple query protocol
// runs both statements in one implicit transaction.
func (es *EventStore) buildAppendQuery(
	allEvents eventstore.StorableEvents,
	filter eventstore.Filter,
	expectedMaxSequenceNumber eventstore.MaxSequenceNumberUint,
) (string, error) {

	var insertQuery string
	var err error

	switch len(allEvents) {
	case 1:
		insertQuery, err = es.buildInsertQueryForSingleEvent(allEvents[0], filter, expectedMaxSequenceNumber)
	default:
		insertQuery, err = es.buildInsertQueryForMultipleEvents(allEvents, filter, expectedMaxSequenceNumber)
	}

	if err != nil {
		return "", err
	}

	return fmt.Sprintf("SELECT pg_advisory_xact_lock(%d); %s", es.appendLockKey(), insertQuery), nil
}

func (es *EventStore) appendLockKey() int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte("eventstore.append." + es.eventTableName))

	return int64(h.Sum64() >> 1)
}

func (es *EventStore) buildSelectQuery(filter eventstore.Filter) (string, error) {
	selectStmt := goqu.Dialect(dialectPostgres).
		From(es.eventTableName).
		Select(colEventType, colOccurredAt, colPayload, colMetadata, colSequenceNumber).
		Order(goqu.I(colSequenceNumber).Asc())

	whereClause, err := es.whereClause(filter)
	if err != nil {
		return "", errors.Join(eventstore.ErrBuildingQueryFailed, err)
	}

	sqlQuery, _, toSQLErr := selectStmt.Where(whereClause).ToSQL()
	if toSQLErr != nil {
		return "", errors.Join(eventstore.ErrBuildingQueryFailed, toSQLErr)
	}

	return sqlQuery, nil
}

func (es *EventStore) contextStatement(filter eventstore.Filter) (*goqu.SelectDataset, error) {
	whereClause, err := es.whereClause(filter)
	if err != nil {
		return nil, err
	}

	return goqu.Dialect(dialectPostgres).
		From(es.eventTableName).
		Select(goqu.MAX(colSequenceNumber).As(aliasMaxSeq)).
		Where(whereClause), nil
}

func (es *EventStore) buildInsertQueryForSingleEvent(
	event eventstore.StorableEvent,
	filter eventstore.Filter,
	expectedMaxSequenceNumber eventstore.MaxSequenceNumberUint,
) (string, error) {

	builder := goqu.Dialect(dialectPostgres)

	cteStmt, err := es.contextStatement(filter)
	if err != nil {
		return "", errors.Join(eventstore.ErrBuildingQueryFailed, err)
	}

	selectStmt := builder.
		From(cteContext).
		Select(
			goqu.L(castText, event.EventType),
			goqu.L(castTimestamp, event.OccurredAt),
			goqu.L(castJsonb, string(event.PayloadJSON)),
			goqu.L(castJsonb, string(event.MetadataJSON)),
		).
		Where(goqu.COALESCE(goqu.C(aliasMaxSeq), 0).Eq(goqu.V(expectedMaxSequenceNumber)))

	insertStmt := builder.
		Insert(es.eventTableName).
		Cols(colEventType, colOccurredAt, colPayload, colMetadata).
		FromQuery(selectStmt).
		With(cteContext, cteStmt)

	sqlQuery, _, toSQLErr := insertStmt.ToSQL()
	if toSQLErr != nil {
		return "", errors.Join(eventstore.ErrBuildingQueryFailed, toSQLErr)
	}

	return sqlQuery, nil
}

func (es *EventStore) buildInsertQueryForMultipleEvents(
	events eventstore.StorableEvents,
	filter eventstore.Filter,
	expectedMaxSequenceNumber eventstore.MaxSequenceNumberUint,
) (string, error) {

	builder := goqu.Dialect(dialectPostgres)

	cteStmt, err := es.contextStatement(filter)
	if err != nil {
		return "", errors.Join(eventstore.ErrBuildingQueryFailed, err)
	}

	valuesStmt := eventValues(builder, events[0])
	for _, event := range events[1:] {
		valuesStmt = valuesStmt.UnionAll(eventValues(builder, event))
	}

	qualified := func(col string) exp.IdentifierExpression { return goqu.T(cteVals).Col(col) }

	insertStmt := builder.
		Insert(es.eventTableName).
		Cols(colEventType, colOccurredAt, colPayload, colMetadata).
		With(cteContext, cteStmt).
		With(cteVals, valuesStmt).
		FromQuery(
			builder.From(cteContext, cteVals).
				Select(qualified(colEventType), qualified(colOccurredAt), qualified(colPayload), qualified(colMetadata)).
				Where(goqu.COALESCE(goqu.C(aliasMaxSeq), 0).Eq(goqu.V(expectedMaxSequenceNumber))),
		)

	sqlQuery, _, toSQLErr := insertStmt.ToSQL()
	if toSQLErr != nil {
		return "", errors.Join(eventstore.ErrBuildingQueryFailed, toSQLErr)
	}

	return sqlQuery, nil
}

func eventValues(builder goqu.DialectWrapper, event eventstore.StorableEvent) *goqu.SelectDataset {
	return builder.Select(
		goqu.L(castText, event.EventType).As(colEventType),
		goqu.L(castTimestamp, event.OccurredAt).As(colOccurredAt),
		goqu.L(castJsonb, string(event.PayloadJSON)).As(colPayload),
		goqu.L(castJsonb, string(event.MetadataJSON)).As(colMetadata),
	)
}

// whereClause ORs the filter items and ANDs the time boundaries. Predicates are rendered as JSONB
// containment with an escaped literal.
func (es *EventStore) whereClause(filter eventstore.Filter) (exp.ExpressionList, error) {
	itemsExpressions := make([]goqu.Expression, 0, len(filter.Items()))

	for _, item := range filter.Items() {
		eventTypeExpressions := make([]goqu.Expression, 0, len(item.EventTypes()))
		for _, eventType := range item.EventTypes() {
			eventTypeExpressions = append(eventTypeExpressions, goqu.Ex{colEventType: eventType})
		}

		predicateExpressions := make([]goqu.Expression, 0, len(item.Predicates()))
		for _, predicate := range item.Predicates() {
			containment, err := predicateJSON.MarshalToString(map[string]string{predicate.Key(): predicate.Val()})
			if err != nil {
				return nil, err
			}

			predicateExpressions = append(predicateExpressions, goqu.L(payloadContains, goqu.I(colPayload), containment))
		}

		var predicatesExpressionList exp.ExpressionList
		if item.AllPredicatesMustMatch() {
			predicatesExpressionList = goqu.And(predicateExpressions...)
		} else {
			predicatesExpressionList = goqu.Or(predicateExpressions...)
		}

		itemsExpressions = append(itemsExpressions, goqu.And(goqu.Or(eventTypeExpressions...), predicatesExpressionList))
	}

	occurredAtExpressions := make([]goqu.Expression, 0, 2)

	if !filter.OccurredFrom().IsZero() {
		occurredAtExpressions = append(occurredAtExpressions, goqu.C(colOccurredAt).Gte(filter.OccurredFrom()))
	}

	if !filter.OccurredUntil().IsZero() {
		occurredAtExpressions = append(occurredAtExpressions, goqu.C(colOccurredAt).Lte(filter.OccurredUntil()))
	}

	return goqu.And(goqu.Or(itemsExpressions...), goqu.And(occurredAtExpressions...)), nil
}
