// Package observe holds the logging, metrics and tracing plumbing shared by all event store engines.
//
// Every collector is optional. A zero Instruments value records nothing.
package observe

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/Shibashis-Mandal/Library-Management-System/eventstore"
)

const (
	MetricQueryDuration        = "eventstore_query_duration_seconds"
	MetricAppendDuration       = "eventstore_append_duration_seconds"
	MetricEventsQueried        = "eventstore_events_queried_total"
	MetricEventsAppended       = "eventstore_events_appended_total"
	MetricConcurrencyConflicts = "eventstore_concurrency_conflicts_total"
	MetricDatabaseErrors       = "eventstore_database_errors_total"

	SpanNameQuery  = "eventstore.query"
	SpanNameAppend = "eventstore.append"

	OperationQuery  = "query"
	OperationAppend = "append"

	StatusSuccess  = "success"
	StatusError    = "error"
	StatusConflict = "conflict"

	AttrOperation    = "operation"
	AttrStatus       = "status"
	AttrEngine       = "engine"
	AttrErrorType    = "error_type"
	AttrEventCount   = "event_count"
	AttrEventType    = "event_type"
	AttrMaxSequence  = "max_sequence"
	AttrExpectedSeq  = "expected_sequence"
	AttrDurationMS   = "duration_ms"
	AttrConflictType = "conflict_type"

	LogMsgSQLExecuted         = "executed sql for: "
	LogMsgOperation           = "eventstore operation: "
	LogMsgQueryCompleted      = "query completed"
	LogMsgEventsAppended      = "events appended"
	LogMsgConcurrencyConflict = "concurrency conflict detected"
	LogAttrError              = "error"
	LogAttrQuery              = "query"
	LogAttrEventCount         = "event_count"
	LogAttrDurationMS         = "duration_ms"
	LogAttrExpectedSequence   = "expected_sequence"
)

// Instruments bundles the optional collectors of one engine instance.
type Instruments struct {
	Engine           string
	Logger           eventstore.Logger
	ContextualLogger eventstore.ContextualLogger
	Metrics          eventstore.MetricsCollector
	Tracing          eventstore.TracingCollector
}

// Operation observes a single Query or Append call from start to finish.
type Operation struct {
	in        Instruments
	ctx       context.Context
	span      eventstore.SpanContext
	operation string
	start     time.Time
}

// StartQuery opens a span for a query and starts the clock.
func (in Instruments) StartQuery(ctx context.Context) (context.Context, *Operation) {
	return in.start(ctx, OperationQuery, SpanNameQuery, map[string]string{
		AttrOperation: OperationQuery,
		AttrEngine:    in.Engine,
	})
}

// StartAppend opens a span for an append and starts the clock.
func (in Instruments) StartAppend(
	ctx context.Context,
	events eventstore.StorableEvents,
	expectedMaxSequenceNumber eventstore.MaxSequenceNumberUint,
) (context.Context, *Operation) {

	attrs := map[string]string{
		AttrOperation:   OperationAppend,
		AttrEngine:      in.Engine,
		AttrEventCount:  fmt.Sprintf("%d", len(events)),
		AttrExpectedSeq: fmt.Sprintf("%d", expectedMaxSequenceNumber),
	}

	if len(events) > 0 {
		attrs[AttrEventType] = events[0].EventType
	}

	return in.start(ctx, OperationAppend, SpanNameAppend, attrs)
}

func (in Instruments) start(ctx context.Context, operation, spanName string, attrs map[string]string) (context.Context, *Operation) {
	var span eventstore.SpanContext

	if in.Tracing != nil {
		ctx, span = in.Tracing.StartSpan(ctx, spanName, attrs)
	}

	return ctx, &Operation{
		in:        in,
		ctx:       ctx,
		span:      span,
		operation: operation,
		start:     time.Now(),
	}
}

// LogSQL logs an executed statement at debug level.
func (in Instruments) LogSQL(ctx context.Context, action string, sqlQuery string, duration time.Duration) {
	if in.Logger != nil {
		in.Logger.Debug(LogMsgSQLExecuted+action, LogAttrDurationMS, ToMilliseconds(duration), LogAttrQuery, sqlQuery)
	}

	if in.ContextualLogger != nil {
		in.ContextualLogger.DebugContext(ctx, LogMsgSQLExecuted+action, LogAttrDurationMS, ToMilliseconds(duration), LogAttrQuery, sqlQuery)
	}
}

// Elapsed returns the time since the operation started.
func (o *Operation) Elapsed() time.Duration {
	return time.Since(o.start)
}

// QuerySucceeded records the outcome of a successful query.
func (o *Operation) QuerySucceeded(eventCount int, maxSequenceNumber eventstore.MaxSequenceNumberUint) {
	duration := o.Elapsed()

	o.recordDuration(MetricQueryDuration, duration, StatusSuccess)
	o.recordValue(MetricEventsQueried, float64(eventCount), StatusSuccess)
	o.logInfo(LogMsgQueryCompleted, LogAttrEventCount, eventCount, LogAttrDurationMS, ToMilliseconds(duration))
	o.finishSpan(StatusSuccess, map[string]string{
		AttrEventCount:  fmt.Sprintf("%d", eventCount),
		AttrMaxSequence: fmt.Sprintf("%d", maxSequenceNumber),
		AttrDurationMS:  fmt.Sprintf("%.3f", ToMilliseconds(duration)),
	})
}

// AppendSucceeded records the outcome of a successful append.
func (o *Operation) AppendSucceeded(eventCount int) {
	duration := o.Elapsed()

	o.recordDuration(MetricAppendDuration, duration, StatusSuccess)
	o.recordValue(MetricEventsAppended, float64(eventCount), StatusSuccess)
	o.logInfo(LogMsgEventsAppended, LogAttrEventCount, eventCount, LogAttrDurationMS, ToMilliseconds(duration))
	o.finishSpan(StatusSuccess, map[string]string{
		AttrEventCount: fmt.Sprintf("%d", eventCount),
		AttrDurationMS: fmt.Sprintf("%.3f", ToMilliseconds(duration)),
	})
}

// ConcurrencyConflict records a lost compare-and-swap.
func (o *Operation) ConcurrencyConflict(expectedMaxSequenceNumber eventstore.MaxSequenceNumberUint) {
	duration := o.Elapsed()

	o.recordDuration(MetricAppendDuration, duration, StatusConflict)
	o.incrementCounter(MetricConcurrencyConflicts, map[string]string{
		AttrOperation:    o.operation,
		AttrEngine:       o.in.Engine,
		AttrConflictType: "concurrency",
	})
	o.logInfo(LogMsgConcurrencyConflict, LogAttrExpectedSequence, expectedMaxSequenceNumber)
	o.finishSpan(StatusConflict, map[string]string{AttrExpectedSeq: fmt.Sprintf("%d", expectedMaxSequenceNumber)})
}

// Failed records a technical failure, errorType is a short machine-readable label.
func (o *Operation) Failed(errorType string, message string, err error, args ...any) {
	duration := o.Elapsed()

	metric := MetricQueryDuration
	if o.operation == OperationAppend {
		metric = MetricAppendDuration
	}

	o.recordDuration(metric, duration, StatusError)
	o.incrementCounter(MetricDatabaseErrors, map[string]string{
		AttrOperation: o.operation,
		AttrEngine:    o.in.Engine,
		AttrStatus:    StatusError,
		AttrErrorType: errorType,
	})

	allArgs := append([]any{LogAttrError, err.Error()}, args...)
	if o.in.Logger != nil {
		o.in.Logger.Error(message, allArgs...)
	}

	if o.in.ContextualLogger != nil {
		o.in.ContextualLogger.ErrorContext(o.ctx, message, allArgs...)
	}

	o.finishSpan(StatusError, map[string]string{AttrErrorType: errorType})
}

func (o *Operation) logInfo(action string, args ...any) {
	if o.in.Logger != nil {
		o.in.Logger.Info(LogMsgOperation+action, args...)
	}

	if o.in.ContextualLogger != nil {
		o.in.ContextualLogger.InfoContext(o.ctx, LogMsgOperation+action, args...)
	}
}

func (o *Operation) recordDuration(metric string, duration time.Duration, status string) {
	if o.in.Metrics == nil {
		return
	}

	labels := map[string]string{AttrOperation: o.operation, AttrEngine: o.in.Engine, AttrStatus: status}

	if contextualCollector, ok := o.in.Metrics.(eventstore.ContextualMetricsCollector); ok {
		contextualCollector.RecordDurationContext(o.ctx, metric, duration, labels)
	} else {
		o.in.Metrics.RecordDuration(metric, duration, labels)
	}
}

func (o *Operation) recordValue(metric string, value float64, status string) {
	if o.in.Metrics == nil {
		return
	}

	labels := map[string]string{AttrOperation: o.operation, AttrEngine: o.in.Engine, AttrStatus: status}

	if contextualCollector, ok := o.in.Metrics.(eventstore.ContextualMetricsCollector); ok {
		contextualCollector.RecordValueContext(o.ctx, metric, value, labels)
	} else {
		o.in.Metrics.RecordValue(metric, value, labels)
	}
}

func (o *Operation) incrementCounter(metric string, labels map[string]string) {
	if o.in.Metrics == nil {
		return
	}

	if contextualCollector, ok := o.in.Metrics.(eventstore.ContextualMetricsCollector); ok {
		contextualCollector.IncrementCounterContext(o.ctx, metric, labels)
	} else {
		o.in.Metrics.IncrementCounter(metric, labels)
	}
}

func (o *Operation) finishSpan(status string, attrs map[string]string) {
	if o.in.Tracing == nil || o.span == nil {
		return
	}

	o.in.Tracing.FinishSpan(o.span, status, attrs)
}

// ToMilliseconds converts a duration to milliseconds with 3 decimal places.
func ToMilliseconds(d time.Duration) float64 {
	return math.Round(float64(d.Nanoseconds())/1e6*1000) / 1000
}
