package shell

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Shibashis-Mandal/Library-Management-System/circulation/core"
	"github.com/Shibashis-Mandal/Library-Management-System/eventstore"
)

// Command handler metrics. Every series carries command_type and status.
const (
	CommandHandlerDurationMetric   = "circulation_command_duration_seconds"
	CommandHandlerCallsMetric      = "circulation_command_calls_total"
	CommandHandlerIdempotentMetric = "circulation_command_idempotent_total"
	CommandHandlerCanceledMetric   = "circulation_command_canceled_total"
	CommandHandlerTimeoutMetric    = "circulation_command_timeout_total"
	CommandHandlerBusyMetric       = "circulation_command_busy_total"

	// CommandHandlerRejectedMetric is labelled with error_code as well.
	CommandHandlerRejectedMetric = "circulation_command_rejected_total"

	// CommandHandlerConcurrencyConflictMetric counts lost appends, labelled with the final outcome.
	CommandHandlerConcurrencyConflictMetric = "circulation_command_append_conflicts_total"
)

// Query handler metrics. Every series carries query_type and status.
const (
	QueryHandlerDurationMetric = "circulation_query_duration_seconds"
	QueryHandlerCallsMetric    = "circulation_query_calls_total"
	QueryHandlerCanceledMetric = "circulation_query_canceled_total"
	QueryHandlerTimeoutMetric  = "circulation_query_timeout_total"
)

// Retry metrics, recorded by the API and CLI retry loops.
const (
	CommandHandlerRetriesMetric           = "circulation_command_retries_total"
	CommandHandlerRetryDelayMetric        = "circulation_command_retry_delay_seconds"
	CommandHandlerMaxRetriesReachedMetric = "circulation_command_retries_exhausted_total"
)

// Outcome labels.
const (
	StatusSuccess             = "success"
	StatusError               = "error"
	StatusRejected            = "rejected"
	StatusIdempotent          = "idempotent"
	StatusCanceled            = "canceled"
	StatusTimeout             = "timeout"
	StatusBusy                = "busy"
	StatusConcurrencyConflict = "concurrency_conflict"
)

const (
	LogMsgCommandStarted   = "handling command"
	LogMsgCommandCompleted = "command handled"
	LogMsgCommandRejected  = "command rejected"
	LogMsgCommandFailed    = "command failed"
	LogMsgQueryStarted     = "handling query"
	LogMsgQueryCompleted   = "query handled"
	LogMsgQueryFailed      = "query failed"
)

const (
	LogAttrCommandType     = "command_type"
	LogAttrQueryType       = "query_type"
	LogAttrStatus          = "status"
	LogAttrDurationMS      = "duration_ms"
	LogAttrBusinessOutcome = "business_outcome"
	LogAttrErrorCode       = "error_code"
	LogAttrError           = "error"
	LogAttrEventType       = "event_type"
	LogAttrSequence        = "sequence"
	LogAttrAttempt         = "attempt_number"
	LogAttrErrorType       = "error_type"
	LogAttrFinalErrorType  = "final_error_type"
)

const (
	SpanNameCommandHandle = "circulation.command"
	SpanNameQueryHandle   = "circulation.query"
)

type (
	MetricsCollector           = eventstore.MetricsCollector
	ContextualMetricsCollector = eventstore.ContextualMetricsCollector
	TracingCollector           = eventstore.TracingCollector
	SpanContext                = eventstore.SpanContext
	ContextualLogger           = eventstore.ContextualLogger
	Logger                     = eventstore.Logger
)

// Instruments bundles the optional collectors of a handler. Nil members are skipped, so the zero
// value observes nothing. The contextual logger wins over the plain one when both are set.
type Instruments struct {
	Metrics          MetricsCollector
	Tracing          TracingCollector
	Logger           Logger
	ContextualLogger ContextualLogger
}

// Count increments a counter, with ctx when the collector takes one.
func (in Instruments) Count(ctx context.Context, metric string, labels map[string]string) {
	switch m := in.Metrics.(type) {
	case nil:
	case ContextualMetricsCollector:
		m.IncrementCounterContext(ctx, metric, labels)
	default:
		m.IncrementCounter(metric, labels)
	}
}

// Time records a duration, with ctx when the collector takes one.
func (in Instruments) Time(ctx context.Context, metric string, d time.Duration, labels map[string]string) {
	switch m := in.Metrics.(type) {
	case nil:
	case ContextualMetricsCollector:
		m.RecordDurationContext(ctx, metric, d, labels)
	default:
		m.RecordDuration(metric, d, labels)
	}
}

// StartSpan returns ctx unchanged and a nil span when tracing is off.
func (in Instruments) StartSpan(ctx context.Context, name string, attrs map[string]string) (context.Context, SpanContext) {
	if in.Tracing == nil {
		return ctx, nil
	}

	return in.Tracing.StartSpan(ctx, name, attrs)
}

// EndSpan finishes span with the outcome, the duration and the error code if there is one.
func (in Instruments) EndSpan(span SpanContext, status string, d time.Duration, err error) {
	if in.Tracing == nil || span == nil {
		return
	}

	attrs := map[string]string{
		LogAttrStatus:     status,
		LogAttrDurationMS: fmt.Sprintf("%.2f", ToMilliseconds(d)),
	}
	if err != nil {
		attrs[LogAttrError] = err.Error()
		if code := core.CodeOf(err); code != "" {
			attrs[LogAttrErrorCode] = string(code)
		}
	}

	in.Tracing.FinishSpan(span, status, attrs)
}

// Log writes at level. Debug and anything below is dropped unless a logger handles it.
func (in Instruments) Log(ctx context.Context, level slog.Level, msg string, args ...any) {
	if l := in.ContextualLogger; l != nil {
		switch {
		case level >= slog.LevelError:
			l.ErrorContext(ctx, msg, args...)
		case level >= slog.LevelWarn:
			l.WarnContext(ctx, msg, args...)
		case level >= slog.LevelInfo:
			l.InfoContext(ctx, msg, args...)
		default:
			l.DebugContext(ctx, msg, args...)
		}
		return
	}

	if l := in.Logger; l != nil {
		switch {
		case level >= slog.LevelError:
			l.Error(msg, args...)
		case level >= slog.LevelWarn:
			l.Warn(msg, args...)
		case level >= slog.LevelInfo:
			l.Info(msg, args...)
		default:
			l.Debug(msg, args...)
		}
	}
}

// CommandStatusOf maps a handler outcome to the status label.
func CommandStatusOf(result HandlerResult, err error) string {
	if err == nil {
		if result.Idempotent {
			return StatusIdempotent
		}
		return StatusSuccess
	}

	status := QueryStatusOf(err)
	if status == StatusError && errors.Is(err, core.ErrBusy) {
		return StatusBusy
	}

	return status
}

// QueryStatusOf maps a query handler error to the status label.
func QueryStatusOf(err error) string {
	switch {
	case err == nil:
		return StatusSuccess
	case errors.Is(err, context.Canceled):
		return StatusCanceled
	case errors.Is(err, context.DeadlineExceeded):
		return StatusTimeout
	case core.IsDomainError(err):
		return StatusRejected
	default:
		return StatusError
	}
}

// ObserveCommand records a finished command: calls and duration per status, the status specific
// counter, the lost append if any, the span and one log line.
func (in Instruments) ObserveCommand(ctx context.Context, span SpanContext, commandType string, result HandlerResult, err error, d time.Duration) {
	status := CommandStatusOf(result, err)
	labels := map[string]string{LogAttrCommandType: commandType, LogAttrStatus: status}

	in.Time(ctx, CommandHandlerDurationMetric, d, labels)
	in.Count(ctx, CommandHandlerCallsMetric, labels)

	if metric, ok := commandStatusMetrics[status]; ok {
		in.Count(ctx, metric, labels)
	}

	if result.ConflictDetected {
		in.Count(ctx, CommandHandlerConcurrencyConflictMetric, map[string]string{
			LogAttrCommandType:     commandType,
			LogAttrStatus:          StatusConcurrencyConflict,
			LogAttrBusinessOutcome: status,
		})
	}

	in.EndSpan(span, status, d, err)

	switch status {
	case StatusSuccess, StatusIdempotent:
		in.Log(ctx, slog.LevelInfo, LogMsgCommandCompleted,
			LogAttrCommandType, commandType, LogAttrBusinessOutcome, status, LogAttrDurationMS, ToMilliseconds(d))
	case StatusRejected:
		code := string(core.CodeOf(err))
		in.Count(ctx, CommandHandlerRejectedMetric, map[string]string{
			LogAttrCommandType: commandType, LogAttrStatus: status, LogAttrErrorCode: code,
		})
		// a refusal is an answer, not a fault
		in.Log(ctx, slog.LevelWarn, LogMsgCommandRejected,
			LogAttrCommandType, commandType, LogAttrErrorCode, code, LogAttrError, err.Error())
	default:
		in.Log(ctx, slog.LevelError, LogMsgCommandFailed, LogAttrCommandType, commandType, LogAttrError, err.Error())
	}
}

var commandStatusMetrics = map[string]string{
	StatusIdempotent: CommandHandlerIdempotentMetric,
	StatusCanceled:   CommandHandlerCanceledMetric,
	StatusTimeout:    CommandHandlerTimeoutMetric,
	StatusBusy:       CommandHandlerBusyMetric,
}

// ObserveQuery records a finished query. Domain answers such as NotFound log at warn level.
func (in Instruments) ObserveQuery(ctx context.Context, span SpanContext, queryType string, sequence uint, err error, d time.Duration) {
	status := QueryStatusOf(err)
	labels := map[string]string{LogAttrQueryType: queryType, LogAttrStatus: status}

	in.Time(ctx, QueryHandlerDurationMetric, d, labels)
	in.Count(ctx, QueryHandlerCallsMetric, labels)

	switch status {
	case StatusCanceled:
		in.Count(ctx, QueryHandlerCanceledMetric, labels)
	case StatusTimeout:
		in.Count(ctx, QueryHandlerTimeoutMetric, labels)
	}

	in.EndSpan(span, status, d, err)

	switch {
	case err == nil:
		in.Log(ctx, slog.LevelInfo, LogMsgQueryCompleted,
			LogAttrQueryType, queryType, LogAttrSequence, sequence, LogAttrDurationMS, ToMilliseconds(d))
	case status == StatusRejected:
		in.Log(ctx, slog.LevelWarn, LogMsgQueryFailed, LogAttrQueryType, queryType, LogAttrError, err.Error())
	default:
		in.Log(ctx, slog.LevelError, LogMsgQueryFailed, LogAttrQueryType, queryType, LogAttrError, err.Error())
	}
}

// ToMilliseconds converts d to fractional milliseconds for log attributes.
func ToMilliseconds(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
