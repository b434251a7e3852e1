package observable

import (
	"context"
	"log/slog"
	"time"

	"github.com/Shibashis-Mandal/Library-Management-System/circulation/shell"
)

// QueryWrapper instruments any core query handler.
type QueryWrapper[Q shell.Query, R shell.QueryResult] struct {
	core      shell.CoreQueryHandler[Q, R]
	queryType string
	in        shell.Instruments
}

// QueryOption configures a QueryWrapper.
type QueryOption[Q shell.Query, R shell.QueryResult] func(*QueryWrapper[Q, R]) error

// NewQueryWrapper wraps handler. The query type is read from the zero value of Q.
func NewQueryWrapper[Q shell.Query, R shell.QueryResult](handler shell.CoreQueryHandler[Q, R], opts ...QueryOption[Q, R]) (*QueryWrapper[Q, R], error) {
	var zero Q
	w := &QueryWrapper[Q, R]{core: handler, queryType: zero.QueryType()}

	for _, opt := range opts {
		if err := opt(w); err != nil {
			return nil, err
		}
	}

	return w, nil
}

// Handle runs the wrapped handler inside a span and records its outcome, duration and log lines.
func (w *QueryWrapper[Q, R]) Handle(ctx context.Context, query Q) (R, error) {
	start := time.Now()
	ctx, span := w.in.StartSpan(ctx, shell.SpanNameQueryHandle, map[string]string{shell.LogAttrQueryType: w.queryType})
	w.in.Log(ctx, slog.LevelInfo, shell.LogMsgQueryStarted, shell.LogAttrQueryType, w.queryType)

	result, err := w.core.Handle(ctx, query)

	var sequence uint
	if err == nil {
		sequence = result.GetSequenceNumber()
	}
	w.in.ObserveQuery(ctx, span, w.queryType, sequence, err, time.Since(start))

	return result, err
}

// WithQueryMetrics records outcome counters and durations on collector.
func WithQueryMetrics[Q shell.Query, R shell.QueryResult](collector shell.MetricsCollector) QueryOption[Q, R] {
	return func(w *QueryWrapper[Q, R]) error {
		w.in.Metrics = collector
		return nil
	}
}

// WithQueryTracing opens one span per handled query on collector.
func WithQueryTracing[Q shell.Query, R shell.QueryResult](collector shell.TracingCollector) QueryOption[Q, R] {
	return func(w *QueryWrapper[Q, R]) error {
		w.in.Tracing = collector
		return nil
	}
}

// WithQueryContextualLogging logs through a logger that reads trace data from the context.
func WithQueryContextualLogging[Q shell.Query, R shell.QueryResult](logger shell.ContextualLogger) QueryOption[Q, R] {
	return func(w *QueryWrapper[Q, R]) error {
		w.in.ContextualLogger = logger
		return nil
	}
}

// WithQueryLogging logs start, success and failure of every query.
func WithQueryLogging[Q shell.Query, R shell.QueryResult](logger shell.Logger) QueryOption[Q, R] {
	return func(w *QueryWrapper[Q, R]) error {
		w.in.Logger = logger
		return nil
	}
}
