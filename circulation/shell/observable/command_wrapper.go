package observable

import (
	"context"
	"log/slog"
	"time"

	"github.com/Shibashis-Mandal/Library-Management-System/circulation/shell"
)

// CommandWrapper instruments any core command handler.
type CommandWrapper[C shell.Command] struct {
	core        shell.CoreCommandHandler[C]
	commandType string
	in          shell.Instruments
}

// CommandOption configures a CommandWrapper.
type CommandOption[C shell.Command] func(*CommandWrapper[C]) error

// NewCommandWrapper wraps handler. The command type is read from the zero value of C.
func NewCommandWrapper[C shell.Command](handler shell.CoreCommandHandler[C], opts ...CommandOption[C]) (*CommandWrapper[C], error) {
	var zero C
	w := &CommandWrapper[C]{core: handler, commandType: zero.CommandType()}

	for _, opt := range opts {
		if err := opt(w); err != nil {
			return nil, err
		}
	}

	return w, nil
}

// Handle runs the wrapped handler inside a span and records its outcome, duration and log lines.
func (w *CommandWrapper[C]) Handle(ctx context.Context, command C) (shell.HandlerResult, error) {
	start := time.Now()
	ctx, span := w.in.StartSpan(ctx, shell.SpanNameCommandHandle, map[string]string{shell.LogAttrCommandType: w.commandType})
	w.in.Log(ctx, slog.LevelInfo, shell.LogMsgCommandStarted, shell.LogAttrCommandType, w.commandType)

	result, err := w.core.Handle(ctx, command)
	w.in.ObserveCommand(ctx, span, w.commandType, result, err, time.Since(start))

	return result, err
}

// WithCommandMetrics records outcome counters and durations on collector.
func WithCommandMetrics[C shell.Command](collector shell.MetricsCollector) CommandOption[C] {
	return func(w *CommandWrapper[C]) error {
		w.in.Metrics = collector
		return nil
	}
}

// WithCommandTracing opens one span per handled command on collector.
func WithCommandTracing[C shell.Command](collector shell.TracingCollector) CommandOption[C] {
	return func(w *CommandWrapper[C]) error {
		w.in.Tracing = collector
		return nil
	}
}

// WithCommandContextualLogging logs through a logger that reads trace data from the context.
func WithCommandContextualLogging[C shell.Command](logger shell.ContextualLogger) CommandOption[C] {
	return func(w *CommandWrapper[C]) error {
		w.in.ContextualLogger = logger
		return nil
	}
}

// WithCommandLogging logs start, success and failure of every command.
func WithCommandLogging[C shell.Command](logger shell.Logger) CommandOption[C] {
	return func(w *CommandWrapper[C]) error {
		w.in.Logger = logger
		return nil
	}
}
