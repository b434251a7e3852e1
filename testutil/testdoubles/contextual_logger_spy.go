package testdoubles

import (
	"context"
	"sync"

	"github.com/Shibashis-Mandal/Library-Management-System/eventstore"
)

// LogRecord is one captured log call.
type LogRecord struct {
	Level   string
	Message string
	Args    []any
	Context context.Context
}

// LoggerSpy implements both eventstore.Logger and eventstore.ContextualLogger.
type LoggerSpy struct {
	mu      sync.Mutex
	records []LogRecord
}

func NewLoggerSpy() *LoggerSpy {
	return &LoggerSpy{}
}

func (s *LoggerSpy) Debug(msg string, args ...any) { s.add("debug", msg, nil, args) }
func (s *LoggerSpy) Info(msg string, args ...any)  { s.add("info", msg, nil, args) }
func (s *LoggerSpy) Warn(msg string, args ...any)  { s.add("warn", msg, nil, args) }
func (s *LoggerSpy) Error(msg string, args ...any) { s.add("error", msg, nil, args) }

func (s *LoggerSpy) DebugContext(ctx context.Context, msg string, args ...any) {
	s.add("debug", msg, ctx, args)
}

func (s *LoggerSpy) InfoContext(ctx context.Context, msg string, args ...any) {
	s.add("info", msg, ctx, args)
}

func (s *LoggerSpy) WarnContext(ctx context.Context, msg string, args ...any) {
	s.add("warn", msg, ctx, args)
}

func (s *LoggerSpy) ErrorContext(ctx context.Context, msg string, args ...any) {
	s.add("error", msg, ctx, args)
}

func (s *LoggerSpy) add(level, msg string, ctx context.Context, args []any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = append(s.records, LogRecord{Level: level, Message: msg, Args: args, Context: ctx})
}

// Records returns a copy of all captured records.
func (s *LoggerSpy) Records() []LogRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]LogRecord(nil), s.records...)
}

// HasLog reports whether a record with level and message was captured.
func (s *LoggerSpy) HasLog(level, message string) bool {
	for _, record := range s.Records() {
		if record.Level == level && record.Message == message {
			return true
		}
	}

	return false
}

// HasContextualLog is HasLog restricted to calls that carried a context.
func (s *LoggerSpy) HasContextualLog(level, message string) bool {
	for _, record := range s.Records() {
		if record.Context != nil && record.Level == level && record.Message == message {
			return true
		}
	}

	return false
}

var (
	_ eventstore.Logger           = (*LoggerSpy)(nil)
	_ eventstore.ContextualLogger = (*LoggerSpy)(nil)
)
