package shell

import (
	"context"
	"errors"
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/Shibashis-Mandal/Library-Management-System/circulation/core"
	"github.com/Shibashis-Mandal/Library-Management-System/eventstore"
)

var (
	ErrNilMetricsCollector = errors.New("metrics collector must not be nil")
	ErrEmptyCommandType    = errors.New("command type must not be empty")
	ErrInvalidMaxAttempts  = errors.New("max attempts must be positive")
	ErrNegativeBaseDelay   = errors.New("base delay must not be negative")
	ErrInvalidJitterFactor = errors.New("jitter factor must be between 0.0 and 1.0")
)

// RetryableFunc is one attempt of a retried operation.
type RetryableFunc func(ctx context.Context) error

// RetryMetrics describes what a retry loop did.
type RetryMetrics struct {
	Attempts         int
	TotalDelay       time.Duration
	LastErrorType    string
	RetriesExhausted bool
}

// RetryOption configures RetryWithExponentialBackoff.
type RetryOption func(*retryPolicy) error

type retryPolicy struct {
	attempts    int
	base        time.Duration
	jitter      float64
	in          Instruments
	commandType string
}

// WithMaxAttempts caps the number of calls, the first one included. Default 6.
func WithMaxAttempts(attempts int) RetryOption {
	return func(p *retryPolicy) error {
		if attempts <= 0 {
			return ErrInvalidMaxAttempts
		}
		p.attempts = attempts
		return nil
	}
}

// WithBaseDelay sets the wait before the second attempt. It doubles for every further one. Default 10ms.
func WithBaseDelay(delay time.Duration) RetryOption {
	return func(p *retryPolicy) error {
		if delay < 0 {
			return ErrNegativeBaseDelay
		}
		p.base = delay
		return nil
	}
}

// WithJitterFactor adds up to factor times each delay at random. Default 0.3.
func WithJitterFactor(factor float64) RetryOption {
	return func(p *retryPolicy) error {
		if factor < 0 || factor > 1 {
			return ErrInvalidJitterFactor
		}
		p.jitter = factor
		return nil
	}
}

// WithMetrics counts retries, delays and exhausted loops per command type.
func WithMetrics(collector MetricsCollector, commandType string) RetryOption {
	return func(p *retryPolicy) error {
		switch {
		case collector == nil:
			return ErrNilMetricsCollector
		case commandType == "":
			return ErrEmptyCommandType
		}
		p.in.Metrics = collector
		p.commandType = commandType
		return nil
	}
}

// RetryWithExponentialBackoff calls fn again while it fails with core.ErrBusy and ctx is alive.
// Any other error, domain refusals included, ends the loop at once.
//
// Command handlers never retry. The API and CLI wrap their service calls in this.
func RetryWithExponentialBackoff(ctx context.Context, fn RetryableFunc, options ...RetryOption) (RetryMetrics, error) {
	p := retryPolicy{attempts: 6, base: 10 * time.Millisecond, jitter: 0.3}
	for _, option := range options {
		if err := option(&p); err != nil {
			return RetryMetrics{}, err
		}
	}

	var (
		meta RetryMetrics
		err  error
	)

	for attempt := range p.attempts {
		if attempt > 0 {
			delay := p.delay(attempt)
			p.in.Time(ctx, CommandHandlerRetryDelayMetric, delay, map[string]string{
				LogAttrCommandType: p.commandType,
				LogAttrAttempt:     strconv.Itoa(attempt),
			})

			timer := time.NewTimer(delay)
			select {
			case <-timer.C:
				meta.TotalDelay += delay
			case <-ctx.Done():
				timer.Stop()
				meta.LastErrorType = errorType(ctx.Err())
				return meta, errors.Join(err, ctx.Err())
			}
		}

		meta.Attempts++
		err = fn(ctx)
		meta.LastErrorType = errorType(err)

		if err == nil || !errors.Is(err, core.ErrBusy) || ctx.Err() != nil {
			return meta, err
		}

		if attempt < p.attempts-1 {
			p.in.Count(ctx, CommandHandlerRetriesMetric, map[string]string{
				LogAttrCommandType: p.commandType,
				LogAttrAttempt:     strconv.Itoa(attempt + 1),
				LogAttrErrorType:   meta.LastErrorType,
			})
		}
	}

	meta.RetriesExhausted = true
	p.in.Count(ctx, CommandHandlerMaxRetriesReachedMetric, map[string]string{
		LogAttrCommandType:    p.commandType,
		LogAttrFinalErrorType: meta.LastErrorType,
	})

	return meta, err
}

// delay is base * 2^(attempt-1) plus jitter.
func (p retryPolicy) delay(attempt int) time.Duration {
	d := p.base << (attempt - 1)
	return d + time.Duration(rand.Float64()*p.jitter*float64(d)) //nolint:gosec // jitter needs no crypto
}

func errorType(err error) string {
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, context.Canceled):
		return "context_canceled"
	case errors.Is(err, context.DeadlineExceeded):
		return "context_deadline_exceeded"
	case errors.Is(err, eventstore.ErrConcurrencyConflict):
		return "concurrency_conflict"
	case errors.Is(err, core.ErrBusy):
		return "busy"
	case core.IsDomainError(err):
		return "domain"
	default:
		return "other"
	}
}
