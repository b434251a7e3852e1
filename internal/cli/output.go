package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/Shibashis-Mandal/Library-Management-System/circulation/config"
	"github.com/Shibashis-Mandal/Library-Management-System/circulation/core"
	"github.com/Shibashis-Mandal/Library-Management-System/circulation/features/command/markcopy"
	"github.com/Shibashis-Mandal/Library-Management-System/circulation/service"
)

// Exit codes of the librarian binary.
const (
	ExitSuccess  = 0
	ExitUsage    = 1 // bad flags, arguments or config
	ExitDomain   = 2 // the library refused the operation
	ExitInternal = 3 // storage, network and everything else
)

const (
	FormatText = "text"
	FormatJSON = "json"
)

var errUsage = errors.New("usage")

// ExitError carries the exit code a failed command should end the process with.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// WrapExitError wraps err with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode returns the code carried by err, ExitUsage for errors cobra raised on its own.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}

	return ExitUsage
}

func usageErrorf(format string, args ...any) error {
	return errors.Join(errUsage, fmt.Errorf(format, args...))
}

// classify turns err into an ExitError that tells domain refusals apart from failures.
func classify(message string, err error) error {
	if err == nil {
		return nil
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return err
	}

	switch {
	case errors.Is(err, errUsage),
		errors.Is(err, service.ErrInvalidRequest),
		errors.Is(err, markcopy.ErrUnknownMark),
		errors.Is(err, config.ErrInvalidConfig),
		errors.Is(err, config.ErrReadConfig):
		return WrapExitError(ExitUsage, message, err)
	case core.IsDomainError(err), errors.Is(err, core.ErrBusy):
		return WrapExitError(ExitDomain, message, err)
	default:
		return WrapExitError(ExitInternal, message, err)
	}
}

// printer renders command results as text or as a JSON envelope.
type printer struct {
	format   string
	w        io.Writer
	numbers  *message.Printer
	currency currency.Unit
}

type envelope struct {
	Status string `json:"status"`
	Data   any    `json:"data,omitempty"`
}

func newPrinter(format string, w io.Writer, currencyCode string) *printer {
	unit, err := currency.ParseISO(currencyCode)
	if err != nil {
		unit = currency.XXX
	}

	return &printer{
		format:   format,
		w:        w,
		numbers:  message.NewPrinter(language.English),
		currency: unit,
	}
}

// emit writes data as JSON, or calls text for the human readable rendition.
func (p *printer) emit(data any, text func()) error {
	if p.format == FormatJSON {
		enc := jsoniter.ConfigCompatibleWithStandardLibrary.NewEncoder(p.w)
		enc.SetIndent("", "  ")
		return enc.Encode(envelope{Status: "ok", Data: data})
	}

	text()
	return nil
}

func (p *printer) line(format string, args ...any) {
	_, _ = fmt.Fprintf(p.w, format+"\n", args...)
}

// money formats an amount with its currency code and English digit grouping, e.g. INR 1,500.
func (p *printer) money(amount core.Amount) string {
	return p.currency.String() + " " + p.numbers.Sprintf("%d", amount)
}

func (p *printer) count(n int) string {
	return p.numbers.Sprintf("%d", n)
}

func day(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Format(time.DateOnly)
}

func plural(n int, one, many string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, one)
	}
	return fmt.Sprintf("%d %s", n, many)
}

// parseDay reads a YYYY-MM-DD flag value as UTC midnight. Empty means now.
func parseDay(flag, raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}

	t, err := time.ParseInLocation(time.DateOnly, raw, time.UTC)
	if err != nil {
		return time.Time{}, usageErrorf("--%s must be YYYY-MM-DD, got %q", flag, raw)
	}

	return t, nil
}

// endOfDay makes a date-only upper bound cover the whole day.
func endOfDay(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.AddDate(0, 0, 1).Add(-time.Nanosecond)
}
