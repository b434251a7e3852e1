// Package app wires a loaded configuration into a running circulation service:
// logger and telemetry, event store, catalog and the service facade.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"go.opentelemetry.io/otel"

	"github.com/Shibashis-Mandal/Library-Management-System/circulation/catalog"
	"github.com/Shibashis-Mandal/Library-Management-System/circulation/config"
	"github.com/Shibashis-Mandal/Library-Management-System/circulation/service"
	"github.com/Shibashis-Mandal/Library-Management-System/circulation/shell"
	"github.com/Shibashis-Mandal/Library-Management-System/eventstore/oteladapters"
)

const instrumentationName = "librarian"

// App owns every resource built from a Config. Close releases them in reverse order.
type App struct {
	Config  config.Config
	Logger  *slog.Logger
	Catalog catalog.Store
	Service *service.Service
	// Metrics is nil unless OpenTelemetry is enabled.
	Metrics shell.MetricsCollector

	eventStore shell.EventStore
	migrations []func(ctx context.Context) error
	closers    []func(ctx context.Context) error
}

// Option configures New.
type Option func(*options)

type options struct {
	logOutput io.Writer
	version   string
	now       func() time.Time
}

// WithLogOutput redirects the logs, stderr by default.
func WithLogOutput(w io.Writer) Option {
	return func(o *options) {
		o.logOutput = w
	}
}

// WithVersion sets the service.version telemetry attribute.
func WithVersion(version string) Option {
	return func(o *options) {
		o.version = version
	}
}

// WithClock replaces time.Now as the default business date.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

// New builds the App and migrates its schemas. On error everything built so far is released.
func New(ctx context.Context, cfg config.Config, opts ...Option) (*App, error) {
	o := options{logOutput: os.Stderr, version: "dev", now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	a := &App{
		Config: cfg,
		Logger: NewLogger(cfg.Log, o.logOutput),
	}

	observability, err := a.setupObservability(ctx, o.version)
	if err != nil {
		return nil, a.abort(ctx, fmt.Errorf("set up observability: %w", err))
	}
	a.Metrics = observability.Metrics

	if err = a.openEventStore(ctx, observability); err != nil {
		return nil, a.abort(ctx, fmt.Errorf("open event store: %w", err))
	}

	if err = a.openCatalog(); err != nil {
		return nil, a.abort(ctx, fmt.Errorf("open catalog: %w", err))
	}

	if err = a.Migrate(ctx); err != nil {
		return nil, a.abort(ctx, err)
	}

	a.Service, err = service.New(
		a.eventStore,
		service.Config{
			LoanPeriodDays: cfg.Circulation.LoanPeriodDays,
			BorrowingLimit: cfg.Circulation.BorrowingLimit,
			FinePolicy:     cfg.FinePolicy(),
		},
		service.WithCatalog(a.Catalog),
		service.WithClock(o.now),
		service.WithObservability(observability),
	)
	if err != nil {
		return nil, a.abort(ctx, fmt.Errorf("create service: %w", err))
	}

	if cfg.Catalog.ImportFile != "" {
		if _, _, err = a.ImportCatalog(ctx, cfg.Catalog.ImportFile); err != nil {
			return nil, a.abort(ctx, err)
		}
	}

	a.Logger.Info("librarian ready",
		"store", cfg.Store.Driver,
		"catalog", cfg.Catalog.Driver,
		"loan_period_days", cfg.Circulation.LoanPeriodDays,
		"borrowing_limit", cfg.Circulation.BorrowingLimit,
	)

	return a, nil
}

// Migrate creates the event and catalog tables if they do not exist.
func (a *App) Migrate(ctx context.Context) error {
	for _, migrate := range a.migrations {
		if err := migrate(ctx); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	return nil
}

// ImportCatalog loads a catalog CSV file and puts every imported copy into circulation.
func (a *App) ImportCatalog(ctx context.Context, path string) (catalog.ImportSummary, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return catalog.ImportSummary{}, 0, fmt.Errorf("import catalog: %w", err)
	}
	defer f.Close()

	summary, err := catalog.ImportCSV(ctx, f, a.Catalog)
	if err != nil {
		return summary, 0, fmt.Errorf("import catalog %s: %w", path, err)
	}

	added, err := a.Service.SyncCatalog(ctx)
	if err != nil {
		return summary, added, fmt.Errorf("sync catalog: %w", err)
	}

	a.Logger.Info("catalog imported", "file", path, "books", summary.Books, "copies", summary.Copies, "added_to_circulation", added)

	return summary, added, nil
}

// Close releases every resource, newest first.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i](ctx))
	}
	a.closers = nil

	return errors.Join(errs...)
}

func (a *App) abort(ctx context.Context, err error) error {
	return errors.Join(err, a.Close(ctx))
}

func (a *App) onClose(closer func(ctx context.Context) error) {
	a.closers = append(a.closers, closer)
}

func (a *App) setupObservability(ctx context.Context, version string) (service.Observability, error) {
	if !a.Config.OTel.Enabled {
		return service.Observability{
			ContextualLogger: oteladapters.NewSlogBridgeLoggerWithHandler(instrumentationName, a.Logger.Handler()),
		}, nil
	}

	providers, err := a.Config.OTel.NewObservabilityProviders(ctx, version)
	if err != nil {
		return service.Observability{}, err
	}
	a.onClose(providers.Shutdown)

	return service.Observability{
		Metrics:          oteladapters.NewMetricsCollector(otel.Meter(instrumentationName)),
		Tracing:          oteladapters.NewTracingCollector(otel.Tracer(instrumentationName)),
		ContextualLogger: oteladapters.NewSlogBridgeLogger(instrumentationName),
	}, nil
}

func (a *App) openCatalog() error {
	if a.Config.Catalog.Driver == config.DriverMemory {
		a.Catalog = catalog.NewMemoryCatalog()
		return nil
	}

	c, err := catalog.Open(a.Config.Catalog.Driver, a.Config.Catalog.DSN)
	if err != nil {
		return err
	}

	a.Catalog = c
	a.migrations = append(a.migrations, c.Migrate)
	a.onClose(func(context.Context) error { return c.Close() })

	return nil
}
