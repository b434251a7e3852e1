package cli

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/Shibashis-Mandal/Library-Management-System/circulation/config"
	"github.com/Shibashis-Mandal/Library-Management-System/circulation/shell"
	"github.com/Shibashis-Mandal/Library-Management-System/internal/app"
)

// RootOptions holds the global flags and what PersistentPreRunE derives from them.
type RootOptions struct {
	ConfigPath string
	EnvFiles   []string
	Format     string
	Actor      string
	Version    string

	config config.Config
	// now overrides the business clock in tests.
	now func() time.Time
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{FormatText, FormatJSON}

// NewRootCommand creates the librarian command tree.
func NewRootCommand(version string) *cobra.Command {
	return newRootCommand(&RootOptions{Version: version})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "librarian",
		Short: "Library circulation desk",
		Long: `librarian issues and takes back book copies, computes overdue fines and answers
availability and borrowing questions from an append-only circulation ledger.

Configuration comes from an optional YAML file, .env files and LIBRARY_* environment
variables, in that order.`,
		Version:       opts.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return WrapExitError(ExitUsage, "invalid flag",
					fmt.Errorf("format %q must be one of %v", opts.Format, ValidFormats))
			}

			cfg, err := config.Load(opts.ConfigPath, opts.EnvFiles...)
			if err != nil {
				return classify("load config", err)
			}
			opts.config = cfg

			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "path to a YAML config file")
	cmd.PersistentFlags().StringSliceVar(&opts.EnvFiles, "env-file", []string{".env"}, ".env files to load, missing ones are skipped")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", FormatText, "output format (text|json)")
	cmd.PersistentFlags().StringVar(&opts.Actor, "actor", "desk", "who is recorded on the events this command appends")

	cmd.AddCommand(
		NewServeCommand(opts),
		NewMigrateCommand(opts),
		NewCatalogCommand(opts),
		NewIssueCommand(opts),
		NewReturnCommand(opts),
		NewAddCopyCommand(opts),
		NewMarkCommand(opts),
		NewStatusCommand(opts),
		NewAvailabilityCommand(opts),
		NewLoansCommand(opts),
		NewHistoryCommand(opts),
		NewOverdueCommand(opts),
		NewReportCommand(opts),
		NewTokenCommand(opts),
		NewHashPasswordCommand(opts),
	)

	return cmd
}

// withApp builds the App for one command and always closes it.
func (o *RootOptions) withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app.App) error) (err error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	appOpts := []app.Option{app.WithLogOutput(cmd.ErrOrStderr()), app.WithVersion(o.Version)}
	if o.now != nil {
		appOpts = append(appOpts, app.WithClock(o.now))
	}

	a, err := app.New(ctx, o.config, appOpts...)
	if err != nil {
		return WrapExitError(ExitInternal, "start", err)
	}

	defer func() {
		if closeErr := a.Close(context.Background()); closeErr != nil && err == nil {
			err = WrapExitError(ExitInternal, "shut down", closeErr)
		}
	}()

	// every event appended by this invocation shares one correlation id
	ctx = shell.WithCorrelationID(shell.WithActor(ctx, "cli:"+o.Actor), uuid.New())

	return fn(ctx, a)
}

func (o *RootOptions) printer(cmd *cobra.Command) *printer {
	return newPrinter(o.Format, cmd.OutOrStdout(), o.config.Fines.Currency)
}

// retry runs a command handler call, retrying Busy outcomes with the configured backoff.
func (o *RootOptions) retry(ctx context.Context, a *app.App, commandType string, fn shell.RetryableFunc) error {
	opts := []shell.RetryOption{
		shell.WithMaxAttempts(o.config.Retry.MaxAttempts),
		shell.WithBaseDelay(o.config.Retry.BaseDelay),
	}
	if a.Metrics != nil {
		opts = append(opts, shell.WithMetrics(a.Metrics, commandType))
	}

	meta, err := shell.RetryWithExponentialBackoff(ctx, fn, opts...)
	if meta.Attempts > 1 {
		a.Logger.InfoContext(ctx, "command retried", "command_type", commandType, "attempts", meta.Attempts)
	}

	return err
}
