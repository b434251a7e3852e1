package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Shibashis-Mandal/Library-Management-System/circulation/api"
	"github.com/Shibashis-Mandal/Library-Management-System/internal/app"
)

// NewServeCommand creates the serve command.
func NewServeCommand(opts *RootOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if addr != "" {
				opts.config.HTTP.Addr = addr
			}

			return opts.withApp(cmd, func(ctx context.Context, a *app.App) error {
				ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
				defer stop()

				server, err := api.NewServer(api.Deps{
					Service: a.Service,
					Catalog: a.Catalog,
					Config:  a.Config,
					Logger:  a.Logger,
					Metrics: a.Metrics,
				})
				if err != nil {
					return classify("serve", errors.Join(errUsage, err))
				}

				if err = server.ListenAndServe(ctx); err != nil {
					return classify("serve", err)
				}

				a.Logger.Info("stopped gracefully")
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address, overrides http.addr")

	return cmd
}

// NewMigrateCommand creates the migrate command.
func NewMigrateCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the event and catalog tables",
		Long:  "Create the event and catalog tables if they do not exist. Every other command does this too on start.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withApp(cmd, func(ctx context.Context, a *app.App) error {
				if err := a.Migrate(ctx); err != nil {
					return classify("migrate", err)
				}

				p := opts.printer(cmd)
				return p.emit(map[string]string{"store": a.Config.Store.Driver, "catalog": a.Config.Catalog.Driver}, func() {
					p.line("Migrated %s event store and %s catalog", a.Config.Store.Driver, a.Config.Catalog.Driver)
				})
			})
		},
	}
}

// NewCatalogCommand creates the catalog command group.
func NewCatalogCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Load books and copies into the catalog",
	}

	importCmd := &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Import a catalog CSV and put its copies into circulation",
		Long: `Import a CSV with the header book_id,title,author,category,isbn,copy_id,shelf_location
(columns in any order, one row per copy) and add every new copy to circulation.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(ctx context.Context, a *app.App) error {
				summary, added, err := a.ImportCatalog(ctx, args[0])
				if err != nil {
					return classify("import", err)
				}

				p := opts.printer(cmd)
				data := map[string]int{"books": summary.Books, "copies": summary.Copies, "added": added}
				return p.emit(data, func() {
					p.line("Imported %s and %s, %s added to circulation",
						plural(summary.Books, "book", "books"), plural(summary.Copies, "copy", "copies"), p.count(added))
				})
			})
		},
	}

	var bookID string
	syncCmd := &cobra.Command{
		Use:   "sync",
		Short: "Add catalog copies that are not in circulation yet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withApp(cmd, func(ctx context.Context, a *app.App) error {
				var (
					added int
					err   error
				)
				if bookID != "" {
					added, err = a.Service.SyncCatalogBook(ctx, bookID)
				} else {
					added, err = a.Service.SyncCatalog(ctx)
				}
				if err != nil {
					return classify("sync", err)
				}

				p := opts.printer(cmd)
				return p.emit(map[string]int{"added": added}, func() {
					p.line("%s added to circulation", plural(added, "copy", "copies"))
				})
			})
		},
	}
	syncCmd.Flags().StringVar(&bookID, "book", "", "sync only this book")

	cmd.AddCommand(importCmd, syncCmd)

	return cmd
}

// NewTokenCommand creates the token command.
func NewTokenCommand(opts *RootOptions) *cobra.Command {
	var role string

	cmd := &cobra.Command{
		Use:   "token <subject>",
		Short: "Sign an API token",
		Long:  "Sign an API token with auth.jwtSecret. Students may only read their own loans and history, so their subject is the borrower id.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.config.Auth.JWTSecret == "" {
				return classify("token", usageErrorf("auth.jwtSecret is not configured"))
			}
			if role != api.RoleAdmin && role != api.RoleStudent {
				return classify("token", usageErrorf("--role must be %s or %s, got %q", api.RoleAdmin, api.RoleStudent, role))
			}

			token, err := api.NewTokenIssuer(opts.config.Auth.JWTSecret, opts.config.Auth.TokenTTL).Issue(args[0], role)
			if err != nil {
				return classify("token", err)
			}

			p := opts.printer(cmd)
			return p.emit(map[string]string{"token": token, "role": role}, func() {
				p.line("%s", token)
			})
		},
	}

	cmd.Flags().StringVar(&role, "role", api.RoleStudent, "admin or student")

	return cmd
}

// NewHashPasswordCommand creates the hash-password command.
func NewHashPasswordCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password",
		Short: "Hash a desk password for auth.adminPasswordHash",
		Long:  "Prompt for a password, or read it from the first line of stdin when stdin is not a terminal, and print its bcrypt hash.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			password, err := readPassword(cmd)
			if err != nil {
				return classify("hash password", err)
			}
			if password == "" {
				return classify("hash password", usageErrorf("password must not be empty"))
			}

			hash, err := api.HashPassword(password)
			if err != nil {
				return classify("hash password", err)
			}

			p := opts.printer(cmd)
			return p.emit(map[string]string{"hash": hash}, func() {
				p.line("%s", hash)
			})
		},
	}
}

func readPassword(cmd *cobra.Command) (string, error) {
	if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		_, _ = fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
		raw, err := term.ReadPassword(int(f.Fd()))
		_, _ = fmt.Fprintln(cmd.ErrOrStderr())
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(raw), nil
	}

	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && line == "" {
		return "", usageErrorf("read password from stdin: %w", err)
	}

	return strings.TrimRight(line, "\r\n"), nil
}
