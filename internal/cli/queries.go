package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/Shibashis-Mandal/Library-Management-System/circulation/core"
	"github.com/Shibashis-Mandal/Library-Management-System/internal/app"
)

const (
	availabilityHeader = "%-12s %5s %9s %6s %7s %4s"
	availabilityRow    = "%-12s %5d %9d %6d %7d %4d"
	loanRow            = "%-12s %-12s %-14s %-10s %s"
)

// NewStatusCommand creates the status command.
func NewStatusCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status <copy-id>",
		Short: "Show the status and event history of a copy",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(ctx context.Context, a *app.App) error {
				status, err := a.Service.CopyStatus(ctx, args[0])
				if err != nil {
					return classify("status", err)
				}

				p := opts.printer(cmd)
				return p.emit(status, func() {
					p.line("%s (%s) is %s", status.CopyID, status.BookID, status.Status)
					if status.ShelfLocation != "" {
						p.line("  shelf     %s", status.ShelfLocation)
					}
					if open := status.OpenIssue; open != nil {
						p.line("  borrower  %s, due %s", open.BorrowerID, day(open.DueDate))
					}
					for _, h := range status.History {
						p.line("  %s  %s", day(h.OccurredAt), h.EventType)
					}
				})
			})
		},
	}
}

// NewAvailabilityCommand creates the availability command.
func NewAvailabilityCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "availability [book-id]",
		Short: "Count total, available, issued, damaged and lost copies",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(ctx context.Context, a *app.App) error {
				var index []core.Availability
				if len(args) == 1 {
					one, err := a.Service.GetAvailability(ctx, args[0])
					if err != nil {
						return classify("availability", err)
					}
					index = append(index, one)
				} else {
					all, err := a.Service.AvailabilityIndex(ctx)
					if err != nil {
						return classify("availability", err)
					}
					index = all
				}

				p := opts.printer(cmd)
				return p.emit(index, func() {
					p.line(availabilityHeader, "BOOK", "TOTAL", "AVAILABLE", "ISSUED", "DAMAGED", "LOST")
					for _, row := range index {
						p.line(availabilityRow, row.BookID, row.Total, row.Available, row.Issued, row.Damaged, row.Lost)
					}
				})
			})
		},
	}
}

// NewLoansCommand creates the loans command.
func NewLoansCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "loans [borrower-id]",
		Short: "List open issues, of one borrower or of everyone",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var borrowerID core.BorrowerIDString
			if len(args) == 1 {
				borrowerID = args[0]
			}

			return opts.withApp(cmd, func(ctx context.Context, a *app.App) error {
				issues, err := a.Service.ListOpenIssues(ctx, borrowerID)
				if err != nil {
					return classify("loans", err)
				}

				p := opts.printer(cmd)
				return p.emit(issues, func() {
					p.line(loanRow, "COPY", "BOOK", "BORROWER", "DUE", "ISSUE")
					for _, issue := range issues {
						p.line(loanRow, issue.CopyID, issue.BookID, issue.BorrowerID, day(issue.DueDate), issue.IssueID)
					}
				})
			})
		},
	}
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "history <borrower-id>",
		Short: "Show every issue of a borrower with fines",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(ctx context.Context, a *app.App) error {
				history, err := a.Service.BorrowingHistory(ctx, args[0])
				if err != nil {
					return classify("history", err)
				}

				p := opts.printer(cmd)
				return p.emit(history, func() {
					p.line("%s: %s open, %s returned, %s late, fines %s",
						history.BorrowerID, p.count(history.OpenCount), p.count(history.ReturnedCount),
						p.count(history.LateReturns), p.money(history.TotalFines))

					for _, issue := range history.Issues {
						if issue.IsOpen() {
							p.line("  %s  %-12s due %s", day(issue.IssueDate), issue.CopyID, day(issue.DueDate))
							continue
						}

						var fine core.Amount
						if issue.FineAmount != nil {
							fine = *issue.FineAmount
						}
						p.line("  %s  %-12s returned %s %s, fine %s",
							day(issue.IssueDate), issue.CopyID, day(*issue.ReturnDate), issue.Condition, p.money(fine))
					}
				})
			})
		},
	}
}

// NewOverdueCommand creates the overdue command.
func NewOverdueCommand(opts *RootOptions) *cobra.Command {
	var asOf string

	cmd := &cobra.Command{
		Use:   "overdue",
		Short: "List open issues past their due date with projected fines",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			at, err := parseDay("as-of", asOf)
			if err != nil {
				return classify("overdue", err)
			}

			return opts.withApp(cmd, func(ctx context.Context, a *app.App) error {
				result, err := a.Service.ListOverdue(ctx, at)
				if err != nil {
					return classify("overdue", err)
				}

				p := opts.printer(cmd)
				return p.emit(result, func() {
					p.line("%s overdue as of %s, projected fines %s",
						plural(result.Count, "issue", "issues"), day(result.AsOf), p.money(result.TotalProjectedFines))
					for _, issue := range result.Issues {
						p.line("  %-12s %-14s due %s  %s  %s",
							issue.CopyID, issue.BorrowerID, day(issue.DueDate),
							plural(issue.OverdueDays, "day", "days"), p.money(issue.ProjectedFine))
					}
				})
			})
		},
	}

	cmd.Flags().StringVar(&asOf, "as-of", "", "evaluation date YYYY-MM-DD, today by default")

	return cmd
}

type dateRange struct {
	From  time.Time
	Until time.Time
}

// NewReportCommand creates the report command group.
func NewReportCommand(opts *RootOptions) *cobra.Command {
	var from, until string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Fines and popularity reports over a date range",
	}
	cmd.PersistentFlags().StringVar(&from, "from", "", "first day YYYY-MM-DD, unbounded by default")
	cmd.PersistentFlags().StringVar(&until, "until", "", "last day YYYY-MM-DD inclusive, unbounded by default")

	readRange := func() (dateRange, error) {
		f, err := parseDay("from", from)
		if err != nil {
			return dateRange{}, err
		}

		u, err := parseDay("until", until)
		if err != nil {
			return dateRange{}, err
		}

		return dateRange{From: f, Until: endOfDay(u)}, nil
	}

	fines := &cobra.Command{
		Use:   "fines",
		Short: "Fines collected on returns, per borrower",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			r, err := readRange()
			if err != nil {
				return classify("fines report", err)
			}

			return opts.withApp(cmd, func(ctx context.Context, a *app.App) error {
				report, err := a.Service.FinesReport(ctx, r.From, r.Until)
				if err != nil {
					return classify("fines report", err)
				}

				p := opts.printer(cmd)
				return p.emit(report, func() {
					p.line("%s, %s late, fines %s",
						plural(report.Returns, "return", "returns"), p.count(report.LateReturns), p.money(report.TotalFines))
					for _, b := range report.Borrowers {
						p.line("  %-14s %s late of %s  %s",
							b.BorrowerID, p.count(b.LateReturns), plural(b.Returns, "return", "returns"), p.money(b.TotalFines))
					}
				})
			})
		},
	}

	var limit int
	popular := &cobra.Command{
		Use:   "popular",
		Short: "Books ranked by number of issues",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			r, err := readRange()
			if err != nil {
				return classify("popular report", err)
			}
			if limit < 1 {
				return classify("popular report", usageErrorf("--limit must be positive, got %d", limit))
			}

			return opts.withApp(cmd, func(ctx context.Context, a *app.App) error {
				result, err := a.Service.PopularBooks(ctx, limit, r.From, r.Until)
				if err != nil {
					return classify("popular report", err)
				}

				p := opts.printer(cmd)
				return p.emit(result.Books, func() {
					for i, b := range result.Books {
						title := ""
						if book, getErr := a.Catalog.GetBook(ctx, b.BookID); getErr == nil {
							title = book.Title
						}
						p.line("%2d. %-12s %s, %s  %s",
							i+1, b.BookID, plural(b.IssueCount, "issue", "issues"), plural(b.DistinctBorrowers, "borrower", "borrowers"), title)
					}
				})
			})
		},
	}
	popular.Flags().IntVar(&limit, "limit", 10, "number of books to show")

	cmd.AddCommand(fines, popular)

	return cmd
}
