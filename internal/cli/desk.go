package cli

import (
	"context"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/Shibashis-Mandal/Library-Management-System/circulation/core"
	"github.com/Shibashis-Mandal/Library-Management-System/circulation/features/command/addcopy"
	"github.com/Shibashis-Mandal/Library-Management-System/circulation/features/command/issuebook"
	"github.com/Shibashis-Mandal/Library-Management-System/circulation/features/command/markcopy"
	"github.com/Shibashis-Mandal/Library-Management-System/circulation/features/command/returnbook"
	"github.com/Shibashis-Mandal/Library-Management-System/circulation/service"
	"github.com/Shibashis-Mandal/Library-Management-System/internal/app"
)

// NewIssueCommand creates the issue command.
func NewIssueCommand(opts *RootOptions) *cobra.Command {
	var issueID, date string

	cmd := &cobra.Command{
		Use:   "issue <copy-id> <borrower-id>",
		Short: "Issue a copy to a borrower",
		Example: `  librarian issue copy-17 student-42
  librarian issue copy-17 student-42 --date 2025-01-01`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			issueDate, err := parseDay("date", date)
			if err != nil {
				return classify("issue", err)
			}

			request := service.IssueRequest{CopyID: args[0], BorrowerID: args[1], IssueDate: issueDate}
			if issueID == "" {
				request.IssueID = uuid.New()
			} else if request.IssueID, err = uuid.Parse(issueID); err != nil {
				return classify("issue", usageErrorf("--issue-id must be a UUID, got %q", issueID))
			}

			return opts.withApp(cmd, func(ctx context.Context, a *app.App) error {
				var record core.IssueRecord
				err := opts.retry(ctx, a, issuebook.Command{}.CommandType(), func(ctx context.Context) error {
					var handleErr error
					record, handleErr = a.Service.IssueBook(ctx, request)
					return handleErr
				})
				if err != nil {
					return classify("issue", err)
				}

				p := opts.printer(cmd)
				return p.emit(record, func() {
					p.line("Issued %s to %s", record.CopyID, record.BorrowerID)
					p.line("  issue     %s", record.IssueID)
					p.line("  book      %s", record.BookID)
					p.line("  issued    %s", day(record.IssueDate))
					p.line("  due       %s", day(record.DueDate))
				})
			})
		},
	}

	cmd.Flags().StringVar(&issueID, "issue-id", "", "issue id to record, a new UUID by default")
	cmd.Flags().StringVar(&date, "date", "", "issue date YYYY-MM-DD, today by default")

	return cmd
}

// NewReturnCommand creates the return command.
func NewReturnCommand(opts *RootOptions) *cobra.Command {
	var issueID, date, condition string

	cmd := &cobra.Command{
		Use:   "return [copy-id]",
		Short: "Take a copy back and assess the fine",
		Long: `Take a copy back. The open issue is found by copy id, or by --issue-id.
A copy returned Damaged or Lost leaves circulation until it is added again.`,
		Example: `  librarian return copy-17
  librarian return --issue-id 0b0e... --date 2025-01-21 --condition damaged`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			returnDate, err := parseDay("date", date)
			if err != nil {
				return classify("return", err)
			}

			parsed, err := core.ParseReturnCondition(condition)
			if err != nil {
				return classify("return", usageErrorf("%w", err))
			}

			request := service.ReturnRequest{IssueID: issueID, ReturnDate: returnDate, Condition: parsed}
			if len(args) == 1 {
				request.CopyID = args[0]
			}

			return opts.withApp(cmd, func(ctx context.Context, a *app.App) error {
				var receipt service.ReturnReceipt
				err := opts.retry(ctx, a, returnbook.Command{}.CommandType(), func(ctx context.Context) error {
					var handleErr error
					receipt, handleErr = a.Service.ReturnBook(ctx, request)
					return handleErr
				})
				if err != nil {
					return classify("return", err)
				}

				p := opts.printer(cmd)
				return p.emit(receipt, func() {
					p.line("Returned %s from %s", receipt.CopyID, receipt.BorrowerID)
					p.line("  issue      %s", receipt.IssueID)
					p.line("  due        %s", day(receipt.DueDate))
					p.line("  returned   %s", day(receipt.ReturnDate))
					p.line("  overdue    %s", plural(receipt.OverdueDays, "day", "days"))
					p.line("  fine       %s", p.money(receipt.FineAmount))
					p.line("  condition  %s", receipt.Condition)
				})
			})
		},
	}

	cmd.Flags().StringVar(&issueID, "issue-id", "", "return by issue id instead of copy id")
	cmd.Flags().StringVar(&date, "date", "", "return date YYYY-MM-DD, today by default")
	cmd.Flags().StringVar(&condition, "condition", "good", "good, damaged or lost")

	return cmd
}

// NewAddCopyCommand creates the add-copy command.
func NewAddCopyCommand(opts *RootOptions) *cobra.Command {
	var shelf string

	cmd := &cobra.Command{
		Use:   "add-copy <copy-id> <book-id>",
		Short: "Put a copy into circulation",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			request := service.AddCopyRequest{CopyID: args[0], BookID: args[1], ShelfLocation: shelf}

			return opts.withApp(cmd, func(ctx context.Context, a *app.App) error {
				var added bool
				err := opts.retry(ctx, a, addcopy.Command{}.CommandType(), func(ctx context.Context) error {
					var handleErr error
					added, handleErr = a.Service.AddCopy(ctx, request)
					return handleErr
				})
				if err != nil {
					return classify("add copy", err)
				}

				p := opts.printer(cmd)
				return p.emit(map[string]bool{"changed": added}, func() {
					if added {
						p.line("Added %s to %s", request.CopyID, request.BookID)
						return
					}
					p.line("%s is already in circulation", request.CopyID)
				})
			})
		},
	}

	cmd.Flags().StringVar(&shelf, "shelf", "", "shelf location")

	return cmd
}

// NewMarkCommand creates the mark command.
func NewMarkCommand(opts *RootOptions) *cobra.Command {
	var reason string

	cmd := &cobra.Command{
		Use:   "mark <copy-id> <damaged|lost>",
		Short: "Take a copy out of circulation as damaged or lost",
		Long: `Mark a copy that is on the shelf as damaged or lost. A copy that is on loan
is taken back with "librarian return --condition" instead.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			mark, err := markcopy.ParseMark(args[1])
			if err != nil {
				return classify("mark", err)
			}

			request := service.MarkRequest{CopyID: args[0], Mark: mark, Reason: reason}

			return opts.withApp(cmd, func(ctx context.Context, a *app.App) error {
				var changed bool
				err := opts.retry(ctx, a, markcopy.Command{}.CommandType(), func(ctx context.Context) error {
					var handleErr error
					changed, handleErr = a.Service.MarkCopy(ctx, request)
					return handleErr
				})
				if err != nil {
					return classify("mark", err)
				}

				p := opts.printer(cmd)
				return p.emit(map[string]bool{"changed": changed}, func() {
					if changed {
						p.line("Marked %s %s", request.CopyID, mark)
						return
					}
					p.line("%s was already marked %s", request.CopyID, mark)
				})
			})
		},
	}

	cmd.Flags().StringVar(&reason, "reason", "", "free text kept on the event")

	return cmd
}
