package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/Shibashis-Mandal/Library-Management-System/circulation/catalog"
	"github.com/Shibashis-Mandal/Library-Management-System/circulation/core"
	"github.com/Shibashis-Mandal/Library-Management-System/circulation/features/command/addcopy"
	"github.com/Shibashis-Mandal/Library-Management-System/circulation/features/command/issuebook"
	"github.com/Shibashis-Mandal/Library-Management-System/circulation/features/command/markcopy"
	"github.com/Shibashis-Mandal/Library-Management-System/circulation/features/command/returnbook"
	"github.com/Shibashis-Mandal/Library-Management-System/circulation/features/query/availability"
	"github.com/Shibashis-Mandal/Library-Management-System/circulation/features/query/borrowinghistory"
	"github.com/Shibashis-Mandal/Library-Management-System/circulation/features/query/copystatus"
	"github.com/Shibashis-Mandal/Library-Management-System/circulation/features/query/finesreport"
	"github.com/Shibashis-Mandal/Library-Management-System/circulation/features/query/openissues"
	"github.com/Shibashis-Mandal/Library-Management-System/circulation/features/query/overdue"
	"github.com/Shibashis-Mandal/Library-Management-System/circulation/features/query/popularbooks"
	"github.com/Shibashis-Mandal/Library-Management-System/circulation/shell"
)

// ErrNoCatalog is returned by the catalog sync operations of a Service built without a catalog.
var ErrNoCatalog = errors.New("no catalog configured")

// Config holds the circulation policy.
type Config struct {
	LoanPeriodDays int
	BorrowingLimit int
	FinePolicy     core.FinePolicy
}

// DefaultConfig is a 14 day loan, 3 open issues per borrower and 5 per overdue day capped at 500.
func DefaultConfig() Config {
	return Config{
		LoanPeriodDays: 14,
		BorrowingLimit: 3,
		FinePolicy:     core.FinePolicy{RatePerDay: 5, MaxFine: 500},
	}
}

// Observability bundles the optional collectors every handler is wrapped with.
type Observability struct {
	Metrics          shell.MetricsCollector
	Tracing          shell.TracingCollector
	ContextualLogger shell.ContextualLogger
	Logger           shell.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithCatalog makes the Service check books against the catalog and enables catalog sync.
func WithCatalog(c catalog.Catalog) Option {
	return func(s *Service) {
		s.catalog = c
	}
}

// WithClock replaces time.Now for requests without a date.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// WithObservability wraps every handler with metrics, tracing and logging.
func WithObservability(o Observability) Option {
	return func(s *Service) {
		s.observability = o
	}
}

// Service is the circulation facade.
type Service struct {
	config        Config
	catalog       catalog.Catalog
	now           func() time.Time
	observability Observability

	addCopy    shell.CoreCommandHandler[addcopy.Command]
	issueBook  shell.CoreCommandHandler[issuebook.Command]
	returnBook shell.CoreCommandHandler[returnbook.Command]
	markCopy   shell.CoreCommandHandler[markcopy.Command]

	copyStatus       shell.CoreQueryHandler[copystatus.Query, copystatus.CopyStatus]
	availability     shell.CoreQueryHandler[availability.Query, availability.Availabilities]
	openIssues       shell.CoreQueryHandler[openissues.Query, openissues.OpenIssues]
	overdue          shell.CoreQueryHandler[overdue.Query, overdue.OverdueIssues]
	borrowingHistory shell.CoreQueryHandler[borrowinghistory.Query, borrowinghistory.BorrowingHistory]
	finesReport      shell.CoreQueryHandler[finesreport.Query, finesreport.FinesReport]
	popularBooks     shell.CoreQueryHandler[popularbooks.Query, popularbooks.PopularBooks]
}

// New builds a Service on an event store.
func New(es shell.EventStore, config Config, opts ...Option) (*Service, error) {
	s := &Service{config: config, now: time.Now}

	for _, opt := range opts {
		opt(s)
	}

	var err error
	o := s.observability

	if s.addCopy, err = wrapCommand[addcopy.Command](addcopy.NewCommandHandler(es), o); err != nil {
		return nil, err
	}

	if s.issueBook, err = wrapCommand[issuebook.Command](
		issuebook.NewCommandHandler(es, issuebook.WithBorrowingLimit(config.BorrowingLimit)), o); err != nil {
		return nil, err
	}

	if s.returnBook, err = wrapCommand[returnbook.Command](
		returnbook.NewCommandHandler(es, returnbook.WithFinePolicy(config.FinePolicy)), o); err != nil {
		return nil, err
	}

	if s.markCopy, err = wrapCommand[markcopy.Command](markcopy.NewCommandHandler(es), o); err != nil {
		return nil, err
	}

	if s.copyStatus, err = wrapQuery[copystatus.Query, copystatus.CopyStatus](copystatus.NewQueryHandler(es), o); err != nil {
		return nil, err
	}

	if s.availability, err = wrapQuery[availability.Query, availability.Availabilities](
		availability.NewQueryHandler(es), o); err != nil {
		return nil, err
	}

	if s.openIssues, err = wrapQuery[openissues.Query, openissues.OpenIssues](openissues.NewQueryHandler(es), o); err != nil {
		return nil, err
	}

	if s.overdue, err = wrapQuery[overdue.Query, overdue.OverdueIssues](
		overdue.NewQueryHandler(es, config.FinePolicy), o); err != nil {
		return nil, err
	}

	if s.borrowingHistory, err = wrapQuery[borrowinghistory.Query, borrowinghistory.BorrowingHistory](
		borrowinghistory.NewQueryHandler(es), o); err != nil {
		return nil, err
	}

	if s.finesReport, err = wrapQuery[finesreport.Query, finesreport.FinesReport](finesreport.NewQueryHandler(es), o); err != nil {
		return nil, err
	}

	if s.popularBooks, err = wrapQuery[popularbooks.Query, popularbooks.PopularBooks](
		popularbooks.NewQueryHandler(es), o); err != nil {
		return nil, err
	}

	return s, nil
}

// Config returns the circulation policy of the Service.
func (s *Service) Config() Config {
	return s.config
}

// IssueBook issues a copy to a borrower and returns the open issue record.
//
// The borrower's open issues are part of the consistency boundary, so concurrent issues of
// different copies to one borrower contend with each other. The losers get core.ErrBusy and
// should retry, the way the API and CLI do with shell.RetryWithExponentialBackoff.
func (s *Service) IssueBook(ctx context.Context, request IssueRequest) (core.IssueRecord, error) {
	if err := validateRequest(request); err != nil {
		return core.IssueRecord{}, err
	}

	if request.IssueID == uuid.Nil {
		request.IssueID = uuid.New()
	}

	command := issuebook.BuildCommand(
		request.IssueID,
		request.CopyID,
		request.BorrowerID,
		s.dateOrNow(request.IssueDate),
		s.config.LoanPeriodDays,
	)

	result, err := s.issueBook.Handle(ctx, command)
	if err != nil {
		return core.IssueRecord{}, err
	}

	if issued, ok := result.Event.(core.CopyIssuedToBorrower); ok {
		return core.IssueRecord{
			IssueID:    issued.IssueID,
			CopyID:     issued.CopyID,
			BookID:     issued.BookID,
			BorrowerID: issued.BorrowerID,
			IssueDate:  issued.OccurredAt,
			DueDate:    issued.DueDate,
		}, nil
	}

	// a resend, report the record as stored
	return s.findIssue(ctx, command.BorrowerID, command.IssueID)
}

// ReturnBook returns a copy and reports the fine.
func (s *Service) ReturnBook(ctx context.Context, request ReturnRequest) (ReturnReceipt, error) {
	if err := validateRequest(request); err != nil {
		return ReturnReceipt{}, err
	}

	command := returnbook.Command{
		CopyID:     request.CopyID,
		IssueID:    request.IssueID,
		ReturnDate: s.dateOrNow(request.ReturnDate),
		Condition:  request.Condition,
	}
	if command.Condition == "" {
		command.Condition = core.ConditionGood
	}

	result, err := s.returnBook.Handle(ctx, command)
	if err != nil {
		return ReturnReceipt{}, err
	}

	returned, ok := result.Event.(core.CopyReturnedByBorrower)
	if !ok {
		return ReturnReceipt{}, core.ErrNoActiveIssue
	}

	return ReturnReceipt{
		IssueID:     returned.IssueID,
		CopyID:      returned.CopyID,
		BookID:      returned.BookID,
		BorrowerID:  returned.BorrowerID,
		DueDate:     returned.DueDate,
		ReturnDate:  returned.OccurredAt,
		OverdueDays: returned.OverdueDays,
		FineAmount:  returned.FineAmount,
		Condition:   returned.Condition,
	}, nil
}

// AddCopy puts a copy into circulation. It reports false when the copy was already there.
func (s *Service) AddCopy(ctx context.Context, request AddCopyRequest) (bool, error) {
	if err := validateRequest(request); err != nil {
		return false, err
	}

	if s.catalog != nil {
		if _, err := s.catalog.GetBook(ctx, request.BookID); err != nil {
			return false, err
		}
	}

	result, err := s.addCopy.Handle(ctx, addcopy.BuildCommand(request.CopyID, request.BookID, request.ShelfLocation, s.now()))
	if err != nil {
		return false, err
	}

	return !result.Idempotent, nil
}

// MarkCopy marks a copy on the shelf Damaged or Lost. It reports false when nothing changed.
func (s *Service) MarkCopy(ctx context.Context, request MarkRequest) (bool, error) {
	if err := validateRequest(request); err != nil {
		return false, err
	}

	result, err := s.markCopy.Handle(ctx, markcopy.BuildCommand(request.CopyID, request.Mark, request.Reason, s.now()))
	if err != nil {
		return false, err
	}

	return !result.Idempotent, nil
}

// SyncCatalogBook puts every catalog copy of a book into circulation and returns how many were new.
func (s *Service) SyncCatalogBook(ctx context.Context, bookID core.BookIDString) (int, error) {
	if s.catalog == nil {
		return 0, ErrNoCatalog
	}

	copies, err := s.catalog.ListCopies(ctx, bookID)
	if err != nil {
		return 0, err
	}

	added := 0
	for _, c := range copies {
		isNew, err := s.AddCopy(ctx, AddCopyRequest{CopyID: c.ID, BookID: c.BookID, ShelfLocation: c.ShelfLocation})
		if err != nil {
			return added, err
		}
		if isNew {
			added++
		}
	}

	return added, nil
}

// SyncCatalog runs SyncCatalogBook for every book in the catalog.
func (s *Service) SyncCatalog(ctx context.Context) (int, error) {
	if s.catalog == nil {
		return 0, ErrNoCatalog
	}

	books, err := s.catalog.ListBooks(ctx)
	if err != nil {
		return 0, err
	}

	added := 0
	for _, book := range books {
		n, err := s.SyncCatalogBook(ctx, book.ID)
		added += n
		if err != nil {
			return added, err
		}
	}

	return added, nil
}

// GetAvailability returns the counts of one book. With a catalog, unknown books are NotFound.
func (s *Service) GetAvailability(ctx context.Context, bookID core.BookIDString) (core.Availability, error) {
	if s.catalog != nil {
		if _, err := s.catalog.GetBook(ctx, bookID); err != nil {
			return core.Availability{}, err
		}
	}

	result, err := s.availability.Handle(ctx, availability.BuildQuery(bookID))
	if err != nil {
		return core.Availability{}, err
	}

	return result.For(bookID), nil
}

// AvailabilityIndex returns the counts of every book in circulation.
func (s *Service) AvailabilityIndex(ctx context.Context) ([]core.Availability, error) {
	result, err := s.availability.Handle(ctx, availability.BuildIndexQuery())
	if err != nil {
		return nil, err
	}

	return result.Books, nil
}

// CopyStatus returns the state, open issue and event trail of one copy.
func (s *Service) CopyStatus(ctx context.Context, copyID core.CopyIDString) (copystatus.CopyStatus, error) {
	return s.copyStatus.Handle(ctx, copystatus.BuildQuery(copyID))
}

// ListOpenIssues returns the open issues of a borrower, or of everyone for an empty id.
func (s *Service) ListOpenIssues(ctx context.Context, borrowerID core.BorrowerIDString) ([]core.IssueRecord, error) {
	result, err := s.openIssues.Handle(ctx, openissues.BuildQuery(borrowerID))
	if err != nil {
		return nil, err
	}

	return result.Issues, nil
}

// ListOverdue returns the open issues past due on asOf, zero meaning now.
func (s *Service) ListOverdue(ctx context.Context, asOf time.Time) (overdue.OverdueIssues, error) {
	return s.overdue.Handle(ctx, overdue.BuildQuery(s.dateOrNow(asOf)))
}

// BorrowingHistory returns every issue of a borrower.
func (s *Service) BorrowingHistory(ctx context.Context, borrowerID core.BorrowerIDString) (borrowinghistory.BorrowingHistory, error) {
	return s.borrowingHistory.Handle(ctx, borrowinghistory.BuildQuery(borrowerID))
}

// FinesReport sums the fines of returns between from and until. Zero bounds are open.
func (s *Service) FinesReport(ctx context.Context, from, until time.Time) (finesreport.FinesReport, error) {
	return s.finesReport.Handle(ctx, finesreport.BuildQuery(from, until))
}

// PopularBooks ranks books by issue count.
func (s *Service) PopularBooks(ctx context.Context, limit int, from, until time.Time) (popularbooks.PopularBooks, error) {
	return s.popularBooks.Handle(ctx, popularbooks.BuildQuery(limit, from, until))
}

func (s *Service) findIssue(ctx context.Context, borrowerID core.BorrowerIDString, issueID core.IssueIDString) (core.IssueRecord, error) {
	history, err := s.borrowingHistory.Handle(ctx, borrowinghistory.BuildQuery(borrowerID))
	if err != nil {
		return core.IssueRecord{}, err
	}

	for _, issue := range history.Issues {
		if issue.IssueID == issueID {
			return issue, nil
		}
	}

	return core.IssueRecord{}, core.ErrIssueNotFound
}

func (s *Service) dateOrNow(t time.Time) time.Time {
	if t.IsZero() {
		return s.now()
	}

	return t
}
