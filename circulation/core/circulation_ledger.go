package core

import (
	"slices"
	"time"
)

// IssueRecord is one loan of one copy to one borrower.
// ReturnDate and FineAmount stay nil while the issue is open.
type IssueRecord struct {
	IssueID     IssueIDString
	CopyID      CopyIDString
	BookID      BookIDString
	BorrowerID  BorrowerIDString
	IssueDate   time.Time
	DueDate     time.Time
	ReturnDate  *time.Time
	FineAmount  *Amount
	OverdueDays int
	Condition   ReturnCondition
}

// IsOpen reports whether the copy has not been returned yet.
func (r IssueRecord) IsOpen() bool {
	return r.ReturnDate == nil
}

// CirculationLedger holds issue records. At most one record per copy is open.
type CirculationLedger struct {
	issues     map[IssueIDString]*IssueRecord
	openByCopy map[CopyIDString]IssueIDString
}

// NewCirculationLedger returns an empty ledger.
func NewCirculationLedger() *CirculationLedger {
	return &CirculationLedger{
		issues:     make(map[IssueIDString]*IssueRecord),
		openByCopy: make(map[CopyIDString]IssueIDString),
	}
}

// ProjectCirculationLedger folds history into a ledger.
func ProjectCirculationLedger(history DomainEvents) *CirculationLedger {
	ledger := NewCirculationLedger()
	for _, event := range history {
		ledger.Apply(event)
	}

	return ledger
}

// Apply evolves the ledger by one recorded event.
func (l *CirculationLedger) Apply(event DomainEvent) {
	switch e := event.(type) {
	case CopyIssuedToBorrower:
		if _, ok := l.issues[e.IssueID]; ok {
			return
		}
		l.issues[e.IssueID] = &IssueRecord{
			IssueID:    e.IssueID,
			CopyID:     e.CopyID,
			BookID:     e.BookID,
			BorrowerID: e.BorrowerID,
			IssueDate:  e.OccurredAt,
			DueDate:    e.DueDate,
		}
		l.openByCopy[e.CopyID] = e.IssueID

	case CopyReturnedByBorrower:
		rec, ok := l.issues[e.IssueID]
		if !ok || !rec.IsOpen() {
			return
		}
		l.close(rec, e.OccurredAt, FineAssessment{OverdueDays: e.OverdueDays, Fine: e.FineAmount}, e.Condition)
	}
}

// OpenIssue creates an open record, or fails with ErrDuplicateOpenIssue.
func (l *CirculationLedger) OpenIssue(
	issueID IssueIDString,
	copyID CopyIDString,
	bookID BookIDString,
	borrowerID BorrowerIDString,
	issueDate time.Time,
	dueDate time.Time,
) (IssueRecord, error) {

	if _, ok := l.openByCopy[copyID]; ok {
		return IssueRecord{}, ErrDuplicateOpenIssue
	}

	if _, ok := l.issues[issueID]; ok {
		return IssueRecord{}, ErrDuplicateOpenIssue
	}

	rec := &IssueRecord{
		IssueID:    issueID,
		CopyID:     copyID,
		BookID:     bookID,
		BorrowerID: borrowerID,
		IssueDate:  ToOccurredAt(issueDate),
		DueDate:    ToOccurredAt(dueDate),
	}
	l.issues[issueID] = rec
	l.openByCopy[copyID] = issueID

	return *rec, nil
}

// CloseIssue closes an open record exactly once.
func (l *CirculationLedger) CloseIssue(
	issueID IssueIDString,
	returnDate time.Time,
	assessment FineAssessment,
	condition ReturnCondition,
) (IssueRecord, error) {

	rec, ok := l.issues[issueID]
	if !ok {
		return IssueRecord{}, ErrIssueNotFound
	}

	if !rec.IsOpen() {
		return IssueRecord{}, ErrAlreadyReturned
	}

	l.close(rec, ToOccurredAt(returnDate), assessment, condition)

	return *rec, nil
}

func (l *CirculationLedger) close(rec *IssueRecord, returnDate time.Time, assessment FineAssessment, condition ReturnCondition) {
	fine := assessment.Fine
	rec.ReturnDate = &returnDate
	rec.FineAmount = &fine
	rec.OverdueDays = assessment.OverdueDays
	rec.Condition = condition

	if l.openByCopy[rec.CopyID] == rec.IssueID {
		delete(l.openByCopy, rec.CopyID)
	}
}

// FindOpenIssueByCopy returns the open record of a copy, if any.
func (l *CirculationLedger) FindOpenIssueByCopy(copyID CopyIDString) (IssueRecord, bool) {
	issueID, ok := l.openByCopy[copyID]
	if !ok {
		return IssueRecord{}, false
	}

	return *l.issues[issueID], true
}

// Issue returns a record by id.
func (l *CirculationLedger) Issue(issueID IssueIDString) (IssueRecord, bool) {
	rec, ok := l.issues[issueID]
	if !ok {
		return IssueRecord{}, false
	}

	return *rec, true
}

// ListOpenIssues returns the open records of a borrower, oldest first.
func (l *CirculationLedger) ListOpenIssues(borrowerID BorrowerIDString) []IssueRecord {
	return l.filter(func(rec *IssueRecord) bool {
		return rec.IsOpen() && rec.BorrowerID == borrowerID
	})
}

// OpenIssues returns every open record, oldest first.
func (l *CirculationLedger) OpenIssues() []IssueRecord {
	return l.filter(func(rec *IssueRecord) bool {
		return rec.IsOpen()
	})
}

// All returns every record, oldest first.
func (l *CirculationLedger) All() []IssueRecord {
	return l.filter(func(*IssueRecord) bool {
		return true
	})
}

func (l *CirculationLedger) filter(keep func(rec *IssueRecord) bool) []IssueRecord {
	records := make([]IssueRecord, 0)
	for _, rec := range l.issues {
		if keep(rec) {
			records = append(records, *rec)
		}
	}

	slices.SortFunc(records, CompareIssues)

	return records
}

// CompareIssues orders records by issue date, then issue id.
func CompareIssues(a, b IssueRecord) int {
	if c := a.IssueDate.Compare(b.IssueDate); c != 0 {
		return c
	}

	switch {
	case a.IssueID < b.IssueID:
		return -1
	case a.IssueID > b.IssueID:
		return 1
	default:
		return 0
	}
}
