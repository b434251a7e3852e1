package api

import (
	"time"

	"github.com/Shibashis-Mandal/Library-Management-System/circulation/core"
	"github.com/Shibashis-Mandal/Library-Management-System/circulation/features/query/borrowinghistory"
	"github.com/Shibashis-Mandal/Library-Management-System/circulation/features/query/copystatus"
	"github.com/Shibashis-Mandal/Library-Management-System/circulation/features/query/finesreport"
	"github.com/Shibashis-Mandal/Library-Management-System/circulation/features/query/overdue"
	"github.com/Shibashis-Mandal/Library-Management-System/circulation/features/query/popularbooks"
	"github.com/Shibashis-Mandal/Library-Management-System/circulation/service"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

type issueResponse struct {
	IssueID     string     `json:"issueId"`
	CopyID      string     `json:"copyId"`
	BookID      string     `json:"bookId"`
	BorrowerID  string     `json:"borrowerId"`
	IssueDate   time.Time  `json:"issueDate"`
	DueDate     time.Time  `json:"dueDate"`
	ReturnDate  *time.Time `json:"returnDate,omitempty"`
	FineAmount  *int64     `json:"fineAmount,omitempty"`
	OverdueDays int        `json:"overdueDays,omitempty"`
	Condition   string     `json:"condition,omitempty"`
}

func toIssueResponse(r core.IssueRecord) issueResponse {
	return issueResponse{
		IssueID:     r.IssueID,
		CopyID:      r.CopyID,
		BookID:      r.BookID,
		BorrowerID:  r.BorrowerID,
		IssueDate:   r.IssueDate,
		DueDate:     r.DueDate,
		ReturnDate:  r.ReturnDate,
		FineAmount:  r.FineAmount,
		OverdueDays: r.OverdueDays,
		Condition:   string(r.Condition),
	}
}

func toIssueResponses(records []core.IssueRecord) []issueResponse {
	out := make([]issueResponse, 0, len(records))
	for _, r := range records {
		out = append(out, toIssueResponse(r))
	}

	return out
}

type returnResponse struct {
	IssueID     string    `json:"issueId"`
	CopyID      string    `json:"copyId"`
	BookID      string    `json:"bookId"`
	BorrowerID  string    `json:"borrowerId"`
	DueDate     time.Time `json:"dueDate"`
	ReturnDate  time.Time `json:"returnDate"`
	OverdueDays int       `json:"overdueDays"`
	FineAmount  int64     `json:"fineAmount"`
	Condition   string    `json:"condition"`
}

func toReturnResponse(r service.ReturnReceipt) returnResponse {
	return returnResponse{
		IssueID:     r.IssueID,
		CopyID:      r.CopyID,
		BookID:      r.BookID,
		BorrowerID:  r.BorrowerID,
		DueDate:     r.DueDate,
		ReturnDate:  r.ReturnDate,
		OverdueDays: r.OverdueDays,
		FineAmount:  r.FineAmount,
		Condition:   string(r.Condition),
	}
}

type availabilityResponse struct {
	BookID    string `json:"bookId"`
	Total     int    `json:"total"`
	Available int    `json:"available"`
	Issued    int    `json:"issued"`
	Damaged   int    `json:"damaged"`
	Lost      int    `json:"lost"`
}

func toAvailabilityResponse(a core.Availability) availabilityResponse {
	return availabilityResponse{
		BookID:    a.BookID,
		Total:     a.Total,
		Available: a.Available,
		Issued:    a.Issued,
		Damaged:   a.Damaged,
		Lost:      a.Lost,
	}
}

type copyStatusResponse struct {
	CopyID        string              `json:"copyId"`
	BookID        string              `json:"bookId"`
	ShelfLocation string              `json:"shelfLocation,omitempty"`
	Status        string              `json:"status"`
	OpenIssue     *issueResponse      `json:"openIssue,omitempty"`
	History       []historyEntryShape `json:"history"`
}

type historyEntryShape struct {
	EventType     string    `json:"eventType"`
	OccurredAt    time.Time `json:"occurredAt"`
	CorrelationID string    `json:"correlationId,omitempty"`
	Actor         string    `json:"actor,omitempty"`
}

func toCopyStatusResponse(s copystatus.CopyStatus) copyStatusResponse {
	resp := copyStatusResponse{
		CopyID:        s.CopyID,
		BookID:        s.BookID,
		ShelfLocation: s.ShelfLocation,
		Status:        string(s.Status),
		History:       make([]historyEntryShape, 0, len(s.History)),
	}

	if s.OpenIssue != nil {
		open := toIssueResponse(*s.OpenIssue)
		resp.OpenIssue = &open
	}

	for _, h := range s.History {
		resp.History = append(resp.History, historyEntryShape(h))
	}

	return resp
}

type overdueIssueResponse struct {
	issueResponse
	OverdueDays   int   `json:"overdueDays"`
	ProjectedFine int64 `json:"projectedFine"`
}

type overdueResponse struct {
	AsOf                time.Time              `json:"asOf"`
	Count               int                    `json:"count"`
	TotalProjectedFines int64                  `json:"totalProjectedFines"`
	Issues              []overdueIssueResponse `json:"issues"`
}

func toOverdueResponse(o overdue.OverdueIssues) overdueResponse {
	resp := overdueResponse{
		AsOf:                o.AsOf,
		Count:               o.Count,
		TotalProjectedFines: o.TotalProjectedFines,
		Issues:              make([]overdueIssueResponse, 0, len(o.Issues)),
	}

	for _, issue := range o.Issues {
		resp.Issues = append(resp.Issues, overdueIssueResponse{
			issueResponse: toIssueResponse(issue.IssueRecord),
			OverdueDays:   issue.OverdueDays,
			ProjectedFine: issue.ProjectedFine,
		})
	}

	return resp
}

type historyResponse struct {
	BorrowerID    string          `json:"borrowerId"`
	OpenCount     int             `json:"openCount"`
	ReturnedCount int             `json:"returnedCount"`
	LateReturns   int             `json:"lateReturns"`
	TotalFines    int64           `json:"totalFines"`
	Issues        []issueResponse `json:"issues"`
}

func toHistoryResponse(h borrowinghistory.BorrowingHistory) historyResponse {
	return historyResponse{
		BorrowerID:    h.BorrowerID,
		OpenCount:     h.OpenCount,
		ReturnedCount: h.ReturnedCount,
		LateReturns:   h.LateReturns,
		TotalFines:    h.TotalFines,
		Issues:        toIssueResponses(h.Issues),
	}
}

type borrowerFinesResponse struct {
	BorrowerID  string `json:"borrowerId"`
	Returns     int    `json:"returns"`
	LateReturns int    `json:"lateReturns"`
	TotalFines  int64  `json:"totalFines"`
}

type finesReportResponse struct {
	From        *time.Time              `json:"from,omitempty"`
	Until       *time.Time              `json:"until,omitempty"`
	Returns     int                     `json:"returns"`
	LateReturns int                     `json:"lateReturns"`
	TotalFines  int64                   `json:"totalFines"`
	Borrowers   []borrowerFinesResponse `json:"borrowers"`
}

func toFinesReportResponse(r finesreport.FinesReport) finesReportResponse {
	resp := finesReportResponse{
		From:        optionalTime(r.From),
		Until:       optionalTime(r.Until),
		Returns:     r.Returns,
		LateReturns: r.LateReturns,
		TotalFines:  r.TotalFines,
		Borrowers:   make([]borrowerFinesResponse, 0, len(r.Borrowers)),
	}

	for _, b := range r.Borrowers {
		resp.Borrowers = append(resp.Borrowers, borrowerFinesResponse{
			BorrowerID:  b.BorrowerID,
			Returns:     b.Returns,
			LateReturns: b.LateReturns,
			TotalFines:  b.TotalFines,
		})
	}

	return resp
}

type bookIssuesResponse struct {
	BookID            string `json:"bookId"`
	Title             string `json:"title,omitempty"`
	IssueCount        int    `json:"issueCount"`
	DistinctBorrowers int    `json:"distinctBorrowers"`
}

func toPopularBooksResponse(p popularbooks.PopularBooks, titles map[string]string) []bookIssuesResponse {
	out := make([]bookIssuesResponse, 0, len(p.Books))
	for _, b := range p.Books {
		out = append(out, bookIssuesResponse{
			BookID:            b.BookID,
			Title:             titles[b.BookID],
			IssueCount:        b.IssueCount,
			DistinctBorrowers: b.DistinctBorrowers,
		})
	}

	return out
}

func optionalTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}

	return &t
}
