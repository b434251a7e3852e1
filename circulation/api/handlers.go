package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Shibashis-Mandal/Library-Management-System/circulation/catalog"
	"github.com/Shibashis-Mandal/Library-Management-System/circulation/core"
	"github.com/Shibashis-Mandal/Library-Management-System/circulation/features/command/addcopy"
	"github.com/Shibashis-Mandal/Library-Management-System/circulation/features/command/issuebook"
	"github.com/Shibashis-Mandal/Library-Management-System/circulation/features/command/markcopy"
	"github.com/Shibashis-Mandal/Library-Management-System/circulation/features/command/returnbook"
	"github.com/Shibashis-Mandal/Library-Management-System/circulation/service"
)

const defaultPopularLimit = 10

type issueBody struct {
	IssueID    string `json:"issueId" binding:"omitempty,uuid"`
	CopyID     string `json:"copyId" binding:"required"`
	BorrowerID string `json:"borrowerId" binding:"required"`
	IssueDate  string `json:"issueDate"`
}

type returnBody struct {
	CopyID     string `json:"copyId"`
	IssueID    string `json:"issueId"`
	ReturnDate string `json:"returnDate"`
	Condition  string `json:"condition"`
}

type addCopyBody struct {
	CopyID        string `json:"copyId" binding:"required"`
	BookID        string `json:"bookId" binding:"required"`
	ShelfLocation string `json:"shelfLocation"`
}

type markBody struct {
	Mark   string `json:"mark" binding:"required"`
	Reason string `json:"reason"`
}

type changedResponse struct {
	Changed bool `json:"changed"`
}

type bookResponse struct {
	catalog.Book
	Availability *availabilityResponse `json:"availability,omitempty"`
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleIssue(c *gin.Context) {
	var body issueBody
	if err := c.ShouldBindJSON(&body); err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error(), "")
		return
	}

	issueDate, err := parseDate(body.IssueDate)
	if err != nil {
		s.respondError(c, err)
		return
	}

	request := service.IssueRequest{CopyID: body.CopyID, BorrowerID: body.BorrowerID, IssueDate: issueDate}
	if body.IssueID != "" {
		request.IssueID = uuid.MustParse(body.IssueID)
	} else {
		// fixed before the retry loop so a retried attempt cannot issue twice
		request.IssueID = uuid.New()
	}

	var record core.IssueRecord
	err = s.withRetry(c.Request.Context(), issuebook.Command{}.CommandType(), func(ctx context.Context) error {
		var handleErr error
		record, handleErr = s.service.IssueBook(ctx, request)
		return handleErr
	})
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toIssueResponse(record))
}

func (s *Server) handleReturn(c *gin.Context) {
	var body returnBody
	if err := c.ShouldBindJSON(&body); err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error(), "")
		return
	}

	returnDate, err := parseDate(body.ReturnDate)
	if err != nil {
		s.respondError(c, err)
		return
	}

	condition, err := core.ParseReturnCondition(body.Condition)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error(), "")
		return
	}

	request := service.ReturnRequest{
		CopyID:     body.CopyID,
		IssueID:    body.IssueID,
		ReturnDate: returnDate,
		Condition:  condition,
	}

	var receipt service.ReturnReceipt
	err = s.withRetry(c.Request.Context(), returnbook.Command{}.CommandType(), func(ctx context.Context) error {
		var handleErr error
		receipt, handleErr = s.service.ReturnBook(ctx, request)
		return handleErr
	})
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toReturnResponse(receipt))
}

func (s *Server) handleAddCopy(c *gin.Context) {
	var body addCopyBody
	if err := c.ShouldBindJSON(&body); err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error(), "")
		return
	}

	request := service.AddCopyRequest{CopyID: body.CopyID, BookID: body.BookID, ShelfLocation: body.ShelfLocation}

	var added bool
	err := s.withRetry(c.Request.Context(), addcopy.Command{}.CommandType(), func(ctx context.Context) error {
		var handleErr error
		added, handleErr = s.service.AddCopy(ctx, request)
		return handleErr
	})
	if err != nil {
		s.respondError(c, err)
		return
	}

	status := http.StatusOK
	if added {
		status = http.StatusCreated
	}

	c.JSON(status, changedResponse{Changed: added})
}

func (s *Server) handleMarkCopy(c *gin.Context) {
	var body markBody
	if err := c.ShouldBindJSON(&body); err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error(), "")
		return
	}

	mark, err := markcopy.ParseMark(body.Mark)
	if err != nil {
		s.respondError(c, err)
		return
	}

	request := service.MarkRequest{CopyID: c.Param("copyId"), Mark: mark, Reason: body.Reason}

	var changed bool
	err = s.withRetry(c.Request.Context(), markcopy.Command{}.CommandType(), func(ctx context.Context) error {
		var handleErr error
		changed, handleErr = s.service.MarkCopy(ctx, request)
		return handleErr
	})
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, changedResponse{Changed: changed})
}

func (s *Server) handleCatalogSync(c *gin.Context) {
	bookID := c.Query("bookId")

	var (
		added int
		err   error
	)
	if bookID != "" {
		added, err = s.service.SyncCatalogBook(c.Request.Context(), bookID)
	} else {
		added, err = s.service.SyncCatalog(c.Request.Context())
	}
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"added": added})
}

func (s *Server) handleCopyStatus(c *gin.Context) {
	status, err := s.service.CopyStatus(c.Request.Context(), c.Param("copyId"))
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toCopyStatusResponse(status))
}

func (s *Server) handleAvailabilityIndex(c *gin.Context) {
	index, err := s.service.AvailabilityIndex(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}

	out := make([]availabilityResponse, 0, len(index))
	for _, a := range index {
		out = append(out, toAvailabilityResponse(a))
	}

	c.JSON(http.StatusOK, out)
}

func (s *Server) handleGetAvailability(c *gin.Context) {
	a, err := s.service.GetAvailability(c.Request.Context(), c.Param("bookId"))
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toAvailabilityResponse(a))
}

func (s *Server) handleListBooks(c *gin.Context) {
	if s.catalog == nil {
		s.respondError(c, service.ErrNoCatalog)
		return
	}

	books, err := s.catalog.ListBooks(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}

	index, err := s.service.AvailabilityIndex(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}

	byBook := make(map[core.BookIDString]core.Availability, len(index))
	for _, a := range index {
		byBook[a.BookID] = a
	}

	category := strings.TrimSpace(c.Query("category"))
	out := make([]bookResponse, 0, len(books))
	for _, book := range books {
		if category != "" && !strings.EqualFold(book.Category, category) {
			continue
		}

		resp := bookResponse{Book: book}
		if a, ok := byBook[book.ID]; ok {
			shaped := toAvailabilityResponse(a)
			resp.Availability = &shaped
		}
		out = append(out, resp)
	}

	c.JSON(http.StatusOK, out)
}

func (s *Server) handleGetBook(c *gin.Context) {
	if s.catalog == nil {
		s.respondError(c, service.ErrNoCatalog)
		return
	}

	book, err := s.catalog.GetBook(c.Request.Context(), c.Param("bookId"))
	if err != nil {
		s.respondError(c, err)
		return
	}

	a, err := s.service.GetAvailability(c.Request.Context(), book.ID)
	if err != nil {
		s.respondError(c, err)
		return
	}

	shaped := toAvailabilityResponse(a)
	c.JSON(http.StatusOK, bookResponse{Book: book, Availability: &shaped})
}

func (s *Server) handleBorrowerLoans(c *gin.Context) {
	issues, err := s.service.ListOpenIssues(c.Request.Context(), c.Param("borrowerId"))
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toIssueResponses(issues))
}

func (s *Server) handleAllLoans(c *gin.Context) {
	issues, err := s.service.ListOpenIssues(c.Request.Context(), c.Query("borrowerId"))
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toIssueResponses(issues))
}

func (s *Server) handleBorrowerHistory(c *gin.Context) {
	history, err := s.service.BorrowingHistory(c.Request.Context(), c.Param("borrowerId"))
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toHistoryResponse(history))
}

func (s *Server) handleOverdue(c *gin.Context) {
	asOf, err := parseDate(c.Query("asOf"))
	if err != nil {
		s.respondError(c, err)
		return
	}

	result, err := s.service.ListOverdue(c.Request.Context(), asOf)
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toOverdueResponse(result))
}

func (s *Server) handleFinesReport(c *gin.Context) {
	from, until, err := parseRange(c)
	if err != nil {
		s.respondError(c, err)
		return
	}

	report, err := s.service.FinesReport(c.Request.Context(), from, until)
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toFinesReportResponse(report))
}

func (s *Server) handlePopularBooks(c *gin.Context) {
	from, until, err := parseRange(c)
	if err != nil {
		s.respondError(c, err)
		return
	}

	limit := defaultPopularLimit
	if raw := c.Query("limit"); raw != "" {
		if limit, err = strconv.Atoi(raw); err != nil || limit < 1 {
			abortWithError(c, http.StatusBadRequest, "limit must be a positive integer", "")
			return
		}
	}

	popular, err := s.service.PopularBooks(c.Request.Context(), limit, from, until)
	if err != nil {
		s.respondError(c, err)
		return
	}

	titles := make(map[string]string)
	if s.catalog != nil {
		if books, listErr := s.catalog.ListBooks(c.Request.Context()); listErr == nil {
			for _, book := range books {
				titles[book.ID] = book.Title
			}
		}
	}

	c.JSON(http.StatusOK, toPopularBooksResponse(popular, titles))
}

// parseDate accepts YYYY-MM-DD (UTC midnight) or RFC 3339. Empty means zero, the service
// then uses its clock.
func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}

	if t, err := time.ParseInLocation(time.DateOnly, raw, time.UTC); err == nil {
		return t, nil
	}

	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, errBadDate
	}

	return t, nil
}

// parseRange reads the from and until query parameters. A date-only until covers the whole day.
func parseRange(c *gin.Context) (time.Time, time.Time, error) {
	from, err := parseDate(c.Query("from"))
	if err != nil {
		return time.Time{}, time.Time{}, err
	}

	rawUntil := strings.TrimSpace(c.Query("until"))
	until, err := parseDate(rawUntil)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}

	if len(rawUntil) == len(time.DateOnly) {
		until = until.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}

	return from, until, nil
}
