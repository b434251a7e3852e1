package api_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shibashis-Mandal/Library-Management-System/circulation/api"
	"github.com/Shibashis-Mandal/Library-Management-System/circulation/catalog"
	"github.com/Shibashis-Mandal/Library-Management-System/circulation/config"
	"github.com/Shibashis-Mandal/Library-Management-System/circulation/core"
	"github.com/Shibashis-Mandal/Library-Management-System/circulation/service"
	. "github.com/Shibashis-Mandal/Library-Management-System/testutil/circulationtest" //nolint:revive
)

const testSecret = "0123456789abcdef0123456789abcdef"

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func init() {
	gin.SetMode(gin.TestMode)
}

type fixture struct {
	router *gin.Engine
	svc    *service.Service
	issuer *api.TokenIssuer
}

// givenAPI serves book-1 (copy-1, copy-2) and book-2 (copy-3) from a memory store.
func givenAPI(t *testing.T, mutate func(cfg *config.Config)) fixture {
	t.Helper()

	ctx := context.Background()
	cat := catalog.NewMemoryCatalog()
	require.NoError(t, cat.SaveBook(ctx, catalog.Book{ID: "book-1", Title: "Godan", Author: "Premchand", Category: "Fiction"}))
	require.NoError(t, cat.SaveBook(ctx, catalog.Book{ID: "book-2", Title: "Gitanjali", Author: "Tagore", Category: "Poetry"}))
	require.NoError(t, cat.SaveCopy(ctx, catalog.Copy{ID: "copy-1", BookID: "book-1"}))
	require.NoError(t, cat.SaveCopy(ctx, catalog.Copy{ID: "copy-2", BookID: "book-1"}))
	require.NoError(t, cat.SaveCopy(ctx, catalog.Copy{ID: "copy-3", BookID: "book-2"}))

	cfg := config.Default()
	cfg.HTTP.RateLimitRPS = 0
	if mutate != nil {
		mutate(&cfg)
	}

	svc, err := service.New(NewMemoryStore(t), service.Config{
		LoanPeriodDays: cfg.Circulation.LoanPeriodDays,
		BorrowingLimit: cfg.Circulation.BorrowingLimit,
		FinePolicy:     cfg.FinePolicy(),
	}, service.WithCatalog(cat), service.WithClock(func() time.Time { return Day0 }))
	require.NoError(t, err)

	_, err = svc.SyncCatalog(ctx)
	require.NoError(t, err)

	server, err := api.NewServer(api.Deps{
		Service: svc,
		Catalog: cat,
		Config:  cfg,
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	require.NoError(t, err)

	return fixture{
		router: server.Router(),
		svc:    svc,
		issuer: api.NewTokenIssuer(cfg.Auth.JWTSecret, time.Hour),
	}
}

func (f fixture) do(t *testing.T, method, path string, body any, header http.Header) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, values := range header {
		for _, v := range values {
			req.Header.Add(k, v)
		}
	}

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	return rec
}

func (f fixture) bearer(t *testing.T, subject, role string) http.Header {
	t.Helper()

	token, err := f.issuer.Issue(subject, role)
	require.NoError(t, err)

	return http.Header{"Authorization": []string{"Bearer " + token}}
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())

	return out
}

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func Test_API_IssueAndReturnLate(t *testing.T) {
	// arrange
	f := givenAPI(t, nil)

	// act
	issued := f.do(t, http.MethodPost, "/api/issues", map[string]string{
		"copyId": "copy-1", "borrowerId": "student-1", "issueDate": "2025-01-01",
	}, nil)
	returned := f.do(t, http.MethodPost, "/api/returns", map[string]string{
		"copyId": "copy-1", "returnDate": "2025-01-21",
	}, nil)

	// assert
	require.Equal(t, http.StatusCreated, issued.Code, issued.Body.String())
	issue := decode[map[string]any](t, issued)
	assert.Equal(t, "2025-01-15T00:00:00Z", issue["dueDate"])

	require.Equal(t, http.StatusOK, returned.Code, returned.Body.String())
	receipt := decode[map[string]any](t, returned)
	assert.EqualValues(t, 6, receipt["overdueDays"])
	assert.EqualValues(t, 30, receipt["fineAmount"])
	assert.Equal(t, "Good", receipt["condition"])

	availability := decode[map[string]any](t, f.do(t, http.MethodGet, "/api/books/book-1/availability", nil, nil))
	assert.EqualValues(t, 2, availability["available"])
}

func Test_API_ErrorMapping(t *testing.T) {
	f := givenAPI(t, func(cfg *config.Config) { cfg.Circulation.BorrowingLimit = 1 })
	require.Equal(t, http.StatusCreated, f.do(t, http.MethodPost, "/api/issues",
		map[string]string{"copyId": "copy-1", "borrowerId": "student-1"}, nil).Code)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		status int
		code   string
	}{
		{"unknown copy", http.MethodPost, "/api/issues", map[string]string{"copyId": "copy-9", "borrowerId": "student-2"}, http.StatusNotFound, "CopyNotFound"},
		{"copy on loan", http.MethodPost, "/api/issues", map[string]string{"copyId": "copy-1", "borrowerId": "student-2"}, http.StatusConflict, "CopyNotAvailable"},
		{"borrowing limit", http.MethodPost, "/api/issues", map[string]string{"copyId": "copy-2", "borrowerId": "student-1"}, http.StatusUnprocessableEntity, "BorrowingLimitExceeded"},
		{"no active issue", http.MethodPost, "/api/returns", map[string]string{"copyId": "copy-3"}, http.StatusConflict, "NoActiveIssue"},
		{"unknown issue", http.MethodPost, "/api/returns", map[string]string{"issueId": uuid.NewString()}, http.StatusNotFound, "IssueNotFound"},
		{"return before issue", http.MethodPost, "/api/returns", map[string]string{"copyId": "copy-1", "returnDate": "2024-12-01"}, http.StatusUnprocessableEntity, "ReturnBeforeIssue"},
		{"missing borrower", http.MethodPost, "/api/issues", map[string]string{"copyId": "copy-2"}, http.StatusBadRequest, ""},
		{"bad issue id", http.MethodPost, "/api/issues", map[string]string{"issueId": "nope", "copyId": "copy-2", "borrowerId": "student-3"}, http.StatusBadRequest, ""},
		{"bad date", http.MethodPost, "/api/returns", map[string]string{"copyId": "copy-1", "returnDate": "yesterday"}, http.StatusBadRequest, ""},
		{"bad condition", http.MethodPost, "/api/returns", map[string]string{"copyId": "copy-1", "condition": "wet"}, http.StatusBadRequest, ""},
		{"neither copy nor issue", http.MethodPost, "/api/returns", map[string]string{}, http.StatusBadRequest, ""},
		{"unknown book", http.MethodGet, "/api/books/book-9/availability", nil, http.StatusNotFound, "BookNotFound"},
		{"bad mark", http.MethodPost, "/api/copies/copy-3/marks", map[string]string{"mark": "stolen"}, http.StatusBadRequest, ""},
		{"mark copy on loan", http.MethodPost, "/api/copies/copy-1/marks", map[string]string{"mark": "lost"}, http.StatusConflict, "CopyOnLoan"},
		{"bad limit", http.MethodGet, "/api/reports/popular?limit=0", nil, http.StatusBadRequest, ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := f.do(t, tc.method, tc.path, tc.body, nil)

			assert.Equal(t, tc.status, rec.Code, rec.Body.String())
			assert.Equal(t, tc.code, decode[errorBody](t, rec).Code)
		})
	}
}

func Test_API_Auth(t *testing.T) {
	hash, err := api.HashPassword("desk-password")
	require.NoError(t, err)

	f := givenAPI(t, func(cfg *config.Config) {
		cfg.Auth.Disabled = false
		cfg.Auth.JWTSecret = testSecret
		cfg.Auth.AdminPasswordHash = hash
	})

	issueBody := map[string]string{"copyId": "copy-1", "borrowerId": "student-1"}

	t.Run("no token", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, f.do(t, http.MethodGet, "/api/availability", nil, nil).Code)
	})

	t.Run("forged token", func(t *testing.T) {
		forged := api.NewTokenIssuer("another-secret-of-enough-length", time.Hour)
		token, err := forged.Issue("mallory", api.RoleAdmin)
		require.NoError(t, err)

		rec := f.do(t, http.MethodGet, "/api/availability", nil, http.Header{"Authorization": []string{"Bearer " + token}})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("student may browse but not issue", func(t *testing.T) {
		student := f.bearer(t, "student-1", api.RoleStudent)

		assert.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/api/availability", nil, student).Code)
		assert.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/api/books", nil, student).Code)
		assert.Equal(t, http.StatusForbidden, f.do(t, http.MethodPost, "/api/issues", issueBody, student).Code)
	})

	t.Run("student reads only own loans", func(t *testing.T) {
		student := f.bearer(t, "student-1", api.RoleStudent)

		assert.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/api/borrowers/student-1/loans", nil, student).Code)
		assert.Equal(t, http.StatusForbidden, f.do(t, http.MethodGet, "/api/borrowers/student-2/history", nil, student).Code)
	})

	t.Run("login then issue", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, "/api/auth/login", map[string]string{"username": "desk", "password": "desk-password"}, nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		token := decode[map[string]any](t, rec)["token"].(string)
		admin := http.Header{"Authorization": []string{"Bearer " + token}}

		assert.Equal(t, http.StatusCreated, f.do(t, http.MethodPost, "/api/issues", issueBody, admin).Code)
	})

	t.Run("wrong password", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, "/api/auth/login", map[string]string{"username": "desk", "password": "guess"}, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func Test_API_RecordsCorrelationAndActor(t *testing.T) {
	// arrange
	f := givenAPI(t, nil)
	correlationID := uuid.NewString()

	// act
	rec := f.do(t, http.MethodPost, "/api/issues", map[string]string{"copyId": "copy-3", "borrowerId": "student-1"},
		http.Header{"X-Correlation-ID": []string{correlationID}})

	// assert
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, correlationID, rec.Header().Get("X-Correlation-ID"))

	status := decode[map[string]any](t, f.do(t, http.MethodGet, "/api/copies/copy-3", nil, nil))
	assert.Equal(t, "Issued", status["status"])

	history := status["history"].([]any)
	last := history[len(history)-1].(map[string]any)
	assert.Equal(t, correlationID, last["correlationId"])
	assert.Equal(t, "admin:anonymous", last["actor"])
}

func Test_API_Reports(t *testing.T) {
	// arrange
	f := givenAPI(t, nil)
	for i, copyID := range []string{"copy-1", "copy-2", "copy-3"} {
		rec := f.do(t, http.MethodPost, "/api/issues", map[string]string{
			"copyId": copyID, "borrowerId": fmt.Sprintf("student-%d", i), "issueDate": "2025-01-01",
		}, nil)
		require.Equal(t, http.StatusCreated, rec.Code)
	}
	require.Equal(t, http.StatusOK, f.do(t, http.MethodPost, "/api/returns",
		map[string]string{"copyId": "copy-1", "returnDate": "2025-01-20"}, nil).Code)

	// act
	overdue := decode[map[string]any](t, f.do(t, http.MethodGet, "/api/overdue?asOf=2025-01-18", nil, nil))
	fines := decode[map[string]any](t, f.do(t, http.MethodGet, "/api/reports/fines?from=2025-01-01&until=2025-01-31", nil, nil))
	popular := decode[[]map[string]any](t, f.do(t, http.MethodGet, "/api/reports/popular?limit=1", nil, nil))
	loans := decode[[]map[string]any](t, f.do(t, http.MethodGet, "/api/loans", nil, nil))

	// assert
	assert.EqualValues(t, 2, overdue["count"])
	assert.EqualValues(t, 30, overdue["totalProjectedFines"])
	assert.EqualValues(t, 25, fines["totalFines"])
	require.Len(t, popular, 1)
	assert.Equal(t, "book-1", popular[0]["bookId"])
	assert.Equal(t, "Godan", popular[0]["title"])
	assert.Len(t, loans, 2)
}

func Test_API_RateLimit(t *testing.T) {
	f := givenAPI(t, func(cfg *config.Config) {
		cfg.HTTP.RateLimitRPS = 0.001
		cfg.HTTP.RateLimitBurst = 1
	})

	first := f.do(t, http.MethodGet, "/api/availability", nil, nil)
	second := f.do(t, http.MethodGet, "/api/availability", nil, nil)

	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.NotEmpty(t, second.Header().Get("Retry-After"))
}

func Test_StatusOf(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{core.ErrCopyNotFound, http.StatusNotFound},
		{core.ErrAlreadyReturned, http.StatusConflict},
		{core.ErrBorrowingLimitExceeded, http.StatusUnprocessableEntity},
		{errors.Join(core.ErrBusy, errors.New("deadlock")), http.StatusServiceUnavailable},
		{errors.Join(service.ErrInvalidRequest, errors.New("copy id")), http.StatusBadRequest},
		{errors.New("disk on fire"), http.StatusInternalServerError},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.status, api.StatusOf(tc.err), tc.err.Error())
	}
}
