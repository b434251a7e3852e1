package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/Shibashis-Mandal/Library-Management-System/circulation/catalog"
	"github.com/Shibashis-Mandal/Library-Management-System/circulation/config"
	"github.com/Shibashis-Mandal/Library-Management-System/circulation/service"
	"github.com/Shibashis-Mandal/Library-Management-System/circulation/shell"
)

const shutdownTimeout = 10 * time.Second

// Deps is what the Server is built from. Catalog and Metrics are optional.
type Deps struct {
	Service *service.Service
	Catalog catalog.Catalog
	Config  config.Config
	Logger  *slog.Logger
	Metrics shell.MetricsCollector
}

// Server serves the circulation API.
type Server struct {
	service *service.Service
	catalog catalog.Catalog
	config  config.Config
	logger  *slog.Logger
	metrics shell.MetricsCollector
	issuer  *TokenIssuer
	limiter *IPRateLimiter
}

// NewServer validates deps and prepares the token issuer and rate limiter.
func NewServer(deps Deps) (*Server, error) {
	if deps.Service == nil {
		return nil, errors.New("api: service must not be nil")
	}

	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}

	defaults := config.Default()
	if deps.Config.Retry.MaxAttempts <= 0 {
		deps.Config.Retry = defaults.Retry
	}
	if deps.Config.Auth.TokenTTL <= 0 {
		deps.Config.Auth.TokenTTL = defaults.Auth.TokenTTL
	}

	s := &Server{
		service: deps.Service,
		catalog: deps.Catalog,
		config:  deps.Config,
		logger:  deps.Logger,
		metrics: deps.Metrics,
	}

	if !deps.Config.Auth.Disabled {
		if deps.Config.Auth.JWTSecret == "" {
			return nil, errors.New("api: jwt secret is required when auth is enabled")
		}
		s.issuer = NewTokenIssuer(deps.Config.Auth.JWTSecret, deps.Config.Auth.TokenTTL)
	}

	if deps.Config.HTTP.RateLimitRPS > 0 {
		s.limiter = NewIPRateLimiter(rate.Limit(deps.Config.HTTP.RateLimitRPS), max(deps.Config.HTTP.RateLimitBurst, 1))
	}

	return s, nil
}

// Router builds the gin engine with every route.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	if origins := s.config.HTTP.CORSOrigins; len(origins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     origins,
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowHeaders:     []string{"Content-Type", "Authorization", headerCorrelationID},
			ExposeHeaders:    []string{headerCorrelationID, "Retry-After"},
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}))
	}

	r.GET("/health", s.handleHealth)

	api := r.Group("/api")
	if s.limiter != nil {
		api.Use(rateLimit(s.limiter))
	}

	api.POST("/auth/login", s.handleLogin)

	browse := api.Group("", s.authenticate(), requestContext())
	{
		browse.GET("/availability", s.handleAvailabilityIndex)
		browse.GET("/books", s.handleListBooks)
		browse.GET("/books/:bookId", s.handleGetBook)
		browse.GET("/books/:bookId/availability", s.handleGetAvailability)
		browse.GET("/borrowers/:borrowerId/loans", requireSelfOrAdmin("borrowerId"), s.handleBorrowerLoans)
		browse.GET("/borrowers/:borrowerId/history", requireSelfOrAdmin("borrowerId"), s.handleBorrowerHistory)
	}

	desk := api.Group("", s.authenticate(), requestContext(), requireAdmin())
	{
		desk.POST("/issues", s.handleIssue)
		desk.POST("/returns", s.handleReturn)
		desk.POST("/copies", s.handleAddCopy)
		desk.GET("/copies/:copyId", s.handleCopyStatus)
		desk.POST("/copies/:copyId/marks", s.handleMarkCopy)
		desk.GET("/loans", s.handleAllLoans)
		desk.GET("/overdue", s.handleOverdue)
		desk.GET("/reports/fines", s.handleFinesReport)
		desk.GET("/reports/popular", s.handlePopularBooks)
		desk.POST("/catalog/sync", s.handleCatalogSync)
	}

	return r
}

// ListenAndServe serves until ctx is canceled, then drains in-flight requests.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.config.HTTP.Addr,
		Handler:           s.Router(),
		ReadTimeout:       s.config.HTTP.ReadTimeout,
		ReadHeaderTimeout: s.config.HTTP.ReadTimeout,
		WriteTimeout:      s.config.HTTP.WriteTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", srv.Addr, "auth", s.issuer != nil)
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)

	case <-ctx.Done():
		s.logger.Info("http server shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http server shutdown: %w", err)
		}

		return nil
	}
}

// withRetry retries Busy outcomes with exponential backoff.
func (s *Server) withRetry(ctx context.Context, commandType string, fn shell.RetryableFunc) error {
	opts := []shell.RetryOption{
		shell.WithMaxAttempts(s.config.Retry.MaxAttempts),
		shell.WithBaseDelay(s.config.Retry.BaseDelay),
	}

	if s.metrics != nil {
		opts = append(opts, shell.WithMetrics(s.metrics, commandType))
	}

	meta, err := shell.RetryWithExponentialBackoff(ctx, fn, opts...)
	if meta.Attempts > 1 {
		s.logger.InfoContext(ctx, "command retried",
			"command_type", commandType,
			"attempts", meta.Attempts,
			"total_delay_ms", shell.ToMilliseconds(meta.TotalDelay),
			"exhausted", meta.RetriesExhausted,
		)
	}

	return err
}
