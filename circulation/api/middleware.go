package api

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/Shibashis-Mandal/Library-Management-System/circulation/shell"
)

const headerCorrelationID = "X-Correlation-ID"

// IPRateLimiter hands out one token bucket per client IP.
type IPRateLimiter struct {
	limiters sync.Map
	rate     rate.Limit
	burst    int
}

// NewIPRateLimiter creates a limiter allowing r requests per second with the given burst per IP.
func NewIPRateLimiter(r rate.Limit, burst int) *IPRateLimiter {
	return &IPRateLimiter{
		rate:  r,
		burst: burst,
	}
}

// GetLimiter returns the limiter of ip, creating it on first use.
func (l *IPRateLimiter) GetLimiter(ip string) *rate.Limiter {
	limiter, _ := l.limiters.LoadOrStore(ip, rate.NewLimiter(l.rate, l.burst))

	return limiter.(*rate.Limiter)
}

// rateLimit answers 429 with Retry-After once a client IP runs out of tokens.
func rateLimit(limiter *IPRateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		reservation := limiter.GetLimiter(c.ClientIP()).Reserve()
		if !reservation.OK() {
			abortWithError(c, http.StatusTooManyRequests, "rate limit exceeded", "")
			return
		}

		if delay := reservation.Delay(); delay > 0 {
			reservation.Cancel()
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(delay.Seconds()))))
			abortWithError(c, http.StatusTooManyRequests, "rate limit exceeded", "")
			return
		}

		c.Next()
	}
}

// requestContext tags the request context with a correlation id and, after authentication,
// with the actor, so both end up in the metadata of every recorded event.
func requestContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		correlationID, err := uuid.Parse(c.GetHeader(headerCorrelationID))
		if err != nil {
			correlationID = uuid.New()
		}

		c.Header(headerCorrelationID, correlationID.String())
		ctx := shell.WithCorrelationID(c.Request.Context(), correlationID)

		if claims := claimsFrom(c); claims.Subject != "" {
			ctx = shell.WithActor(ctx, claims.Role+":"+claims.Subject)
		}

		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// requestLogger logs one line per request.
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		args := []any{
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", status,
			"duration_ms", shell.ToMilliseconds(time.Since(start)),
			"ip", c.ClientIP(),
			"correlation_id", c.Writer.Header().Get(headerCorrelationID),
		}

		switch {
		case status >= http.StatusInternalServerError:
			s.logger.ErrorContext(c.Request.Context(), "request failed", args...)
		case status >= http.StatusBadRequest:
			s.logger.WarnContext(c.Request.Context(), "request rejected", args...)
		default:
			s.logger.InfoContext(c.Request.Context(), "request handled", args...)
		}
	}
}
