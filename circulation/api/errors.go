package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Shibashis-Mandal/Library-Management-System/circulation/catalog"
	"github.com/Shibashis-Mandal/Library-Management-System/circulation/core"
	"github.com/Shibashis-Mandal/Library-Management-System/circulation/features/command/markcopy"
	"github.com/Shibashis-Mandal/Library-Management-System/circulation/service"
)

// retryAfterSeconds is what Busy answers advertise, the conflicting write is long done by then.
const retryAfterSeconds = "1"

var errBadDate = errors.New("dates must be YYYY-MM-DD or RFC 3339")

// StatusOf maps an error to its HTTP status.
func StatusOf(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidRequest),
		errors.Is(err, catalog.ErrInvalidRecord),
		errors.Is(err, markcopy.ErrUnknownMark),
		errors.Is(err, errBadDate):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrBusy):
		return http.StatusServiceUnavailable
	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, core.ErrPolicyViolation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, service.ErrNoCatalog),
		errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) respondError(c *gin.Context, err error) {
	status := StatusOf(err)

	if status == http.StatusServiceUnavailable {
		c.Header("Retry-After", retryAfterSeconds)
	}

	if status == http.StatusInternalServerError {
		s.logger.ErrorContext(c.Request.Context(), "request failed", "error", err.Error(), "path", c.FullPath())
		abortWithError(c, status, "internal error", "")
		return
	}

	message := err.Error()
	if errors.Is(err, core.ErrBusy) {
		message = core.ErrBusy.Error()
	}

	abortWithError(c, status, message, string(core.CodeOf(err)))
}

func abortWithError(c *gin.Context, status int, message string, code string) {
	c.AbortWithStatusJSON(status, errorResponse{Error: message, Code: code})
}
