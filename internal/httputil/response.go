// Package httputil holds the JSON error envelope, domain error mapping and pagination shared by
// the HTTP handlers.
package httputil

import (
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "github.com/allisson/keyvault/internal/errors"
)

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    string `json:"code,omitempty"`
	// RateLimit is set on rate limit denials to the limit that was exceeded.
	RateLimit int `json:"rate_limit,omitempty"`
}

// errorMapping turns one sentinel into a status and body. When exposeDomain is set, the message of
// a wrapped domain error is returned instead of fallback; those messages never name secret data.
type errorMapping struct {
	sentinel     error
	status       int
	code         string
	fallback     string
	exposeDomain bool
	exposeAll    bool
}

// Checked in order; the first match wins. Anything unmatched, integrity faults included, is a 500.
var errorMappings = []errorMapping{
	{sentinel: apperrors.ErrTooManyRequests, status: http.StatusTooManyRequests, code: "rate_limit_exceeded", fallback: "Too many requests"},
	{sentinel: apperrors.ErrNotFound, status: http.StatusNotFound, code: "not_found", fallback: "The requested resource was not found", exposeDomain: true},
	{sentinel: apperrors.ErrConflict, status: http.StatusConflict, code: "conflict", fallback: "A conflict occurred with existing data"},
	{sentinel: apperrors.ErrInvalidInput, status: http.StatusUnprocessableEntity, code: "invalid_input", exposeAll: true},
	{sentinel: apperrors.ErrUnauthorized, status: http.StatusUnauthorized, code: "unauthorized", fallback: "Authentication is required"},
	{sentinel: apperrors.ErrForbidden, status: http.StatusForbidden, code: "forbidden", fallback: "You don't have permission to access this resource", exposeDomain: true},
}

var internalError = ErrorResponse{Error: "internal_error", Message: "An internal error occurred"}

// HandleErrorGin writes the reply for a domain error and logs the full chain. 5xx replies carry a
// generic body only.
func HandleErrorGin(c *gin.Context, err error, logger *slog.Logger) {
	if err == nil {
		return
	}

	status, body := http.StatusInternalServerError, internalError

	var rateLimitErr *apperrors.RateLimitError
	if apperrors.As(err, &rateLimitErr) {
		status = http.StatusTooManyRequests
		body = ErrorResponse{
			Error:     "rate_limit_exceeded",
			Message:   rateLimitErr.Error(),
			RateLimit: rateLimitErr.Limit,
		}
		if rateLimitErr.RetryAfter > 0 {
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(rateLimitErr.RetryAfter.Seconds()))))
		}
	} else {
		for _, m := range errorMappings {
			if apperrors.Is(err, m.sentinel) {
				status, body = m.status, ErrorResponse{Error: m.code, Message: m.message(err)}
				break
			}
		}
	}

	if logger != nil {
		level := slog.LevelWarn
		if status >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		logger.Log(c.Request.Context(), level, "request failed",
			slog.Int("status_code", status),
			slog.String("error_code", body.Error),
			slog.Any("error", err),
		)
	}

	c.JSON(status, body)
}

func (m errorMapping) message(err error) string {
	switch {
	case m.exposeAll:
		return err.Error()
	case m.exposeDomain:
		// apperrors.Wrap appends the sentinel: "key not found: not found" -> "key not found".
		if msg, ok := strings.CutSuffix(err.Error(), ": "+m.sentinel.Error()); ok {
			return msg
		}
	}
	return m.fallback
}

// HandleBadRequestGin replies 400 for bodies or parameters that could not be decoded.
func HandleBadRequestGin(c *gin.Context, err error, logger *slog.Logger) {
	if logger != nil {
		logger.Warn("bad request", slog.Any("error", err))
	}
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: "bad_request", Message: err.Error()})
}

// HandleValidationErrorGin replies 422 for decoded input that failed validation.
func HandleValidationErrorGin(c *gin.Context, err error, logger *slog.Logger) {
	if logger != nil {
		logger.Warn("validation failed", slog.Any("error", err))
	}
	c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: "validation_error", Message: err.Error()})
}
