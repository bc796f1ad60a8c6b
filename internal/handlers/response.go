package handlers

import (
	"math"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/aislemap-backend/internal/pkg/errors"
	"github.com/yungbote/aislemap-backend/internal/platform/apierr"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`

	// RetryAfterSeconds is set on 429 responses.
	RetryAfterSeconds int `json:"retry_after_seconds,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

// RespondServiceError maps the service sentinel errors onto HTTP statuses.
// Conflict and storage failures both read as "try again later"; the client
// cannot distinguish them usefully.
func RespondServiceError(c *gin.Context, err error) {
	var ae *apierr.Error
	if errors.As(err, &ae) {
		RespondError(c, ae.Status, ae.Code, err)
		return
	}
	var rl *errors.RateLimitedError
	switch {
	case errors.As(err, &rl):
		secs := int(math.Ceil(rl.RetryAfter.Seconds()))
		c.JSON(http.StatusTooManyRequests, ErrorEnvelope{
			Error: APIError{
				Message:           err.Error(),
				Code:              "rate_limited",
				RetryAfterSeconds: secs,
			},
		})
	case errors.Is(err, errors.ErrValidation):
		RespondError(c, http.StatusBadRequest, "invalid_input", err)
	case errors.Is(err, errors.ErrNotFound):
		RespondError(c, http.StatusNotFound, "not_found", err)
	case errors.Is(err, errors.ErrRateLimited):
		RespondError(c, http.StatusTooManyRequests, "rate_limited", err)
	case errors.Is(err, errors.ErrUnauthorized):
		RespondError(c, http.StatusUnauthorized, "unauthorized", err)
	case errors.Is(err, errors.ErrConflict), errors.Is(err, errors.ErrStorage):
		RespondError(c, http.StatusServiceUnavailable, "retry_later", err)
	default:
		RespondError(c, http.StatusInternalServerError, "internal", err)
	}
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

func RespondCreated(c *gin.Context, payload any) {
	c.JSON(http.StatusCreated, payload)
}
