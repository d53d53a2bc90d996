package api

import (
	"net/http"

	"github.com/cccbbbaaaa/culture-china/pkg/errors"

	"github.com/gin-gonic/gin"
)

// statusFor maps service errors onto HTTP statuses. Anything unknown is a 500.
func statusFor(err error) int {
	var verr errors.ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest
	case errors.Is(err, errors.ErrUnauthenticated), errors.Is(err, errors.ErrBadCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, errors.ErrPermissionDenied):
		return http.StatusForbidden
	case errors.Is(err, errors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, errors.ErrDuplicateLink), errors.Is(err, errors.ErrInvalidBatchState):
		return http.StatusConflict
	case errors.Is(err, errors.ErrFileRequired),
		errors.Is(err, errors.ErrFileTooLarge),
		errors.Is(err, errors.ErrInvalidFileFormat),
		errors.Is(err, errors.ErrImageTooLarge),
		errors.Is(err, errors.ErrInvalidSlot):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) fail(c *gin.Context, err error) {
	status := statusFor(err)
	message := err.Error()
	var verr errors.ValidationError
	if errors.As(err, &verr) {
		message = verr.Message
	}

	_ = c.Error(err)
	if status == http.StatusInternalServerError {
		h.log.Error().Err(err).Str("request_id", c.GetString(requestIDKey)).Str("path", c.FullPath()).Msg("Request failed")
		message = "Internal server error"
	}

	body := gin.H{"error": message}
	if verr.Field != "" {
		body["field"] = verr.Field
	}
	c.AbortWithStatusJSON(status, body)
}
