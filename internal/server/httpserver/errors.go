package httpserver

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/gophbox/internal/common"
	"github.com/gin-gonic/gin"
)

type errorResponse struct {
	Error string `json:"error"`
}

// statusFor maps service errors to HTTP statuses.
func statusFor(err error) int {
	var tooBig *http.MaxBytesError
	switch {
	case errors.As(err, &tooBig), errors.Is(err, common.ErrUploadTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound
	case errors.Is(err, common.ErrStorageLimitExceeded):
		return http.StatusInsufficientStorage
	case errors.Is(err, common.ErrEmptyUpload), errors.Is(err, common.ErrorValidation):
		return http.StatusBadRequest
	case errors.Is(err, common.ErrorAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, common.ErrorUnauthorized),
		errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrTokenExpired):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes the mapped status. Server errors are logged and
// rendered without details.
func (s *HTTPServer) respondError(c *gin.Context, err error) {
	status := statusFor(err)
	msg := err.Error()
	switch status {
	case http.StatusInternalServerError:
		s.logger.Error(c.Request.Context(), "request error", "error", err, "route", c.FullPath())
		msg = "internal error"
	case http.StatusRequestEntityTooLarge:
		msg = common.ErrUploadTooLarge.Error()
	case http.StatusNotFound:
		msg = "not found"
	}
	abortWithError(c, status, msg)
}

func abortWithError(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, errorResponse{Error: msg})
}
