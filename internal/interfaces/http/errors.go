package http

import (
	"errors"
	"net/http"

	"chatbot_platform/internal/repository"
	"chatbot_platform/internal/usecases"

	"github.com/gin-gonic/gin"
)

// respondError maps domain errors to a status and a {"error": msg} body.
func respondError(c *gin.Context, err error) {
	status, msg := http.StatusInternalServerError, "internal server error"

	switch {
	case errors.Is(err, repository.ErrConflict):
		status, msg = http.StatusBadRequest, repository.ErrConflict.Error()
	case errors.Is(err, repository.ErrEmptyUpdate),
		errors.Is(err, repository.ErrUnsupported),
		errors.Is(err, usecases.ErrInvalidInput),
		errors.Is(err, usecases.ErrInactive):
		status, msg = http.StatusBadRequest, err.Error()
	case errors.Is(err, usecases.ErrReferenceNotFound),
		errors.Is(err, usecases.ErrAgentNotFound):
		status, msg = http.StatusNotFound, err.Error()
	case errors.Is(err, repository.ErrNotFound):
		status, msg = http.StatusNotFound, "not found"
	case errors.Is(err, usecases.ErrForbidden):
		status, msg = http.StatusForbidden, "not enough permissions"
	case errors.Is(err, usecases.ErrInvalidCredentials),
		errors.Is(err, usecases.ErrInvalidToken):
		c.Header("WWW-Authenticate", "Bearer")
		status, msg = http.StatusUnauthorized, err.Error()
	case errors.Is(err, usecases.ErrUnknownEvent):
		status, msg = http.StatusBadRequest, err.Error()
	default:
		_ = c.Error(err)
	}

	c.JSON(status, gin.H{"error": msg})
}

// bindError reports a malformed request body.
func bindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
}
