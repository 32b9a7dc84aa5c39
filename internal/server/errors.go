package server

import (
	"errors"
	"net/http"

	"github.com/MarcoPoloResearchLab/legalpro/backend/internal/legal"
	"github.com/MarcoPoloResearchLab/legalpro/backend/internal/users"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type codedError interface {
	Code() string
}

// respondError maps service errors onto status codes and the {"error": code} body.
func (h *httpHandler) respondError(c *gin.Context, err error) {
	status, code := classifyError(err)
	if status >= http.StatusInternalServerError {
		fields := []zap.Field{zap.String("path", c.FullPath()), zap.Error(err)}
		var coded codedError
		if errors.As(err, &coded) {
			fields = append(fields, zap.String("code", coded.Code()))
		}
		h.logger.Error("request failed", fields...)
	}
	c.JSON(status, gin.H{"error": code})
}

func classifyError(err error) (int, string) {
	switch {
	case errors.Is(err, legal.ErrNotFound), errors.Is(err, users.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, legal.ErrStaleVersion):
		return http.StatusConflict, "stale_version"
	case errors.Is(err, legal.ErrInvalidInput),
		errors.Is(err, users.ErrMissingRequiredField),
		errors.Is(err, users.ErrInvalidRole):
		return http.StatusBadRequest, "invalid_input"
	case errors.Is(err, legal.ErrClientNotFound):
		return http.StatusBadRequest, "client_not_found"
	case errors.Is(err, legal.ErrEmailSendFailed):
		return http.StatusBadGateway, "email_send_failed"
	case errors.Is(err, users.ErrDuplicateEmail):
		return http.StatusConflict, "duplicate_email"
	case errors.Is(err, users.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid_credentials"
	case errors.Is(err, users.ErrInvalidOrExpiredToken):
		return http.StatusBadRequest, "invalid_or_expired_token"
	default:
		return http.StatusInternalServerError, "server_error"
	}
}

func (h *httpHandler) respondInvalidRequest(c *gin.Context) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_input"})
}
