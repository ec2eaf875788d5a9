package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	appErr "github.com/Fraol-M/metta-assistant/internal/pkg/errors"
	"github.com/Fraol-M/metta-assistant/internal/pkg/jwt"
	"github.com/Fraol-M/metta-assistant/internal/pkg/response"
)

// handleError is the single place service errors become HTTP responses.
func handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, appErr.ErrNotFound):
		response.Error(c, http.StatusNotFound, "not_found", "resource not found")
	case errors.Is(err, appErr.ErrInvalid):
		response.Error(c, http.StatusUnprocessableEntity, "invalid", "invalid request")
	case errors.Is(err, appErr.ErrConflict):
		response.Error(c, http.StatusBadRequest, "conflict", "resource already exists")
	case errors.Is(err, appErr.ErrForbidden):
		response.Error(c, http.StatusForbidden, "forbidden", "insufficient role")
	case errors.Is(err, appErr.ErrUnauthorized):
		response.Error(c, http.StatusUnauthorized, "unauthorized", "invalid credentials")
	case errors.Is(err, jwt.ErrTokenExpired):
		response.Error(c, http.StatusUnauthorized, "expired_token", "token expired")
	case errors.Is(err, jwt.ErrWrongTokenType):
		response.Error(c, http.StatusUnauthorized, "wrong_token_type", "wrong token type")
	case errors.Is(err, jwt.ErrTokenInvalid):
		response.Error(c, http.StatusUnauthorized, "invalid_token", "invalid token")
	default:
		logutil.GetLogger(c.Request.Context()).Error("request failed",
			zap.String("path", c.Request.URL.Path), zap.Error(err))
		response.Error(c, http.StatusInternalServerError, "internal", "internal error")
	}
}
