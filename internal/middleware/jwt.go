package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Fraol-M/metta-assistant/internal/pkg/jwt"
	"github.com/Fraol-M/metta-assistant/internal/pkg/response"
)

const (
	ContextUserIDKey = "user_id"
	ContextRoleKey   = "role"
)

// JWTAuth gates every protected route. The 401 reasons stay distinguishable:
// missing token, malformed/bad-signature token, expired token, and a refresh
// token presented as a bearer credential each get their own code.
func JWTAuth(signer *jwt.Signer) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Error(c, http.StatusUnauthorized, "no_token", "no token provided")
			c.Abort()
			return
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			response.Error(c, http.StatusUnauthorized, "invalid_token", "invalid authorization header")
			c.Abort()
			return
		}
		claims, err := signer.ParseAccess(parts[1])
		if err != nil {
			switch {
			case errors.Is(err, jwt.ErrTokenExpired):
				response.Error(c, http.StatusUnauthorized, "expired_token", "token expired")
			case errors.Is(err, jwt.ErrWrongTokenType):
				response.Error(c, http.StatusUnauthorized, "wrong_token_type", "refresh token cannot be used as bearer credential")
			default:
				response.Error(c, http.StatusUnauthorized, "invalid_token", "invalid token")
			}
			c.Abort()
			return
		}
		c.Set(ContextUserIDKey, claims.UserID)
		c.Set(ContextRoleKey, claims.Role)
		c.Next()
	}
}

// RequireRole runs after JWTAuth; an unauthenticated request never reaches
// it, so a mismatch is always a 403, never a 401.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		value, _ := c.Get(ContextRoleKey)
		current, _ := value.(string)
		if current != role {
			response.Error(c, http.StatusForbidden, "forbidden", "insufficient role")
			c.Abort()
			return
		}
		c.Next()
	}
}
