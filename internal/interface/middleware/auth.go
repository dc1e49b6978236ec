package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-attendance-auth/internal/domain/entity"
	"github.com/oksasatya/go-attendance-auth/pkg/helpers"
	"github.com/oksasatya/go-attendance-auth/pkg/response"
)

// Context keys set by BearerAuth.
const (
	CtxUserIDKey = "userID"
	CtxEmailKey  = "userEmail"
	CtxRoleKey   = "userRole"
)

// TokenParser verifies a bearer token.
type TokenParser interface {
	Parse(token string) (*helpers.Claims, error)
}

// BearerAuth validates the Authorization: Bearer token and stores its claims
// in the Gin context. Missing and invalid tokens both answer 401.
func BearerAuth(tokens TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			response.Error[any](c, http.StatusUnauthorized, "no token provided", response.ErrorBody{Code: "missing_token"})
			return
		}
		claims, err := tokens.Parse(token)
		if err != nil {
			response.Error[any](c, http.StatusUnauthorized, "invalid or expired token", response.ErrorBody{Code: "invalid_token"})
			return
		}
		role := claims.Role
		if role == "" {
			role = string(entity.RoleUser)
		}
		c.Set(CtxUserIDKey, claims.UserID)
		c.Set(CtxEmailKey, claims.Email)
		c.Set(CtxRoleKey, role)
		c.Next()
	}
}

func bearerToken(header string) string {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}

// RequireRole rejects authenticated callers whose token carries a different role.
func RequireRole(role entity.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(CtxRoleKey) != string(role) {
			response.Error[any](c, http.StatusForbidden, "insufficient permissions", response.ErrorBody{Code: "forbidden"})
			return
		}
		c.Next()
	}
}

// AdminOnly is RequireRole(entity.RoleAdmin).
func AdminOnly() gin.HandlerFunc {
	return RequireRole(entity.RoleAdmin)
}

// UserOnly is RequireRole(entity.RoleUser). Admin tokens carry an admin id,
// which must never reach handlers that look up users.
func UserOnly() gin.HandlerFunc {
	return RequireRole(entity.RoleUser)
}

// UserID returns the authenticated subject id.
func UserID(c *gin.Context) (int64, bool) {
	v, ok := c.Get(CtxUserIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok && id > 0
}
