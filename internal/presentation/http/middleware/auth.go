package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/studio-ledger/internal/presentation/http/dto/response"
	"github.com/sangkips/studio-ledger/pkg/utils"
)

// Context keys set from the access token claims
const (
	ctxUserID      = "user_id"
	ctxUsername    = "username"
	ctxRole        = "user_role"
	ctxPermissions = "user_permissions"
)

// AuthMiddleware admits requests carrying a valid bearer access token and
// stores the staff member's claims on the context
func AuthMiddleware(jwtManager *utils.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			response.Abort(c, http.StatusUnauthorized, "A bearer access token is required")
			return
		}

		claims, err := jwtManager.ValidateAccessToken(token)
		if err != nil {
			response.Abort(c, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		c.Set(ctxUserID, claims.UserID)
		c.Set(ctxUsername, claims.Username)
		c.Set(ctxRole, claims.Role)
		c.Set(ctxPermissions, claims.Permissions)

		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// RequirePermission rejects staff whose token lacks permission
func RequirePermission(permission string) gin.HandlerFunc {
	return func(c *gin.Context) {
		granted, _ := c.Get(ctxPermissions)
		perms, _ := granted.([]string)
		for _, p := range perms {
			if p == permission {
				c.Next()
				return
			}
		}
		response.Abort(c, http.StatusForbidden, "You do not have permission to perform this action")
	}
}

// RequireRole rejects staff whose role is not one of roles
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(ctxRole)
		for _, r := range roles {
			if role == r {
				c.Next()
				return
			}
		}
		response.Abort(c, http.StatusForbidden, "Insufficient role privileges")
	}
}
