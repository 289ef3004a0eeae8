package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/slot-booking/internal/auth"
	"github.com/BruksfildServices01/slot-booking/internal/httperr"
	"github.com/BruksfildServices01/slot-booking/internal/models"
)

const (
	ContextUserID   = "userID"
	ContextUserRole = "userRole"
	ContextUser     = "user"
)

// UserFinder resolves the token subject to a stored user.
type UserFinder interface {
	FindUserByID(ctx context.Context, id uint) (*models.User, error)
}

// AuthMiddleware requires a valid bearer token for an existing user.
// The stored role, not the token claim, is used for authorization.
func AuthMiddleware(tokens *auth.TokenService, users UserFinder) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			httperr.Abort(c, httperr.KindUnauthorized, "missing_authorization_header", "Authentication required.")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
			httperr.Abort(c, httperr.KindUnauthorized, "invalid_authorization_header", "Authentication required.")
			return
		}

		claims, err := tokens.Parse(parts[1])
		if err != nil {
			httperr.Abort(c, httperr.KindUnauthorized, "invalid_token", "Invalid or expired token.")
			return
		}

		userID, err := claims.UserID()
		if err != nil {
			httperr.Abort(c, httperr.KindUnauthorized, "invalid_token_payload", "Invalid or expired token.")
			return
		}

		user, err := users.FindUserByID(c.Request.Context(), userID)
		if err != nil {
			httperr.Abort(c, httperr.KindUnauthorized, "user_not_found", "Invalid or expired token.")
			return
		}

		c.Set(ContextUserID, user.ID)
		c.Set(ContextUserRole, user.Role)
		c.Set(ContextUser, user)

		c.Next()
	}
}

// RequireRole aborts with 403 unless the authenticated role is one of roles.
func RequireRole(roles ...string) gin.HandlerFunc {
	allowed := map[string]struct{}{}
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *gin.Context) {
		role := c.GetString(ContextUserRole)
		if _, ok := allowed[role]; !ok {
			httperr.Abort(c, httperr.KindForbidden, "forbidden", "Insufficient permissions.")
			return
		}
		c.Next()
	}
}

// CurrentUser returns the user set by AuthMiddleware.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	v, ok := c.Get(ContextUser)
	if !ok {
		return nil, false
	}
	u, ok := v.(*models.User)
	return u, ok
}
