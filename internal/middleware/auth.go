package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"hospital-admin-server/internal/auth"
	"hospital-admin-server/internal/config"
	"hospital-admin-server/internal/models"
	"hospital-admin-server/internal/utils"
)

// Guard is the slice of the auth service the route guard depends on.
type Guard interface {
	Authorize(ctx context.Context, principalID string, allowed ...models.Role) (*auth.Account, error)
	HasActiveSession(ctx context.Context, principalID string) (bool, error)
}

const (
	ctxPrincipalID = "principalID"
	ctxAccount     = "account"
)

// AuthMiddleware validates the bearer token and checks that the
// principal still holds a live session. A token for a signed-out
// principal is rejected even if the JWT itself has not expired.
func AuthMiddleware(cfg *config.Config, guard Guard) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.Unauthorized(c, "Authorization header required")
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			utils.Unauthorized(c, "Invalid authorization header format")
			c.Abort()
			return
		}

		claims, err := utils.ValidateToken(parts[1], cfg.JWTSecret)
		if err != nil {
			utils.Unauthorized(c, "Invalid token: "+err.Error())
			c.Abort()
			return
		}

		active, err := guard.HasActiveSession(c.Request.Context(), claims.PrincipalID)
		if err != nil {
			utils.InternalServerError(c, "Failed to check session: "+err.Error())
			c.Abort()
			return
		}
		if !active {
			utils.Unauthorized(c, "Session has been signed out")
			c.Abort()
			return
		}

		c.Set(ctxPrincipalID, claims.PrincipalID)
		c.Next()
	}
}

// RequireRoles re-runs session resolution and enforces a per-route role
// allow-list. It must be used after AuthMiddleware. A resolved role
// outside the allow-list has already been signed out by the auth
// service; the response names the user's role.
func RequireRoles(guard Guard, allowed ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		principalID, ok := GetPrincipalID(c)
		if !ok {
			utils.Unauthorized(c, "User not authenticated")
			c.Abort()
			return
		}

		account, err := guard.Authorize(c.Request.Context(), principalID, allowed...)
		if err != nil {
			switch auth.CodeOf(err) {
			case auth.CodeAccessDenied:
				utils.Forbidden(c, auth.MessageOf(err))
			case auth.CodeProfileNotFound, auth.CodeDoctorProfileError:
				utils.Unauthorized(c, auth.MessageOf(err))
			default:
				utils.InternalServerError(c, auth.MessageOf(err))
			}
			c.Abort()
			return
		}

		c.Set(ctxAccount, account)
		c.Next()
	}
}

// GetPrincipalID returns the authenticated principal id from the context.
func GetPrincipalID(c *gin.Context) (string, bool) {
	v, exists := c.Get(ctxPrincipalID)
	if !exists {
		return "", false
	}
	id, ok := v.(string)
	return id, ok
}

// GetAccount returns the resolved account set by RequireRoles.
func GetAccount(c *gin.Context) (*auth.Account, bool) {
	v, exists := c.Get(ctxAccount)
	if !exists {
		return nil, false
	}
	account, ok := v.(*auth.Account)
	return account, ok
}
