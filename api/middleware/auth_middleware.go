// api/middleware/auth_middleware.go
package middleware

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Annany2002/flashdeck-backend/config"
	"github.com/Annany2002/flashdeck-backend/internal/auth"
	"github.com/Annany2002/flashdeck-backend/internal/catalog"
)

// ContextUsernameKey is where AuthMiddleware stores the authenticated username.
const ContextUsernameKey = "username"

// TokenCookie carries the JWT for browser form logins.
const TokenCookie = "flashdeck_token"

// AuthMiddleware creates a gin middleware for checking JWT authentication.
// The token comes from a Bearer Authorization header, or from the login
// cookie when no header is sent. When the route has a :username segment
// it must name the token's user.
func AuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return authenticate(cfg, true)
}

// BearerAuthMiddleware is AuthMiddleware without the cookie fallback, for
// GET routes that change state and so must not ride on a browser cookie.
func BearerAuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return authenticate(cfg, false)
}

func authenticate(cfg *config.Config, allowCookie bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := bearerToken(c, allowCookie)
		if err != nil {
			_ = c.Error(err)
			c.Abort()
			return
		}

		username, err := auth.ValidateJWT(tokenString, cfg.JWTSecret)
		if err != nil {
			customLog.Printf("AuthMiddleware: Token validation failed: %v", err)
			_ = c.Error(err)
			c.Abort()
			return
		}

		if pathUser := c.Param("username"); pathUser != "" && pathUser != username {
			customLog.Warnf("AuthMiddleware: %s tried to act as %s", username, pathUser)
			_ = c.Error(catalog.ErrForbidden)
			c.Abort()
			return
		}

		customLog.Debugf("AuthMiddleware: Token validated successfully for %s", username)
		c.Set(ContextUsernameKey, username)
		c.Next()
	}
}

func bearerToken(c *gin.Context, allowCookie bool) (string, error) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		if allowCookie {
			if cookie, err := c.Cookie(TokenCookie); err == nil && cookie != "" {
				return cookie, nil
			}
		}
		return "", fmt.Errorf("%w: authorization header required", auth.ErrUnauthorized)
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", fmt.Errorf("%w: authorization header format must be Bearer {token}", auth.ErrUnauthorized)
	}
	return strings.TrimSpace(parts[1]), nil
}

// CurrentUser returns the username set by AuthMiddleware.
func CurrentUser(c *gin.Context) string {
	return c.GetString(ContextUsernameKey)
}
