package middleware // middleware contains reusable HTTP middleware functions

import (
	"net/http" // HTTP status codes for responses
	"strings"  // string utilities for prefix checking and trimming

	"github.com/labstack/echo/v4" // Echo framework used for defining middleware and handlers

	"github.com/MP-make/pechos-inmobiliaria/internal/utils"
)

// SessionCookieName is the cookie carrying the admin session token. The
// browser back-office authenticates with this httpOnly cookie; API clients
// may send the same token as a Bearer header instead.
const SessionCookieName = "admin_token"

// AdminAuth returns an Echo middleware that validates the admin session
// token and injects the admin's id and email into the request context
// under "user_id" and "email". The token is read from the admin_token
// cookie first and the Authorization header second. The provided secret
// must match the one used when issuing tokens.
func AdminAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := ""
			if cookie, err := c.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
				raw = cookie.Value
			} else if auth := c.Request().Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
				raw = strings.TrimPrefix(auth, "Bearer ")
			}
			if raw == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
			}

			claims, err := utils.ParseSessionToken(secret, raw)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}

			// Handlers access the authenticated admin via c.Get().
			c.Set("user_id", claims.UserID)
			c.Set("email", claims.Email)
			return next(c)
		}
	}
}
