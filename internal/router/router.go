package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/iliyamo/auth-service/internal/handler"    // HTTP handlers
	"github.com/iliyamo/auth-service/internal/middleware" // access-token auth
)

// RegisterRoutes registers routes that do not touch credentials.
func RegisterRoutes(e *echo.Echo, store handler.Pinger) {
	e.GET("/healthz", handler.Health(store))
}

// RegisterAuth registers the auth endpoints.  limit guards the routes that
// accept a password; access verifies bearer tokens for /me.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, limit echo.MiddlewareFunc, access middleware.AccessVerifier) {
	e.POST("/signup", a.Signup, limit)
	e.POST("/login", a.Login, limit)

	// GET rotates the pair from the refresh cookie, DELETE clears it.
	e.GET("/refresh_token", a.Refresh)
	e.DELETE("/refresh_token", a.Logout)

	e.GET("/me", a.Me, middleware.AccessAuth(access))
}
