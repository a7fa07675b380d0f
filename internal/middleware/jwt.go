package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
    "net/http" // HTTP status codes for responses
    "strings"  // string utilities for prefix checking and trimming

    "github.com/labstack/echo/v4" // Echo framework used for defining middleware and handlers

    "github.com/iliyamo/auth-service/internal/token" // access token verification
)

// claimsKey is the echo context key holding *token.Claims.
const claimsKey = "auth.claims"

// AccessVerifier verifies access tokens.
type AccessVerifier interface {
    Verify(raw string) (*token.Claims, error)
}

// AccessAuth returns an Echo middleware that validates a Bearer access token
// and stores its claims in the request context.  Handlers read them back with
// ClaimsFrom.
func AccessAuth(v AccessVerifier) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            auth := c.Request().Header.Get(echo.HeaderAuthorization)
            if !strings.HasPrefix(auth, "Bearer ") {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
            }
            raw := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))

            claims, err := v.Verify(raw)
            if err != nil {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
            }

            c.Set(claimsKey, claims)
            return next(c)
        }
    }
}

// ClaimsFrom returns the claims stored by AccessAuth.
func ClaimsFrom(c echo.Context) (*token.Claims, bool) {
    claims, ok := c.Get(claimsKey).(*token.Claims)
    return claims, ok && claims != nil
}
