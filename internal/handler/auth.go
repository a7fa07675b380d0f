package handler

import (
    "context"  // provides context with cancellation for store calls
    "errors"   // unwraps service errors
    "net/http" // HTTP status codes and cookies
    "time"     // timeouts for store calls and cookie expiry

    "github.com/labstack/echo/v4" // Echo framework for HTTP routing
    "github.com/rs/zerolog/log"   // structured logging for server errors

    "github.com/iliyamo/auth-service/internal/middleware" // claims stored by AccessAuth
    "github.com/iliyamo/auth-service/internal/service"    // auth core
    "github.com/iliyamo/auth-service/internal/token"      // token pair type
)

// RefreshCookieName is the HTTP-only cookie carrying the refresh token.
const RefreshCookieName = "refresh_token"

const requestTimeout = 5 * time.Second

// Authenticator is the part of the auth service the handlers call.
type Authenticator interface {
    Signup(ctx context.Context, in service.SignupInput) error
    Login(ctx context.Context, email, password string) (token.Pair, error)
    Refresh(ctx context.Context, refreshToken string) (token.Pair, error)
    Logout(ctx context.Context, refreshToken string) error
}

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
    Auth         Authenticator
    CookieSecure bool
}

func NewAuthHandler(a Authenticator, cookieSecure bool) *AuthHandler {
    return &AuthHandler{Auth: a, CookieSecure: cookieSecure}
}

// ----- DTOs -----

type signupReq struct {
    Name     string `json:"name"`
    Email    string `json:"email"`
    Password string `json:"password"`
}
type loginReq struct {
    Email    string `json:"email"`
    Password string `json:"password"`
}
type tokensResp struct {
    AccessToken  string `json:"accessToken"`
    RefreshToken string `json:"refreshToken"`
}

// Signup: validate and store the account; login is a separate step.
func (h *AuthHandler) Signup(c echo.Context) error {
    var req signupReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
    defer cancel()

    if err := h.Auth.Signup(ctx, service.SignupInput{Name: req.Name, Email: req.Email, Password: req.Password}); err != nil {
        return h.fail(c, err)
    }
    return c.JSON(http.StatusCreated, echo.Map{"message": "Sign up successful"})
}

// Login: verify credentials, set the refresh cookie and return the pair.
func (h *AuthHandler) Login(c echo.Context) error {
    var req loginReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
    defer cancel()

    pair, err := h.Auth.Login(ctx, req.Email, req.Password)
    if err != nil {
        return h.fail(c, err)
    }
    return h.respondPair(c, pair)
}

// Refresh: rotate the pair using the refresh cookie.
func (h *AuthHandler) Refresh(c echo.Context) error {
    raw := ""
    if ck, err := c.Cookie(RefreshCookieName); err == nil {
        raw = ck.Value
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
    defer cancel()

    pair, err := h.Auth.Refresh(ctx, raw)
    if err != nil {
        return h.fail(c, err)
    }
    return h.respondPair(c, pair)
}

// Logout: clear the refresh cookie.  Succeeds with or without a session.
func (h *AuthHandler) Logout(c echo.Context) error {
    raw := ""
    if ck, err := c.Cookie(RefreshCookieName); err == nil {
        raw = ck.Value
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
    defer cancel()

    if err := h.Auth.Logout(ctx, raw); err != nil {
        log.Warn().Err(err).Msg("logout")
    }
    c.SetCookie(h.refreshCookie("", time.Unix(0, 0), -1))
    return c.JSON(http.StatusOK, echo.Map{"message": "Refresh token deleted"})
}

// Me: identity of the bearer of a valid access token.
func (h *AuthHandler) Me(c echo.Context) error {
    claims, ok := middleware.ClaimsFrom(c)
    if !ok {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    return c.JSON(http.StatusOK, echo.Map{
        "user_id": claims.UserID,
        "name":    claims.Name,
        "email":   claims.Email,
    })
}

func (h *AuthHandler) respondPair(c echo.Context, pair token.Pair) error {
    c.SetCookie(h.refreshCookie(pair.RefreshToken, pair.RefreshExpires, 0))
    return c.JSON(http.StatusOK, tokensResp{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken})
}

func (h *AuthHandler) refreshCookie(value string, expires time.Time, maxAge int) *http.Cookie {
    return &http.Cookie{
        Name:     RefreshCookieName,
        Value:    value,
        Path:     "/",
        Expires:  expires,
        MaxAge:   maxAge,
        HttpOnly: true,
        Secure:   h.CookieSecure,
        SameSite: http.SameSiteLaxMode,
    }
}

// fail maps service errors to responses.  Server errors are logged and
// hidden from the client.
func (h *AuthHandler) fail(c echo.Context, err error) error {
    var se *service.Error
    if !errors.As(err, &se) {
        se = &service.Error{Kind: service.KindServer, Msg: "unexpected error", Err: err}
    }
    if se.Kind == service.KindServer {
        log.Error().Err(err).
            Str("method", c.Request().Method).
            Str("path", c.Path()).
            Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
            Msg("auth request failed")
    }
    return c.JSON(se.Kind.Status(), echo.Map{"error": se.PublicMessage()})
}
