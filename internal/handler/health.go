package handler

import (
    "context"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
    PingContext(ctx context.Context) error
}

// Health reports "ok" while the credential store answers a ping.  A nil
// store is treated as healthy so the endpoint also works in tests.
func Health(store Pinger) echo.HandlerFunc {
    return func(c echo.Context) error {
        if store != nil {
            ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
            defer cancel()
            if err := store.PingContext(ctx); err != nil {
                return c.String(http.StatusServiceUnavailable, "store unavailable")
            }
        }
        return c.String(http.StatusOK, "ok")
    }
}
