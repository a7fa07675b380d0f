package middleware

import (
    "time"

    "github.com/labstack/echo/v4"
    "github.com/rs/zerolog"
)

// RequestLogger writes one structured line per request.  Bodies, cookies and
// Authorization headers are never logged.
func RequestLogger(logger zerolog.Logger) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            start := time.Now()
            err := next(c)
            if err != nil {
                // let echo's error handler write the response before we read the status
                c.Error(err)
            }

            req := c.Request()
            res := c.Response()
            ev := logger.Info()
            switch {
            case res.Status >= 500:
                ev = logger.Error()
            case res.Status >= 400:
                ev = logger.Warn()
            }
            ev.Str("method", req.Method).
                Str("path", c.Path()).
                Int("status", res.Status).
                Dur("latency", time.Since(start)).
                Str("ip", c.RealIP()).
                Str("request_id", res.Header().Get(echo.HeaderXRequestID)).
                Msg("request")
            return nil
        }
    }
}
