package middleware

import (
	"time"

	applogger "CryptoCast/pkg/logger"

	"github.com/labstack/echo/v4"
)

// RequestLogging logs HTTP requests through the structured logger.
// Paths in skip (e.g. health probes) are only logged on error.
func RequestLogging(l *applogger.Logger, skip ...string) echo.MiddlewareFunc {
	quiet := make(map[string]struct{}, len(skip))
	for _, p := range skip {
		quiet[p] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			res := c.Response()
			start := time.Now()

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			if l == nil {
				return nil
			}
			if _, ok := quiet[c.Path()]; ok && err == nil && res.Status < 500 {
				return nil
			}

			fields := []applogger.Field{
				applogger.String("method", req.Method),
				applogger.String("uri", req.RequestURI),
				applogger.String("remote", c.RealIP()),
				applogger.Int("status", res.Status),
				applogger.Duration("latency_ms", time.Since(start)),
			}
			switch {
			case res.Status >= 500:
				if err != nil {
					fields = append(fields, applogger.Error(err))
				}
				l.Error("http request", fields...)
			case res.Status >= 400:
				l.Warn("http request", fields...)
			default:
				l.Info("http request", fields...)
			}
			return nil
		}
	}
}
