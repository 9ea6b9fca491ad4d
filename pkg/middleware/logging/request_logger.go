package loggingmw

import (
	"log/slog"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/freelance_market/pkg/logging"
)

// RequestLogger puts a request-scoped logger into the context and writes one
// http_request line per request once the error handler has set the status.
func RequestLogger(base *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			res := c.Response()

			rid := req.Header.Get(echo.HeaderXRequestID)
			if rid == "" {
				rid = res.Header().Get(echo.HeaderXRequestID)
			}

			l := base.With("method", req.Method, "route", c.Path())
			if rid != "" {
				l = l.With("request_id", rid)
				res.Header().Set(echo.HeaderXRequestID, rid)
			}
			c.SetRequest(req.WithContext(logging.IntoContext(req.Context(), l)))

			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			attrs := []any{
				"status", res.Status,
				"duration_ms", time.Since(start).Milliseconds(),
				"remote_ip", c.RealIP(),
			}
			// set by the auth middleware
			if uid, ok := c.Get("user_id").(string); ok && uid != "" {
				attrs = append(attrs, "user_id", uid)
			}
			if err != nil {
				attrs = append(attrs, "error", err.Error())
			}

			switch {
			case res.Status >= 500:
				l.Error("http_request", attrs...)
			case res.Status >= 400:
				l.Warn("http_request", attrs...)
			case strings.HasPrefix(req.URL.Path, "/health/"):
				l.Debug("http_request", attrs...)
			default:
				l.Info("http_request", append(attrs, "bytes", res.Size)...)
			}
			return nil
		}
	}
}
