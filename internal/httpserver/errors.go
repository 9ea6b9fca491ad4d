package httpserver

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/freelance_market/internal/apperr"
)

func httpErr(code int, kind, msg string) *echo.HTTPError {
	return echo.NewHTTPError(code, echo.Map{"error": kind, "message": msg})
}

func badRequest(l *slog.Logger, event, msg string, err error) error {
	l.Warn(event, "status", http.StatusBadRequest, "reason", msg, "error", err)
	return httpErr(http.StatusBadRequest, "VALIDATION", msg)
}

// respondErr maps a service error onto the response. Upstream and internal
// details stay in the log.
func respondErr(l *slog.Logger, event string, err error) error {
	status, code := apperr.Classify(err)

	msg := err.Error()
	switch {
	case status == http.StatusBadGateway:
		msg = "payment provider unavailable"
	case status >= http.StatusInternalServerError:
		msg = "internal error"
	}

	if status >= http.StatusInternalServerError {
		l.Error(event, "status", status, "reason", code, "error", err)
	} else {
		l.Warn(event, "status", status, "reason", code, "error", err)
	}
	return httpErr(status, code, msg)
}
