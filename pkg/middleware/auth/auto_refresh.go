package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/Skotchmaster/freelance_market/pkg/authclient"
	"github.com/Skotchmaster/freelance_market/pkg/logging"
	"github.com/Skotchmaster/freelance_market/pkg/tokens"
	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

const (
	CtxUserID = "user_id"
	CtxRole   = "role"
)

type Refresher interface {
	RefreshTokens(ctx context.Context, refreshToken, accessToken string) (*authclient.RefreshResponse, error)
}

type AutoRefreshMiddleware struct {
	JWTSecret  []byte
	AuthClient Refresher
}

func NewAutoRefreshMiddleware(secret []byte, authClient Refresher) *AutoRefreshMiddleware {
	return &AutoRefreshMiddleware{
		JWTSecret:  secret,
		AuthClient: authClient,
	}
}

type ValidatorFunc func(claims *tokens.AccessClaims) error

func (m *AutoRefreshMiddleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return m.requireAuthWithValidator(next, nil)
}

func (m *AutoRefreshMiddleware) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return m.requireAuthWithValidator(next, func(claims *tokens.AccessClaims) error {
		if claims.Role != tokens.RoleAdmin {
			return httpErr(http.StatusForbidden, "FORBIDDEN", "admin access required")
		}
		return nil
	})
}

func (m *AutoRefreshMiddleware) requireAuthWithValidator(next echo.HandlerFunc, validator ValidatorFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		l := logging.FromContext(c.Request().Context()).With("middleware", "auth")

		raw, fromCookie := accessToken(c)
		if raw == "" {
			return httpErr(http.StatusUnauthorized, "UNAUTHENTICATED", "missing access token")
		}

		claims, err := tokens.AccessClaimsFromToken(raw, m.JWTSecret)
		if err == nil {
			return m.proceed(c, next, claims, validator)
		}

		// Bearer callers manage their own tokens; only cookie sessions are refreshed.
		if !fromCookie || !errors.Is(err, jwt.ErrTokenExpired) || m.AuthClient == nil {
			if fromCookie {
				clearAuthCookies(c)
			}
			l.Warn("access_token_rejected", "reason", "invalid access token", "error", err)
			return httpErr(http.StatusUnauthorized, "UNAUTHENTICATED", "invalid access token")
		}

		refreshCookie, rErr := c.Cookie(tokens.RefreshCookie)
		if rErr != nil || refreshCookie.Value == "" {
			clearAuthCookies(c)
			return httpErr(http.StatusUnauthorized, "UNAUTHENTICATED", "refresh token missing")
		}

		refreshResp, refErr := m.AuthClient.RefreshTokens(c.Request().Context(), refreshCookie.Value, raw)
		if refErr != nil {
			clearAuthCookies(c)
			l.Warn("token_refresh_failed", "error", refErr)
			return httpErr(http.StatusUnauthorized, "UNAUTHENTICATED", "session expired")
		}

		newClaims, pErr := tokens.AccessClaimsFromToken(refreshResp.AccessToken, m.JWTSecret)
		if pErr != nil {
			clearAuthCookies(c)
			l.Warn("token_refresh_failed", "reason", "new access token invalid", "error", pErr)
			return httpErr(http.StatusUnauthorized, "UNAUTHENTICATED", "session expired")
		}

		c.SetCookie(tokens.CreateCookie(tokens.AccessCookie, refreshResp.AccessToken, "/", time.Unix(refreshResp.AccessExp, 0)))
		c.SetCookie(tokens.CreateCookie(tokens.RefreshCookie, refreshResp.RefreshToken, "/", time.Unix(refreshResp.RefreshExp, 0)))

		return m.proceed(c, next, newClaims, validator)
	}
}

func (m *AutoRefreshMiddleware) proceed(c echo.Context, next echo.HandlerFunc, claims *tokens.AccessClaims, validator ValidatorFunc) error {
	if claims.Subject == "" {
		return httpErr(http.StatusUnauthorized, "UNAUTHENTICATED", "token has no subject")
	}
	if validator != nil {
		if err := validator(claims); err != nil {
			return err
		}
	}
	setUserContext(c, claims)
	return next(c)
}

func accessToken(c echo.Context) (string, bool) {
	if ck, err := c.Cookie(tokens.AccessCookie); err == nil && ck.Value != "" {
		return ck.Value, true
	}
	h := c.Request().Header.Get(echo.HeaderAuthorization)
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:]), false
	}
	return "", false
}

func httpErr(code int, kind, msg string) *echo.HTTPError {
	return echo.NewHTTPError(code, echo.Map{"error": kind, "message": msg})
}

func clearAuthCookies(c echo.Context) {
	c.SetCookie(tokens.DeleteCookie(tokens.AccessCookie, "/"))
	c.SetCookie(tokens.DeleteCookie(tokens.RefreshCookie, "/"))
}

func setUserContext(c echo.Context, claims *tokens.AccessClaims) {
	c.Set(CtxUserID, claims.Subject)
	c.Set(CtxRole, claims.Role)
}

// UserID returns the authenticated subject set by RequireAuth.
func UserID(c echo.Context) (string, bool) {
	s, ok := c.Get(CtxUserID).(string)
	return s, ok && s != ""
}

func Role(c echo.Context) string {
	s, _ := c.Get(CtxRole).(string)
	return s
}
