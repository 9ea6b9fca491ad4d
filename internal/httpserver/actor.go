package httpserver

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/freelance_market/internal/service"
	middleware "github.com/Skotchmaster/freelance_market/pkg/middleware/auth"
	"github.com/Skotchmaster/freelance_market/pkg/tokens"
)

func actorFrom(c echo.Context) (service.Actor, error) {
	sub, ok := middleware.UserID(c)
	if !ok {
		return service.Actor{}, httpErr(http.StatusUnauthorized, "UNAUTHENTICATED", "authentication required")
	}
	id, err := uuid.Parse(sub)
	if err != nil {
		return service.Actor{}, httpErr(http.StatusUnauthorized, "UNAUTHENTICATED", "subject is not a user id")
	}
	return service.Actor{ID: id, Admin: middleware.Role(c) == tokens.RoleAdmin}, nil
}

func parseID(c echo.Context) (uuid.UUID, error) {
	return uuid.Parse(c.Param("id"))
}
