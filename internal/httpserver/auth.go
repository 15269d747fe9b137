package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/stockroom-app/stockroom/internal/events"
	"github.com/stockroom-app/stockroom/internal/repo"
	"github.com/stockroom-app/stockroom/internal/service"
	"github.com/stockroom-app/stockroom/internal/transport"
	"github.com/stockroom-app/stockroom/pkg/logging"
)

type AuthHTTP struct {
	Svc      *service.AuthService
	Repo     *repo.GormRepo
	Producer *events.Producer
}

func (h *AuthHTTP) Signup(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.signup")

	var req transport.SignupRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("signup_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	resp, err := h.Svc.Signup(ctx, req)
	if err != nil {
		return serviceError(l, "signup_error", err)
	}

	if err := h.Producer.PublishEvent(ctx, events.TopicUserEvents, resp.UserID.String(), map[string]any{
		"type":    "user_signed_up",
		"user_id": resp.UserID,
	}); err != nil {
		l.Error("kafka_publish_failed", "error", err)
	}
	h.Repo.LogAction(ctx, "Signup", "Customer account created", "auth", resp.UserID.String(), c.RealIP())

	l.Info("signup_success", "user_id", resp.UserID)
	return c.JSON(http.StatusCreated, resp)
}

func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.login")

	var req transport.LoginRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("login_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	resp, err := h.Svc.Login(ctx, req)
	if err != nil {
		return serviceError(l, "login_error", err)
	}

	h.Repo.LogAction(ctx, "Login", "User logged in", "auth", resp.UserID.String(), c.RealIP())

	return c.JSON(http.StatusOK, resp)
}
