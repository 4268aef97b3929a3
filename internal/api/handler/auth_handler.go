package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/cobros/console-gateway/internal/core/domain"
	"github.com/cobros/console-gateway/internal/core/ports"
	"github.com/cobros/console-gateway/internal/core/session"
)

// AuthHandler exposes the session lifecycle to the console SPA.
type AuthHandler struct {
	ctrl  *session.Controller
	store *session.Store
}

func NewAuthHandler(ctrl *session.Controller, store *session.Store) *AuthHandler {
	return &AuthHandler{ctrl: ctrl, store: store}
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type userResponse struct {
	User        *domain.Identity `json:"user"`
	PrimaryRole string           `json:"primary_role,omitempty"`
}

// Login authenticates the operator against the remote auth service.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  userResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      502   {object}  map[string]string
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	identity, err := h.ctrl.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, userResponse{
		User:        identity,
		PrimaryRole: domain.PrimaryRole(identity.Roles),
	})
}

// Register forwards a registration payload to the remote auth service.
// Registration never creates a local session.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      ports.RegistrationInput  true  "Registration details"
// @Success      201   {object}  ports.RegistrationResult
// @Failure      400   {object}  map[string]string
// @Failure      502   {object}  map[string]string
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req ports.RegistrationInput
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	result, err := h.ctrl.Register(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, result)
}

// Logout ends the session. Local state is always cleared, even when the
// remote service cannot be reached.
//
// @Summary      Logout
// @Tags         auth
// @Success      204
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	h.ctrl.Logout(c.Request().Context())
	return c.NoContent(http.StatusNoContent)
}

// Permissions returns the cached authorization snapshot for menu rendering.
//
// @Summary      Permission snapshot
// @Tags         auth
// @Produce      json
// @Success      200  {object}  permissionsResponse
// @Failure      401  {object}  map[string]string
// @Router       /auth/permissions [get]
func (h *AuthHandler) Permissions(c echo.Context) error {
	identity := h.store.Identity()
	if identity == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	return c.JSON(http.StatusOK, permissionsResponse{
		Permissions: identity.Permissions,
		Roles:       identity.Roles,
		Carteras:    identity.Carteras,
	})
}

type permissionsResponse struct {
	Permissions map[string]bool `json:"permissions"`
	Roles       []string        `json:"roles"`
	Carteras    []int           `json:"carteras"`
}
