package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/cobros/console-gateway/internal/core/domain"
	"github.com/cobros/console-gateway/internal/core/session"
)

// SessionHandler exposes the inactivity monitor and forced-invalidation
// state. The SPA polls GET /auth/session to drive the warning countdown and
// the invalidation modal.
type SessionHandler struct {
	ctrl  *session.Controller
	store *session.Store
}

func NewSessionHandler(ctrl *session.Controller, store *session.Store) *SessionHandler {
	return &SessionHandler{ctrl: ctrl, store: store}
}

type monitorStatus struct {
	State            session.MonitorState `json:"state"`
	RemainingSeconds int                  `json:"remaining_seconds"`
}

type sessionStatusResponse struct {
	Restoring     bool                       `json:"restoring"`
	Authenticated bool                       `json:"authenticated"`
	User          *domain.Identity           `json:"user,omitempty"`
	PrimaryRole   string                     `json:"primary_role,omitempty"`
	Monitor       monitorStatus              `json:"monitor"`
	Invalidated   *domain.InvalidationNotice `json:"invalidated,omitempty"`
}

// Status reports the full session state in one response.
//
// @Summary      Session status
// @Tags         session
// @Produce      json
// @Success      200  {object}  sessionStatusResponse
// @Router       /auth/session [get]
func (h *SessionHandler) Status(c echo.Context) error {
	resp := sessionStatusResponse{
		Restoring:     !h.ctrl.Restored(),
		Authenticated: h.store.IsAuthenticated(),
		Monitor: monitorStatus{
			State:            h.ctrl.MonitorState(),
			RemainingSeconds: int(h.ctrl.MonitorRemaining().Seconds()),
		},
		Invalidated: h.ctrl.PendingInvalidation(),
	}
	if identity := h.store.Identity(); identity != nil {
		resp.User = identity
		resp.PrimaryRole = domain.PrimaryRole(identity.Roles)
	}
	return c.JSON(http.StatusOK, resp)
}

// Activity registers a user-interaction signal (pointer press, key press,
// scroll, touch, click) forwarded by the SPA. No-op without a session.
//
// @Summary      Activity signal
// @Tags         session
// @Success      204
// @Router       /auth/session/activity [post]
func (h *SessionHandler) Activity(c echo.Context) error {
	h.ctrl.Activity()
	return c.NoContent(http.StatusNoContent)
}

// Continue dismisses the inactivity warning and restarts the full budget.
//
// @Summary      Continue session
// @Tags         session
// @Success      204
// @Router       /auth/session/continue [post]
func (h *SessionHandler) Continue(c echo.Context) error {
	h.ctrl.ContinueSession()
	return c.NoContent(http.StatusNoContent)
}

// Acknowledge completes the forced-invalidation flow: the operator has seen
// the blocking notice, so the session is cleared immediately and
// unconditionally.
//
// @Summary      Acknowledge invalidation
// @Tags         session
// @Success      204
// @Failure      401  {object}  map[string]string
// @Router       /auth/session/acknowledge [post]
func (h *SessionHandler) Acknowledge(c echo.Context) error {
	if err := h.ctrl.AcknowledgeInvalidation(c.Request().Context()); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
