package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/cobros/console-gateway/internal/core/domain"
	"github.com/cobros/console-gateway/internal/core/ports"
	"github.com/cobros/console-gateway/internal/core/session"
)

type stubAuth struct {
	identity *domain.Identity
}

func (s *stubAuth) Login(context.Context, string, string) (*domain.Identity, string, error) {
	return s.identity, "tok-1", nil
}

func (s *stubAuth) Register(context.Context, ports.RegistrationInput) (*ports.RegistrationResult, error) {
	return &ports.RegistrationResult{}, nil
}

func (s *stubAuth) Logout(context.Context, string) error { return nil }

func newTestSession(t *testing.T, restored, authenticated bool) (*session.Controller, *session.Store) {
	t.Helper()
	store := session.NewStore()
	auth := &stubAuth{identity: &domain.Identity{
		Username:    "jlopez",
		Roles:       []string{domain.RoleSupervisor},
		Permissions: map[string]bool{"clientes": true},
	}}
	ctrl := session.NewController(store, auth, nil, nil, ports.RealClock{}, 0, 0, zerolog.Nop())
	t.Cleanup(ctrl.Shutdown)

	if restored {
		ctrl.Restore(context.Background())
	}
	if authenticated {
		if _, err := ctrl.Login(context.Background(), "jlopez", "s3cret"); err != nil {
			t.Fatalf("login failed: %v", err)
		}
	}
	return ctrl, store
}

func invoke(mw echo.MiddlewareFunc) (*httptest.ResponseRecorder, bool, error) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	err := mw(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})(c)
	return rec, called, err
}

func TestRequireSession_WhileRestoring(t *testing.T) {
	ctrl, store := newTestSession(t, false, false)

	rec, called, err := invoke(RequireSession(ctrl, store))
	if called {
		t.Fatal("next must not run while restoring")
	}
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %v", err)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Fatal("expected Retry-After header")
	}
}

func TestRequireSession_Unauthenticated(t *testing.T) {
	ctrl, store := newTestSession(t, true, false)

	_, called, err := invoke(RequireSession(ctrl, store))
	if called {
		t.Fatal("next must not run unauthenticated")
	}
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}

func TestRequireSession_Authenticated(t *testing.T) {
	ctrl, store := newTestSession(t, true, true)

	rec, called, err := invoke(RequireSession(ctrl, store))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !called {
		t.Fatal("next must run for an authenticated session")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestPublicOnly_RedirectsAuthenticated(t *testing.T) {
	ctrl, store := newTestSession(t, true, true)

	rec, called, err := invoke(PublicOnly(ctrl, store))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if called {
		t.Fatal("next must not run for an authenticated session")
	}
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rec.Code)
	}
	if got := rec.Header().Get(echo.HeaderLocation); got != "/" {
		t.Fatalf("expected redirect to /, got %q", got)
	}
}

func TestPublicOnly_PassesUnauthenticated(t *testing.T) {
	ctrl, store := newTestSession(t, true, false)

	_, called, err := invoke(PublicOnly(ctrl, store))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !called {
		t.Fatal("next must run without a session")
	}
}

func TestPublicOnly_WhileRestoring(t *testing.T) {
	ctrl, store := newTestSession(t, false, false)

	_, called, err := invoke(PublicOnly(ctrl, store))
	if called {
		t.Fatal("next must not run while restoring")
	}
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %v", err)
	}
}

func TestRequireAnyPermission(t *testing.T) {
	_, store := newTestSession(t, true, true)

	_, called, err := invoke(RequireAnyPermission(store, "mora", "clientes"))
	if err != nil || !called {
		t.Fatalf("expected pass-through, called=%v err=%v", called, err)
	}

	rec, called, err := invoke(RequireAnyPermission(store, "mora", "usuarios"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if called {
		t.Fatal("next must not run without any granted permission")
	}
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestRequireRole(t *testing.T) {
	_, store := newTestSession(t, true, true)

	_, called, err := invoke(RequireRole(store, "supervisor"))
	if err != nil || !called {
		t.Fatalf("expected case-insensitive role pass, called=%v err=%v", called, err)
	}

	rec, called, _ := invoke(RequireRole(store, domain.RoleAdministrador))
	if called {
		t.Fatal("next must not run without the role")
	}
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}
