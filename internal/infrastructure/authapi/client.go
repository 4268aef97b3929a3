// Package authapi is the HTTP client for the remote cobros authentication
// service. It maps upstream responses onto the domain error taxonomy and
// raises the forced-invalidation signal when a token-bearing request is
// rejected as unauthorized.
package authapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/cobros/console-gateway/internal/core/domain"
	"github.com/cobros/console-gateway/internal/core/ports"
)

const defaultTimeout = 15 * time.Second

// Upstream error codes carried in rejection bodies.
const (
	codeUserNotFound = "usuario_no_encontrado"
	codeUserInactive = "usuario_inactivo"
)

// Client talks to the remote auth endpoints. It implements
// ports.AuthService.
type Client struct {
	baseURL     string
	http        *http.Client
	invalidator ports.Invalidator
	log         zerolog.Logger
}

// NewClient builds a client for the given upstream base URL.
func NewClient(baseURL string, log zerolog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
		log:     log,
	}
}

// SetInvalidator registers the consumer of the forced-invalidation signal.
// Must be set before any token-bearing request is made.
func (c *Client) SetInvalidator(inv ports.Invalidator) {
	c.invalidator = inv
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// wireUser is the identity payload as issued by the cobros API at login.
type wireUser struct {
	Username string         `json:"username"`
	Nombre   string         `json:"nombre"`
	Apellido string         `json:"apellido"`
	Correo   string         `json:"correo"`
	Telefono string         `json:"telefono"`
	Roles    []string       `json:"roles"`
	Permisos map[string]any `json:"permisos"`
	Carteras []int          `json:"carteras"`
}

type loginResponse struct {
	Token   string   `json:"token"`
	Usuario wireUser `json:"usuario"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Login authenticates and returns the identity with its permission snapshot
// plus the bearer token. Credential failures surface as domain sentinels,
// transport failures wrap domain.ErrNoConnection.
func (c *Client) Login(ctx context.Context, username, password string) (*domain.Identity, string, error) {
	body, resp, err := c.post(ctx, "/auth/login", loginRequest{Username: username, Password: password}, "")
	if err != nil {
		return nil, "", err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, "", rejectionError(resp.StatusCode, body)
	}

	var lr loginResponse
	if err := json.Unmarshal(body, &lr); err != nil {
		return nil, "", fmt.Errorf("decode login response: %w", err)
	}
	return identityFromWire(lr.Usuario), lr.Token, nil
}

// Register forwards the registration payload and returns the upstream result
// verbatim.
func (c *Client) Register(ctx context.Context, input ports.RegistrationInput) (*ports.RegistrationResult, error) {
	body, resp, err := c.post(ctx, "/auth/register", input, "")
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, rejectionError(resp.StatusCode, body)
	}

	var result ports.RegistrationResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("decode register response: %w", err)
	}
	return &result, nil
}

// Logout asks the remote service to discard server-side session state.
func (c *Client) Logout(ctx context.Context, token string) error {
	body, resp, err := c.post(ctx, "/auth/logout", struct{}{}, token)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return rejectionError(resp.StatusCode, body)
	}
	return nil
}

// post sends a JSON request and reads the full response body. A 401 on a
// token-bearing request notifies the invalidator with the upstream reason.
func (c *Client) post(ctx context.Context, path string, payload any, token string) ([]byte, *http.Response, error) {
	buf, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(buf))
	if err != nil {
		return nil, nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", domain.ErrNoConnection, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized && token != "" && c.invalidator != nil {
		reason := rejectionReason(body)
		c.log.Warn().Str("path", path).Str("reason", reason).Msg("upstream rejected session token")
		c.invalidator.SessionInvalidated(reason)
	}

	return body, resp, nil
}

// rejectionError maps an upstream rejection onto the domain taxonomy.
func rejectionError(status int, body []byte) error {
	var er errorResponse
	_ = json.Unmarshal(body, &er)

	switch {
	case er.Error == codeUserNotFound, status == http.StatusNotFound:
		return domain.ErrUserNotFound
	case er.Error == codeUserInactive:
		return domain.ErrUserInactive
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		return domain.ErrInvalidCredentials
	}

	msg := er.Message
	if msg == "" {
		msg = er.Error
	}
	if msg == "" {
		msg = http.StatusText(status)
	}
	return fmt.Errorf("auth service status %d: %s", status, msg)
}

// rejectionReason extracts a human-readable reason for the invalidation
// notice.
func rejectionReason(body []byte) string {
	var er errorResponse
	_ = json.Unmarshal(body, &er)
	if er.Message != "" {
		return er.Message
	}
	if er.Error != "" {
		return er.Error
	}
	return "session expired or revoked"
}

func identityFromWire(u wireUser) *domain.Identity {
	return &domain.Identity{
		Username:    u.Username,
		FirstName:   u.Nombre,
		LastName:    u.Apellido,
		Email:       u.Correo,
		Phone:       u.Telefono,
		Roles:       u.Roles,
		Permissions: domain.NormalizePermissions(u.Permisos),
		Carteras:    u.Carteras,
	}
}
