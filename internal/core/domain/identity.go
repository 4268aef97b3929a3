package domain

import "errors"

// Role names as issued by the cobros API.
const (
	RoleAdministrador = "Administrador"
	RoleSupervisor    = "Supervisor"
	RoleAnalista      = "Analista"
	RoleCobrador      = "Cobrador"
	RoleConsulta      = "Consulta"
)

// rolePriority orders roles for display only. It has no bearing on
// permission evaluation.
var rolePriority = map[string]int{
	RoleAdministrador: 5,
	RoleSupervisor:    4,
	RoleAnalista:      3,
	RoleCobrador:      2,
	RoleConsulta:      1,
}

var ErrInvalidCredentials = errors.New("invalid credentials")
var ErrUserNotFound = errors.New("user not found")
var ErrUserInactive = errors.New("user inactive")
var ErrNoConnection = errors.New("no connection to auth service")
var ErrNotAuthenticated = errors.New("not authenticated")
var ErrSessionRestoring = errors.New("session restore in progress")

// Identity is the authenticated principal together with the authorization
// snapshot the server issued at login time. The snapshot is immutable between
// logins; the gateway never grants or revokes anything locally.
type Identity struct {
	Username    string          `json:"username"`
	FirstName   string          `json:"first_name,omitempty"`
	LastName    string          `json:"last_name,omitempty"`
	Email       string          `json:"email,omitempty"`
	Phone       string          `json:"phone,omitempty"`
	Roles       []string        `json:"roles"`
	Permissions map[string]bool `json:"permissions"`
	Carteras    []int           `json:"carteras"`
}

// DisplayName returns the best human-readable name for the identity.
func (i *Identity) DisplayName() string {
	switch {
	case i.FirstName != "" && i.LastName != "":
		return i.FirstName + " " + i.LastName
	case i.FirstName != "":
		return i.FirstName
	default:
		return i.Username
	}
}

// PrimaryRole picks the highest-priority role for display. Unknown roles rank
// below all known ones but still win over an empty result.
func PrimaryRole(roles []string) string {
	best := ""
	bestPrio := -1
	for _, r := range roles {
		if p := rolePriority[r]; p > bestPrio {
			best = r
			bestPrio = p
		}
	}
	return best
}

// NormalizePermissions converts a raw server-side permission payload into the
// cached snapshot. Only values that are exactly boolean true survive; strings,
// numbers and nulls all normalize to an absent key.
func NormalizePermissions(raw map[string]any) map[string]bool {
	perms := make(map[string]bool, len(raw))
	for name, v := range raw {
		if b, ok := v.(bool); ok && b {
			perms[name] = true
		}
	}
	return perms
}
