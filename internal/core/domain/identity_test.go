package domain

import "testing"

func TestNormalizePermissions_OnlyExactTrueSurvives(t *testing.T) {
	raw := map[string]any{
		"clientes":  true,
		"prestamos": false,
		"pagos":     "si",
		"mora":      1,
		"usuarios":  nil,
		"reportes":  true,
	}

	perms := NormalizePermissions(raw)

	if !perms["clientes"] || !perms["reportes"] {
		t.Fatalf("expected true permissions to survive, got %v", perms)
	}
	for _, k := range []string{"prestamos", "pagos", "mora", "usuarios"} {
		if perms[k] {
			t.Fatalf("expected %q to normalize to false", k)
		}
	}
	if len(perms) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(perms))
	}
}

func TestPrimaryRole_Order(t *testing.T) {
	cases := []struct {
		roles []string
		want  string
	}{
		{[]string{RoleCobrador, RoleSupervisor}, RoleSupervisor},
		{[]string{RoleConsulta, RoleAdministrador, RoleAnalista}, RoleAdministrador},
		{[]string{RoleConsulta}, RoleConsulta},
		{[]string{"Auditor"}, "Auditor"},
		{nil, ""},
	}

	for _, tc := range cases {
		if got := PrimaryRole(tc.roles); got != tc.want {
			t.Fatalf("PrimaryRole(%v) = %q, want %q", tc.roles, got, tc.want)
		}
	}
}

func TestDisplayName(t *testing.T) {
	full := &Identity{Username: "jlopez", FirstName: "Juana", LastName: "López"}
	if got := full.DisplayName(); got != "Juana López" {
		t.Fatalf("unexpected display name %q", got)
	}

	bare := &Identity{Username: "jlopez"}
	if got := bare.DisplayName(); got != "jlopez" {
		t.Fatalf("expected username fallback, got %q", got)
	}
}
