package guard

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name          string
		path          string
		authenticated bool
		hydrated      bool
		wantAction    Action
		wantTarget    string
	}{
		{
			name:          "unauthenticated on protected path",
			path:          "/dashboard",
			authenticated: false,
			hydrated:      true,
			wantAction:    ActionRedirectToLogin,
			wantTarget:    "/login?returnTo=%2Fdashboard",
		},
		{
			name:          "authenticated on login page",
			path:          "/login",
			authenticated: true,
			hydrated:      true,
			wantAction:    ActionRedirectToHome,
			wantTarget:    "/dashboard",
		},
		{
			name:          "not hydrated never redirects",
			path:          "/payroll/runs",
			authenticated: false,
			hydrated:      false,
			wantAction:    ActionAllow,
		},
		{
			name:          "not hydrated allows public paths too",
			path:          "/login",
			authenticated: true,
			hydrated:      false,
			wantAction:    ActionAllow,
		},
		{
			name:          "unauthenticated on public path",
			path:          "/forgot-password",
			authenticated: false,
			hydrated:      true,
			wantAction:    ActionAllow,
		},
		{
			name:          "authenticated on protected path",
			path:          "/employees/42",
			authenticated: true,
			hydrated:      true,
			wantAction:    ActionAllow,
		},
		{
			name:          "public prefix with subpath",
			path:          "/reset-password/token-abc",
			authenticated: false,
			hydrated:      true,
			wantAction:    ActionAllow,
		},
		{
			name:          "prefix match is segment-aware",
			path:          "/loginx",
			authenticated: false,
			hydrated:      true,
			wantAction:    ActionRedirectToLogin,
			wantTarget:    "/login?returnTo=%2Floginx",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Evaluate(tt.path, tt.authenticated, tt.hydrated)
			assert.Equal(t, tt.wantAction, got.Action)
			if tt.wantTarget != "" {
				assert.Equal(t, tt.wantTarget, got.Target)
			}
		})
	}
}

func TestEvaluate_PreservesQueryInReturnTo(t *testing.T) {
	got := Evaluate("/schedule?week=2026-09-01&view=team", false, true)

	require.Equal(t, ActionRedirectToLogin, got.Action)

	u, err := url.Parse(got.Target)
	require.NoError(t, err)
	assert.Equal(t, "/login", u.Path)
	assert.Equal(t, "/schedule?week=2026-09-01&view=team", u.Query().Get("returnTo"))
}

func TestEvaluate_Idempotent(t *testing.T) {
	first := Evaluate("/dashboard", false, true)
	second := Evaluate("/dashboard", false, true)
	assert.Equal(t, first, second)

	// The login redirect target is itself a public path: evaluating it
	// again allows, so no toggling loop can form.
	followUp := Evaluate("/login", false, true)
	assert.Equal(t, ActionAllow, followUp.Action)
}

func TestAction_String(t *testing.T) {
	assert.Equal(t, "allow", ActionAllow.String())
	assert.Equal(t, "redirect-to-login", ActionRedirectToLogin.String())
	assert.Equal(t, "redirect-to-home", ActionRedirectToHome.String())
}
