package cmd

import (
	"context"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/styrcan/pulse/internal/errors"
)

func execute(t *testing.T, args ...string) error {
	t.Helper()
	t.Setenv("PULSE_HOME", t.TempDir())
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(context.Background())
}

func TestRootCommand_RegistersSubcommands(t *testing.T) {
	names := map[string]bool{}
	for _, sub := range rootCmd.Commands() {
		names[sub.Name()] = true
	}

	for _, want := range []string{"auth", "access", "notify", "open", "profile", "config", "version"} {
		assert.True(t, names[want], "missing subcommand %q", want)
	}
}

func TestVersionCommand(t *testing.T) {
	require.NoError(t, execute(t, "version"))
	require.NoError(t, execute(t, "version", "--short"))
}

func TestConfigShowCommand(t *testing.T) {
	require.NoError(t, execute(t, "config", "show"))
}

func TestAccessCheck_RoleFlag(t *testing.T) {
	require.NoError(t, execute(t, "access", "check", "payroll:run", "--role", "admin"))

	err := execute(t, "access", "check", "payroll:run", "--role", "employee")
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeAccessDenied))
}

func TestAccessCheck_UnknownFeature(t *testing.T) {
	err := execute(t, "access", "check", "payroll:launch", "--role", "admin")
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeAccessUnknownFeature))
}

func TestAccessCheck_LegacyRoleName(t *testing.T) {
	require.NoError(t, execute(t, "access", "check", "payroll:run", "--role", "company_admin"))
	require.NoError(t, execute(t, "access", "check", "billing:manage", "--role", "super_admin"))
}

func TestAccessCheck_WithoutSessionOrRole(t *testing.T) {
	err := execute(t, "access", "check", "payroll:run", "--role", "")
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeAuthTokenMissing))
}

func TestAccessListCommands(t *testing.T) {
	require.NoError(t, execute(t, "access", "features"))
	require.NoError(t, execute(t, "access", "roles"))
}

func TestAuthLogin_HelpAdvertisesOnlyRegisteredFlags(t *testing.T) {
	flagRefs := regexp.MustCompile(`--([a-z][a-z-]*)`)
	for _, match := range flagRefs.FindAllStringSubmatch(authLoginCmd.Long, -1) {
		name := match[1]
		assert.NotNil(t, authLoginCmd.Flags().Lookup(name), "help mentions unregistered flag --%s", name)
	}
}

func TestAuthStatus_LoggedOut(t *testing.T) {
	require.NoError(t, execute(t, "auth", "status"))
	require.NoError(t, execute(t, "auth", "status", "--format", "json"))
}

func TestOpen_RedirectsWhenLoggedOut(t *testing.T) {
	require.NoError(t, execute(t, "open", "/payroll", "--format", "text"))
}
