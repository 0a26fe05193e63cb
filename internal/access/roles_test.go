package access

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRole_UnmarshalJSON_NormalizesLegacyNames(t *testing.T) {
	tests := []struct {
		raw  string
		want Role
	}{
		{"employee", RoleEmployee},
		{"manager", RoleManager},
		{"admin", RoleAdmin},
		{"company_admin", RoleAdmin},
		{"owner", RoleOwner},
		{"super_admin", RoleOwner},
	}
	for _, tt := range tests {
		var role Role
		require.NoError(t, json.Unmarshal([]byte(`"`+tt.raw+`"`), &role))
		assert.Equal(t, tt.want, role, "raw %q", tt.raw)
		assert.True(t, role.Known(), "raw %q", tt.raw)
	}
}

func TestRole_UnmarshalJSON_UnknownFailsClosed(t *testing.T) {
	var role Role
	require.NoError(t, json.Unmarshal([]byte(`"intern"`), &role))

	assert.Equal(t, Role("intern"), role)
	assert.Equal(t, -1, role.Rank())
	assert.False(t, CanAccess(role, FeaturePayrollRun))
	assert.False(t, HasMinRole(role, RoleEmployee))
}
