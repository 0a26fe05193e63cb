package api

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/styrcan/pulse/internal/access"
)

func TestUser_DecodeNormalizesLegacyRole(t *testing.T) {
	payload := `{
		"id": "user-1",
		"email": "ana@acme.test",
		"first_name": "Ana",
		"role": "super_admin",
		"company_id": "company-1"
	}`

	var user User
	require.NoError(t, json.Unmarshal([]byte(payload), &user))

	assert.Equal(t, access.RoleOwner, user.Role)
	assert.Equal(t, 3, user.Role.Rank())
	assert.True(t, access.CanAccess(user.Role, access.FeaturePayrollRun))
	assert.True(t, access.HasMinRole(user.Role, access.RoleEmployee))
}

func TestAuthResponse_DecodeNormalizesLegacyRole(t *testing.T) {
	payload := `{
		"access_token": "access-1",
		"refresh_token": "refresh-1",
		"user": {"id": "user-1", "role": "company_admin", "company_id": "company-1"},
		"company": {"id": "company-1", "name": "Acme HR"}
	}`

	var resp AuthResponse
	require.NoError(t, json.Unmarshal([]byte(payload), &resp))

	assert.Equal(t, access.RoleAdmin, resp.User.Role)
	assert.True(t, access.CanAccess(resp.User.Role, access.FeaturePayrollRun))
}
