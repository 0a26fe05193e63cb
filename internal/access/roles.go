// Package access implements role-based UI gating for the Pulse client.
//
// The resolver is a UX convenience only: the platform API independently
// re-enforces every permission. Nothing here is a security boundary.
package access

import (
	"encoding/json"
	"fmt"
)

// Role represents a user's role within their company, ordered by privilege.
type Role string

const (
	RoleEmployee Role = "employee" // Own profile, schedule, PTO requests
	RoleManager  Role = "manager"  // Team scheduling and PTO approval
	RoleAdmin    Role = "admin"    // Payroll, finance, company settings
	RoleOwner    Role = "owner"    // Full control, billing, member management
)

// roleRanks is the total privilege order, strictly increasing from least
// to most privileged. The platform's legacy role names are normalized
// when a role is decoded (UnmarshalJSON) or parsed (ParseRole); only
// these four appear past that boundary.
var roleRanks = map[Role]int{
	RoleEmployee: 0,
	RoleManager:  1,
	RoleAdmin:    2,
	RoleOwner:    3,
}

// Rank returns the ordinal privilege rank of the role, or -1 for roles
// outside the hierarchy.
func (r Role) Rank() int {
	rank, ok := roleRanks[r]
	if !ok {
		return -1
	}
	return rank
}

// Known reports whether the role is part of the privilege hierarchy.
func (r Role) Known() bool {
	_, ok := roleRanks[r]
	return ok
}

// AllRoles returns every role in ascending privilege order.
func AllRoles() []Role {
	return []Role{RoleEmployee, RoleManager, RoleAdmin, RoleOwner}
}

// ParseRole normalizes a role string from the API. The platform has
// shipped both "admin"/"owner" and "company_admin"/"super_admin" for the
// same two tiers; both spellings are accepted here.
func ParseRole(s string) (Role, error) {
	switch s {
	case "employee":
		return RoleEmployee, nil
	case "manager":
		return RoleManager, nil
	case "admin", "company_admin":
		return RoleAdmin, nil
	case "owner", "super_admin":
		return RoleOwner, nil
	default:
		return "", fmt.Errorf("unknown role: %q", s)
	}
}

// UnmarshalJSON normalizes legacy role spellings wherever a role enters
// from the API or the persisted session blob. Roles outside the known set
// are kept verbatim: they rank -1 and fail every access check rather than
// failing the whole decode.
func (r *Role) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	if role, err := ParseRole(s); err == nil {
		*r = role
		return nil
	}
	*r = Role(s)
	return nil
}
