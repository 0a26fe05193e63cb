package access

// CanAccess reports whether role may use the given feature. Unknown
// feature keys resolve to false. Pure and cheap enough to call on every
// render without memoization.
func CanAccess(role Role, feature string) bool {
	roles, ok := permissionTable[feature]
	if !ok {
		return false
	}
	for _, allowed := range roles {
		if allowed == role {
			return true
		}
	}
	return false
}

// HasMinRole reports whether role ranks at least as high as min. Roles
// outside the hierarchy never satisfy any minimum.
func HasMinRole(role, min Role) bool {
	r, m := role.Rank(), min.Rank()
	if r < 0 || m < 0 {
		return false
	}
	return r >= m
}

// AllowedRoles returns the roles permitted the given feature, or nil for
// unknown features.
func AllowedRoles(feature string) []Role {
	roles, ok := permissionTable[feature]
	if !ok {
		return nil
	}
	out := make([]Role, len(roles))
	copy(out, roles)
	return out
}
