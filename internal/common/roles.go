// File: internal/common/roles.go
package common

// Account roles. Every account carries exactly one.
const (
	RoleStudent = "student"
	RoleAgent   = "agent"
	RoleOwner   = "owner"
	RoleAdmin   = "admin"
)

// roleGrants maps each role to the set of role levels it satisfies. The
// relation is a strict partial order, not a total one: agent and owner both
// cover student but neither covers the other.
var roleGrants = map[string]map[string]bool{
	RoleStudent: {RoleStudent: true},
	RoleAgent:   {RoleAgent: true, RoleStudent: true},
	RoleOwner:   {RoleOwner: true, RoleStudent: true},
	RoleAdmin:   {RoleAdmin: true, RoleAgent: true, RoleOwner: true, RoleStudent: true},
}

// IsValidRole reports whether s names a known role.
func IsValidRole(s string) bool {
	_, ok := roleGrants[s]
	return ok
}

// RoleSatisfies reports whether an account with role `actual` clears the bar
// set by `required`.
func RoleSatisfies(actual, required string) bool {
	grants, ok := roleGrants[actual]
	if !ok {
		return false
	}
	return grants[required]
}
