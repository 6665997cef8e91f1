// File: internal/common/roles_test.go
package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoleSatisfies(t *testing.T) {
	roles := []string{RoleStudent, RoleAgent, RoleOwner, RoleAdmin}

	// satisfied[actual][required]. Admin clears every bar, agent and owner
	// each clear student but not one another.
	satisfied := map[string]map[string]bool{
		RoleStudent: {RoleStudent: true, RoleAgent: false, RoleOwner: false, RoleAdmin: false},
		RoleAgent:   {RoleStudent: true, RoleAgent: true, RoleOwner: false, RoleAdmin: false},
		RoleOwner:   {RoleStudent: true, RoleAgent: false, RoleOwner: true, RoleAdmin: false},
		RoleAdmin:   {RoleStudent: true, RoleAgent: true, RoleOwner: true, RoleAdmin: true},
	}

	for _, actual := range roles {
		for _, required := range roles {
			assert.Equal(t, satisfied[actual][required], RoleSatisfies(actual, required),
				"actual=%s required=%s", actual, required)
		}
	}
}

func TestRoleSatisfies_UnknownRoles(t *testing.T) {
	assert.False(t, RoleSatisfies("landlord", RoleStudent))
	assert.False(t, RoleSatisfies(RoleAdmin, "landlord"))
	assert.False(t, RoleSatisfies("", RoleStudent))
}

func TestIsValidRole(t *testing.T) {
	for _, r := range []string{RoleStudent, RoleAgent, RoleOwner, RoleAdmin} {
		assert.True(t, IsValidRole(r), r)
	}
	assert.False(t, IsValidRole("landlord"))
	assert.False(t, IsValidRole(""))
}
