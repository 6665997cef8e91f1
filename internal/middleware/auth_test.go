// File: internal/middleware/auth_test.go
package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"unihomes_backend/internal/common"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

// guardedStatus runs one request through RequireRole with the given viewer
// role already in context, the way AuthMiddleware would have left it.
func guardedStatus(t *testing.T, viewerRole, requiredRole string) int {
	t.Helper()
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.GET("/guarded",
		func(c *gin.Context) {
			if viewerRole != "" {
				c.Set(UserRoleKey, viewerRole)
			}
		},
		RequireRole(requiredRole),
		func(c *gin.Context) { c.Status(http.StatusOK) },
	)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/guarded", nil))
	return rec.Code
}

func TestRequireRole(t *testing.T) {
	cases := []struct {
		name     string
		viewer   string
		required string
		want     int
	}{
		{"admin clears an admin guard", common.RoleAdmin, common.RoleAdmin, http.StatusOK},
		{"agent stopped by an admin guard", common.RoleAgent, common.RoleAdmin, http.StatusForbidden},
		{"owner stopped by an admin guard", common.RoleOwner, common.RoleAdmin, http.StatusForbidden},
		{"student stopped by an admin guard", common.RoleStudent, common.RoleAdmin, http.StatusForbidden},

		{"admin clears an agent guard", common.RoleAdmin, common.RoleAgent, http.StatusOK},
		{"agent clears an agent guard", common.RoleAgent, common.RoleAgent, http.StatusOK},
		{"owner stopped by an agent guard", common.RoleOwner, common.RoleAgent, http.StatusForbidden},
		{"student stopped by an agent guard", common.RoleStudent, common.RoleAgent, http.StatusForbidden},

		{"admin clears an owner guard", common.RoleAdmin, common.RoleOwner, http.StatusOK},
		{"agent stopped by an owner guard", common.RoleAgent, common.RoleOwner, http.StatusForbidden},
		{"owner clears an owner guard", common.RoleOwner, common.RoleOwner, http.StatusOK},
		{"student stopped by an owner guard", common.RoleStudent, common.RoleOwner, http.StatusForbidden},

		{"every role clears a student guard: admin", common.RoleAdmin, common.RoleStudent, http.StatusOK},
		{"every role clears a student guard: agent", common.RoleAgent, common.RoleStudent, http.StatusOK},
		{"every role clears a student guard: owner", common.RoleOwner, common.RoleStudent, http.StatusOK},
		{"every role clears a student guard: student", common.RoleStudent, common.RoleStudent, http.StatusOK},

		{"missing role in context is forbidden", "", common.RoleStudent, http.StatusForbidden},
		{"unknown role is forbidden", "landlord", common.RoleStudent, http.StatusForbidden},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, guardedStatus(t, tc.viewer, tc.required))
		})
	}
}
