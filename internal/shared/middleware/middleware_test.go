package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func runRequireStaff(t *testing.T, role interface{}, setRole bool) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)

	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	if setRole {
		c.Set("user_role", role)
	}

	RequireStaff()(c)
	return recorder
}

func TestRequireRolesAllowsMatchingRole(t *testing.T) {
	recorder := runRequireStaff(t, RoleStaff, true)
	assert.Equal(t, http.StatusOK, recorder.Code)
}

func TestRequireRolesRejectsOtherRole(t *testing.T) {
	recorder := runRequireStaff(t, RolePilgrim, true)
	assert.Equal(t, http.StatusForbidden, recorder.Code)
}

func TestRequireRolesRejectsMissingRole(t *testing.T) {
	recorder := runRequireStaff(t, nil, false)
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

func TestRequireRolesRejectsNonStringRole(t *testing.T) {
	// A malformed token can carry a non-string role claim; that must be a
	// clean 403, not a panic.
	recorder := runRequireStaff(t, 42, true)
	assert.Equal(t, http.StatusForbidden, recorder.Code)
}
