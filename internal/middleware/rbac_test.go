package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/academix/gradebook-api/internal/models"
)

func rbacTestRouter(injected *models.JWTClaims, roles ...models.UserRole) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	if injected != nil {
		r.Use(func(c *gin.Context) {
			c.Set(ContextUserKey, injected)
		})
	}
	r.GET("/guarded", RequireRoles(roles...), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func TestRequireRolesAllows(t *testing.T) {
	r := rbacTestRouter(&models.JWTClaims{UserID: "u1", Role: models.RoleAdmin}, models.RoleAdmin, models.RoleTeacher)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/guarded", nil)
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestRequireRolesRejectsRole(t *testing.T) {
	r := rbacTestRouter(&models.JWTClaims{UserID: "u1", Role: models.RoleStudent}, models.RoleAdmin)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/guarded", nil)
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequireRolesRejectsMissingClaims(t *testing.T) {
	r := rbacTestRouter(nil, models.RoleAdmin)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/guarded", nil)
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}
