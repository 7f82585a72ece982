package routes

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bizcard/internal/infrastructure/auth"
	"bizcard/internal/interfaces/http/handlers"
	"bizcard/internal/interfaces/http/middleware"
	"bizcard/internal/shared/authorization"
	"bizcard/internal/shared/logger"
)

type denyAll struct{}

func (denyAll) Enforce(subject, resource, action string) (bool, error) {
	return false, nil
}

func newAdminEngine(jwtSvc *auth.JWTService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	log := logger.NewNopLogger()

	engine := gin.New()
	SetupAdminRoutes(engine.Group("/api"), &AdminRouteConfig{
		AdminPaymentHandler:  handlers.NewAdminPaymentHandler(nil, nil, log),
		AuthMiddleware:       middleware.NewAuthMiddleware(jwtSvc, log),
		PermissionMiddleware: middleware.NewPermissionMiddleware(denyAll{}, log),
	})
	return engine
}

func TestAdminRoutes_RequireOperatorToken(t *testing.T) {
	engine := newAdminEngine(auth.NewJWTService("test-secret", 15, "bizcard"))

	for _, tc := range []struct{ method, path string }{
		{http.MethodPost, "/api/admin/payments/pay_1/force-status"},
		{http.MethodGet, "/api/admin/payments/pay_1/audit"},
	} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(tc.method, tc.path, nil)
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code, tc.path)
	}
}

func TestAdminRoutes_PolicyDenied(t *testing.T) {
	jwtSvc := auth.NewJWTService("test-secret", 15, "bizcard")
	engine := newAdminEngine(jwtSvc)

	token, _, err := jwtSvc.Generate("ops-7", authorization.RoleOperator, 0)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/admin/payments/pay_1/audit", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}
