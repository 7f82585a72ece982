package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bizcard/internal/infrastructure/auth"
	"bizcard/internal/shared/authorization"
	"bizcard/internal/shared/constants"
	"bizcard/internal/shared/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubEnforcer struct {
	allowed map[string]bool
	err     error
}

func (s *stubEnforcer) Enforce(subject, resource, action string) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	return s.allowed[subject+":"+resource+":"+action], nil
}

func newAdminEngine(t *testing.T, jwtSvc *auth.JWTService, enforcer policyEnforcer) *gin.Engine {
	t.Helper()
	log := logger.NewNopLogger()

	engine := gin.New()
	engine.Use(RequestID())
	authMW := NewAuthMiddleware(jwtSvc, log)
	permMW := NewPermissionMiddleware(enforcer, log)

	engine.POST("/admin/force",
		authMW.RequireOperator(),
		permMW.RequirePermission(constants.ResourcePayments, constants.ActionForceStatus),
		func(c *gin.Context) {
			c.String(http.StatusOK, c.GetString(constants.ContextKeyOperatorID))
		},
	)
	return engine
}

func doRequest(engine *gin.Engine, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/admin/force", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestOperatorAuthAndPermission(t *testing.T) {
	jwtSvc := auth.NewJWTService("test-secret", 15, "bizcard")
	enforcer := &stubEnforcer{allowed: map[string]bool{
		"admin:payments:force_status": true,
	}}
	engine := newAdminEngine(t, jwtSvc, enforcer)

	adminToken, _, err := jwtSvc.Generate("ops-1", authorization.RoleAdmin, time.Minute)
	require.NoError(t, err)
	operatorToken, _, err := jwtSvc.Generate("ops-2", authorization.RoleOperator, time.Minute)
	require.NoError(t, err)

	t.Run("admin allowed", func(t *testing.T) {
		w := doRequest(engine, adminToken)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "ops-1", w.Body.String())
		assert.NotEmpty(t, w.Header().Get(constants.HeaderXRequestID))
	})

	t.Run("operator forbidden", func(t *testing.T) {
		w := doRequest(engine, operatorToken)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("missing token", func(t *testing.T) {
		w := doRequest(engine, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("invalid token", func(t *testing.T) {
		w := doRequest(engine, "not-a-jwt")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestPermissionEnforcerError(t *testing.T) {
	jwtSvc := auth.NewJWTService("test-secret", 15, "bizcard")
	engine := newAdminEngine(t, jwtSvc, &stubEnforcer{err: errors.New("policy store down")})

	token, _, err := jwtSvc.Generate("ops-1", authorization.RoleAdmin, time.Minute)
	require.NoError(t, err)

	w := doRequest(engine, token)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestRequestIDPropagation(t *testing.T) {
	engine := gin.New()
	engine.Use(RequestID())
	engine.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(constants.ContextKeyRequestID))
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(constants.HeaderXRequestID, "req-123")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, "req-123", w.Body.String())
	assert.Equal(t, "req-123", w.Header().Get(constants.HeaderXRequestID))
}

func TestCORSPreflight(t *testing.T) {
	engine := gin.New()
	engine.Use(CORS([]string{"https://app.bizcard.example"}))
	engine.POST("/api/checkouts", func(c *gin.Context) { c.Status(http.StatusCreated) })

	req := httptest.NewRequest(http.MethodOptions, "/api/checkouts", nil)
	req.Header.Set("Origin", "https://app.bizcard.example")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://app.bizcard.example", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/api/checkouts", nil)
	req.Header.Set("Origin", "https://evil.example")
	w = httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}
