package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bizcard/internal/shared/constants"
	"bizcard/internal/shared/logger"
	"bizcard/internal/shared/utils"
)

type policyEnforcer interface {
	Enforce(subject, resource, action string) (bool, error)
}

type PermissionMiddleware struct {
	enforcer policyEnforcer
	logger   logger.Interface
}

func NewPermissionMiddleware(enforcer policyEnforcer, logger logger.Interface) *PermissionMiddleware {
	return &PermissionMiddleware{
		enforcer: enforcer,
		logger:   logger,
	}
}

// RequirePermission checks the authenticated operator's role against the
// policy table. It must run after RequireOperator.
func (m *PermissionMiddleware) RequirePermission(resource, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(constants.ContextKeyOperatorRole)
		if role == "" {
			utils.ErrorResponse(c, http.StatusUnauthorized, "operator not authenticated")
			c.Abort()
			return
		}
		operatorID := c.GetString(constants.ContextKeyOperatorID)

		allowed, err := m.enforcer.Enforce(role, resource, action)
		if err != nil {
			m.logger.Errorw("permission check failed", "error", err, "operator_id", operatorID, "resource", resource, "action", action)
			utils.ErrorResponse(c, http.StatusInternalServerError, "permission check failed")
			c.Abort()
			return
		}

		if !allowed {
			m.logger.Warnw("permission denied", "operator_id", operatorID, "role", role, "resource", resource, "action", action)
			utils.ErrorResponse(c, http.StatusForbidden, "insufficient permissions")
			c.Abort()
			return
		}

		c.Next()
	}
}
