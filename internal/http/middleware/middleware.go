// Package middleware holds HTTP middleware shared by all modules.
package middleware

import (
	"context"
	"net/http"

	"leadcapture_backend/platform/httpkit"
	"leadcapture_backend/platform/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// TenantIDKey is the gin context key the tenant middleware stores the parsed
// tenant under.
const TenantIDKey = "tenantID"

// HeaderTenantID carries the caller's tenant on dashboard routes.
const HeaderTenantID = "X-Tenant-ID"

// RequireTenant parses the tenant header and aborts with 400 when it is
// missing or malformed. Every dashboard route runs behind it; the public
// intake endpoint takes the tenant from its payload instead.
func RequireTenant() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader(HeaderTenantID)
		if raw == "" {
			httpkit.Error(c, http.StatusBadRequest, "missing "+HeaderTenantID+" header", nil)
			c.Abort()
			return
		}
		tenantID, err := uuid.Parse(raw)
		if err != nil {
			httpkit.Error(c, http.StatusBadRequest, "malformed "+HeaderTenantID+" header", nil)
			c.Abort()
			return
		}

		c.Set(TenantIDKey, tenantID)

		ctx := context.WithValue(c.Request.Context(), logger.TenantIDKey, tenantID.String())
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// TenantID returns the tenant set by RequireTenant. The bool is false on
// routes that are not behind the middleware.
func TenantID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(TenantIDKey)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}
