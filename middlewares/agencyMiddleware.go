package middlewares

import (
	"strings"

	"bitbucket.org/swelyradist/agency_backend/utils"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AgencyMiddleware seeds the request context with the tenant scope and a
// correlation id. The agency id comes from the X-Agency-Id header; handlers
// reject requests where it is missing. Every request gets a correlation id,
// generated when the caller did not send one, so a ledger row can always be
// traced back to the request or run that created it.
func AgencyMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		if agencyId := strings.TrimSpace(c.GetHeader("X-Agency-Id")); agencyId != "" {
			ctx = utils.SetAgencyIdInContext(ctx, agencyId)
		}

		// Identity headers come from the platform gateway, which owns auth.
		if userName := strings.TrimSpace(c.GetHeader("X-User-Name")); userName != "" {
			ctx = utils.SetUserNameInContext(ctx, userName)
		}
		if c.GetHeader("X-Platform-Admin") == "true" {
			ctx = utils.SetIsAdminInContext(ctx, true)
		}

		correlationId := strings.TrimSpace(c.GetHeader("X-Correlation-Id"))
		if correlationId == "" {
			correlationId = uuid.NewString()
		}
		ctx = utils.SetCorrelationIdInContext(ctx, correlationId)
		c.Header("X-Correlation-Id", correlationId)

		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
