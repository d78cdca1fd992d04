package middleware

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus-placement-api/internal/models"
	"github.com/noah-isme/campus-placement-api/internal/service"
	appErrors "github.com/noah-isme/campus-placement-api/pkg/errors"
	"github.com/noah-isme/campus-placement-api/pkg/response"
)

const (
	// ContextPrincipalKey stores the resolved *models.Principal.
	ContextPrincipalKey = "currentPrincipal"
	// ContextCapabilitiesKey stores the principal's models.CapabilitySet.
	ContextCapabilitiesKey = "currentCapabilities"
)

type principalResolver interface {
	Resolve(ctx context.Context, email string) (*models.Principal, models.CapabilitySet, error)
}

// ResolvePrincipal loads the profile and admin role for the authenticated email.
// It must run after JWT.
func ResolvePrincipal(resolver principalResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := CurrentClaims(c)
		if !ok {
			response.Abort(c, appErrors.ErrUnauthorized)
			return
		}
		principal, caps, err := resolver.Resolve(c.Request.Context(), claims.Email)
		if err != nil {
			response.Abort(c, err)
			return
		}
		c.Set(ContextPrincipalKey, principal)
		c.Set(ContextCapabilitiesKey, caps)
		c.Next()
	}
}

// RequireCapability rejects callers missing any of caps. Rejections carry the landing page
// the caller should be sent to.
func RequireCapability(caps ...models.Capability) gin.HandlerFunc {
	return func(c *gin.Context) {
		decision := service.Guard(false, CurrentCapabilities(c), caps...)
		if decision.State == models.GuardAuthorized {
			c.Next()
			return
		}
		if decision.Redirect == models.LandingLogin {
			response.Abort(c, appErrors.WithDetails(appErrors.ErrUnauthorized, map[string]string{"redirect": decision.Redirect}))
			return
		}
		response.Abort(c, appErrors.WithDetails(appErrors.ErrForbidden, map[string]string{"redirect": decision.Redirect}))
	}
}

// RequireAnyCapability admits callers holding at least one of caps.
func RequireAnyCapability(caps ...models.Capability) gin.HandlerFunc {
	return func(c *gin.Context) {
		set := CurrentCapabilities(c)
		if set.HasAny(caps...) {
			c.Next()
			return
		}
		redirect := service.LandingPage(set)
		if set == nil || redirect == models.LandingLogin {
			response.Abort(c, appErrors.WithDetails(appErrors.ErrUnauthorized, map[string]string{"redirect": models.LandingLogin}))
			return
		}
		response.Abort(c, appErrors.WithDetails(appErrors.ErrForbidden, map[string]string{"redirect": redirect}))
	}
}

// CurrentPrincipal returns the principal stored by ResolvePrincipal.
func CurrentPrincipal(c *gin.Context) *models.Principal {
	if value, exists := c.Get(ContextPrincipalKey); exists {
		if principal, ok := value.(*models.Principal); ok {
			return principal
		}
	}
	return nil
}

// CurrentCapabilities returns the capability set, or nil when no principal was resolved.
func CurrentCapabilities(c *gin.Context) models.CapabilitySet {
	if value, exists := c.Get(ContextCapabilitiesKey); exists {
		if caps, ok := value.(models.CapabilitySet); ok {
			return caps
		}
	}
	return nil
}
