package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/campus-placement-api/internal/middleware"
	"github.com/noah-isme/campus-placement-api/internal/models"
)

type tokenValidator interface {
	ValidateToken(ctx context.Context, token string) (*models.JWTClaims, error)
}

type principalResolver interface {
	Resolve(ctx context.Context, email string) (*models.Principal, models.CapabilitySet, error)
}

type auditWriter interface {
	Create(ctx context.Context, log *models.AuditLog) error
}

// Routes bundles everything RegisterRoutes mounts.
type Routes struct {
	Tokens     tokenValidator
	Principals principalResolver
	Audit      auditWriter
	Logger     *zap.Logger

	Auth         *AuthHandler
	Profiles     *ProfileHandler
	Jobs         *JobHandler
	Applications *ApplicationHandler
	Placements   *PlacementHandler
	Roles        *AdminRoleHandler
	Exports      *ExportHandler
	Files        *FileHandler
	System       *SystemHandler
}

// RegisterRoutes mounts the versioned API on api.
func (r *Routes) RegisterRoutes(api gin.IRouter) {
	student := middleware.RequireCapability(models.CapabilityStudent)
	anyone := middleware.RequireAnyCapability(models.CapabilityStudent, models.CapabilityAdmin)
	admin := middleware.RequireCapability(models.CapabilityAdmin)
	adminOnly := middleware.RequireCapability(models.CapabilityAdminOnly)
	audit := func(action, resource string) gin.HandlerFunc {
		return middleware.Audit(r.Audit, action, resource, r.Logger)
	}

	api.GET("/files/:token", r.Files.Download)
	api.GET("/exports/:token", r.Exports.Download)

	auth := api.Group("/auth")
	auth.POST("/otp/send", r.Auth.SendCode)
	auth.POST("/otp/verify", r.Auth.VerifyCode)

	authed := api.Group("", middleware.JWT(r.Tokens))
	authed.POST("/auth/register", audit(models.AuditActionRegister, "profile"), r.Auth.Register)
	authed.POST("/auth/logout", r.Auth.Logout)

	resolved := authed.Group("", middleware.ResolvePrincipal(r.Principals))
	resolved.GET("/auth/me", r.Auth.Me)

	resolved.GET("/profile", student, r.Profiles.GetMine)
	resolved.PUT("/profile", student, r.Profiles.UpdateMine)
	resolved.POST("/profile/files/:kind", student, r.Profiles.UploadFile)

	resolved.GET("/jobs", anyone, r.Jobs.List)
	resolved.GET("/jobs/:id", anyone, r.Jobs.Get)
	resolved.GET("/jobs/:id/eligibility", student, r.Jobs.Eligibility)
	resolved.POST("/jobs/:id/apply", student, r.Applications.Apply)
	resolved.GET("/applications/mine", student, r.Applications.Mine)
	resolved.GET("/placements", anyone, r.Placements.Testimonials)

	adm := resolved.Group("/admin", admin)
	adm.POST("/jobs", audit(models.AuditActionJobCreate, "job"), r.Jobs.Create)
	adm.PUT("/jobs/:id", audit(models.AuditActionJobUpdate, "job"), r.Jobs.Update)
	adm.PATCH("/jobs/:id/status", audit(models.AuditActionJobUpdate, "job"), r.Jobs.UpdateStatus)
	adm.POST("/jobs/:id/files/:kind", audit(models.AuditActionJobUpdate, "job"), r.Jobs.UploadFile)
	adm.GET("/jobs/:id/applications/count", r.Applications.CountForJob)

	adm.GET("/applications", r.Applications.List)
	adm.PATCH("/applications/:id/status", audit(models.AuditActionApplicationStatus, "application"), r.Applications.UpdateStatus)
	adm.POST("/applications/bulk-status", audit(models.AuditActionApplicationStatus, "application"), r.Applications.BulkStatus)

	adm.GET("/profiles/:id", r.Profiles.Get)

	adm.GET("/exports/fields", r.Exports.Fields)
	adm.POST("/exports", audit(models.AuditActionExport, "export"), r.Exports.Create)

	adm.GET("/placements", r.Placements.List)
	adm.POST("/placements", audit(models.AuditActionPlacementCreate, "placement"), r.Placements.Create)
	adm.GET("/placements/:id", r.Placements.Get)
	adm.PUT("/placements/:id", audit(models.AuditActionPlacementUpdate, "placement"), r.Placements.Update)
	adm.DELETE("/placements/:id", audit(models.AuditActionPlacementDelete, "placement"), r.Placements.Delete)
	adm.POST("/placements/:id/files/:kind", audit(models.AuditActionPlacementUpdate, "placement"), r.Placements.UploadFile)

	adm.GET("/roles", adminOnly, r.Roles.List)
	adm.POST("/roles", adminOnly, audit(models.AuditActionRoleGrant, "admin_role"), r.Roles.Create)
	adm.DELETE("/roles/:id", adminOnly, audit(models.AuditActionRoleRevoke, "admin_role"), r.Roles.Deactivate)

	adm.GET("/system/metrics", adminOnly, r.System.Snapshot)
}
