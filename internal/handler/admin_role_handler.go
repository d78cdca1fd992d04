package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus-placement-api/internal/dto"
	"github.com/noah-isme/campus-placement-api/internal/models"
	"github.com/noah-isme/campus-placement-api/pkg/response"
)

type adminRoleService interface {
	Create(ctx context.Context, principal *models.Principal, req dto.AdminRoleRequest) (*models.AdminRole, error)
	List(ctx context.Context, filter models.AdminRoleFilter) ([]models.AdminRole, error)
	Deactivate(ctx context.Context, principal *models.Principal, id string) error
}

// AdminRoleHandler manages admin role grants.
type AdminRoleHandler struct {
	roles adminRoleService
}

// NewAdminRoleHandler constructs an AdminRoleHandler.
func NewAdminRoleHandler(roles adminRoleService) *AdminRoleHandler {
	return &AdminRoleHandler{roles: roles}
}

// List godoc
// @Summary List admin roles
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param active query bool false "Only active or inactive grants"
// @Param role query string false "Role"
// @Param search query string false "Matches email or name"
// @Success 200 {object} response.Envelope
// @Router /admin/roles [get]
func (h *AdminRoleHandler) List(c *gin.Context) {
	filter := models.AdminRoleFilter{
		Role:   queryPtr[models.Role](c, "role"),
		Search: c.Query("search"),
	}
	if raw := c.Query("active"); raw != "" {
		if active, err := strconv.ParseBool(raw); err == nil {
			filter.Active = &active
		}
	}
	roles, err := h.roles.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, roles, nil)
}

// Create godoc
// @Summary Grant an admin role
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.AdminRoleRequest true "Grant"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /admin/roles [post]
func (h *AdminRoleHandler) Create(c *gin.Context) {
	principal, ok := principalFromContext(c)
	if !ok {
		return
	}
	var req dto.AdminRoleRequest
	if !bindJSON(c, &req) {
		return
	}
	role, err := h.roles.Create(c.Request.Context(), principal, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, role)
}

// Deactivate godoc
// @Summary Revoke an admin role
// @Tags Admin
// @Security BearerAuth
// @Param id path string true "Role ID"
// @Success 204
// @Router /admin/roles/{id} [delete]
func (h *AdminRoleHandler) Deactivate(c *gin.Context) {
	principal, ok := principalFromContext(c)
	if !ok {
		return
	}
	if err := h.roles.Deactivate(c.Request.Context(), principal, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
