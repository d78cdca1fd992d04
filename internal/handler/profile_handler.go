package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus-placement-api/internal/dto"
	"github.com/noah-isme/campus-placement-api/internal/models"
	"github.com/noah-isme/campus-placement-api/internal/service"
	"github.com/noah-isme/campus-placement-api/pkg/response"
)

type profileService interface {
	GetMine(ctx context.Context, principal *models.Principal) (*models.UserProfile, error)
	UpdateMine(ctx context.Context, principal *models.Principal, req dto.ProfileRequest) (*models.UserProfile, error)
	SetAttachment(ctx context.Context, principal *models.Principal, category service.FileCategory, fileID string) (*models.UserProfile, error)
	Get(ctx context.Context, id string) (*models.UserProfile, error)
}

// ProfileHandler exposes the caller's profile and the admin profile lookup.
type ProfileHandler struct {
	profiles profileService
	files    fileService
}

// NewProfileHandler constructs a ProfileHandler.
func NewProfileHandler(profiles profileService, files fileService) *ProfileHandler {
	return &ProfileHandler{profiles: profiles, files: files}
}

// GetMine godoc
// @Summary Get own profile
// @Tags Profile
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /profile [get]
func (h *ProfileHandler) GetMine(c *gin.Context) {
	principal, ok := principalFromContext(c)
	if !ok {
		return
	}
	profile, err := h.profiles.GetMine(c.Request.Context(), principal)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, profile, nil)
}

// UpdateMine godoc
// @Summary Update own profile
// @Tags Profile
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.ProfileRequest true "Profile"
// @Success 200 {object} response.Envelope
// @Router /profile [put]
func (h *ProfileHandler) UpdateMine(c *gin.Context) {
	principal, ok := principalFromContext(c)
	if !ok {
		return
	}
	var req dto.ProfileRequest
	if !bindJSON(c, &req) {
		return
	}
	profile, err := h.profiles.UpdateMine(c.Request.Context(), principal, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, profile, nil)
}

// UploadFile godoc
// @Summary Upload resume or photo
// @Tags Profile
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param kind path string true "resume or photo"
// @Param file formData file true "File"
// @Success 201 {object} response.Envelope
// @Router /profile/files/{kind} [post]
func (h *ProfileHandler) UploadFile(c *gin.Context) {
	principal, ok := principalFromContext(c)
	if !ok {
		return
	}
	category := service.FileCategory(c.Param("kind"))
	upload(c, h.files, category, func(fileID string) (interface{}, error) {
		return h.profiles.SetAttachment(c.Request.Context(), principal, category, fileID)
	})
}

// Get godoc
// @Summary Get a profile by id
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "Profile ID"
// @Success 200 {object} response.Envelope
// @Router /admin/profiles/{id} [get]
func (h *ProfileHandler) Get(c *gin.Context) {
	profile, err := h.profiles.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, profile, nil)
}
