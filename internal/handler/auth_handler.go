package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus-placement-api/internal/dto"
	"github.com/noah-isme/campus-placement-api/internal/middleware"
	"github.com/noah-isme/campus-placement-api/internal/models"
	"github.com/noah-isme/campus-placement-api/internal/service"
	appErrors "github.com/noah-isme/campus-placement-api/pkg/errors"
	"github.com/noah-isme/campus-placement-api/pkg/response"
)

type authService interface {
	SendCode(ctx context.Context, req dto.SendCodeRequest) error
	VerifyCode(ctx context.Context, req dto.VerifyCodeRequest, meta service.ClientMeta) (*models.Session, error)
	IssueSession(email, profileID string) (*models.Session, error)
	Logout(ctx context.Context, claims *models.JWTClaims, meta service.ClientMeta) error
}

type registrar interface {
	Register(ctx context.Context, email string, req dto.ProfileRequest) (*models.UserProfile, error)
}

// AuthHandler wires the email code login flow.
type AuthHandler struct {
	auth     authService
	profiles registrar
}

// NewAuthHandler creates a new handler.
func NewAuthHandler(auth authService, profiles registrar) *AuthHandler {
	return &AuthHandler{auth: auth, profiles: profiles}
}

// SendCode godoc
// @Summary Send a login code
// @Description Mails a one-time code to an institutional email address
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body dto.SendCodeRequest true "Email"
// @Success 202 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /auth/otp/send [post]
func (h *AuthHandler) SendCode(c *gin.Context) {
	var req dto.SendCodeRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.auth.SendCode(c.Request.Context(), req); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusAccepted, gin.H{"sent": true}, nil)
}

// VerifyCode godoc
// @Summary Verify a login code
// @Description Exchanges a valid code for a session token. registered is false until a profile exists.
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body dto.VerifyCodeRequest true "Email and code"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /auth/otp/verify [post]
func (h *AuthHandler) VerifyCode(c *gin.Context) {
	var req dto.VerifyCodeRequest
	if !bindJSON(c, &req) {
		return
	}
	session, err := h.auth.VerifyCode(c.Request.Context(), req, clientMeta(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, session, nil)
}

// Register godoc
// @Summary Register a student profile
// @Description Creates the caller's profile and returns a refreshed session carrying it
// @Tags Authentication
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.ProfileRequest true "Profile"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	claims, ok := middleware.CurrentClaims(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.ProfileRequest
	if !bindJSON(c, &req) {
		return
	}
	profile, err := h.profiles.Register(c.Request.Context(), claims.Email, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	session, err := h.auth.IssueSession(profile.Email, profile.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, gin.H{"profile": profile, "session": session})
}

// Logout godoc
// @Summary End the current session
// @Tags Authentication
// @Security BearerAuth
// @Success 204
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	claims, ok := middleware.CurrentClaims(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	if err := h.auth.Logout(c.Request.Context(), claims, clientMeta(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Me godoc
// @Summary Describe the caller
// @Description Returns the profile, admin role, capability tags and landing page of the caller
// @Tags Authentication
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	principal, ok := principalFromContext(c)
	if !ok {
		return
	}
	caps := middleware.CurrentCapabilities(c)
	tags := make([]string, 0, len(caps))
	for _, capability := range caps.List() {
		tags = append(tags, string(capability))
	}
	resp := dto.MeResponse{Email: principal.Email, Capabilities: tags, Landing: service.LandingPage(caps)}
	if principal.Profile != nil {
		resp.Profile = principal.Profile
	}
	if principal.AdminRole != nil {
		resp.AdminRole = principal.AdminRole
	}
	response.JSON(c, http.StatusOK, resp, nil)
}

func clientMeta(c *gin.Context) service.ClientMeta {
	return service.ClientMeta{IP: c.ClientIP(), UserAgent: c.GetHeader("User-Agent")}
}
