package dto

import "github.com/noah-isme/campus-placement-api/internal/models"

// AdminRoleRequest grants an admin role to an email.
type AdminRoleRequest struct {
	Email      string      `json:"email" validate:"required,email"`
	Role       models.Role `json:"role" validate:"required,oneof=placement_rep placement_officer placement_coordinator"`
	Name       string      `json:"name" validate:"required,max=120"`
	Department *string     `json:"department" validate:"omitempty,department"`
}
