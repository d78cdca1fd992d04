package models

import "time"

// AdminRole grants admin capabilities to an email independently of its profile.
type AdminRole struct {
	ID         string    `db:"id" json:"id"`
	Email      string    `db:"email" json:"email"`
	Role       Role      `db:"role" json:"role"`
	Name       string    `db:"name" json:"name"`
	Department *string   `db:"department" json:"department,omitempty"`
	Active     bool      `db:"active" json:"active"`
	CreatedBy  *string   `db:"created_by" json:"created_by,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// AdminRoleFilter narrows admin role listings.
type AdminRoleFilter struct {
	Active *bool
	Role   *Role
	Search string
}
