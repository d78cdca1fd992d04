package models

import "time"

// Audit actions recorded for admin and account operations.
const (
	AuditActionLogin             = "LOGIN"
	AuditActionLogout            = "LOGOUT"
	AuditActionRegister          = "REGISTER"
	AuditActionJobCreate         = "JOB_CREATE"
	AuditActionJobUpdate         = "JOB_UPDATE"
	AuditActionApplicationStatus = "APPLICATION_STATUS"
	AuditActionPlacementCreate   = "PLACEMENT_CREATE"
	AuditActionPlacementUpdate   = "PLACEMENT_UPDATE"
	AuditActionPlacementDelete   = "PLACEMENT_DELETE"
	AuditActionRoleGrant         = "ROLE_GRANT"
	AuditActionRoleRevoke        = "ROLE_REVOKE"
	AuditActionExport            = "EXPORT"
)

// AuditLog represents an audit trail record.
type AuditLog struct {
	ID         string    `db:"id" json:"id"`
	ActorEmail *string   `db:"actor_email" json:"actor_email,omitempty"`
	Action     string    `db:"action" json:"action"`
	Resource   string    `db:"resource" json:"resource"`
	ResourceID *string   `db:"resource_id" json:"resource_id,omitempty"`
	OldValues  []byte    `db:"old_values" json:"old_values,omitempty"`
	NewValues  []byte    `db:"new_values" json:"new_values,omitempty"`
	IPAddress  string    `db:"ip_address" json:"ip_address"`
	UserAgent  string    `db:"user_agent" json:"user_agent"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
