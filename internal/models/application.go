package models

import "time"

// ApplicationStatus is the review state of an application.
type ApplicationStatus string

const (
	ApplicationApplied            ApplicationStatus = "applied"
	ApplicationUnderReview        ApplicationStatus = "under_review"
	ApplicationInterviewScheduled ApplicationStatus = "interview_scheduled"
	ApplicationSelected           ApplicationStatus = "selected"
	ApplicationRejected           ApplicationStatus = "rejected"
)

// ApplicationStatuses lists every status in lifecycle order.
var ApplicationStatuses = []ApplicationStatus{
	ApplicationApplied,
	ApplicationUnderReview,
	ApplicationInterviewScheduled,
	ApplicationSelected,
	ApplicationRejected,
}

// Valid reports whether s is a known status.
func (s ApplicationStatus) Valid() bool {
	for _, status := range ApplicationStatuses {
		if status == s {
			return true
		}
	}
	return false
}

// Terminal reports whether s ends the review process.
func (s ApplicationStatus) Terminal() bool {
	return s == ApplicationSelected || s == ApplicationRejected
}

// Application joins one user to one job.
type Application struct {
	ID             string            `db:"id" json:"id"`
	JobID          string            `db:"job_id" json:"job_id"`
	UserID         string            `db:"user_id" json:"user_id"`
	JobTitle       string            `db:"job_title" json:"job_title"`
	Company        string            `db:"company" json:"company"`
	Status         ApplicationStatus `db:"status" json:"status"`
	CoverLetter    *string           `db:"cover_letter" json:"cover_letter,omitempty"`
	AdditionalInfo *string           `db:"additional_info" json:"additional_info,omitempty"`
	AppliedAt      time.Time         `db:"applied_at" json:"applied_at"`
	UpdatedAt      time.Time         `db:"updated_at" json:"updated_at"`
}

// ApplicationDetail is an application enriched with its owner's profile.
type ApplicationDetail struct {
	Application
	Profile *UserProfile `json:"profile,omitempty"`
}

// ApplicationFilter captures filtering criteria for listing applications.
type ApplicationFilter struct {
	IDs        []string
	Status     *ApplicationStatus
	JobID      string
	UserID     string
	Department string
	Search     string
	Page       int
	PageSize   int
	SortBy     string
	SortOrder  string
}
