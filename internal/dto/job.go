package dto

import (
	"time"

	"github.com/noah-isme/campus-placement-api/internal/models"
)

// JobRequest is the admin payload for creating or editing a posting.
type JobRequest struct {
	Title       string            `json:"title" validate:"required,max=200"`
	Company     string            `json:"company" validate:"required,max=200"`
	Location    string            `json:"location" validate:"max=200"`
	JobType     models.JobType    `json:"jobType" validate:"required,oneof=full-time internship part-time contract"`
	Package     string            `json:"package" validate:"max=100"`
	Description string            `json:"description"`
	MinCGPA     string            `json:"minCgpa" validate:"omitempty,grade"`
	NoBacklogs  bool              `json:"noBacklogs"`
	Departments []string          `json:"departments" validate:"required,min=1,dive,department"`
	Deadline    time.Time         `json:"deadline" validate:"required"`
	DriveDate   *time.Time        `json:"driveDate"`
	Status      *models.JobStatus `json:"status" validate:"omitempty,oneof=active closed draft"`
}

// JobStatusRequest changes a posting status.
type JobStatusRequest struct {
	Status models.JobStatus `json:"status" validate:"required,oneof=active closed draft"`
}
