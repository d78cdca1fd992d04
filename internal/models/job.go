package models

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"
)

// JobType enumerates posting kinds.
type JobType string

const (
	JobTypeFullTime   JobType = "full-time"
	JobTypeInternship JobType = "internship"
	JobTypePartTime   JobType = "part-time"
	JobTypeContract   JobType = "contract"
)

// Valid reports whether t is a known job type.
func (t JobType) Valid() bool {
	switch t {
	case JobTypeFullTime, JobTypeInternship, JobTypePartTime, JobTypeContract:
		return true
	}
	return false
}

// JobStatus is the posting lifecycle state.
type JobStatus string

const (
	JobStatusActive JobStatus = "active"
	JobStatusClosed JobStatus = "closed"
	JobStatusDraft  JobStatus = "draft"
)

// Valid reports whether s is a known job status.
func (s JobStatus) Valid() bool {
	return s == JobStatusActive || s == JobStatusClosed || s == JobStatusDraft
}

// DepartmentList is a set of department codes persisted as a comma separated string.
type DepartmentList []string

// Value implements driver.Valuer.
func (d DepartmentList) Value() (driver.Value, error) {
	return strings.Join(d, ","), nil
}

// Scan implements sql.Scanner.
func (d *DepartmentList) Scan(value interface{}) error {
	var raw string
	switch v := value.(type) {
	case nil:
		*d = DepartmentList{}
		return nil
	case []byte:
		raw = string(v)
	case string:
		raw = v
	default:
		return fmt.Errorf("unsupported type %T for DepartmentList", value)
	}
	*d = ParseDepartmentList(raw)
	return nil
}

// Contains reports whether dep is a member of the list.
func (d DepartmentList) Contains(dep string) bool {
	for _, item := range d {
		if item == dep {
			return true
		}
	}
	return false
}

// ParseDepartmentList splits a stored department string, dropping blanks.
func ParseDepartmentList(raw string) DepartmentList {
	parts := strings.Split(raw, ",")
	out := make(DepartmentList, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// Job is a posting students may apply to.
type Job struct {
	ID             string         `db:"id" json:"id"`
	Title          string         `db:"title" json:"title"`
	Company        string         `db:"company" json:"company"`
	Location       string         `db:"location" json:"location"`
	JobType        JobType        `db:"job_type" json:"job_type"`
	Package        string         `db:"package" json:"package"`
	Description    string         `db:"description" json:"description"`
	MinCGPA        string         `db:"min_cgpa" json:"min_cgpa"`
	NoBacklogs     bool           `db:"no_backlogs" json:"no_backlogs"`
	Departments    DepartmentList `db:"departments" json:"departments"`
	Deadline       time.Time      `db:"deadline" json:"deadline"`
	DriveDate      *time.Time     `db:"drive_date" json:"drive_date,omitempty"`
	LogoFileID     *string        `db:"logo_file_id" json:"logo_file_id,omitempty"`
	DocumentFileID *string        `db:"document_file_id" json:"document_file_id,omitempty"`
	Status         JobStatus      `db:"status" json:"status"`
	CreatedBy      string         `db:"created_by" json:"created_by"`
	CreatedAt      time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at" json:"updated_at"`
}

// JobFilter captures filtering criteria for listing jobs.
type JobFilter struct {
	Status     *JobStatus
	JobType    *JobType
	Department string
	Search     string
	Page       int
	PageSize   int
	SortBy     string
	SortOrder  string
}
