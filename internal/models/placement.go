package models

import (
	"strings"
	"time"
)

// ManualPlacementPrefix marks placements recorded for students without an account.
const ManualPlacementPrefix = "manual-"

// Placement records a finalized offer. It is independent of the application workflow.
type Placement struct {
	ID                string     `db:"id" json:"id"`
	UserID            string     `db:"user_id" json:"user_id"`
	JobID             *string    `db:"job_id" json:"job_id,omitempty"`
	ApplicationID     *string    `db:"application_id" json:"application_id,omitempty"`
	StudentName       string     `db:"student_name" json:"student_name"`
	StudentEmail      *string    `db:"student_email" json:"student_email,omitempty"`
	RollNumber        *string    `db:"roll_number" json:"roll_number,omitempty"`
	Department        *string    `db:"department" json:"department,omitempty"`
	Batch             *string    `db:"batch" json:"batch,omitempty"`
	Company           string     `db:"company" json:"company"`
	Position          string     `db:"position" json:"position"`
	Package           string     `db:"package" json:"package"`
	Location          *string    `db:"location" json:"location,omitempty"`
	OfferDate         *time.Time `db:"offer_date" json:"offer_date,omitempty"`
	JoiningDate       *time.Time `db:"joining_date" json:"joining_date,omitempty"`
	PlacementDate     time.Time  `db:"placement_date" json:"placement_date"`
	Testimonial       *string    `db:"testimonial" json:"testimonial,omitempty"`
	PhotoFileID       *string    `db:"photo_file_id" json:"photo_file_id,omitempty"`
	OfferLetterFileID *string    `db:"offer_letter_file_id" json:"offer_letter_file_id,omitempty"`
	CreatedBy         string     `db:"created_by" json:"created_by"`
	CreatedAt         time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time  `db:"updated_at" json:"updated_at"`
}

// IsManual reports whether the placement has no platform account behind it.
func (p *Placement) IsManual() bool {
	return strings.HasPrefix(p.UserID, ManualPlacementPrefix)
}

// PlacementFilter captures filtering criteria for listing placements.
type PlacementFilter struct {
	Company    string
	Department string
	Batch      string
	Search     string
	Page       int
	PageSize   int
	SortBy     string
	SortOrder  string
}
