package dto

import "time"

// PlacementRequest is the admin payload for recording a placement.
type PlacementRequest struct {
	UserID        *string    `json:"userId"`
	JobID         *string    `json:"jobId"`
	ApplicationID *string    `json:"applicationId"`
	StudentName   string     `json:"studentName" validate:"required,max=120"`
	StudentEmail  *string    `json:"studentEmail" validate:"omitempty,email"`
	RollNumber    *string    `json:"rollNumber" validate:"omitempty,max=40"`
	Department    *string    `json:"department" validate:"omitempty,department"`
	Batch         *string    `json:"batch" validate:"omitempty,max=20"`
	Company       string     `json:"company" validate:"required,max=200"`
	Position      string     `json:"position" validate:"max=200"`
	Package       string     `json:"package" validate:"required,max=100"`
	Location      *string    `json:"location" validate:"omitempty,max=200"`
	OfferDate     *time.Time `json:"offerDate"`
	JoiningDate   *time.Time `json:"joiningDate"`
	PlacementDate *time.Time `json:"placementDate"`
	Testimonial   *string    `json:"testimonial" validate:"omitempty,max=2000"`
}

// PlacementTestimonial is the public view of a placement shown to students.
type PlacementTestimonial struct {
	ID            string        `json:"id"`
	StudentName   string        `json:"studentName"`
	Department    *string       `json:"department,omitempty"`
	Batch         *string       `json:"batch,omitempty"`
	Company       string        `json:"company"`
	Position      string        `json:"position"`
	Package       string        `json:"package"`
	PlacementDate time.Time     `json:"placementDate"`
	Testimonial   *string       `json:"testimonial,omitempty"`
	Photo         *FileResponse `json:"photo,omitempty"`
}
