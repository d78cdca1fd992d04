package dto

import "github.com/noah-isme/campus-placement-api/internal/models"

// ApplyRequest carries the optional free-text fields of an application.
type ApplyRequest struct {
	CoverLetter    *string `json:"coverLetter" validate:"omitempty,max=5000"`
	AdditionalInfo *string `json:"additionalInfo" validate:"omitempty,max=2000"`
}

// ApplicationStatusRequest sets one application status.
type ApplicationStatusRequest struct {
	Status models.ApplicationStatus `json:"status" validate:"required"`
}

// BulkStatusRequest sets the same status on many applications.
type BulkStatusRequest struct {
	IDs    []string                 `json:"ids" validate:"required,min=1,max=500,dive,required"`
	Status models.ApplicationStatus `json:"status" validate:"required"`
}

// BulkStatusResult reports the outcome for one id.
type BulkStatusResult struct {
	ID    string `json:"id"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// BulkStatusResponse summarises a bulk update.
type BulkStatusResponse struct {
	Updated int                `json:"updated"`
	Failed  int                `json:"failed"`
	Results []BulkStatusResult `json:"results"`
}

// CountResponse wraps a single count.
type CountResponse struct {
	Count int `json:"count"`
}
