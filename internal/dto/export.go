package dto

import (
	"time"

	"github.com/noah-isme/campus-placement-api/internal/models"
)

// Export formats.
const (
	ExportCSV  = "csv"
	ExportXLSX = "xlsx"
	ExportPDF  = "pdf"
)

// ExportRequest selects rows and columns for an application export.
// When ApplicationIDs is empty the filter fields select the rows.
type ExportRequest struct {
	Fields            []string                  `json:"fields" validate:"omitempty,dive,required"`
	ApplicationIDs    []string                  `json:"applicationIds" validate:"omitempty,max=5000"`
	Status            *models.ApplicationStatus `json:"status"`
	JobID             string                    `json:"jobId"`
	Department        string                    `json:"department" validate:"omitempty,department"`
	Search            string                    `json:"search"`
	Format            string                    `json:"format" validate:"required,oneof=csv xlsx pdf"`
	SplitByDepartment bool                      `json:"splitByDepartment"`
}

// ExportField describes one catalog column.
type ExportField struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Group string `json:"group"`
}

// ExportResponse points at the generated file.
type ExportResponse struct {
	Filename  string    `json:"filename"`
	Rows      int       `json:"rows"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
}
