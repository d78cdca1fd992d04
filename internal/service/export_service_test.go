package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/noah-isme/campus-placement-api/internal/dto"
	"github.com/noah-isme/campus-placement-api/internal/models"
	appErrors "github.com/noah-isme/campus-placement-api/pkg/errors"
	"github.com/noah-isme/campus-placement-api/pkg/storage"
)

type stubExportSource struct {
	details []models.ApplicationDetail
	filter  models.ApplicationFilter
}

func (s *stubExportSource) ExportDetails(_ context.Context, filter models.ApplicationFilter) ([]models.ApplicationDetail, error) {
	s.filter = filter
	return s.details, nil
}

func exportDetails() []models.ApplicationDetail {
	resume := "resume/asha.pdf"
	return []models.ApplicationDetail{
		{
			Application: models.Application{ID: "app-1", JobTitle: "SDE", Company: "Acme", Status: models.ApplicationApplied, AppliedAt: time.Date(2024, 3, 5, 9, 0, 0, 0, time.UTC)},
			Profile:     &models.UserProfile{ID: "user-1", FullName: "Asha Rao", Department: "IT", CurrentCGPA: "8.4", ResumeFileID: &resume},
		},
		{
			Application: models.Application{ID: "app-2", JobTitle: "SDE", Company: "Acme", Status: models.ApplicationSelected},
			Profile:     &models.UserProfile{ID: "user-2", FullName: "Ravi K", Department: "CSE", CurrentCGPA: "7.9"},
		},
		{
			Application: models.Application{ID: "app-3", JobTitle: "SDE", Company: "Acme", Status: models.ApplicationRejected},
		},
	}
}

func newTestExportService(t *testing.T, source exportSource) *ExportService {
	t.Helper()
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	svc := NewExportService(source, store, storage.NewSignedURLSigner("secret", time.Hour), nil, nil, ExportConfig{URLPrefix: "/api/v1/exports/"}, nil, nil)
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func readExport(t *testing.T, svc *ExportService, url string) (string, []byte) {
	t.Helper()
	token := strings.TrimPrefix(url, "/api/v1/exports/")
	file, name, err := svc.Open(token)
	require.NoError(t, err)
	defer file.Close()
	data, err := io.ReadAll(file)
	require.NoError(t, err)
	return name, data
}

func TestExportServiceFieldsCatalog(t *testing.T) {
	svc := newTestExportService(t, &stubExportSource{})
	fields := svc.Fields()
	assert.Len(t, fields, 35)

	keys := make(map[string]bool, len(fields))
	for _, f := range fields {
		assert.False(t, keys[f.Key], "duplicate key %s", f.Key)
		keys[f.Key] = true
	}
	assert.True(t, keys["sem8"])
	assert.True(t, keys["resume"])
}

func TestExportServiceCSV(t *testing.T) {
	source := &stubExportSource{details: exportDetails()}
	svc := newTestExportService(t, source)

	resp, err := svc.Export(context.Background(), coordinator(), dto.ExportRequest{
		Fields: []string{"full_name", "applied_at", "resume", "phone", "full_name"},
		Format: dto.ExportCSV,
		Status: nil,
		JobID:  "job-1",
	})
	require.NoError(t, err)
	assert.Equal(t, 3, resp.Rows)
	assert.True(t, strings.HasSuffix(resp.Filename, ".csv"))
	assert.Equal(t, "job-1", source.filter.JobID)

	name, data := readExport(t, svc, resp.URL)
	assert.Equal(t, resp.Filename, name)
	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Equal(t, []string{"Full Name", "Applied On", "Resume", "Phone"}, records[0])
	assert.Equal(t, []string{"Asha Rao", "05/03/2024", "resume/asha.pdf", "N/A"}, records[1])
	assert.Equal(t, []string{"N/A", "N/A", "N/A", "N/A"}, records[3])
}

func TestExportServiceIDsOverrideFilter(t *testing.T) {
	source := &stubExportSource{details: exportDetails()[:1]}
	svc := newTestExportService(t, source)

	_, err := svc.Export(context.Background(), coordinator(), dto.ExportRequest{
		ApplicationIDs: []string{"app-1"},
		JobID:          "job-1",
		Format:         dto.ExportPDF,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"app-1"}, source.filter.IDs)
	assert.Empty(t, source.filter.JobID)
}

func TestExportServiceXLSXSplitByDepartment(t *testing.T) {
	svc := newTestExportService(t, &stubExportSource{details: exportDetails()})

	resp, err := svc.Export(context.Background(), coordinator(), dto.ExportRequest{
		Fields:            []string{"full_name", "current_cgpa"},
		Format:            dto.ExportXLSX,
		SplitByDepartment: true,
	})
	require.NoError(t, err)

	_, data := readExport(t, svc, resp.URL)
	book, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer book.Close()
	assert.Equal(t, []string{"CSE", "IT", unknownDepartment}, book.GetSheetList())

	rows, err := book.GetRows("IT")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"Asha Rao", "8.4"}, rows[1])
}

func TestExportServiceRejectsBadRequests(t *testing.T) {
	svc := newTestExportService(t, &stubExportSource{})

	_, err := svc.Export(context.Background(), coordinator(), dto.ExportRequest{Format: dto.ExportCSV, SplitByDepartment: true})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, err = svc.Export(context.Background(), coordinator(), dto.ExportRequest{Format: dto.ExportCSV, Fields: []string{"shoe_size"}})
	require.Error(t, err)
	assert.Equal(t, "unknown export field shoe_size", appErrors.FromError(err).Message)

	_, err = svc.Export(context.Background(), coordinator(), dto.ExportRequest{Format: "docx"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestExportServiceOpenRejectsForeignTokens(t *testing.T) {
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	signer := storage.NewSignedURLSigner("secret", time.Hour)
	svc := NewExportService(&stubExportSource{}, store, signer, nil, nil, ExportConfig{}, nil, nil)

	fileToken, _, err := signer.Generate(fileOwner, "resume/a.pdf")
	require.NoError(t, err)
	_, _, err = svc.Open(fileToken)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	missing, _, err := signer.Generate(exportOwner, "gone.csv")
	require.NoError(t, err)
	_, _, err = svc.Open(missing)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
