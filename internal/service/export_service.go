package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/campus-placement-api/internal/dto"
	"github.com/noah-isme/campus-placement-api/internal/models"
	appErrors "github.com/noah-isme/campus-placement-api/pkg/errors"
	"github.com/noah-isme/campus-placement-api/pkg/export"
	"github.com/noah-isme/campus-placement-api/pkg/storage"
)

const (
	exportOwner       = "exports"
	exportDateLayout  = "02/01/2006"
	exportPlaceholder = "N/A"
	unknownDepartment = "Unassigned"
)

type exportSource interface {
	ExportDetails(ctx context.Context, filter models.ApplicationFilter) ([]models.ApplicationDetail, error)
}

type exportStorage interface {
	Save(key string, data []byte) (string, error)
	Open(key string) (*os.File, error)
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type fileLinker interface {
	Link(fileID string) (*dto.FileResponse, error)
}

type exportField struct {
	dto.ExportField
	value func(d *models.ApplicationDetail, links fileLinker) string
}

// ExportConfig defines the download URL prefix and retention of generated files.
type ExportConfig struct {
	URLPrefix string
	ResultTTL time.Duration
}

// ExportService renders application tables into downloadable files.
type ExportService struct {
	source    exportSource
	storage   exportStorage
	signer    urlSigner
	links     fileLinker
	metrics   *MetricsService
	csv       *export.CSVExporter
	xlsx      *export.XLSXExporter
	pdf       *export.PDFExporter
	cfg       ExportConfig
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewExportService constructs an ExportService. links may be nil, in which case document
// columns carry raw file ids.
func NewExportService(source exportSource, store exportStorage, signer urlSigner, links fileLinker, metrics *MetricsService, cfg ExportConfig, validate *validator.Validate, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = dto.NewValidator()
	}
	if cfg.URLPrefix == "" {
		cfg.URLPrefix = "/api/v1/exports"
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	cfg.URLPrefix = strings.TrimRight(cfg.URLPrefix, "/")
	return &ExportService{
		source:    source,
		storage:   store,
		signer:    signer,
		links:     links,
		metrics:   metrics,
		csv:       export.NewCSVExporter(exportPlaceholder),
		xlsx:      export.NewXLSXExporter(exportPlaceholder),
		pdf:       export.NewPDFExporter(exportPlaceholder),
		cfg:       cfg,
		validator: validate,
		logger:    logger,
		now:       time.Now,
	}
}

// Fields lists the export catalog in column order.
func (s *ExportService) Fields() []dto.ExportField {
	out := make([]dto.ExportField, len(exportCatalog))
	for i, f := range exportCatalog {
		out[i] = f.ExportField
	}
	return out
}

// Export renders the selected applications and stores the file behind a signed link.
func (s *ExportService) Export(ctx context.Context, principal *models.Principal, req dto.ExportRequest) (*dto.ExportResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	if req.SplitByDepartment && req.Format != dto.ExportXLSX {
		return nil, appErrors.Clone(appErrors.ErrValidation, "splitByDepartment requires xlsx format")
	}
	fields, err := selectFields(req.Fields)
	if err != nil {
		return nil, err
	}

	filter := models.ApplicationFilter{IDs: req.ApplicationIDs}
	if len(req.ApplicationIDs) == 0 {
		filter.Status = req.Status
		filter.JobID = req.JobID
		filter.Department = req.Department
		filter.Search = strings.TrimSpace(req.Search)
	}
	details, err := s.source.ExportDetails(ctx, filter)
	if err != nil {
		return nil, err
	}

	payload, err := s.render(req, fields, details)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}

	now := s.now().UTC()
	filename := fmt.Sprintf("applications_%s_%s.%s", now.Format("20060102_150405"), uuid.NewString()[:8], req.Format)
	key, err := s.storage.Save(filename, payload)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store export")
	}
	token, expiresAt, err := s.signer.Generate(exportOwner, key)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign export url")
	}

	s.metrics.ExportGenerated(req.Format)
	actor := ""
	if principal != nil {
		actor = principal.Email
	}
	s.logger.Info("export generated",
		zap.String("format", req.Format),
		zap.Int("rows", len(details)),
		zap.Int("columns", len(fields)),
		zap.String("by", actor),
	)
	return &dto.ExportResponse{
		Filename:  filename,
		Rows:      len(details),
		URL:       s.cfg.URLPrefix + "/" + token,
		ExpiresAt: expiresAt,
	}, nil
}

// Open resolves a download token to the stored file and its name. The caller closes the file.
func (s *ExportService) Open(token string) (*os.File, string, error) {
	owner, key, _, err := s.signer.Parse(token, false)
	if err != nil {
		if errors.Is(err, storage.ErrTokenExpired) {
			return nil, "", appErrors.Clone(appErrors.ErrForbidden, "export link expired")
		}
		return nil, "", appErrors.Clone(appErrors.ErrForbidden, "invalid export link")
	}
	if owner != exportOwner {
		return nil, "", appErrors.Clone(appErrors.ErrForbidden, "invalid export link")
	}
	file, err := s.storage.Open(key)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, "", appErrors.Clone(appErrors.ErrNotFound, "export not found")
		}
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open export")
	}
	return file, path.Base(key), nil
}

// Cleanup removes generated files older than ttl, or the configured retention when ttl <= 0.
func (s *ExportService) Cleanup(ttl time.Duration) ([]string, error) {
	if ttl <= 0 {
		ttl = s.cfg.ResultTTL
	}
	return s.storage.CleanupOlderThan(ttl)
}

func (s *ExportService) render(req dto.ExportRequest, fields []exportField, details []models.ApplicationDetail) ([]byte, error) {
	switch req.Format {
	case dto.ExportCSV:
		return s.csv.Render(s.dataset(fields, details))
	case dto.ExportPDF:
		return s.pdf.Render(s.dataset(fields, details), "Applications")
	case dto.ExportXLSX:
		if !req.SplitByDepartment {
			return s.xlsx.Render([]export.Sheet{{Name: "Applications", Data: s.dataset(fields, details)}})
		}
		groups := groupByDepartment(details)
		sheets := make([]export.Sheet, 0, len(groups))
		for _, g := range groups {
			sheets = append(sheets, export.Sheet{Name: g.department, Data: s.dataset(fields, g.details)})
		}
		if len(sheets) == 0 {
			sheets = append(sheets, export.Sheet{Name: "Applications", Data: s.dataset(fields, nil)})
		}
		return s.xlsx.Render(sheets)
	}
	return nil, fmt.Errorf("unsupported format %s", req.Format)
}

func (s *ExportService) dataset(fields []exportField, details []models.ApplicationDetail) export.Dataset {
	headers := make([]string, len(fields))
	for i, f := range fields {
		headers[i] = f.Label
	}
	rows := make([]map[string]string, len(details))
	for i := range details {
		row := make(map[string]string, len(fields))
		for _, f := range fields {
			row[f.Label] = f.value(&details[i], s.links)
		}
		rows[i] = row
	}
	return export.Dataset{Headers: headers, Rows: rows}
}

type departmentGroup struct {
	department string
	details    []models.ApplicationDetail
}

// groupByDepartment orders known departments first, then any others alphabetically.
func groupByDepartment(details []models.ApplicationDetail) []departmentGroup {
	buckets := make(map[string][]models.ApplicationDetail)
	for _, d := range details {
		dep := unknownDepartment
		if d.Profile != nil && d.Profile.Department != "" {
			dep = d.Profile.Department
		}
		buckets[dep] = append(buckets[dep], d)
	}

	groups := make([]departmentGroup, 0, len(buckets))
	for _, dep := range models.Departments {
		if rows, ok := buckets[dep]; ok {
			groups = append(groups, departmentGroup{department: dep, details: rows})
			delete(buckets, dep)
		}
	}
	rest := make([]string, 0, len(buckets))
	for dep := range buckets {
		rest = append(rest, dep)
	}
	sort.Strings(rest)
	for _, dep := range rest {
		groups = append(groups, departmentGroup{department: dep, details: buckets[dep]})
	}
	return groups
}

func selectFields(keys []string) ([]exportField, error) {
	if len(keys) == 0 {
		return exportCatalog, nil
	}
	index := make(map[string]exportField, len(exportCatalog))
	for _, f := range exportCatalog {
		index[f.Key] = f
	}
	out := make([]exportField, 0, len(keys))
	seen := make(map[string]struct{}, len(keys))
	for _, key := range keys {
		f, ok := index[key]
		if !ok {
			return nil, appErrors.Clone(appErrors.ErrValidation, "unknown export field "+key)
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, f)
	}
	return out, nil
}

func deref(v *string) string {
	if v == nil {
		return ""
	}
	return strings.TrimSpace(*v)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(exportDateLayout)
}

func profileValue(get func(p *models.UserProfile) string) func(*models.ApplicationDetail, fileLinker) string {
	return func(d *models.ApplicationDetail, _ fileLinker) string {
		if d.Profile == nil {
			return ""
		}
		return get(d.Profile)
	}
}

func appValue(get func(a *models.Application) string) func(*models.ApplicationDetail, fileLinker) string {
	return func(d *models.ApplicationDetail, _ fileLinker) string {
		return get(&d.Application)
	}
}

func semesterValue(index int) func(*models.ApplicationDetail, fileLinker) string {
	return profileValue(func(p *models.UserProfile) string {
		return deref(p.SemesterGrades()[index])
	})
}

func documentValue(get func(p *models.UserProfile) *string) func(*models.ApplicationDetail, fileLinker) string {
	return func(d *models.ApplicationDetail, links fileLinker) string {
		if d.Profile == nil {
			return ""
		}
		fileID := deref(get(d.Profile))
		if fileID == "" || links == nil {
			return fileID
		}
		link, err := links.Link(fileID)
		if err != nil {
			return fileID
		}
		return link.URL
	}
}

func field(key, label, group string, value func(*models.ApplicationDetail, fileLinker) string) exportField {
	return exportField{ExportField: dto.ExportField{Key: key, Label: label, Group: group}, value: value}
}

var exportCatalog = []exportField{
	field("application_id", "Application ID", "identity", appValue(func(a *models.Application) string { return a.ID })),
	field("job_id", "Job ID", "identity", appValue(func(a *models.Application) string { return a.JobID })),
	field("job_title", "Job Title", "identity", appValue(func(a *models.Application) string { return a.JobTitle })),
	field("company", "Company", "identity", appValue(func(a *models.Application) string { return a.Company })),
	field("status", "Status", "identity", appValue(func(a *models.Application) string { return string(a.Status) })),
	field("applied_at", "Applied On", "identity", appValue(func(a *models.Application) string { return formatDate(a.AppliedAt) })),
	field("updated_at", "Last Updated", "identity", appValue(func(a *models.Application) string { return formatDate(a.UpdatedAt) })),
	field("full_name", "Full Name", "identity", profileValue(func(p *models.UserProfile) string { return p.FullName })),
	field("roll_number", "Roll Number", "identity", profileValue(func(p *models.UserProfile) string { return p.RollNumber })),
	field("registered_at", "Registered On", "identity", profileValue(func(p *models.UserProfile) string { return formatDate(p.CreatedAt) })),

	field("email", "College Email", "contact", profileValue(func(p *models.UserProfile) string { return p.Email })),
	field("personal_email", "Personal Email", "contact", profileValue(func(p *models.UserProfile) string { return deref(p.PersonalEmail) })),
	field("phone", "Phone", "contact", profileValue(func(p *models.UserProfile) string { return deref(p.Phone) })),

	field("department", "Department", "academic", profileValue(func(p *models.UserProfile) string { return p.Department })),
	field("batch", "Batch", "academic", profileValue(func(p *models.UserProfile) string { return p.Batch })),
	field("current_cgpa", "Current CGPA", "academic", profileValue(func(p *models.UserProfile) string { return p.CurrentCGPA })),
	field("active_backlog", "Active Backlog", "academic", profileValue(func(p *models.UserProfile) string { return p.ActiveBacklog })),
	field("history_of_arrear", "History of Arrear", "academic", profileValue(func(p *models.UserProfile) string { return p.HistoryOfArrear })),
	field("backlog_count", "Backlog Count", "academic", profileValue(func(p *models.UserProfile) string { return strconv.Itoa(p.BacklogCount) })),
	field("tenth_percentage", "10th Percentage", "academic", profileValue(func(p *models.UserProfile) string { return deref(p.TenthPercentage) })),
	field("twelfth_percentage", "12th Percentage", "academic", profileValue(func(p *models.UserProfile) string { return deref(p.TwelfthPercentage) })),

	field("sem1", "Semester 1", "semester", semesterValue(0)),
	field("sem2", "Semester 2", "semester", semesterValue(1)),
	field("sem3", "Semester 3", "semester", semesterValue(2)),
	field("sem4", "Semester 4", "semester", semesterValue(3)),
	field("sem5", "Semester 5", "semester", semesterValue(4)),
	field("sem6", "Semester 6", "semester", semesterValue(5)),
	field("sem7", "Semester 7", "semester", semesterValue(6)),
	field("sem8", "Semester 8", "semester", semesterValue(7)),

	field("resume", "Resume", "documents", documentValue(func(p *models.UserProfile) *string { return p.ResumeFileID })),
	field("photo", "Photo", "documents", documentValue(func(p *models.UserProfile) *string { return p.PhotoFileID })),
	field("linkedin_url", "LinkedIn", "documents", profileValue(func(p *models.UserProfile) string { return deref(p.LinkedInURL) })),
	field("github_url", "GitHub", "documents", profileValue(func(p *models.UserProfile) string { return deref(p.GitHubURL) })),
	field("portfolio_url", "Portfolio", "documents", profileValue(func(p *models.UserProfile) string { return deref(p.PortfolioURL) })),
	field("cover_letter", "Cover Letter", "documents", appValue(func(a *models.Application) string { return deref(a.CoverLetter) })),
}
