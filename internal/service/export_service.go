package service

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/coaching-center-api/internal/models"
	"github.com/noah-isme/coaching-center-api/pkg/export"
	"github.com/noah-isme/coaching-center-api/pkg/storage"
)

type financeSource interface {
	FinanceTotals(ctx context.Context, centerID string, year int) ([]models.FinanceAggregateRow, error)
}

type studentSource interface {
	ListAll(ctx context.Context, centerID, batchID string) ([]models.StudentDetail, error)
}

type attendanceSource interface {
	ListAll(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceRecord, error)
}

type resultSource interface {
	FindByID(ctx context.Context, centerID, id string) (*models.Exam, error)
	ListResults(ctx context.Context, centerID, examID string) ([]models.ExamResultDetail, error)
}

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

// ExportSources groups the read models datasets are built from.
type ExportSources struct {
	Finance    financeSource
	Students   studentSource
	Attendance attendanceSource
	Results    resultSource
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	APIPrefix string
	ResultTTL time.Duration
}

// ExportResult captures successful generation metadata.
type ExportResult struct {
	RelativePath string
	Token        string
	URL          string
	Format       models.ReportFormat
	ExpiresAt    time.Time
}

// ExportService builds report datasets and persists rendered files.
type ExportService struct {
	sources ExportSources
	storage fileStorage
	csv     csvRenderer
	pdf     pdfRenderer
	signer  *storage.SignedURLSigner
	logger  *zap.Logger
	cfg     ExportConfig
	now     func() time.Time
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// NewExportService constructs an ExportService.
func NewExportService(sources ExportSources, storage fileStorage, signer *storage.SignedURLSigner, cfg ExportConfig, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{
		sources: sources,
		storage: storage,
		csv:     csv,
		pdf:     pdf,
		signer:  signer,
		logger:  logger,
		cfg:     cfg,
		now:     time.Now,
	}
}

// Generate builds dataset according to job definition and stores the rendered export.
func (s *ExportService) Generate(ctx context.Context, job *models.ReportJob) (*ExportResult, error) {
	if job == nil {
		return nil, fmt.Errorf("job nil")
	}
	dataset, title, err := s.buildDataset(ctx, job)
	if err != nil {
		return nil, err
	}

	var payload []byte
	switch job.Params.Format {
	case models.ReportFormatCSV:
		payload, err = s.csv.Render(dataset)
	case models.ReportFormatPDF:
		payload, err = s.pdf.Render(dataset, title)
	default:
		err = fmt.Errorf("unsupported format %s", job.Params.Format)
	}
	if err != nil {
		return nil, err
	}

	relPath, err := s.storage.Save(s.buildFilename(job), payload)
	if err != nil {
		return nil, err
	}

	token, expiresAt, err := s.signer.Generate(job.ID, job.CenterID, relPath)
	if err != nil {
		return nil, err
	}
	prefix := strings.TrimRight(s.cfg.APIPrefix, "/")
	if prefix == "" {
		prefix = "/api/v1"
	}

	s.logger.Debug("export generated", zap.String("job_id", job.ID), zap.String("path", relPath), zap.Int("bytes", len(payload)))
	return &ExportResult{
		RelativePath: relPath,
		Token:        token,
		URL:          fmt.Sprintf("%s/export/%s", prefix, token),
		Format:       job.Params.Format,
		ExpiresAt:    expiresAt,
	}, nil
}

// ParseToken validates download token metadata.
func (s *ExportService) ParseToken(token string, allowExpired bool) (storage.DownloadClaims, error) {
	return s.signer.Parse(token, allowExpired)
}

// Open returns a handle to the stored file.
func (s *ExportService) Open(relPath string) (*os.File, error) {
	return s.storage.Open(relPath)
}

// Delete removes a stored export file.
func (s *ExportService) Delete(relPath string) error {
	return s.storage.Delete(relPath)
}

// Cleanup removes files older than ttl (defaults to configured ResultTTL when ttl <= 0).
func (s *ExportService) Cleanup(ttl time.Duration) ([]string, error) {
	if ttl <= 0 {
		ttl = s.cfg.ResultTTL
	}
	return s.storage.CleanupOlderThan(ttl)
}

// buildFilename places exports under a per-center directory.
func (s *ExportService) buildFilename(job *models.ReportJob) string {
	timestamp := s.now().UTC().Format("20060102_150405")
	scope := "all"
	switch {
	case job.Type == models.ReportTypeFinance:
		scope = strconv.Itoa(job.Params.Year)
	case job.Params.ExamID != nil:
		scope = *job.Params.ExamID
	case job.Params.BatchID != nil:
		scope = *job.Params.BatchID
	}
	if job.Params.Month != "" {
		scope += "_" + job.Params.Month
	}
	return fmt.Sprintf("%s/%s_%s_%s.%s", sanitizeFilename(job.CenterID), job.Type, sanitizeFilename(scope), timestamp, job.Params.Format)
}

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "na"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".", "__", "_")
	result := replacer.Replace(raw)
	if len(result) > 100 {
		return result[:100]
	}
	return result
}

func (s *ExportService) buildDataset(ctx context.Context, job *models.ReportJob) (export.Dataset, string, error) {
	switch job.Type {
	case models.ReportTypeFinance:
		return s.buildFinanceDataset(ctx, job.CenterID, job.Params)
	case models.ReportTypeStudents:
		return s.buildStudentDataset(ctx, job.CenterID, job.Params)
	case models.ReportTypeAttendance:
		return s.buildAttendanceDataset(ctx, job.CenterID, job.Params)
	case models.ReportTypeResults:
		return s.buildResultDataset(ctx, job.CenterID, job.Params)
	default:
		return export.Dataset{}, "", fmt.Errorf("unsupported report type %s", job.Type)
	}
}

func (s *ExportService) buildFinanceDataset(ctx context.Context, centerID string, params models.ReportJobParams) (export.Dataset, string, error) {
	rows, err := s.sources.Finance.FinanceTotals(ctx, centerID, params.Year)
	if err != nil {
		return export.Dataset{}, "", err
	}
	report := buildFinanceReport(params.Year, rows)

	headers := []string{"Month"}
	for _, category := range models.PaymentCategories {
		headers = append(headers, string(category))
	}
	headers = append(headers, "Income", "Expense", "Net")

	dataRows := make([]map[string]string, 0, len(report.Months))
	for _, month := range report.Months {
		row := map[string]string{
			"Month":   month.Month,
			"Income":  formatMoney(month.Income),
			"Expense": formatMoney(month.Expense),
			"Net":     formatMoney(month.Net),
		}
		for _, category := range models.PaymentCategories {
			row[string(category)] = formatMoney(month.Categories[category])
		}
		dataRows = append(dataRows, row)
	}
	totals := map[string]string{
		"Month":   "Total",
		"Income":  formatMoney(report.Income),
		"Expense": formatMoney(report.Expense),
		"Net":     formatMoney(report.Net),
	}
	for _, category := range models.PaymentCategories {
		totals[string(category)] = formatMoney(report.Totals[category])
	}
	return export.Dataset{Headers: headers, Rows: dataRows, Totals: totals}, fmt.Sprintf("Finance Report %d", params.Year), nil
}

func (s *ExportService) buildStudentDataset(ctx context.Context, centerID string, params models.ReportJobParams) (export.Dataset, string, error) {
	students, err := s.sources.Students.ListAll(ctx, centerID, deref(params.BatchID))
	if err != nil {
		return export.Dataset{}, "", err
	}
	dataRows := make([]map[string]string, 0, len(students))
	for _, st := range students {
		dataRows = append(dataRows, map[string]string{
			"Registration No": st.RegistrationNo,
			"Name":            st.FullName,
			"Guardian":        st.GuardianName,
			"Phone":           st.Phone,
			"Class":           st.ClassLevel,
			"Batch":           deref(st.BatchName),
			"Admitted":        st.AdmissionDate.Format(dateLayout),
			"Monthly Fee":     formatMoney(st.MonthlyFee),
			"Status":          string(st.Status),
		})
	}
	dataset := export.Dataset{
		Headers: []string{"Registration No", "Name", "Guardian", "Phone", "Class", "Batch", "Admitted", "Monthly Fee", "Status"},
		Rows:    dataRows,
		Totals:  map[string]string{"Registration No": "Total", "Name": strconv.Itoa(len(students))},
	}
	return dataset, "Student Register", nil
}

func (s *ExportService) buildAttendanceDataset(ctx context.Context, centerID string, params models.ReportJobParams) (export.Dataset, string, error) {
	filter := models.AttendanceFilter{CenterID: centerID, BatchID: deref(params.BatchID)}
	title := "Attendance Report"
	if params.Month != "" {
		from, err := time.Parse("2006-01", params.Month)
		if err != nil {
			return export.Dataset{}, "", fmt.Errorf("invalid month %q: %w", params.Month, err)
		}
		to := from.AddDate(0, 1, -1)
		filter.DateFrom, filter.DateTo = &from, &to
		title += " " + params.Month
	}
	records, err := s.sources.Attendance.ListAll(ctx, filter)
	if err != nil {
		return export.Dataset{}, "", err
	}
	counts := make(map[models.AttendanceStatus]int, 4)
	dataRows := make([]map[string]string, 0, len(records))
	for _, rec := range records {
		counts[rec.Status]++
		dataRows = append(dataRows, map[string]string{
			"Date":            rec.Date.Format(dateLayout),
			"Batch":           rec.BatchName,
			"Registration No": rec.RegistrationNo,
			"Student":         rec.StudentName,
			"Status":          string(rec.Status),
			"Remark":          deref(rec.Remark),
		})
	}
	dataset := export.Dataset{
		Headers: []string{"Date", "Batch", "Registration No", "Student", "Status", "Remark"},
		Rows:    dataRows,
		Totals: map[string]string{
			"Date":   "Total",
			"Status": fmt.Sprintf("P %d / A %d / L %d / LV %d", counts[models.AttendanceStatusPresent], counts[models.AttendanceStatusAbsent], counts[models.AttendanceStatusLate], counts[models.AttendanceStatusLeave]),
		},
	}
	return dataset, title, nil
}

func (s *ExportService) buildResultDataset(ctx context.Context, centerID string, params models.ReportJobParams) (export.Dataset, string, error) {
	examID := deref(params.ExamID)
	if examID == "" {
		return export.Dataset{}, "", fmt.Errorf("results export requires an exam")
	}
	exam, err := s.sources.Results.FindByID(ctx, centerID, examID)
	if err != nil {
		return export.Dataset{}, "", err
	}
	results, err := s.sources.Results.ListResults(ctx, centerID, examID)
	if err != nil {
		return export.Dataset{}, "", err
	}
	passed := 0
	dataRows := make([]map[string]string, 0, len(results))
	for i, res := range results {
		if res.Passed {
			passed++
		}
		dataRows = append(dataRows, map[string]string{
			"Position":        strconv.Itoa(i + 1),
			"Registration No": res.RegistrationNo,
			"Student":         res.StudentName,
			"Marks":           strconv.FormatFloat(res.ObtainedMarks, 'f', -1, 64),
			"Grade":           res.Grade,
			"Result":          passLabel(res.Passed),
		})
	}
	dataset := export.Dataset{
		Headers: []string{"Position", "Registration No", "Student", "Marks", "Grade", "Result"},
		Rows:    dataRows,
		Totals:  map[string]string{"Position": "Total", "Student": strconv.Itoa(len(results)), "Result": fmt.Sprintf("%d passed", passed)},
	}
	return dataset, fmt.Sprintf("%s Results (%s)", exam.Name, exam.Subject), nil
}

func passLabel(passed bool) string {
	if passed {
		return "PASS"
	}
	return "FAIL"
}

func formatMoney(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func deref(ptr *string) string {
	if ptr == nil {
		return ""
	}
	return *ptr
}
