package service

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/coaching-center-api/internal/models"
	appErrors "github.com/noah-isme/coaching-center-api/pkg/errors"
)

const dateLayout = "2006-01-02"

type attendanceRepository interface {
	List(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceRecord, int, error)
	BulkUpsert(ctx context.Context, records []models.Attendance) error
	StatusCounts(ctx context.Context, centerID, studentID string, from, to *time.Time) ([]models.AttendanceStatusCount, error)
}

type batchRosterReader interface {
	CountInBatch(ctx context.Context, centerID, batchID string, ids []string) (int, error)
	FindByID(ctx context.Context, centerID, id string) (*models.StudentDetail, error)
}

// AttendanceListRequest is used for listing attendance marks.
type AttendanceListRequest struct {
	BatchID   string  `form:"batchId"`
	StudentID string  `form:"studentId"`
	Status    *string `form:"status" validate:"omitempty,attendance_status"`
	DateFrom  string  `form:"dateFrom" validate:"omitempty,datetime=2006-01-02"`
	DateTo    string  `form:"dateTo" validate:"omitempty,datetime=2006-01-02"`
	Page      int     `form:"page"`
	PageSize  int     `form:"limit"`
	SortBy    string  `form:"sort"`
	SortOrder string  `form:"order"`
}

// AttendanceMark is one student's entry inside a bulk request.
type AttendanceMark struct {
	StudentID string  `json:"student_id" validate:"required"`
	Status    string  `json:"status" validate:"required,attendance_status"`
	Remark    *string `json:"remark" validate:"omitempty,max=255"`
}

// BulkAttendanceRequest records one class day of a batch.
type BulkAttendanceRequest struct {
	BatchID string           `json:"batch_id" validate:"required"`
	Date    string           `json:"date" validate:"required,datetime=2006-01-02"`
	Marks   []AttendanceMark `json:"marks" validate:"required,min=1,max=500,dive"`
}

// BulkAttendanceResult summarises a bulk write.
type BulkAttendanceResult struct {
	BatchID  string `json:"batch_id"`
	Date     string `json:"date"`
	Recorded int    `json:"recorded"`
}

// AttendanceService coordinates attendance workflows.
type AttendanceService struct {
	repo      attendanceRepository
	students  batchRosterReader
	batches   batchLookup
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewAttendanceService constructs the attendance service.
func NewAttendanceService(repo attendanceRepository, students batchRosterReader, batches batchLookup, validate *validator.Validate, logger *zap.Logger) *AttendanceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &AttendanceService{repo: repo, students: students, batches: batches, validator: withDomainTags(validate), logger: logger, now: time.Now}
	_ = svc.validator.RegisterValidation("attendance_status", func(fl validator.FieldLevel) bool {
		return models.AttendanceStatus(strings.ToUpper(fl.Field().String())).Valid()
	})
	return svc
}

// List returns paginated attendance marks of the actor's center.
func (s *AttendanceService) List(ctx context.Context, actor models.Actor, req AttendanceListRequest) ([]models.AttendanceRecord, *models.Pagination, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, nil, validationError(err, "invalid filter")
	}
	filter := models.AttendanceFilter{
		CenterID:  actor.CenterID,
		BatchID:   req.BatchID,
		StudentID: req.StudentID,
		Page:      req.Page,
		PageSize:  req.PageSize,
		SortBy:    req.SortBy,
		SortOrder: req.SortOrder,
	}
	if req.Status != nil {
		status := models.AttendanceStatus(strings.ToUpper(*req.Status))
		filter.Status = &status
	}
	filter.DateFrom = parseOptionalDate(req.DateFrom)
	filter.DateTo = parseOptionalDate(req.DateTo)
	if filter.DateFrom != nil && filter.DateTo != nil && filter.DateTo.Before(*filter.DateFrom) {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "dateTo must not precede dateFrom")
	}

	rows, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, internalError(err, "failed to list attendance")
	}
	return rows, newPagination(filter.Page, filter.PageSize, total), nil
}

// Record upserts the marks of one batch for one day. Every student must
// belong to the batch and appear only once.
func (s *AttendanceService) Record(ctx context.Context, actor models.Actor, req BulkAttendanceRequest) (*BulkAttendanceResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid attendance payload")
	}
	date, _ := time.Parse(dateLayout, req.Date)
	if date.After(s.now().UTC()) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "attendance cannot be recorded for a future date")
	}
	if s.batches != nil {
		if _, err := s.batches.FindByID(ctx, actor.CenterID, req.BatchID); err != nil {
			return nil, lookupError(err, "batch not found", "failed to load batch")
		}
	}

	ids := make([]string, 0, len(req.Marks))
	seen := make(map[string]struct{}, len(req.Marks))
	for _, mark := range req.Marks {
		if _, dup := seen[mark.StudentID]; dup {
			return nil, appErrors.Clone(appErrors.ErrValidation, "student "+mark.StudentID+" appears more than once")
		}
		seen[mark.StudentID] = struct{}{}
		ids = append(ids, mark.StudentID)
	}
	count, err := s.students.CountInBatch(ctx, actor.CenterID, req.BatchID, ids)
	if err != nil {
		return nil, internalError(err, "failed to verify batch roster")
	}
	if count != len(ids) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "some students do not belong to the batch")
	}

	records := make([]models.Attendance, 0, len(req.Marks))
	for _, mark := range req.Marks {
		records = append(records, models.Attendance{
			CenterID:  actor.CenterID,
			BatchID:   req.BatchID,
			StudentID: mark.StudentID,
			Date:      date,
			Status:    models.AttendanceStatus(strings.ToUpper(mark.Status)),
			Remark:    mark.Remark,
		})
	}
	if err := s.repo.BulkUpsert(ctx, records); err != nil {
		return nil, internalError(err, "failed to record attendance")
	}
	s.logger.Info("attendance recorded",
		zap.String("center_id", actor.CenterID),
		zap.String("batch_id", req.BatchID),
		zap.String("date", req.Date),
		zap.Int("count", len(records)),
	)
	return &BulkAttendanceResult{BatchID: req.BatchID, Date: req.Date, Recorded: len(records)}, nil
}

// Summary counts a student's marks per status within an optional range.
func (s *AttendanceService) Summary(ctx context.Context, actor models.Actor, studentID, dateFrom, dateTo string) (*models.AttendanceSummary, error) {
	for _, value := range []string{dateFrom, dateTo} {
		if value == "" {
			continue
		}
		if _, err := time.Parse(dateLayout, value); err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "invalid date format, expected YYYY-MM-DD")
		}
	}
	if _, err := s.students.FindByID(ctx, actor.CenterID, studentID); err != nil {
		return nil, lookupError(err, "student not found", "failed to load student")
	}
	counts, err := s.repo.StatusCounts(ctx, actor.CenterID, studentID, parseOptionalDate(dateFrom), parseOptionalDate(dateTo))
	if err != nil {
		return nil, internalError(err, "failed to summarise attendance")
	}
	return buildAttendanceSummary(studentID, counts), nil
}

func buildAttendanceSummary(studentID string, counts []models.AttendanceStatusCount) *models.AttendanceSummary {
	summary := &models.AttendanceSummary{StudentID: studentID}
	for _, row := range counts {
		summary.Total += row.Count
		switch row.Status {
		case models.AttendanceStatusPresent:
			summary.Present += row.Count
		case models.AttendanceStatusAbsent:
			summary.Absent += row.Count
		case models.AttendanceStatusLate:
			summary.Late += row.Count
		case models.AttendanceStatusLeave:
			summary.Leave += row.Count
		}
	}
	if summary.Total > 0 {
		summary.PresentPercent = math.Round(float64(summary.Present)/float64(summary.Total)*10000) / 100
	}
	return summary
}

func parseOptionalDate(value string) *time.Time {
	if value == "" {
		return nil
	}
	parsed, err := time.Parse(dateLayout, value)
	if err != nil {
		return nil
	}
	return &parsed
}
