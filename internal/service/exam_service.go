package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/coaching-center-api/internal/models"
	appErrors "github.com/noah-isme/coaching-center-api/pkg/errors"
)

type examRepository interface {
	List(ctx context.Context, filter models.ExamFilter) ([]models.Exam, int, error)
	FindByID(ctx context.Context, centerID, id string) (*models.Exam, error)
	Create(ctx context.Context, exam *models.Exam) error
	Update(ctx context.Context, exam *models.Exam) error
	Delete(ctx context.Context, centerID, id string) error
	UpsertResults(ctx context.Context, results []models.ExamResult) error
	ListResults(ctx context.Context, centerID, examID string) ([]models.ExamResultDetail, error)
}

// ExamRequest is the payload for creating and updating exams.
type ExamRequest struct {
	BatchID    string    `json:"batch_id" validate:"required"`
	Name       string    `json:"name" validate:"required,max=120"`
	Subject    string    `json:"subject" validate:"required,max=80"`
	ExamDate   time.Time `json:"exam_date" validate:"required"`
	TotalMarks float64   `json:"total_marks" validate:"gt=0,lte=1000"`
	PassMarks  float64   `json:"pass_marks" validate:"gte=0,ltefield=TotalMarks"`
}

// ExamResultEntry is the mark of one student.
type ExamResultEntry struct {
	StudentID     string  `json:"student_id" validate:"required"`
	ObtainedMarks float64 `json:"obtained_marks" validate:"gte=0"`
	Remark        *string `json:"remark" validate:"omitempty,max=255"`
}

// ExamResultsRequest records the marks of an exam in one call.
type ExamResultsRequest struct {
	Results []ExamResultEntry `json:"results" validate:"required,min=1,max=500,dive"`
}

// ExamService manages exams and their results.
type ExamService struct {
	repo      examRepository
	batches   batchLookup
	students  batchRosterReader
	validator *validator.Validate
	logger    *zap.Logger
}

// NewExamService constructs an ExamService.
func NewExamService(repo examRepository, batches batchLookup, students batchRosterReader, validate *validator.Validate, logger *zap.Logger) *ExamService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExamService{repo: repo, batches: batches, students: students, validator: withDomainTags(validate), logger: logger}
}

// List returns exams of the actor's center.
func (s *ExamService) List(ctx context.Context, actor models.Actor, filter models.ExamFilter) ([]models.Exam, *models.Pagination, error) {
	filter.CenterID = actor.CenterID
	exams, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, internalError(err, "failed to list exams")
	}
	return exams, newPagination(filter.Page, filter.PageSize, total), nil
}

// Get returns an exam by id.
func (s *ExamService) Get(ctx context.Context, actor models.Actor, id string) (*models.Exam, error) {
	exam, err := s.repo.FindByID(ctx, actor.CenterID, id)
	if err != nil {
		return nil, lookupError(err, "exam not found", "failed to load exam")
	}
	return exam, nil
}

// Create schedules an exam for a batch.
func (s *ExamService) Create(ctx context.Context, actor models.Actor, req ExamRequest) (*models.Exam, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid exam payload")
	}
	if _, err := s.batches.FindByID(ctx, actor.CenterID, req.BatchID); err != nil {
		return nil, lookupError(err, "batch not found", "failed to load batch")
	}
	exam := &models.Exam{CenterID: actor.CenterID, Status: models.ExamStatusScheduled}
	applyExamRequest(exam, req)
	if err := s.repo.Create(ctx, exam); err != nil {
		return nil, internalError(err, "failed to create exam")
	}
	return exam, nil
}

// Update modifies a scheduled exam.
func (s *ExamService) Update(ctx context.Context, actor models.Actor, id string, req ExamRequest) (*models.Exam, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid exam payload")
	}
	exam, err := s.scheduled(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if req.BatchID != exam.BatchID {
		if _, err := s.batches.FindByID(ctx, actor.CenterID, req.BatchID); err != nil {
			return nil, lookupError(err, "batch not found", "failed to load batch")
		}
	}
	applyExamRequest(exam, req)
	if err := s.repo.Update(ctx, exam); err != nil {
		return nil, internalError(err, "failed to update exam")
	}
	return exam, nil
}

// Publish freezes an exam and its results.
func (s *ExamService) Publish(ctx context.Context, actor models.Actor, id string) (*models.Exam, error) {
	exam, err := s.scheduled(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	exam.Status = models.ExamStatusPublished
	if err := s.repo.Update(ctx, exam); err != nil {
		return nil, internalError(err, "failed to publish exam")
	}
	s.logger.Info("exam published", zap.String("center_id", actor.CenterID), zap.String("exam_id", exam.ID))
	return exam, nil
}

// Delete removes a scheduled exam with its results.
func (s *ExamService) Delete(ctx context.Context, actor models.Actor, id string) error {
	if _, err := s.scheduled(ctx, actor, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, actor.CenterID, id); err != nil {
		return internalError(err, "failed to delete exam")
	}
	return nil
}

// RecordResults grades and upserts marks for students of the exam's batch.
func (s *ExamService) RecordResults(ctx context.Context, actor models.Actor, examID string, req ExamResultsRequest) ([]models.ExamResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid results payload")
	}
	exam, err := s.scheduled(ctx, actor, examID)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(req.Results))
	seen := make(map[string]struct{}, len(req.Results))
	for _, entry := range req.Results {
		if entry.ObtainedMarks > exam.TotalMarks {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("obtained marks for student %s exceed total marks %.2f", entry.StudentID, exam.TotalMarks))
		}
		if _, dup := seen[entry.StudentID]; dup {
			return nil, appErrors.Clone(appErrors.ErrValidation, "student "+entry.StudentID+" appears more than once")
		}
		seen[entry.StudentID] = struct{}{}
		ids = append(ids, entry.StudentID)
	}
	count, err := s.students.CountInBatch(ctx, actor.CenterID, exam.BatchID, ids)
	if err != nil {
		return nil, internalError(err, "failed to verify batch roster")
	}
	if count != len(ids) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "some students do not belong to the exam batch")
	}

	results := make([]models.ExamResult, 0, len(req.Results))
	for _, entry := range req.Results {
		results = append(results, models.ExamResult{
			CenterID:      actor.CenterID,
			ExamID:        exam.ID,
			StudentID:     entry.StudentID,
			ObtainedMarks: entry.ObtainedMarks,
			Grade:         models.GradeFor(entry.ObtainedMarks, exam.TotalMarks),
			Passed:        entry.ObtainedMarks >= exam.PassMarks,
			Remark:        entry.Remark,
		})
	}
	if err := s.repo.UpsertResults(ctx, results); err != nil {
		return nil, internalError(err, "failed to record results")
	}
	return results, nil
}

// Results lists the marks of an exam, highest first.
func (s *ExamService) Results(ctx context.Context, actor models.Actor, examID string) ([]models.ExamResultDetail, error) {
	if _, err := s.Get(ctx, actor, examID); err != nil {
		return nil, err
	}
	results, err := s.repo.ListResults(ctx, actor.CenterID, examID)
	if err != nil {
		return nil, internalError(err, "failed to list results")
	}
	return results, nil
}

func (s *ExamService) scheduled(ctx context.Context, actor models.Actor, id string) (*models.Exam, error) {
	exam, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if exam.Status == models.ExamStatusPublished {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "exam is already published")
	}
	return exam, nil
}

func applyExamRequest(exam *models.Exam, req ExamRequest) {
	exam.BatchID = req.BatchID
	exam.Name = strings.TrimSpace(req.Name)
	exam.Subject = strings.TrimSpace(req.Subject)
	exam.ExamDate = req.ExamDate
	exam.TotalMarks = req.TotalMarks
	exam.PassMarks = req.PassMarks
}
