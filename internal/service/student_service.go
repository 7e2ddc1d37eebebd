package service

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/coaching-center-api/internal/models"
	appErrors "github.com/noah-isme/coaching-center-api/pkg/errors"
)

type studentRepository interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.StudentDetail, int, error)
	FindByID(ctx context.Context, centerID, id string) (*models.StudentDetail, error)
	ExistsByRegistrationNo(ctx context.Context, centerID, registrationNo, excludeID string) (bool, error)
	Create(ctx context.Context, student *models.Student) error
	Update(ctx context.Context, student *models.Student) error
	UpdateStatus(ctx context.Context, centerID, id string, status models.StudentStatus) error
	Delete(ctx context.Context, centerID, id string) error
}

type batchLookup interface {
	FindByID(ctx context.Context, centerID, id string) (*models.BatchDetail, error)
}

// StudentRequest holds the admission payload shared by create and update.
type StudentRequest struct {
	RegistrationNo string               `json:"registration_no" validate:"required,max=40"`
	FullName       string               `json:"full_name" validate:"required,max=120"`
	GuardianName   string               `json:"guardian_name" validate:"required,max=120"`
	Phone          string               `json:"phone" validate:"required,max=32"`
	Email          string               `json:"email" validate:"omitempty,email"`
	Institution    string               `json:"institution" validate:"omitempty,max=160"`
	ClassLevel     string               `json:"class_level" validate:"required,max=40"`
	BatchID        *string              `json:"batch_id" validate:"omitempty,uuid"`
	AdmissionDate  time.Time            `json:"admission_date" validate:"required"`
	AdmissionFee   float64              `json:"admission_fee" validate:"gte=0"`
	MonthlyFee     float64              `json:"monthly_fee" validate:"gte=0"`
	Status         models.StudentStatus `json:"status" validate:"omitempty,oneof=ACTIVE INACTIVE"`
}

// StudentService handles admissions.
type StudentService struct {
	repo      studentRepository
	batches   batchLookup
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStudentService constructs the student service.
func NewStudentService(repo studentRepository, batches batchLookup, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{repo: repo, batches: batches, validator: withDomainTags(validate), logger: logger}
}

// List returns students of the actor's center and pagination metadata.
func (s *StudentService) List(ctx context.Context, actor models.Actor, filter models.StudentFilter) ([]models.StudentDetail, *models.Pagination, error) {
	filter.CenterID = actor.CenterID
	students, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, internalError(err, "failed to list students")
	}
	return students, newPagination(filter.Page, filter.PageSize, total), nil
}

// Get returns detailed student information.
func (s *StudentService) Get(ctx context.Context, actor models.Actor, id string) (*models.StudentDetail, error) {
	student, err := s.repo.FindByID(ctx, actor.CenterID, id)
	if err != nil {
		return nil, lookupError(err, "student not found", "failed to load student")
	}
	return student, nil
}

// Create admits a new student.
func (s *StudentService) Create(ctx context.Context, actor models.Actor, req StudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid student payload")
	}
	if err := s.ensureUniqueRegistration(ctx, actor.CenterID, req.RegistrationNo, ""); err != nil {
		return nil, err
	}
	if err := s.ensureBatchSeat(ctx, actor.CenterID, req.BatchID, nil); err != nil {
		return nil, err
	}

	student := &models.Student{CenterID: actor.CenterID, Status: models.StudentStatusActive}
	applyStudentRequest(student, req)
	if err := s.repo.Create(ctx, student); err != nil {
		return nil, internalError(err, "failed to create student")
	}
	s.logger.Info("student admitted", zap.String("center_id", actor.CenterID), zap.String("student_id", student.ID))
	return student, nil
}

// Update modifies an existing student record.
func (s *StudentService) Update(ctx context.Context, actor models.Actor, id string, req StudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid student payload")
	}
	detail, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := s.ensureUniqueRegistration(ctx, actor.CenterID, req.RegistrationNo, id); err != nil {
		return nil, err
	}
	if err := s.ensureBatchSeat(ctx, actor.CenterID, req.BatchID, detail.BatchID); err != nil {
		return nil, err
	}

	student := detail.Student
	applyStudentRequest(&student, req)
	if err := s.repo.Update(ctx, &student); err != nil {
		return nil, internalError(err, "failed to update student")
	}
	return &student, nil
}

// ToggleStatus flips a student between active and inactive.
func (s *StudentService) ToggleStatus(ctx context.Context, actor models.Actor, id string) (*models.Student, error) {
	detail, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	student := detail.Student
	student.Status = models.StudentStatusInactive
	if detail.Status == models.StudentStatusInactive {
		student.Status = models.StudentStatusActive
	}
	if err := s.repo.UpdateStatus(ctx, actor.CenterID, id, student.Status); err != nil {
		return nil, internalError(err, "failed to update student status")
	}
	return &student, nil
}

// Delete removes a student.
func (s *StudentService) Delete(ctx context.Context, actor models.Actor, id string) error {
	if _, err := s.Get(ctx, actor, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, actor.CenterID, id); err != nil {
		return internalError(err, "failed to delete student")
	}
	return nil
}

func (s *StudentService) ensureUniqueRegistration(ctx context.Context, centerID, registrationNo, excludeID string) error {
	exists, err := s.repo.ExistsByRegistrationNo(ctx, centerID, strings.TrimSpace(registrationNo), excludeID)
	if err != nil {
		return internalError(err, "failed to validate registration number")
	}
	if exists {
		return appErrors.Clone(appErrors.ErrConflict, "registration number already used")
	}
	return nil
}

// ensureBatchSeat checks the target batch exists and has room, unless the
// student already belongs to it.
func (s *StudentService) ensureBatchSeat(ctx context.Context, centerID string, batchID, current *string) error {
	if batchID == nil || *batchID == "" || s.batches == nil {
		return nil
	}
	if current != nil && *current == *batchID {
		return nil
	}
	batch, err := s.batches.FindByID(ctx, centerID, *batchID)
	if err != nil {
		return lookupError(err, "batch not found", "failed to load batch")
	}
	if batch.Status != models.BatchStatusActive {
		return appErrors.Clone(appErrors.ErrPreconditionFailed, "batch is inactive")
	}
	if batch.Capacity > 0 && batch.StudentCount >= batch.Capacity {
		return appErrors.Clone(appErrors.ErrPreconditionFailed, "batch is full")
	}
	return nil
}

func applyStudentRequest(student *models.Student, req StudentRequest) {
	student.RegistrationNo = strings.TrimSpace(req.RegistrationNo)
	student.FullName = strings.TrimSpace(req.FullName)
	student.GuardianName = strings.TrimSpace(req.GuardianName)
	student.Phone = strings.TrimSpace(req.Phone)
	student.Email = optionalString(strings.TrimSpace(req.Email))
	student.Institution = optionalString(strings.TrimSpace(req.Institution))
	student.ClassLevel = strings.TrimSpace(req.ClassLevel)
	student.BatchID = nil
	if req.BatchID != nil && *req.BatchID != "" {
		batchID := *req.BatchID
		student.BatchID = &batchID
	}
	student.AdmissionDate = req.AdmissionDate
	student.AdmissionFee = req.AdmissionFee
	student.MonthlyFee = req.MonthlyFee
	if req.Status != "" {
		student.Status = req.Status
	}
}
