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

type paymentRepository interface {
	List(ctx context.Context, filter models.PaymentFilter) ([]models.Payment, int, error)
	FindByID(ctx context.Context, centerID, id string) (*models.Payment, error)
	Create(ctx context.Context, payment *models.Payment) error
	Update(ctx context.Context, payment *models.Payment) error
	Delete(ctx context.Context, centerID, id string) error
}

type studentLookup interface {
	FindByID(ctx context.Context, centerID, id string) (*models.StudentDetail, error)
}

type teacherFinder interface {
	FindByID(ctx context.Context, centerID, id string) (*models.Teacher, error)
}

var paymentTransitions = map[models.PaymentStatus][]models.PaymentStatus{
	models.PaymentStatusPending: {models.PaymentStatusPaid, models.PaymentStatusCancelled},
	models.PaymentStatusPaid:    {models.PaymentStatusCancelled},
}

// PaymentRequest is the payload for recording fees, salaries and expenses.
type PaymentRequest struct {
	Category  models.PaymentCategory `json:"category" validate:"required,oneof=ADMISSION_FEE MONTHLY_FEE EXAM_FEE SALARY EXPENSE OTHER"`
	StudentID *string                `json:"student_id"`
	TeacherID *string                `json:"teacher_id"`
	Amount    float64                `json:"amount" validate:"gt=0"`
	Month     string                 `json:"month" validate:"required,yearmonth"`
	PaidDate  *time.Time             `json:"paid_date"`
	Method    models.PaymentMethod   `json:"method" validate:"required,oneof=CASH BANK MOBILE"`
	Status    models.PaymentStatus   `json:"status" validate:"omitempty,oneof=PAID PENDING CANCELLED"`
	Note      string                 `json:"note" validate:"omitempty,max=500"`
}

// PaymentStatusRequest changes the settlement state of a payment.
type PaymentStatusRequest struct {
	Status models.PaymentStatus `json:"status" validate:"required,oneof=PAID PENDING CANCELLED"`
}

// PaymentService records money in and out of a center.
type PaymentService struct {
	repo      paymentRepository
	students  studentLookup
	teachers  teacherFinder
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewPaymentService constructs a PaymentService.
func NewPaymentService(repo paymentRepository, students studentLookup, teachers teacherFinder, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *PaymentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PaymentService{
		repo:      repo,
		students:  students,
		teachers:  teachers,
		cache:     cache,
		validator: withDomainTags(validate),
		logger:    logger,
		now:       time.Now,
	}
}

// List returns payments of the actor's center.
func (s *PaymentService) List(ctx context.Context, actor models.Actor, filter models.PaymentFilter) ([]models.Payment, *models.Pagination, error) {
	filter.CenterID = actor.CenterID
	if filter.Month != "" && !validMonth(filter.Month) {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "month must be formatted as YYYY-MM")
	}
	payments, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, internalError(err, "failed to list payments")
	}
	return payments, newPagination(filter.Page, filter.PageSize, total), nil
}

// Get returns a payment by id.
func (s *PaymentService) Get(ctx context.Context, actor models.Actor, id string) (*models.Payment, error) {
	payment, err := s.repo.FindByID(ctx, actor.CenterID, id)
	if err != nil {
		return nil, lookupError(err, "payment not found", "failed to load payment")
	}
	return payment, nil
}

// Create records a payment.
func (s *PaymentService) Create(ctx context.Context, actor models.Actor, req PaymentRequest) (*models.Payment, error) {
	if err := s.checkRequest(ctx, actor, req); err != nil {
		return nil, err
	}
	payment := &models.Payment{CenterID: actor.CenterID, Status: models.PaymentStatusPaid, CreatedBy: optionalString(actor.UserID)}
	s.applyRequest(payment, req)
	if err := s.repo.Create(ctx, payment); err != nil {
		return nil, internalError(err, "failed to create payment")
	}
	s.invalidate(ctx, actor.CenterID)
	return payment, nil
}

// Update modifies a payment that has not been cancelled.
func (s *PaymentService) Update(ctx context.Context, actor models.Actor, id string, req PaymentRequest) (*models.Payment, error) {
	if err := s.checkRequest(ctx, actor, req); err != nil {
		return nil, err
	}
	payment, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if payment.Status == models.PaymentStatusCancelled {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "cancelled payments cannot be edited")
	}
	if req.Status != "" && req.Status != payment.Status && !canMovePayment(payment.Status, req.Status) {
		return nil, appErrors.Clone(appErrors.ErrInvalidTransition, "payment cannot move from "+string(payment.Status)+" to "+string(req.Status))
	}
	s.applyRequest(payment, req)
	if err := s.repo.Update(ctx, payment); err != nil {
		return nil, internalError(err, "failed to update payment")
	}
	s.invalidate(ctx, actor.CenterID)
	return payment, nil
}

// ChangeStatus settles or cancels a payment.
func (s *PaymentService) ChangeStatus(ctx context.Context, actor models.Actor, id string, req PaymentStatusRequest) (*models.Payment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid status payload")
	}
	payment, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if !canMovePayment(payment.Status, req.Status) {
		return nil, appErrors.Clone(appErrors.ErrInvalidTransition, "payment cannot move from "+string(payment.Status)+" to "+string(req.Status))
	}
	payment.Status = req.Status
	if payment.Status == models.PaymentStatusPaid && payment.PaidDate == nil {
		paid := s.today()
		payment.PaidDate = &paid
	}
	if err := s.repo.Update(ctx, payment); err != nil {
		return nil, internalError(err, "failed to update payment status")
	}
	s.invalidate(ctx, actor.CenterID)
	return payment, nil
}

// Delete removes a payment.
func (s *PaymentService) Delete(ctx context.Context, actor models.Actor, id string) error {
	if _, err := s.Get(ctx, actor, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, actor.CenterID, id); err != nil {
		return internalError(err, "failed to delete payment")
	}
	s.invalidate(ctx, actor.CenterID)
	return nil
}

// checkRequest validates the payload and the payer or payee it references.
func (s *PaymentService) checkRequest(ctx context.Context, actor models.Actor, req PaymentRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return validationError(err, "invalid payment payload")
	}
	hasStudent := req.StudentID != nil && *req.StudentID != ""
	hasTeacher := req.TeacherID != nil && *req.TeacherID != ""
	switch {
	case req.Category.RequiresStudent() && !hasStudent:
		return appErrors.Clone(appErrors.ErrValidation, "student_id is required for "+string(req.Category))
	case req.Category.RequiresTeacher() && !hasTeacher:
		return appErrors.Clone(appErrors.ErrValidation, "teacher_id is required for "+string(req.Category))
	case req.Category.RequiresStudent() && hasTeacher, req.Category.RequiresTeacher() && hasStudent:
		return appErrors.Clone(appErrors.ErrValidation, "a payment references either a student or a teacher")
	}
	if hasStudent {
		if _, err := s.students.FindByID(ctx, actor.CenterID, *req.StudentID); err != nil {
			return lookupError(err, "student not found", "failed to load student")
		}
	}
	if hasTeacher {
		if _, err := s.teachers.FindByID(ctx, actor.CenterID, *req.TeacherID); err != nil {
			return lookupError(err, "teacher not found", "failed to load teacher")
		}
	}
	return nil
}

func (s *PaymentService) applyRequest(payment *models.Payment, req PaymentRequest) {
	payment.Category = req.Category
	payment.StudentID = nil
	if req.StudentID != nil && *req.StudentID != "" {
		payment.StudentID = optionalString(*req.StudentID)
	}
	payment.TeacherID = nil
	if req.TeacherID != nil && *req.TeacherID != "" {
		payment.TeacherID = optionalString(*req.TeacherID)
	}
	payment.Amount = req.Amount
	payment.Month = req.Month
	payment.Method = req.Method
	if req.Status != "" {
		payment.Status = req.Status
	}
	payment.Note = optionalString(strings.TrimSpace(req.Note))
	payment.PaidDate = req.PaidDate
	if payment.Status == models.PaymentStatusPaid && payment.PaidDate == nil {
		paid := s.today()
		payment.PaidDate = &paid
	}
}

func (s *PaymentService) today() time.Time {
	now := s.now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

// invalidate drops the finance and dashboard caches of the center.
func (s *PaymentService) invalidate(ctx context.Context, centerID string) {
	if !s.cache.Enabled() {
		return
	}
	for _, pattern := range []string{CacheKey("finance", centerID, "*"), CacheKey("dashboard", centerID)} {
		if err := s.cache.Invalidate(ctx, pattern); err != nil {
			s.logger.Warn("finance cache invalidation failed", zap.String("center_id", centerID), zap.Error(err))
		}
	}
}

func canMovePayment(from, to models.PaymentStatus) bool {
	for _, allowed := range paymentTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}
