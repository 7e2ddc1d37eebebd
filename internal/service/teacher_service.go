package service

import (
	"context"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/coaching-center-api/internal/models"
	"github.com/noah-isme/coaching-center-api/internal/timeslot"
	appErrors "github.com/noah-isme/coaching-center-api/pkg/errors"
)

type teacherRepository interface {
	List(ctx context.Context, filter models.TeacherFilter) ([]models.Teacher, int, error)
	ListActive(ctx context.Context, centerID string) ([]models.Teacher, error)
	FindByID(ctx context.Context, centerID, id string) (*models.Teacher, error)
	Create(ctx context.Context, teacher *models.Teacher) error
	Update(ctx context.Context, teacher *models.Teacher) error
	SetActive(ctx context.Context, centerID, id string, active bool) error
	Delete(ctx context.Context, centerID, id string) error
}

// batchScheduleReader lists the active batches sharing a room or teacher.
type batchScheduleReader interface {
	ListActive(ctx context.Context, centerID string, scope models.BatchFilter, excludeID string) ([]models.BatchDetail, error)
}

// TeacherRequest represents payload for creating and updating teachers.
type TeacherRequest struct {
	FullName       string   `json:"full_name" validate:"required,max=120"`
	Phone          string   `json:"phone" validate:"required,max=32"`
	Email          string   `json:"email" validate:"omitempty,email"`
	Subject        string   `json:"subject" validate:"required,max=80"`
	MonthlySalary  float64  `json:"monthly_salary" validate:"gte=0"`
	AvailableTimes []string `json:"available_times" validate:"omitempty,dive,timerange"`
	Active         *bool    `json:"active"`
}

// TeacherService orchestrates teacher operations.
type TeacherService struct {
	repo         teacherRepository
	batches      batchScheduleReader
	slotInterval int
	validator    *validator.Validate
	logger       *zap.Logger
}

// NewTeacherService constructs a TeacherService. slotInterval is the split
// granularity in minutes for availability views.
func NewTeacherService(repo teacherRepository, batches batchScheduleReader, slotInterval int, validate *validator.Validate, logger *zap.Logger) *TeacherService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if slotInterval <= 0 {
		slotInterval = timeslot.DefaultInterval
	}
	return &TeacherService{repo: repo, batches: batches, slotInterval: slotInterval, validator: withDomainTags(validate), logger: logger}
}

// List returns teachers of the actor's center.
func (s *TeacherService) List(ctx context.Context, actor models.Actor, filter models.TeacherFilter) ([]models.Teacher, *models.Pagination, error) {
	filter.CenterID = actor.CenterID
	teachers, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, internalError(err, "failed to list teachers")
	}
	return teachers, newPagination(filter.Page, filter.PageSize, total), nil
}

// Get returns a teacher by id.
func (s *TeacherService) Get(ctx context.Context, actor models.Actor, id string) (*models.Teacher, error) {
	teacher, err := s.repo.FindByID(ctx, actor.CenterID, id)
	if err != nil {
		return nil, lookupError(err, "teacher not found", "failed to load teacher")
	}
	return teacher, nil
}

// Create registers a teacher.
func (s *TeacherService) Create(ctx context.Context, actor models.Actor, req TeacherRequest) (*models.Teacher, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid teacher payload")
	}
	teacher := &models.Teacher{CenterID: actor.CenterID, Active: true}
	applyTeacherRequest(teacher, req)
	if err := s.repo.Create(ctx, teacher); err != nil {
		return nil, internalError(err, "failed to create teacher")
	}
	return teacher, nil
}

// Update modifies a teacher.
func (s *TeacherService) Update(ctx context.Context, actor models.Actor, id string, req TeacherRequest) (*models.Teacher, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid teacher payload")
	}
	teacher, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	applyTeacherRequest(teacher, req)
	if err := s.repo.Update(ctx, teacher); err != nil {
		return nil, internalError(err, "failed to update teacher")
	}
	return teacher, nil
}

// ToggleActive flips the active flag of a teacher.
func (s *TeacherService) ToggleActive(ctx context.Context, actor models.Actor, id string) (*models.Teacher, error) {
	teacher, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if teacher.Active {
		if err := s.ensureNoActiveBatches(ctx, actor.CenterID, id, "deactivate"); err != nil {
			return nil, err
		}
	}
	teacher.Active = !teacher.Active
	if err := s.repo.SetActive(ctx, actor.CenterID, id, teacher.Active); err != nil {
		return nil, internalError(err, "failed to update teacher")
	}
	return teacher, nil
}

// Delete removes a teacher without active batches.
func (s *TeacherService) Delete(ctx context.Context, actor models.Actor, id string) error {
	if _, err := s.Get(ctx, actor, id); err != nil {
		return err
	}
	if err := s.ensureNoActiveBatches(ctx, actor.CenterID, id, "delete"); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, actor.CenterID, id); err != nil {
		return internalError(err, "failed to delete teacher")
	}
	return nil
}

// Availability splits the declared ranges into slots grouped per weekday.
func (s *TeacherService) Availability(ctx context.Context, actor models.Actor, id string) (*models.TeacherAvailability, error) {
	teacher, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	return &models.TeacherAvailability{
		TeacherID: teacher.ID,
		Interval:  s.slotInterval,
		Days:      availabilityByDay(teacher.AvailableTimes, s.slotInterval),
	}, nil
}

func (s *TeacherService) ensureNoActiveBatches(ctx context.Context, centerID, teacherID, action string) error {
	if s.batches == nil {
		return nil
	}
	batches, err := s.batches.ListActive(ctx, centerID, models.BatchFilter{TeacherID: teacherID}, "")
	if err != nil {
		return internalError(err, "failed to check teacher batches")
	}
	if len(batches) > 0 {
		return appErrors.Clone(appErrors.ErrPreconditionFailed, "cannot "+action+" a teacher with active batches")
	}
	return nil
}

// availabilityByDay expands day-qualified ranges into per-day slot labels in
// weekday order with duplicate slots removed. Labels within a day are ordered
// by start time, so ranges outside the business day and non-default
// intervals keep chronological order.
func availabilityByDay(ranges []string, interval int) []timeslot.DaySlot {
	slots := make([]string, 0)
	for _, entry := range ranges {
		slots = append(slots, timeslot.SplitDayRange(entry, interval)...)
	}
	days := timeslot.SortDays(timeslot.GroupByDay(slots))
	for i := range days {
		days[i].Times = sortByStart(dedupe(days[i].Times))
	}
	return days
}

// sortByStart orders labels by their start minute. Unparseable labels go
// first, keeping their relative order.
func sortByStart(labels []string) []string {
	starts := make(map[string]int, len(labels))
	for _, label := range labels {
		starts[label] = -1
		if r, err := timeslot.ParseTimeRangeStrict(label); err == nil {
			starts[label] = r.Start
		}
	}
	sort.SliceStable(labels, func(i, j int) bool {
		return starts[labels[i]] < starts[labels[j]]
	})
	return labels
}

func dedupe(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func applyTeacherRequest(teacher *models.Teacher, req TeacherRequest) {
	teacher.FullName = strings.TrimSpace(req.FullName)
	teacher.Phone = strings.TrimSpace(req.Phone)
	teacher.Email = optionalString(strings.ToLower(strings.TrimSpace(req.Email)))
	teacher.Subject = strings.TrimSpace(req.Subject)
	teacher.MonthlySalary = req.MonthlySalary
	teacher.AvailableTimes = normalizeRanges(req.AvailableTimes)
	if req.Active != nil {
		teacher.Active = *req.Active
	}
}

// normalizeRanges re-renders validated ranges in their canonical spacing.
func normalizeRanges(entries []string) []string {
	out := make([]string, 0, len(entries))
	for _, entry := range entries {
		if dr, err := timeslot.ParseDayRangeStrict(entry); err == nil {
			out = append(out, dr.String())
		}
	}
	return out
}
