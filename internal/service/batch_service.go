package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/coaching-center-api/internal/dto"
	"github.com/noah-isme/coaching-center-api/internal/models"
	"github.com/noah-isme/coaching-center-api/internal/timeslot"
	appErrors "github.com/noah-isme/coaching-center-api/pkg/errors"
)

type batchRepository interface {
	List(ctx context.Context, filter models.BatchFilter) ([]models.BatchDetail, int, error)
	FindByID(ctx context.Context, centerID, id string) (*models.BatchDetail, error)
	ListActive(ctx context.Context, centerID string, scope models.BatchFilter, excludeID string) ([]models.BatchDetail, error)
	Create(ctx context.Context, batch *models.Batch) error
	Update(ctx context.Context, batch *models.Batch) error
	UpdateStatus(ctx context.Context, centerID, id string, status models.BatchStatus) error
	Delete(ctx context.Context, centerID, id string) error
}

type roomLookup interface {
	FindByID(ctx context.Context, centerID, id string) (*models.Room, error)
}

type teacherLookup interface {
	FindByID(ctx context.Context, centerID, id string) (*models.Teacher, error)
	ListActive(ctx context.Context, centerID string) ([]models.Teacher, error)
}

// BatchRequest is the payload for creating and updating batches.
type BatchRequest struct {
	Name       string             `json:"name" validate:"required,max=120"`
	Subject    string             `json:"subject" validate:"required,max=80"`
	TeacherID  string             `json:"teacher_id" validate:"required"`
	RoomID     string             `json:"room_id" validate:"required"`
	ClassTimes []string           `json:"class_times" validate:"required,min=1,max=14,dive,timerange"`
	StartDate  time.Time          `json:"start_date" validate:"required"`
	Fee        float64            `json:"fee" validate:"gte=0"`
	Capacity   int                `json:"capacity" validate:"gte=1,lte=1000"`
	Status     models.BatchStatus `json:"status" validate:"omitempty,oneof=ACTIVE INACTIVE"`
}

// AvailableTeachersRequest asks who can take a class at a given time.
type AvailableTeachersRequest struct {
	Day       string `form:"day" validate:"required"`
	TimeRange string `form:"time" validate:"required"`
	Subject   string `form:"subject"`
}

// BatchService validates and schedules batches.
type BatchService struct {
	repo         batchRepository
	rooms        roomLookup
	teachers     teacherLookup
	slotInterval int
	metrics      *MetricsService
	validator    *validator.Validate
	logger       *zap.Logger
}

// NewBatchService constructs a BatchService.
func NewBatchService(repo batchRepository, rooms roomLookup, teachers teacherLookup, slotInterval int, validate *validator.Validate, logger *zap.Logger) *BatchService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if slotInterval <= 0 {
		slotInterval = timeslot.DefaultInterval
	}
	return &BatchService{
		repo:         repo,
		rooms:        rooms,
		teachers:     teachers,
		slotInterval: slotInterval,
		validator:    withDomainTags(validate),
		logger:       logger,
	}
}

// WithMetrics attaches the collector counting schedule validations.
func (s *BatchService) WithMetrics(metrics *MetricsService) *BatchService {
	s.metrics = metrics
	return s
}

// List returns batches of the actor's center.
func (s *BatchService) List(ctx context.Context, actor models.Actor, filter models.BatchFilter) ([]models.BatchDetail, *models.Pagination, error) {
	filter.CenterID = actor.CenterID
	batches, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, internalError(err, "failed to list batches")
	}
	return batches, newPagination(filter.Page, filter.PageSize, total), nil
}

// Get returns a batch by id.
func (s *BatchService) Get(ctx context.Context, actor models.Actor, id string) (*models.BatchDetail, error) {
	batch, err := s.repo.FindByID(ctx, actor.CenterID, id)
	if err != nil {
		return nil, lookupError(err, "batch not found", "failed to load batch")
	}
	return batch, nil
}

// Create schedules a new batch after checking room and teacher constraints.
func (s *BatchService) Create(ctx context.Context, actor models.Actor, req BatchRequest) (*models.Batch, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid batch payload")
	}
	batch := &models.Batch{CenterID: actor.CenterID, Status: models.BatchStatusActive}
	applyBatchRequest(batch, req)
	if batch.Status == models.BatchStatusActive {
		if err := s.validateSchedule(ctx, batch, ""); err != nil {
			return nil, err
		}
	}
	if err := s.repo.Create(ctx, batch); err != nil {
		return nil, internalError(err, "failed to create batch")
	}
	s.logger.Info("batch scheduled",
		zap.String("center_id", actor.CenterID),
		zap.String("batch_id", batch.ID),
		zap.Strings("class_times", batch.ClassTimes),
	)
	return batch, nil
}

// Update modifies a batch, re-running the schedule checks while it is active.
func (s *BatchService) Update(ctx context.Context, actor models.Actor, id string, req BatchRequest) (*models.Batch, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid batch payload")
	}
	detail, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	batch := detail.Batch
	applyBatchRequest(&batch, req)
	if req.Capacity < detail.StudentCount {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, fmt.Sprintf("capacity below current enrolment of %d", detail.StudentCount))
	}
	if batch.Status == models.BatchStatusActive {
		if err := s.validateSchedule(ctx, &batch, id); err != nil {
			return nil, err
		}
	}
	if err := s.repo.Update(ctx, &batch); err != nil {
		return nil, internalError(err, "failed to update batch")
	}
	return &batch, nil
}

// ToggleStatus activates or deactivates a batch. Activation re-checks the
// schedule since other batches may have taken the slots meanwhile.
func (s *BatchService) ToggleStatus(ctx context.Context, actor models.Actor, id string) (*models.Batch, error) {
	detail, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	batch := detail.Batch
	if batch.Status == models.BatchStatusActive {
		batch.Status = models.BatchStatusInactive
	} else {
		batch.Status = models.BatchStatusActive
		if err := s.validateSchedule(ctx, &batch, id); err != nil {
			return nil, err
		}
	}
	if err := s.repo.UpdateStatus(ctx, actor.CenterID, id, batch.Status); err != nil {
		return nil, internalError(err, "failed to update batch status")
	}
	return &batch, nil
}

// Delete removes a batch; its students are detached.
func (s *BatchService) Delete(ctx context.Context, actor models.Actor, id string) error {
	if _, err := s.Get(ctx, actor, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, actor.CenterID, id); err != nil {
		return internalError(err, "failed to delete batch")
	}
	return nil
}

// Schedule builds the weekly grid of active batches, optionally for one room.
// Class times reaching outside the business day are also listed in Outside.
func (s *BatchService) Schedule(ctx context.Context, actor models.Actor, roomID string) (*dto.ScheduleGridResponse, error) {
	scope := models.BatchFilter{}
	if roomID != "" {
		if _, err := s.loadRoom(ctx, actor.CenterID, roomID); err != nil {
			return nil, err
		}
		scope.RoomID = roomID
	}
	batches, err := s.repo.ListActive(ctx, actor.CenterID, scope, "")
	if err != nil {
		return nil, internalError(err, "failed to load batches")
	}
	index := newOccupancy(batches)

	slots := timeslot.CanonicalSlots()
	window := timeslot.BusinessDay()
	grid := &dto.ScheduleGridResponse{RoomID: optionalString(roomID), Slots: slots, Outside: make([]dto.OutsideEntry, 0)}
	for _, day := range timeslot.Weekdays() {
		for _, entry := range index[day] {
			if !window.Contains(entry.rng) {
				grid.Outside = append(grid.Outside, dto.OutsideEntry{Day: day, Time: entry.rng.String(), Batch: scheduleEntry(entry.batch)})
			}
		}
		scheduleDay := dto.ScheduleDay{Day: day, Cells: make([]dto.ScheduleCell, 0, len(slots))}
		for _, label := range slots {
			cell := dto.ScheduleCell{Time: label, Entries: make([]dto.ScheduleEntry, 0)}
			if r, err := timeslot.ParseTimeRangeStrict(label); err == nil {
				for _, entry := range index[day] {
					if entry.rng.Overlaps(r) {
						cell.Entries = append(cell.Entries, scheduleEntry(entry.batch))
					}
				}
			}
			scheduleDay.Cells = append(scheduleDay.Cells, cell)
		}
		grid.Days = append(grid.Days, scheduleDay)
	}
	return grid, nil
}

// AvailableTeachers lists active teachers free for the requested time.
func (s *BatchService) AvailableTeachers(ctx context.Context, actor models.Actor, req AvailableTeachersRequest) ([]dto.AvailableTeacher, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid availability query")
	}
	target, err := timeslot.ParseDayRangeStrict(strings.TrimSpace(req.Day) + " " + strings.TrimSpace(req.TimeRange))
	if err != nil {
		return nil, validationError(err, "invalid day or time range")
	}
	teachers, err := s.teachers.ListActive(ctx, actor.CenterID)
	if err != nil {
		return nil, internalError(err, "failed to load teachers")
	}
	batches, err := s.repo.ListActive(ctx, actor.CenterID, models.BatchFilter{}, "")
	if err != nil {
		return nil, internalError(err, "failed to load batches")
	}
	busy := make(map[string]bool)
	for _, entry := range newOccupancy(batches)[target.Day] {
		if entry.rng.Overlaps(target.Range) {
			busy[entry.batch.TeacherID] = true
		}
	}

	out := make([]dto.AvailableTeacher, 0)
	for _, teacher := range teachers {
		if busy[teacher.ID] {
			continue
		}
		if req.Subject != "" && !strings.EqualFold(teacher.Subject, req.Subject) {
			continue
		}
		if !teacherCovers(teacher, target) {
			continue
		}
		out = append(out, dto.AvailableTeacher{ID: teacher.ID, FullName: teacher.FullName, Subject: teacher.Subject})
	}
	return out, nil
}

func (s *BatchService) validateSchedule(ctx context.Context, batch *models.Batch, excludeID string) error {
	err := s.checkSchedule(ctx, batch, excludeID)
	outcome := "ok"
	if err != nil {
		outcome = appErrors.FromError(err).Code
	}
	s.metrics.RecordScheduleCheck(outcome)
	return err
}

// checkSchedule enforces, in order: room availability, room conflicts,
// teacher conflicts and teacher availability.
func (s *BatchService) checkSchedule(ctx context.Context, batch *models.Batch, excludeID string) error {
	requested, err := timeslot.ParseDayRanges(batch.ClassTimes)
	if err != nil {
		return validationError(err, "invalid class time")
	}
	if err := selfOverlap(requested); err != nil {
		return err
	}

	room, err := s.loadRoom(ctx, batch.CenterID, batch.RoomID)
	if err != nil {
		return err
	}
	teacher, err := s.loadTeacher(ctx, batch.CenterID, batch.TeacherID)
	if err != nil {
		return err
	}

	if err := s.checkRoomAvailability(room, requested); err != nil {
		return err
	}

	conflicts, err := s.findConflicts(ctx, batch, requested, excludeID)
	if err != nil {
		return err
	}
	if len(conflicts) > 0 {
		return wrapScheduleConflict(conflicts)
	}

	if !teacher.Active {
		return appErrors.Clone(appErrors.ErrTeacherUnavailable, "teacher is inactive")
	}
	for _, dr := range requested {
		if !teacherCovers(*teacher, dr) {
			return appErrors.Clone(appErrors.ErrTeacherUnavailable, fmt.Sprintf("teacher is not available on %s", dr))
		}
	}
	return nil
}

// checkRoomAvailability requires every split slot of each class time to fall
// inside the room's declared times.
func (s *BatchService) checkRoomAvailability(room *models.Room, requested []timeslot.DayRange) error {
	if !room.Active {
		return appErrors.Clone(appErrors.ErrRoomUnavailable, "room is inactive")
	}
	available := parseDeclared(room.AvailableTimes)
	for _, dr := range requested {
		for _, label := range timeslot.SplitDayRange(dr.String(), s.slotInterval) {
			slot, err := timeslot.ParseDayRangeStrict(label)
			if err != nil || !timeslot.Covered(slot, available) {
				return appErrors.Clone(appErrors.ErrRoomUnavailable, fmt.Sprintf("room %s is not available on %s", room.Name, label))
			}
		}
	}
	return nil
}

func (s *BatchService) findConflicts(ctx context.Context, batch *models.Batch, requested []timeslot.DayRange, excludeID string) ([]models.ScheduleConflict, error) {
	conflicts := make([]models.ScheduleConflict, 0)
	dimensions := []struct {
		name  string
		scope models.BatchFilter
	}{
		{models.ConflictDimensionRoom, models.BatchFilter{RoomID: batch.RoomID}},
		{models.ConflictDimensionTeacher, models.BatchFilter{TeacherID: batch.TeacherID}},
	}
	for _, dim := range dimensions {
		existing, err := s.repo.ListActive(ctx, batch.CenterID, dim.scope, excludeID)
		if err != nil {
			return nil, internalError(err, "failed to check schedule conflicts")
		}
		for _, other := range existing {
			for _, raw := range other.ClassTimes {
				taken, err := timeslot.ParseDayRangeStrict(raw)
				if err != nil {
					s.logger.Warn("skipping malformed class time", zap.String("batch_id", other.ID), zap.String("class_time", raw))
					continue
				}
				for _, want := range requested {
					if want.Day == taken.Day && want.Range.Overlaps(taken.Range) {
						conflicts = append(conflicts, models.ScheduleConflict{
							BatchID:   other.ID,
							BatchName: other.Name,
							Dimension: dim.name,
							Day:       want.Day,
							Existing:  taken.Range.String(),
							Requested: want.Range.String(),
						})
					}
				}
			}
		}
	}
	return conflicts, nil
}

func (s *BatchService) loadRoom(ctx context.Context, centerID, id string) (*models.Room, error) {
	room, err := s.rooms.FindByID(ctx, centerID, id)
	if err != nil {
		return nil, lookupError(err, "room not found", "failed to load room")
	}
	return room, nil
}

func (s *BatchService) loadTeacher(ctx context.Context, centerID, id string) (*models.Teacher, error) {
	teacher, err := s.teachers.FindByID(ctx, centerID, id)
	if err != nil {
		return nil, lookupError(err, "teacher not found", "failed to load teacher")
	}
	return teacher, nil
}

func wrapScheduleConflict(conflicts []models.ScheduleConflict) error {
	kind := conflicts[0].Dimension
	message := "room already booked for the requested time"
	if kind == models.ConflictDimensionTeacher {
		message = "teacher already teaching at the requested time"
	}
	domainErr := &models.ScheduleConflictError{Type: kind, Message: message, Conflicts: conflicts}
	wrapped := appErrors.Wrap(domainErr, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, fmt.Sprintf("schedule conflict: %s", message))
	return appErrors.WithDetails(wrapped, domainErr)
}

// selfOverlap rejects class times of one batch that collide with each other.
func selfOverlap(requested []timeslot.DayRange) error {
	for i := range requested {
		for j := i + 1; j < len(requested); j++ {
			a, b := requested[i], requested[j]
			if a.Day == b.Day && a.Range.Overlaps(b.Range) {
				return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("class times %s and %s overlap", a, b))
			}
		}
	}
	return nil
}

// teacherCovers treats a teacher without declared times as always available.
func teacherCovers(teacher models.Teacher, target timeslot.DayRange) bool {
	if len(teacher.AvailableTimes) == 0 {
		return true
	}
	return timeslot.Covered(target, parseDeclared(teacher.AvailableTimes))
}

// parseDeclared parses stored availability, skipping rows that predate
// strict validation.
func parseDeclared(entries []string) []timeslot.DayRange {
	out := make([]timeslot.DayRange, 0, len(entries))
	for _, entry := range entries {
		if dr, err := timeslot.ParseDayRangeStrict(entry); err == nil {
			out = append(out, dr)
		}
	}
	return out
}

func scheduleEntry(batch *models.BatchDetail) dto.ScheduleEntry {
	return dto.ScheduleEntry{
		BatchID:     batch.ID,
		BatchName:   batch.Name,
		Subject:     batch.Subject,
		TeacherName: batch.TeacherName,
		RoomName:    batch.RoomName,
	}
}

func applyBatchRequest(batch *models.Batch, req BatchRequest) {
	batch.Name = strings.TrimSpace(req.Name)
	batch.Subject = strings.TrimSpace(req.Subject)
	batch.TeacherID = req.TeacherID
	batch.RoomID = req.RoomID
	batch.ClassTimes = normalizeRanges(req.ClassTimes)
	batch.StartDate = req.StartDate
	batch.Fee = req.Fee
	batch.Capacity = req.Capacity
	if req.Status != "" {
		batch.Status = req.Status
	}
}
