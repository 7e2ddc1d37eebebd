package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/coaching-center-api/internal/models"
	"github.com/noah-isme/coaching-center-api/internal/timeslot"
	appErrors "github.com/noah-isme/coaching-center-api/pkg/errors"
)

type roomRepository interface {
	List(ctx context.Context, filter models.RoomFilter) ([]models.Room, int, error)
	FindByID(ctx context.Context, centerID, id string) (*models.Room, error)
	ExistsByName(ctx context.Context, centerID, name, excludeID string) (bool, error)
	Create(ctx context.Context, room *models.Room) error
	Update(ctx context.Context, room *models.Room) error
	Delete(ctx context.Context, centerID, id string) error
}

// RoomRequest is the payload for creating and updating rooms.
type RoomRequest struct {
	Name           string   `json:"name" validate:"required,max=80"`
	Capacity       int      `json:"capacity" validate:"gte=1,lte=1000"`
	AvailableTimes []string `json:"available_times" validate:"omitempty,dive,timerange"`
	Active         *bool    `json:"active"`
}

// RoomService manages classrooms and their occupancy.
type RoomService struct {
	repo         roomRepository
	batches      batchScheduleReader
	slotInterval int
	validator    *validator.Validate
	logger       *zap.Logger
}

// NewRoomService constructs a RoomService.
func NewRoomService(repo roomRepository, batches batchScheduleReader, slotInterval int, validate *validator.Validate, logger *zap.Logger) *RoomService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if slotInterval <= 0 {
		slotInterval = timeslot.DefaultInterval
	}
	return &RoomService{repo: repo, batches: batches, slotInterval: slotInterval, validator: withDomainTags(validate), logger: logger}
}

// List returns rooms of the actor's center.
func (s *RoomService) List(ctx context.Context, actor models.Actor, filter models.RoomFilter) ([]models.Room, *models.Pagination, error) {
	filter.CenterID = actor.CenterID
	rooms, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, internalError(err, "failed to list rooms")
	}
	return rooms, newPagination(filter.Page, filter.PageSize, total), nil
}

// Get returns a room by id.
func (s *RoomService) Get(ctx context.Context, actor models.Actor, id string) (*models.Room, error) {
	room, err := s.repo.FindByID(ctx, actor.CenterID, id)
	if err != nil {
		return nil, lookupError(err, "room not found", "failed to load room")
	}
	return room, nil
}

// Create adds a room.
func (s *RoomService) Create(ctx context.Context, actor models.Actor, req RoomRequest) (*models.Room, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid room payload")
	}
	if err := s.ensureUniqueName(ctx, actor.CenterID, req.Name, ""); err != nil {
		return nil, err
	}
	room := &models.Room{CenterID: actor.CenterID, Active: true}
	applyRoomRequest(room, req)
	if err := s.repo.Create(ctx, room); err != nil {
		return nil, internalError(err, "failed to create room")
	}
	return room, nil
}

// Update modifies a room. Narrowing its availability does not touch existing
// batches; they are re-validated on their next update.
func (s *RoomService) Update(ctx context.Context, actor models.Actor, id string, req RoomRequest) (*models.Room, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid room payload")
	}
	room, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := s.ensureUniqueName(ctx, actor.CenterID, req.Name, id); err != nil {
		return nil, err
	}
	applyRoomRequest(room, req)
	if err := s.repo.Update(ctx, room); err != nil {
		return nil, internalError(err, "failed to update room")
	}
	return room, nil
}

// Delete removes a room that no active batch uses.
func (s *RoomService) Delete(ctx context.Context, actor models.Actor, id string) error {
	if _, err := s.Get(ctx, actor, id); err != nil {
		return err
	}
	batches, err := s.activeBatches(ctx, actor.CenterID, id)
	if err != nil {
		return err
	}
	if len(batches) > 0 {
		return appErrors.Clone(appErrors.ErrPreconditionFailed, "cannot delete a room with active batches")
	}
	if err := s.repo.Delete(ctx, actor.CenterID, id); err != nil {
		return internalError(err, "failed to delete room")
	}
	return nil
}

// Slots returns the room's split slots per weekday with the batch occupying
// each slot.
func (s *RoomService) Slots(ctx context.Context, actor models.Actor, id string) (*models.RoomSlots, error) {
	room, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	batches, err := s.activeBatches(ctx, actor.CenterID, id)
	if err != nil {
		return nil, err
	}
	occupancy := newOccupancy(batches)

	view := &models.RoomSlots{RoomID: room.ID, RoomName: room.Name, Interval: s.slotInterval, Days: make([]models.RoomSlotDay, 0)}
	for _, day := range availabilityByDay(room.AvailableTimes, s.slotInterval) {
		slotDay := models.RoomSlotDay{Day: day.Day, Slots: make([]models.RoomSlot, 0, len(day.Times))}
		for _, label := range day.Times {
			slot := models.RoomSlot{Time: label}
			if r, err := timeslot.ParseTimeRangeStrict(label); err == nil {
				if batch := occupancy.at(day.Day, r); batch != nil {
					slot.Occupied = true
					slot.BatchID = &batch.ID
					slot.BatchName = &batch.Name
				}
			}
			slotDay.Slots = append(slotDay.Slots, slot)
		}
		view.Days = append(view.Days, slotDay)
	}
	return view, nil
}

func (s *RoomService) activeBatches(ctx context.Context, centerID, roomID string) ([]models.BatchDetail, error) {
	if s.batches == nil {
		return nil, nil
	}
	batches, err := s.batches.ListActive(ctx, centerID, models.BatchFilter{RoomID: roomID}, "")
	if err != nil {
		return nil, internalError(err, "failed to load room batches")
	}
	return batches, nil
}

func (s *RoomService) ensureUniqueName(ctx context.Context, centerID, name, excludeID string) error {
	exists, err := s.repo.ExistsByName(ctx, centerID, strings.TrimSpace(name), excludeID)
	if err != nil {
		return internalError(err, "failed to validate room name")
	}
	if exists {
		return appErrors.Clone(appErrors.ErrConflict, "room name already used")
	}
	return nil
}

func applyRoomRequest(room *models.Room, req RoomRequest) {
	room.Name = strings.TrimSpace(req.Name)
	room.Capacity = req.Capacity
	room.AvailableTimes = normalizeRanges(req.AvailableTimes)
	if req.Active != nil {
		room.Active = *req.Active
	}
}

// occupancy indexes batch class times by weekday.
type occupancy map[string][]occupiedRange

type occupiedRange struct {
	rng   timeslot.Range
	batch *models.BatchDetail
}

func newOccupancy(batches []models.BatchDetail) occupancy {
	index := make(occupancy)
	for i := range batches {
		batch := &batches[i]
		for _, entry := range batch.ClassTimes {
			dr, err := timeslot.ParseDayRangeStrict(entry)
			if err != nil {
				continue
			}
			index[dr.Day] = append(index[dr.Day], occupiedRange{rng: dr.Range, batch: batch})
		}
	}
	return index
}

// at returns the first batch overlapping r on day.
func (o occupancy) at(day string, r timeslot.Range) *models.BatchDetail {
	for _, entry := range o[day] {
		if entry.rng.Overlaps(r) {
			return entry.batch
		}
	}
	return nil
}
