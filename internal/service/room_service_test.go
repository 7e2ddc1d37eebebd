package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/coaching-center-api/internal/models"
	appErrors "github.com/noah-isme/coaching-center-api/pkg/errors"
)

func TestRoomServiceCreate(t *testing.T) {
	repo := &mockRoomRepo{names: map[string]string{"Room 101": "r-101"}}
	svc := NewRoomService(repo, &mockBatchRepo{}, 30, nil, nil)

	_, err := svc.Create(context.Background(), adminActor, RoomRequest{Name: "Room 101", Capacity: 20})
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrConflict))

	room, err := svc.Create(context.Background(), adminActor, RoomRequest{
		Name:           " Lab ",
		Capacity:       25,
		AvailableTimes: []string{"Sunday 3:00 PM - 5:00 PM"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Lab", room.Name)
	assert.True(t, room.Active)
	assert.Equal(t, adminActor.CenterID, room.CenterID)

	_, err = svc.Create(context.Background(), adminActor, RoomRequest{Name: "Bad", Capacity: 10, AvailableTimes: []string{"Sunday 5:00 PM - 3:00 PM"}})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}

func TestRoomServiceSlots(t *testing.T) {
	f := newBatchFixture()
	svc := NewRoomService(f.rooms, f.batches, 30, nil, nil)

	view, err := svc.Slots(context.Background(), adminActor, "r-101")
	require.NoError(t, err)
	assert.Equal(t, "Room 101", view.RoomName)
	require.Len(t, view.Days, 2)

	saturday := view.Days[0]
	assert.Equal(t, "Saturday", saturday.Day)
	require.Len(t, saturday.Slots, 10)
	assert.Equal(t, "9:00 AM - 9:30 AM", saturday.Slots[0].Time)
	assert.Equal(t, "1:30 PM - 2:00 PM", saturday.Slots[9].Time)
	for i, slot := range saturday.Slots {
		if i < 3 {
			assert.True(t, slot.Occupied, slot.Time)
			require.NotNil(t, slot.BatchName)
			assert.Equal(t, "Physics A", *slot.BatchName)
			continue
		}
		assert.False(t, slot.Occupied, slot.Time)
		assert.Nil(t, slot.BatchID)
	}

	sunday := view.Days[1]
	assert.Equal(t, "Sunday", sunday.Day)
	for _, slot := range sunday.Slots {
		assert.False(t, slot.Occupied)
	}
}

func TestRoomServiceDeleteBlockedByActiveBatch(t *testing.T) {
	f := newBatchFixture()
	svc := NewRoomService(f.rooms, f.batches, 30, nil, nil)

	err := svc.Delete(context.Background(), adminActor, "r-101")
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrPreconditionFailed))

	require.NoError(t, svc.Delete(context.Background(), adminActor, "r-202"))
	assert.Equal(t, []string{"r-202"}, f.rooms.deleted)
}

func TestRoomServiceUpdateKeepsOwnName(t *testing.T) {
	repo := &mockRoomRepo{
		rooms: map[string]models.Room{"r-1": {ID: "r-1", CenterID: adminActor.CenterID, Name: "Room 1", Active: true}},
		names: map[string]string{"Room 1": "r-1"},
	}
	svc := NewRoomService(repo, nil, 30, nil, nil)
	inactive := false

	room, err := svc.Update(context.Background(), adminActor, "r-1", RoomRequest{Name: "Room 1", Capacity: 40, Active: &inactive})
	require.NoError(t, err)
	assert.Equal(t, 40, room.Capacity)
	assert.False(t, room.Active)
}
