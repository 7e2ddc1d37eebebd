package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/coaching-center-api/internal/middleware"
	"github.com/noah-isme/coaching-center-api/internal/models"
	"github.com/noah-isme/coaching-center-api/internal/service"
)

type roomRepoStub struct {
	rooms map[string]*models.Room
}

func (r *roomRepoStub) List(ctx context.Context, filter models.RoomFilter) ([]models.Room, int, error) {
	var out []models.Room
	for _, room := range r.rooms {
		if room.CenterID == filter.CenterID {
			out = append(out, *room)
		}
	}
	return out, len(out), nil
}

func (r *roomRepoStub) FindByID(ctx context.Context, centerID, id string) (*models.Room, error) {
	room, ok := r.rooms[id]
	if !ok || room.CenterID != centerID {
		return nil, sql.ErrNoRows
	}
	copied := *room
	return &copied, nil
}

func (r *roomRepoStub) ExistsByName(ctx context.Context, centerID, name, excludeID string) (bool, error) {
	for id, room := range r.rooms {
		if id != excludeID && room.CenterID == centerID && strings.EqualFold(room.Name, name) {
			return true, nil
		}
	}
	return false, nil
}

func (r *roomRepoStub) Create(ctx context.Context, room *models.Room) error {
	room.ID = "room-" + room.Name
	r.rooms[room.ID] = room
	return nil
}

func (r *roomRepoStub) Update(ctx context.Context, room *models.Room) error {
	r.rooms[room.ID] = room
	return nil
}

func (r *roomRepoStub) Delete(ctx context.Context, centerID, id string) error {
	delete(r.rooms, id)
	return nil
}

type activeBatchStub struct{ batches []models.BatchDetail }

func (a activeBatchStub) ListActive(ctx context.Context, centerID string, scope models.BatchFilter, excludeID string) ([]models.BatchDetail, error) {
	var out []models.BatchDetail
	for _, b := range a.batches {
		if scope.RoomID == "" || b.RoomID == scope.RoomID {
			out = append(out, b)
		}
	}
	return out, nil
}

func newRoomRouter(repo *roomRepoStub, batches activeBatchStub, claims *models.JWTClaims) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := NewRoomHandler(service.NewRoomService(repo, batches, 30, service.NewValidator(), nil))
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if claims != nil {
			c.Set(middleware.ContextUserKey, claims)
		}
	})
	r.GET("/rooms", handler.List)
	r.POST("/rooms", handler.Create)
	r.GET("/rooms/:id", handler.Get)
	r.DELETE("/rooms/:id", handler.Delete)
	r.GET("/rooms/:id/slots", handler.Slots)
	return r
}

func serve(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestRoomHandlerCreateValidatesTimes(t *testing.T) {
	repo := &roomRepoStub{rooms: map[string]*models.Room{}}
	r := newRoomRouter(repo, activeBatchStub{}, adminClaims)

	w := serve(r, http.MethodPost, "/rooms", `{"name":"Hall","capacity":30,"available_times":["Saturday 9:00 AM - 12:00 PM"]}`)
	require.Equal(t, http.StatusCreated, w.Code)
	require.Contains(t, repo.rooms, "room-Hall")
	assert.Equal(t, "c1", repo.rooms["room-Hall"].CenterID)

	w = serve(r, http.MethodPost, "/rooms", `{"name":"Lab","capacity":30,"available_times":["Saturday 9 - 12"]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = serve(r, http.MethodPost, "/rooms", `{"name":"hall","capacity":10}`)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = serve(r, http.MethodPost, "/rooms", `{"name":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRoomHandlerTenantIsolation(t *testing.T) {
	repo := &roomRepoStub{rooms: map[string]*models.Room{
		"r1": {ID: "r1", CenterID: "c2", Name: "Other", Capacity: 20, Active: true},
	}}
	r := newRoomRouter(repo, activeBatchStub{}, adminClaims)

	assert.Equal(t, http.StatusNotFound, serve(r, http.MethodGet, "/rooms/r1", "").Code)

	w := serve(r, http.MethodGet, "/rooms", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "Other")

	anonymous := newRoomRouter(repo, activeBatchStub{}, nil)
	assert.Equal(t, http.StatusUnauthorized, serve(anonymous, http.MethodGet, "/rooms", "").Code)
}

func TestRoomHandlerSlotsAndDelete(t *testing.T) {
	repo := &roomRepoStub{rooms: map[string]*models.Room{
		"r1": {ID: "r1", CenterID: "c1", Name: "Hall", Capacity: 30, Active: true, AvailableTimes: []string{"Saturday 9:00 AM - 10:00 AM"}},
	}}
	batches := activeBatchStub{batches: []models.BatchDetail{{Batch: models.Batch{
		ID: "b1", CenterID: "c1", Name: "Physics A", RoomID: "r1", Status: models.BatchStatusActive,
		ClassTimes: []string{"Saturday 9:30 AM - 10:00 AM"},
	}}}}
	r := newRoomRouter(repo, batches, adminClaims)

	w := serve(r, http.MethodGet, "/rooms/r1/slots", "")
	require.Equal(t, http.StatusOK, w.Code)
	var envelope struct {
		Data models.RoomSlots `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.Len(t, envelope.Data.Days, 1)
	slots := envelope.Data.Days[0].Slots
	require.Len(t, slots, 2)
	assert.Equal(t, "9:00 AM - 9:30 AM", slots[0].Time)
	assert.False(t, slots[0].Occupied)
	assert.True(t, slots[1].Occupied)
	require.NotNil(t, slots[1].BatchName)
	assert.Equal(t, "Physics A", *slots[1].BatchName)

	assert.Equal(t, http.StatusPreconditionFailed, serve(r, http.MethodDelete, "/rooms/r1", "").Code)
	free := newRoomRouter(repo, activeBatchStub{}, adminClaims)
	assert.Equal(t, http.StatusNoContent, serve(free, http.MethodDelete, "/rooms/r1", "").Code)
	assert.Empty(t, repo.rooms)
}
