package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/coaching-center-api/internal/models"
	"github.com/noah-isme/coaching-center-api/internal/service"
	appErrors "github.com/noah-isme/coaching-center-api/pkg/errors"
	"github.com/noah-isme/coaching-center-api/pkg/response"
)

// BatchHandler exposes batch and timetable endpoints.
type BatchHandler struct {
	batches *service.BatchService
}

// NewBatchHandler constructs BatchHandler.
func NewBatchHandler(batches *service.BatchService) *BatchHandler {
	return &BatchHandler{batches: batches}
}

// List godoc
// @Summary List batches
// @Tags Batches
// @Produce json
// @Param search query string false "Search by name or subject"
// @Param teacherId query string false "Teacher filter"
// @Param roomId query string false "Room filter"
// @Param status query string false "ACTIVE or INACTIVE"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /batches [get]
func (h *BatchHandler) List(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	params := readListParams(c)
	filter := models.BatchFilter{
		Search:    params.Search,
		TeacherID: c.Query("teacherId"),
		RoomID:    c.Query("roomId"),
		Page:      params.Page,
		PageSize:  params.PageSize,
		SortBy:    params.SortBy,
		SortOrder: params.SortOrder,
	}
	if status := c.Query("status"); status != "" {
		s := models.BatchStatus(status)
		filter.Status = &s
	}
	batches, pagination, err := h.batches.List(c.Request.Context(), actor, filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, batches, pagination)
}

// Get godoc
// @Summary Get batch
// @Tags Batches
// @Produce json
// @Param id path string true "Batch ID"
// @Success 200 {object} response.Envelope
// @Router /batches/{id} [get]
func (h *BatchHandler) Get(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	batch, err := h.batches.Get(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, batch, nil)
}

// Create godoc
// @Summary Create batch
// @Description Validates class times against room hours, teacher availability and existing batches
// @Tags Batches
// @Accept json
// @Produce json
// @Param payload body service.BatchRequest true "Batch payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /batches [post]
func (h *BatchHandler) Create(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var req service.BatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidPayload(c, err)
		return
	}
	batch, err := h.batches.Create(c.Request.Context(), actor, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, batch)
}

// Update godoc
// @Summary Update batch
// @Tags Batches
// @Accept json
// @Produce json
// @Param id path string true "Batch ID"
// @Param payload body service.BatchRequest true "Batch payload"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /batches/{id} [put]
func (h *BatchHandler) Update(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var req service.BatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidPayload(c, err)
		return
	}
	batch, err := h.batches.Update(c.Request.Context(), actor, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, batch, nil)
}

// ToggleStatus godoc
// @Summary Activate or deactivate batch
// @Tags Batches
// @Produce json
// @Param id path string true "Batch ID"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /batches/{id}/toggle-status [patch]
func (h *BatchHandler) ToggleStatus(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	batch, err := h.batches.ToggleStatus(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, batch, nil)
}

// Delete godoc
// @Summary Delete batch
// @Tags Batches
// @Param id path string true "Batch ID"
// @Success 204
// @Router /batches/{id} [delete]
func (h *BatchHandler) Delete(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	if err := h.batches.Delete(c.Request.Context(), actor, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Schedule godoc
// @Summary Weekly timetable
// @Description Grid of canonical slots per weekday with the active batches in each
// @Tags Batches
// @Produce json
// @Param roomId query string false "Limit to one room"
// @Success 200 {object} response.Envelope
// @Router /batches/schedule [get]
func (h *BatchHandler) Schedule(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	grid, err := h.batches.Schedule(c.Request.Context(), actor, c.Query("roomId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, grid, nil)
}

// AvailableTeachers godoc
// @Summary Teachers free at a time
// @Tags Batches
// @Produce json
// @Param day query string true "Weekday"
// @Param time query string true "Time range, e.g. 4:00 PM - 5:30 PM"
// @Param subject query string false "Subject filter"
// @Success 200 {object} response.Envelope
// @Router /batches/available-teachers [get]
func (h *BatchHandler) AvailableTeachers(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var req service.AvailableTeachersRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid query"))
		return
	}
	teachers, err := h.batches.AvailableTeachers(c.Request.Context(), actor, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, teachers, nil)
}
