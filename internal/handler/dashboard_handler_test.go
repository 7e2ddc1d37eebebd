package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/coaching-center-api/internal/middleware"
	"github.com/noah-isme/coaching-center-api/internal/models"
)

type fakeDashboardSrv struct {
	resp      *models.DashboardSummary
	hit       bool
	err       error
	lastActor models.Actor
}

func (f *fakeDashboardSrv) Summary(_ context.Context, actor models.Actor) (*models.DashboardSummary, bool, error) {
	f.lastActor = actor
	return f.resp, f.hit, f.err
}

type responseEnvelope struct {
	Data map[string]interface{} `json:"data"`
	Meta map[string]interface{} `json:"meta"`
}

func TestDashboardHandlerSummary(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := &fakeDashboardSrv{resp: &models.DashboardSummary{Month: "2024-06", ActiveStudents: 42}, hit: true}
	handler := NewDashboardHandler(srv)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/reports/dashboard", nil)
	c.Set(middleware.ContextUserKey, adminClaims)

	handler.Summary(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	var envelope responseEnvelope
	_ = json.Unmarshal(rec.Body.Bytes(), &envelope)
	assert.Equal(t, true, envelope.Meta["cache_hit"])
	assert.Equal(t, "2024-06", envelope.Data["month"])
	assert.Equal(t, "c1", srv.lastActor.CenterID)
}

func TestDashboardHandlerErrors(t *testing.T) {
	gin.SetMode(gin.TestMode)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/reports/dashboard", nil)
	NewDashboardHandler(&fakeDashboardSrv{}).Summary(c)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/reports/dashboard", nil)
	c.Set(middleware.ContextUserKey, adminClaims)
	NewDashboardHandler(&fakeDashboardSrv{err: errors.New("boom")}).Summary(c)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	rec = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/reports/dashboard", nil)
	NewDashboardHandler(nil).Summary(c)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
