package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/coaching-center-api/internal/middleware"
	"github.com/noah-isme/coaching-center-api/internal/models"
)

type fakeAnalyticsSrv struct {
	lastYear int
	hit      bool
}

func (f *fakeAnalyticsSrv) Finance(_ context.Context, actor models.Actor, year int) (*models.FinanceReport, bool, error) {
	f.lastYear = year
	return &models.FinanceReport{Year: 2024, Income: 1500, Net: 1500}, f.hit, nil
}

func (f *fakeAnalyticsSrv) SystemMetrics() models.SystemMetrics {
	return models.SystemMetrics{}
}

func TestAnalyticsHandlerFinance(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := &fakeAnalyticsSrv{hit: true}
	handler := NewAnalyticsHandler(srv)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/reports/finance?year=2024", nil)
	c.Set(middleware.ContextUserKey, adminClaims)

	handler.Finance(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2024, srv.lastYear)
	var envelope responseEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, true, envelope.Meta["cache_hit"])
	assert.Equal(t, float64(1500), envelope.Data["income"])
}

func TestAnalyticsHandlerFinanceDefaultsAndBadYear(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := &fakeAnalyticsSrv{}
	handler := NewAnalyticsHandler(srv)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/reports/finance", nil)
	c.Set(middleware.ContextUserKey, adminClaims)
	handler.Finance(c)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, srv.lastYear)

	rec = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/reports/finance?year=twenty", nil)
	c.Set(middleware.ContextUserKey, adminClaims)
	handler.Finance(c)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnalyticsHandlerSystem(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/reports/system", nil)

	NewAnalyticsHandler(&fakeAnalyticsSrv{}).System(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	var envelope responseEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, false, envelope.Meta["cache_hit"])
}
