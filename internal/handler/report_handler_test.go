package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/coaching-center-api/internal/dto"
	"github.com/noah-isme/coaching-center-api/internal/middleware"
	"github.com/noah-isme/coaching-center-api/internal/models"
	"github.com/noah-isme/coaching-center-api/internal/service"
	appErrors "github.com/noah-isme/coaching-center-api/pkg/errors"
)

type reportServiceMock struct {
	createResp  *dto.ReportJobResponse
	createErr   error
	statusResp  *dto.ReportStatusResponse
	statusErr   error
	download    *service.ReportDownload
	downloadErr error

	lastActor   models.Actor
	lastRequest dto.ReportRequest
}

func (m *reportServiceMock) CreateJob(ctx context.Context, actor models.Actor, req dto.ReportRequest) (*dto.ReportJobResponse, error) {
	m.lastActor = actor
	m.lastRequest = req
	return m.createResp, m.createErr
}

func (m *reportServiceMock) GetStatus(ctx context.Context, actor models.Actor, id string) (*dto.ReportStatusResponse, error) {
	m.lastActor = actor
	return m.statusResp, m.statusErr
}

func (m *reportServiceMock) ResolveDownload(ctx context.Context, token string) (*service.ReportDownload, error) {
	return m.download, m.downloadErr
}

var adminClaims = &models.JWTClaims{UserID: "admin", CenterID: "c1", Role: models.RoleAdmin}

func newGinContext(method, path string, body []byte) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	return c, w
}

func TestReportHandlerGenerateReport(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &reportServiceMock{
		createResp: &dto.ReportJobResponse{ID: "job-1", Status: models.ReportStatusQueued, Progress: 0},
	}
	handler := NewReportHandler(mockSvc, nil)

	payload, _ := json.Marshal(dto.ReportRequest{Type: models.ReportTypeFinance, Year: 2024, Format: models.ReportFormatCSV})
	c, w := newGinContext(http.MethodPost, "/reports/exports", payload)
	c.Set(middleware.ContextUserKey, adminClaims)

	handler.GenerateReport(c)
	require.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, "c1", mockSvc.lastActor.CenterID)
	assert.Equal(t, 2024, mockSvc.lastRequest.Year)
}

func TestReportHandlerRequiresCenterScope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewReportHandler(&reportServiceMock{}, nil)

	c, w := newGinContext(http.MethodPost, "/reports/exports", []byte(`{}`))
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "admin"})

	handler.GenerateReport(c)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestReportHandlerReportStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &reportServiceMock{
		statusResp: &dto.ReportStatusResponse{ID: "job-1", Status: models.ReportStatusFinished, Progress: 100},
	}
	handler := NewReportHandler(mockSvc, nil)

	c, w := newGinContext(http.MethodGet, "/reports/exports/job-1", nil)
	c.Params = gin.Params{{Key: "id", Value: "job-1"}}
	c.Set(middleware.ContextUserKey, adminClaims)

	handler.ReportStatus(c)
	require.Equal(t, http.StatusOK, w.Code)

	mockSvc.statusErr = appErrors.ErrNotFound
	c, w = newGinContext(http.MethodGet, "/reports/exports/job-2", nil)
	c.Set(middleware.ContextUserKey, adminClaims)
	handler.ReportStatus(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestReportHandlerDownloadReport(t *testing.T) {
	gin.SetMode(gin.TestMode)
	file, err := os.CreateTemp(t.TempDir(), "report*.pdf")
	require.NoError(t, err)
	_, _ = file.WriteString("%PDF-1.3")
	_, _ = file.Seek(0, 0)

	mockSvc := &reportServiceMock{
		download: &service.ReportDownload{
			File:      file,
			Filename:  "finance_2024.pdf",
			Format:    models.ReportFormatPDF,
			ExpiresAt: time.Now().Add(time.Hour),
		},
	}
	handler := NewReportHandler(mockSvc, nil)

	c, w := newGinContext(http.MethodGet, "/export/token", nil)
	c.Params = gin.Params{{Key: "token", Value: "token"}}

	handler.DownloadReport(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "finance_2024.pdf")
	assert.Equal(t, "%PDF-1.3", w.Body.String())
}

func TestReportHandlerDownloadForbidden(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewReportHandler(&reportServiceMock{downloadErr: appErrors.ErrForbidden}, nil)

	c, w := newGinContext(http.MethodGet, "/export/bad", nil)
	handler.DownloadReport(c)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
