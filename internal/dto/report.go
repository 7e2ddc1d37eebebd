package dto

import "github.com/noah-isme/coaching-center-api/internal/models"

// ReportRequest captures POST /reports/exports payload.
type ReportRequest struct {
	Type    models.ReportType   `json:"type" validate:"required"`
	Format  models.ReportFormat `json:"format" validate:"required"`
	Year    int                 `json:"year" validate:"omitempty,min=2000,max=2100"`
	Month   string              `json:"month" validate:"omitempty,datetime=2006-01"`
	BatchID *string             `json:"batchId,omitempty"`
	ExamID  *string             `json:"examId,omitempty"`
}

// ReportJobResponse is returned after enqueueing a report.
type ReportJobResponse struct {
	ID       string              `json:"id"`
	Status   models.ReportStatus `json:"status"`
	Progress int                 `json:"progress"`
}

// ReportStatusResponse exposes job progress metadata.
type ReportStatusResponse struct {
	ID        string              `json:"id"`
	Type      models.ReportType   `json:"type"`
	Status    models.ReportStatus `json:"status"`
	Progress  int                 `json:"progress"`
	ResultURL *string             `json:"resultUrl,omitempty"`
	Error     *string             `json:"error,omitempty"`
}
