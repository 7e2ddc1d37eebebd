package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/coaching-center-api/internal/models"
)

// AnalyticsRepository exposes read-optimised aggregate queries for reports.
type AnalyticsRepository struct {
	db *sqlx.DB
}

// NewAnalyticsRepository instantiates the repository.
func NewAnalyticsRepository(db *sqlx.DB) *AnalyticsRepository {
	return &AnalyticsRepository{db: db}
}

// FinanceTotals sums paid payments of a year grouped by month and category.
func (r *AnalyticsRepository) FinanceTotals(ctx context.Context, centerID string, year int) ([]models.FinanceAggregateRow, error) {
	const query = `SELECT month, category, COALESCE(SUM(amount), 0) AS total
        FROM payments
        WHERE center_id = $1 AND status = $2 AND month LIKE $3
        GROUP BY month, category
        ORDER BY month ASC, category ASC`
	var rows []models.FinanceAggregateRow
	if err := r.db.SelectContext(ctx, &rows, query, centerID, models.PaymentStatusPaid, fmt.Sprintf("%04d-%%", year)); err != nil {
		return nil, fmt.Errorf("query finance totals: %w", err)
	}
	return rows, nil
}

// DashboardCounts returns headline counts of a center.
func (r *AnalyticsRepository) DashboardCounts(ctx context.Context, centerID string) (*models.DashboardSummary, error) {
	const query = `SELECT
        (SELECT COUNT(*) FROM students WHERE center_id = $1 AND status = 'ACTIVE') AS active_students,
        (SELECT COUNT(*) FROM batches WHERE center_id = $1 AND status = 'ACTIVE') AS active_batches,
        (SELECT COUNT(*) FROM teachers WHERE center_id = $1 AND active = TRUE) AS teachers,
        (SELECT COUNT(*) FROM documents WHERE center_id = $1 AND status IN ('PENDING', 'PRINTING')) AS pending_documents`
	var summary models.DashboardSummary
	if err := r.db.GetContext(ctx, &summary, query, centerID); err != nil {
		return nil, fmt.Errorf("query dashboard counts: %w", err)
	}
	return &summary, nil
}

// MonthTotals sums paid payments of a single month per category.
func (r *AnalyticsRepository) MonthTotals(ctx context.Context, centerID, month string) ([]models.FinanceAggregateRow, error) {
	const query = `SELECT month, category, COALESCE(SUM(amount), 0) AS total
        FROM payments
        WHERE center_id = $1 AND status = $2 AND month = $3
        GROUP BY month, category`
	var rows []models.FinanceAggregateRow
	if err := r.db.SelectContext(ctx, &rows, query, centerID, models.PaymentStatusPaid, month); err != nil {
		return nil, fmt.Errorf("query month totals: %w", err)
	}
	return rows, nil
}
