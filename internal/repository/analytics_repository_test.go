package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/coaching-center-api/internal/models"
)

func TestAnalyticsRepositoryFinanceTotals(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAnalyticsRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE center_id = $1 AND status = $2 AND month LIKE $3")).
		WithArgs("c1", models.PaymentStatusPaid, "2024-%").
		WillReturnRows(sqlmock.NewRows([]string{"month", "category", "total"}).
			AddRow("2024-01", "MONTHLY_FEE", 15000.0).
			AddRow("2024-01", "SALARY", 9000.0))

	rows, err := repo.FinanceTotals(context.Background(), "c1", 2024)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, models.PaymentCategorySalary, rows[1].Category)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAnalyticsRepositoryDashboardCounts(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAnalyticsRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("AS pending_documents")).
		WithArgs("c1").
		WillReturnRows(sqlmock.NewRows([]string{"active_students", "active_batches", "teachers", "pending_documents"}).AddRow(120, 8, 6, 3))

	summary, err := repo.DashboardCounts(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, 120, summary.ActiveStudents)
	assert.Equal(t, 3, summary.PendingDocuments)
	assert.NoError(t, mock.ExpectationsWereMet())
}
