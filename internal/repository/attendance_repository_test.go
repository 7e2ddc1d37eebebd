package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/coaching-center-api/internal/models"
)

func TestAttendanceRepositoryBulkUpsert(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	date := time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("ON CONFLICT (batch_id, student_id, date)")).
		WithArgs(sqlmock.AnyArg(), "c1", "b1", "s1", date, models.AttendanceStatusPresent, nil, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("ON CONFLICT (batch_id, student_id, date)")).
		WithArgs(sqlmock.AnyArg(), "c1", "b1", "s2", date, models.AttendanceStatusLate, nil, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.BulkUpsert(context.Background(), []models.Attendance{
		{CenterID: "c1", BatchID: "b1", StudentID: "s1", Date: date, Status: models.AttendanceStatusPresent},
		{CenterID: "c1", BatchID: "b1", StudentID: "s2", Date: date, Status: models.AttendanceStatusLate},
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepositoryBulkUpsertRollsBack(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO attendance").WillReturnError(errors.New("fk violation"))
	mock.ExpectRollback()

	err := repo.BulkUpsert(context.Background(), []models.Attendance{{CenterID: "c1", BatchID: "b1", StudentID: "s1", Date: time.Now(), Status: models.AttendanceStatusAbsent}})
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepositoryStatusCounts(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT a.status, COUNT(*) AS count FROM attendance a WHERE a.center_id = $1 AND a.student_id = $2 AND a.date >= $3 GROUP BY a.status")).
		WithArgs("c1", "s1", from).
		WillReturnRows(sqlmock.NewRows([]string{"status", "count"}).AddRow("PRESENT", 8).AddRow("ABSENT", 2))

	counts, err := repo.StatusCounts(context.Background(), "c1", "s1", &from, nil)
	require.NoError(t, err)
	require.Len(t, counts, 2)
	assert.Equal(t, models.AttendanceStatusPresent, counts[0].Status)
	assert.Equal(t, 8, counts[0].Count)
	assert.NoError(t, mock.ExpectationsWereMet())
}
