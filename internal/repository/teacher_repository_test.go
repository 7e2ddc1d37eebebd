package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/coaching-center-api/internal/models"
)

var teacherRowColumns = []string{"id", "center_id", "full_name", "phone", "email", "subject", "monthly_salary", "available_times", "active", "created_at", "updated_at"}

func TestTeacherRepositoryList(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewTeacherRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows(teacherRowColumns).
		AddRow("t1", "c1", "Nadia", "0171", nil, "Physics", 20000.0, `{"Saturday 9:00 AM - 12:00 PM"}`, true, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, center_id, full_name, phone, email, subject, monthly_salary, available_times, active, created_at, updated_at FROM teachers WHERE center_id = $1 AND (LOWER(full_name) LIKE $2 OR LOWER(phone) LIKE $2 OR LOWER(email) LIKE $2) ORDER BY full_name ASC LIMIT 10 OFFSET 10")).
		WithArgs("c1", "%nad%").
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM teachers WHERE center_id = $1")).
		WithArgs("c1", "%nad%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(11))

	teachers, total, err := repo.List(context.Background(), models.TeacherFilter{CenterID: "c1", Search: "Nad", Page: 2, PageSize: 10, SortBy: "full_name", SortOrder: "ASC"})
	require.NoError(t, err)
	require.Len(t, teachers, 1)
	assert.Equal(t, pq.StringArray{"Saturday 9:00 AM - 12:00 PM"}, teachers[0].AvailableTimes)
	assert.Equal(t, 11, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeacherRepositoryListActive(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewTeacherRepository(db)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("FROM teachers WHERE center_id = $1 AND active = TRUE ORDER BY full_name ASC")).
		WithArgs("c1").
		WillReturnRows(sqlmock.NewRows(teacherRowColumns).
			AddRow("t1", "c1", "Nadia", "0171", nil, "Physics", 20000.0, "{}", true, now, now))

	teachers, err := repo.ListActive(context.Background(), "c1")
	require.NoError(t, err)
	assert.Len(t, teachers, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeacherRepositoryCreateAndSetActive(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewTeacherRepository(db)

	mock.ExpectExec("INSERT INTO teachers").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE teachers SET active = $3, updated_at = $4 WHERE center_id = $1 AND id = $2")).
		WithArgs("c1", sqlmock.AnyArg(), false, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	teacher := &models.Teacher{CenterID: "c1", FullName: "Nadia", Subject: "Physics", AvailableTimes: pq.StringArray{"Sunday 4:00 PM - 6:00 PM"}, Active: true}
	require.NoError(t, repo.Create(context.Background(), teacher))
	require.NoError(t, repo.SetActive(context.Background(), "c1", teacher.ID, false))
	assert.NoError(t, mock.ExpectationsWereMet())
}
