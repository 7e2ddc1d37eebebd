package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/coaching-center-api/internal/models"
)

func TestExamRepositoryUpsertResults(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewExamRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("ON CONFLICT (exam_id, student_id)")).
		WithArgs(sqlmock.AnyArg(), "c1", "e1", "s1", 78.0, "A", true, nil, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.UpsertResults(context.Background(), []models.ExamResult{{CenterID: "c1", ExamID: "e1", StudentID: "s1", ObtainedMarks: 78, Grade: "A", Passed: true}})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExamRepositoryListResultsOrdersByMarks(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewExamRepository(db)

	now := time.Now()
	cols := []string{"id", "center_id", "exam_id", "student_id", "obtained_marks", "grade", "passed", "remark", "created_at", "updated_at", "student_name", "registration_no"}
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY er.obtained_marks DESC, s.registration_no ASC")).
		WithArgs("c1", "e1").
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("r1", "c1", "e1", "s1", 90.0, "A+", true, nil, now, now, "Rahim", "REG-1").
			AddRow("r2", "c1", "e1", "s2", 30.0, "F", false, nil, now, now, "Karim", "REG-2"))

	results, err := repo.ListResults(context.Background(), "c1", "e1")
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "Rahim", results[0].StudentName)
	assert.False(t, results[1].Passed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExamRepositoryList(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewExamRepository(db)

	status := models.ExamStatusPublished
	mock.ExpectQuery(regexp.QuoteMeta("FROM exams WHERE center_id = $1 AND batch_id = $2 AND status = $3 ORDER BY exam_date DESC LIMIT 20 OFFSET 0")).
		WithArgs("c1", "b1", status).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM exams WHERE center_id = $1 AND batch_id = $2 AND status = $3")).
		WithArgs("c1", "b1", status).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	_, total, err := repo.List(context.Background(), models.ExamFilter{CenterID: "c1", BatchID: "b1", Status: &status})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}
