package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/coaching-center-api/internal/models"
)

const attendanceSelect = `SELECT a.id, a.center_id, a.batch_id, a.student_id, a.date, a.status, a.remark, a.created_at, a.updated_at,
        s.full_name AS student_name, s.registration_no, b.name AS batch_name
        FROM attendance a JOIN students s ON s.id = a.student_id JOIN batches b ON b.id = a.batch_id`

// AttendanceRepository stores per-class-day attendance marks.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository constructs the repository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

func attendanceWhere(filter models.AttendanceFilter) *whereBuilder {
	where := newWhere("a.center_id", filter.CenterID)
	if filter.BatchID != "" {
		where.add("a.batch_id = $%d", filter.BatchID)
	}
	if filter.StudentID != "" {
		where.add("a.student_id = $%d", filter.StudentID)
	}
	if filter.Status != nil {
		where.add("a.status = $%d", *filter.Status)
	}
	if filter.DateFrom != nil {
		where.add("a.date >= $%d", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		where.add("a.date <= $%d", *filter.DateTo)
	}
	return where
}

// List returns attendance rows with student and batch names.
func (r *AttendanceRepository) List(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceRecord, int, error) {
	where := attendanceWhere(filter)
	order := orderClause(filter.SortBy, filter.SortOrder, map[string]string{
		"date":         "a.date",
		"student_name": "s.full_name",
		"status":       "a.status",
	}, "date")
	limit, offset := pageWindow(filter.Page, filter.PageSize)

	query := fmt.Sprintf("%s WHERE %s ORDER BY %s LIMIT %d OFFSET %d", attendanceSelect, where.clause(), order, limit, offset)
	var rows []models.AttendanceRecord
	if err := r.db.SelectContext(ctx, &rows, query, where.args...); err != nil {
		return nil, 0, fmt.Errorf("list attendance: %w", err)
	}
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM attendance a WHERE "+where.clause(), where.args...); err != nil {
		return nil, 0, fmt.Errorf("count attendance: %w", err)
	}
	return rows, total, nil
}

// ListAll returns every matching row ordered by date, for exports.
func (r *AttendanceRepository) ListAll(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceRecord, error) {
	where := attendanceWhere(filter)
	query := fmt.Sprintf("%s WHERE %s ORDER BY a.date ASC, s.registration_no ASC", attendanceSelect, where.clause())
	var rows []models.AttendanceRecord
	if err := r.db.SelectContext(ctx, &rows, query, where.args...); err != nil {
		return nil, fmt.Errorf("list all attendance: %w", err)
	}
	return rows, nil
}

// BulkUpsert records marks for one batch and date atomically. Existing marks
// for the same student and day are overwritten.
func (r *AttendanceRepository) BulkUpsert(ctx context.Context, records []models.Attendance) error {
	if len(records) == 0 {
		return nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin bulk attendance: %w", err)
	}
	commit := false
	defer func() {
		if !commit {
			_ = tx.Rollback()
		}
	}()
	const query = `INSERT INTO attendance (id, center_id, batch_id, student_id, date, status, remark, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (batch_id, student_id, date)
DO UPDATE SET status = EXCLUDED.status, remark = EXCLUDED.remark, updated_at = EXCLUDED.updated_at`
	now := time.Now().UTC()
	for i := range records {
		rec := &records[i]
		if rec.ID == "" {
			rec.ID = uuid.NewString()
		}
		if rec.CreatedAt.IsZero() {
			rec.CreatedAt = now
		}
		rec.UpdatedAt = now
		if _, err := tx.ExecContext(ctx, query, rec.ID, rec.CenterID, rec.BatchID, rec.StudentID, rec.Date, rec.Status, rec.Remark, rec.CreatedAt, rec.UpdatedAt); err != nil {
			return fmt.Errorf("upsert attendance for student %s: %w", rec.StudentID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit bulk attendance: %w", err)
	}
	commit = true
	return nil
}

// StatusCounts groups a student's marks by status within an optional range.
func (r *AttendanceRepository) StatusCounts(ctx context.Context, centerID, studentID string, from, to *time.Time) ([]models.AttendanceStatusCount, error) {
	where := attendanceWhere(models.AttendanceFilter{CenterID: centerID, StudentID: studentID, DateFrom: from, DateTo: to})
	query := fmt.Sprintf("SELECT a.status, COUNT(*) AS count FROM attendance a WHERE %s GROUP BY a.status", where.clause())
	var rows []models.AttendanceStatusCount
	if err := r.db.SelectContext(ctx, &rows, query, where.args...); err != nil {
		return nil, fmt.Errorf("attendance status counts: %w", err)
	}
	return rows, nil
}
