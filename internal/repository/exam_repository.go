package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/coaching-center-api/internal/models"
)

const examColumns = "id, center_id, batch_id, name, subject, exam_date, total_marks, pass_marks, status, created_at, updated_at"

// ExamRepository persists exams and their results.
type ExamRepository struct {
	db *sqlx.DB
}

// NewExamRepository constructs the repository.
func NewExamRepository(db *sqlx.DB) *ExamRepository {
	return &ExamRepository{db: db}
}

// List returns exams of a center.
func (r *ExamRepository) List(ctx context.Context, filter models.ExamFilter) ([]models.Exam, int, error) {
	where := newWhere("center_id", filter.CenterID)
	if filter.BatchID != "" {
		where.add("batch_id = $%d", filter.BatchID)
	}
	if filter.Status != nil {
		where.add("status = $%d", *filter.Status)
	}
	where.search([]string{"name", "subject"}, filter.Search)

	order := orderClause(filter.SortBy, filter.SortOrder, map[string]string{
		"name":       "name",
		"exam_date":  "exam_date",
		"created_at": "created_at",
	}, "exam_date")
	limit, offset := pageWindow(filter.Page, filter.PageSize)

	base := "FROM exams WHERE " + where.clause()
	query := fmt.Sprintf("SELECT %s %s ORDER BY %s LIMIT %d OFFSET %d", examColumns, base, order, limit, offset)
	var exams []models.Exam
	if err := r.db.SelectContext(ctx, &exams, query, where.args...); err != nil {
		return nil, 0, fmt.Errorf("list exams: %w", err)
	}
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) "+base, where.args...); err != nil {
		return nil, 0, fmt.Errorf("count exams: %w", err)
	}
	return exams, total, nil
}

// FindByID returns an exam.
func (r *ExamRepository) FindByID(ctx context.Context, centerID, id string) (*models.Exam, error) {
	var exam models.Exam
	if err := r.db.GetContext(ctx, &exam, "SELECT "+examColumns+" FROM exams WHERE center_id = $1 AND id = $2", centerID, id); err != nil {
		return nil, err
	}
	return &exam, nil
}

// Create inserts an exam.
func (r *ExamRepository) Create(ctx context.Context, exam *models.Exam) error {
	if exam.ID == "" {
		exam.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if exam.CreatedAt.IsZero() {
		exam.CreatedAt = now
	}
	exam.UpdatedAt = now
	const query = `INSERT INTO exams (id, center_id, batch_id, name, subject, exam_date, total_marks, pass_marks, status, created_at, updated_at)
        VALUES (:id, :center_id, :batch_id, :name, :subject, :exam_date, :total_marks, :pass_marks, :status, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, exam); err != nil {
		return fmt.Errorf("create exam: %w", err)
	}
	return nil
}

// Update modifies an exam.
func (r *ExamRepository) Update(ctx context.Context, exam *models.Exam) error {
	exam.UpdatedAt = time.Now().UTC()
	const query = `UPDATE exams SET batch_id = :batch_id, name = :name, subject = :subject, exam_date = :exam_date, total_marks = :total_marks,
        pass_marks = :pass_marks, status = :status, updated_at = :updated_at WHERE id = :id AND center_id = :center_id`
	if _, err := r.db.NamedExecContext(ctx, query, exam); err != nil {
		return fmt.Errorf("update exam: %w", err)
	}
	return nil
}

// Delete removes an exam with its results.
func (r *ExamRepository) Delete(ctx context.Context, centerID, id string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete exam: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `DELETE FROM exam_results WHERE center_id = $1 AND exam_id = $2`, centerID, id); err != nil {
		return fmt.Errorf("delete exam results: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM exams WHERE center_id = $1 AND id = $2`, centerID, id); err != nil {
		return fmt.Errorf("delete exam: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete exam: %w", err)
	}
	return nil
}

// UpsertResults stores marks for an exam; re-submitting a student overwrites it.
func (r *ExamRepository) UpsertResults(ctx context.Context, results []models.ExamResult) error {
	if len(results) == 0 {
		return nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin upsert results: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	const query = `INSERT INTO exam_results (id, center_id, exam_id, student_id, obtained_marks, grade, passed, remark, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
        ON CONFLICT (exam_id, student_id)
        DO UPDATE SET obtained_marks = EXCLUDED.obtained_marks, grade = EXCLUDED.grade, passed = EXCLUDED.passed, remark = EXCLUDED.remark, updated_at = EXCLUDED.updated_at`
	now := time.Now().UTC()
	for i := range results {
		res := &results[i]
		if res.ID == "" {
			res.ID = uuid.NewString()
		}
		if res.CreatedAt.IsZero() {
			res.CreatedAt = now
		}
		res.UpdatedAt = now
		if _, err := tx.ExecContext(ctx, query, res.ID, res.CenterID, res.ExamID, res.StudentID, res.ObtainedMarks, res.Grade, res.Passed, res.Remark, res.CreatedAt, res.UpdatedAt); err != nil {
			return fmt.Errorf("upsert result for student %s: %w", res.StudentID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert results: %w", err)
	}
	return nil
}

// ListResults returns an exam's results, highest marks first.
func (r *ExamRepository) ListResults(ctx context.Context, centerID, examID string) ([]models.ExamResultDetail, error) {
	const query = `SELECT er.id, er.center_id, er.exam_id, er.student_id, er.obtained_marks, er.grade, er.passed, er.remark, er.created_at, er.updated_at,
        s.full_name AS student_name, s.registration_no
        FROM exam_results er JOIN students s ON s.id = er.student_id
        WHERE er.center_id = $1 AND er.exam_id = $2
        ORDER BY er.obtained_marks DESC, s.registration_no ASC`
	var results []models.ExamResultDetail
	if err := r.db.SelectContext(ctx, &results, query, centerID, examID); err != nil {
		return nil, fmt.Errorf("list exam results: %w", err)
	}
	return results, nil
}
