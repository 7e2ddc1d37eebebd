package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/coaching-center-api/internal/models"
)

const teacherColumns = "id, center_id, full_name, phone, email, subject, monthly_salary, available_times, active, created_at, updated_at"

// TeacherRepository handles persistence for teachers.
type TeacherRepository struct {
	db *sqlx.DB
}

// NewTeacherRepository creates a new repository.
func NewTeacherRepository(db *sqlx.DB) *TeacherRepository {
	return &TeacherRepository{db: db}
}

// List returns teachers with pagination.
func (r *TeacherRepository) List(ctx context.Context, filter models.TeacherFilter) ([]models.Teacher, int, error) {
	where := newWhere("center_id", filter.CenterID)
	if filter.Subject != "" {
		where.add("LOWER(subject) = LOWER($%d)", filter.Subject)
	}
	if filter.Active != nil {
		where.add("active = $%d", *filter.Active)
	}
	where.search([]string{"full_name", "phone", "email"}, filter.Search)

	order := orderClause(filter.SortBy, filter.SortOrder, map[string]string{
		"full_name":  "full_name",
		"subject":    "subject",
		"created_at": "created_at",
	}, "created_at")
	limit, offset := pageWindow(filter.Page, filter.PageSize)

	base := "FROM teachers WHERE " + where.clause()
	query := fmt.Sprintf("SELECT %s %s ORDER BY %s LIMIT %d OFFSET %d", teacherColumns, base, order, limit, offset)
	var teachers []models.Teacher
	if err := r.db.SelectContext(ctx, &teachers, query, where.args...); err != nil {
		return nil, 0, fmt.Errorf("list teachers: %w", err)
	}
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) "+base, where.args...); err != nil {
		return nil, 0, fmt.Errorf("count teachers: %w", err)
	}
	return teachers, total, nil
}

// ListActive returns every active teacher of a center ordered by name.
func (r *TeacherRepository) ListActive(ctx context.Context, centerID string) ([]models.Teacher, error) {
	query := "SELECT " + teacherColumns + " FROM teachers WHERE center_id = $1 AND active = TRUE ORDER BY full_name ASC"
	var teachers []models.Teacher
	if err := r.db.SelectContext(ctx, &teachers, query, centerID); err != nil {
		return nil, fmt.Errorf("list active teachers: %w", err)
	}
	return teachers, nil
}

// FindByID returns a teacher by id.
func (r *TeacherRepository) FindByID(ctx context.Context, centerID, id string) (*models.Teacher, error) {
	query := "SELECT " + teacherColumns + " FROM teachers WHERE center_id = $1 AND id = $2"
	var teacher models.Teacher
	if err := r.db.GetContext(ctx, &teacher, query, centerID, id); err != nil {
		return nil, err
	}
	return &teacher, nil
}

// Create inserts a teacher.
func (r *TeacherRepository) Create(ctx context.Context, teacher *models.Teacher) error {
	if teacher.ID == "" {
		teacher.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if teacher.CreatedAt.IsZero() {
		teacher.CreatedAt = now
	}
	teacher.UpdatedAt = now
	const query = `INSERT INTO teachers (id, center_id, full_name, phone, email, subject, monthly_salary, available_times, active, created_at, updated_at)
        VALUES (:id, :center_id, :full_name, :phone, :email, :subject, :monthly_salary, :available_times, :active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, teacher); err != nil {
		return fmt.Errorf("create teacher: %w", err)
	}
	return nil
}

// Update modifies a teacher.
func (r *TeacherRepository) Update(ctx context.Context, teacher *models.Teacher) error {
	teacher.UpdatedAt = time.Now().UTC()
	const query = `UPDATE teachers SET full_name = :full_name, phone = :phone, email = :email, subject = :subject, monthly_salary = :monthly_salary,
        available_times = :available_times, active = :active, updated_at = :updated_at WHERE id = :id AND center_id = :center_id`
	if _, err := r.db.NamedExecContext(ctx, query, teacher); err != nil {
		return fmt.Errorf("update teacher: %w", err)
	}
	return nil
}

// SetActive toggles whether a teacher can be assigned.
func (r *TeacherRepository) SetActive(ctx context.Context, centerID, id string, active bool) error {
	const query = `UPDATE teachers SET active = $3, updated_at = $4 WHERE center_id = $1 AND id = $2`
	if _, err := r.db.ExecContext(ctx, query, centerID, id, active, time.Now().UTC()); err != nil {
		return fmt.Errorf("set teacher active: %w", err)
	}
	return nil
}

// Delete removes a teacher.
func (r *TeacherRepository) Delete(ctx context.Context, centerID, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM teachers WHERE center_id = $1 AND id = $2`, centerID, id); err != nil {
		return fmt.Errorf("delete teacher: %w", err)
	}
	return nil
}
