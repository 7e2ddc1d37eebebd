package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/coaching-center-api/internal/models"
)

const studentSelect = `SELECT s.id, s.center_id, s.registration_no, s.full_name, s.guardian_name, s.phone, s.email, s.institution, s.class_level, s.batch_id,
        s.admission_date, s.admission_fee, s.monthly_fee, s.status, s.created_at, s.updated_at, b.name AS batch_name
        FROM students s LEFT JOIN batches b ON b.id = s.batch_id`

// StudentRepository manages persistence for student records.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// List returns students matching the provided filters.
func (r *StudentRepository) List(ctx context.Context, filter models.StudentFilter) ([]models.StudentDetail, int, error) {
	where := newWhere("s.center_id", filter.CenterID)
	if filter.BatchID != "" {
		where.add("s.batch_id = $%d", filter.BatchID)
	}
	if filter.Status != nil {
		where.add("s.status = $%d", *filter.Status)
	}
	where.search([]string{"s.full_name", "s.registration_no", "s.phone"}, filter.Search)

	order := orderClause(filter.SortBy, filter.SortOrder, map[string]string{
		"full_name":       "s.full_name",
		"registration_no": "s.registration_no",
		"admission_date":  "s.admission_date",
		"created_at":      "s.created_at",
	}, "created_at")
	limit, offset := pageWindow(filter.Page, filter.PageSize)

	query := fmt.Sprintf("%s WHERE %s ORDER BY %s LIMIT %d OFFSET %d", studentSelect, where.clause(), order, limit, offset)
	var students []models.StudentDetail
	if err := r.db.SelectContext(ctx, &students, query, where.args...); err != nil {
		return nil, 0, fmt.Errorf("list students: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM students s WHERE "+where.clause(), where.args...); err != nil {
		return nil, 0, fmt.Errorf("count students: %w", err)
	}
	return students, total, nil
}

// ListAll returns every student of a center, optionally limited to a batch.
func (r *StudentRepository) ListAll(ctx context.Context, centerID, batchID string) ([]models.StudentDetail, error) {
	where := newWhere("s.center_id", centerID)
	if batchID != "" {
		where.add("s.batch_id = $%d", batchID)
	}
	query := fmt.Sprintf("%s WHERE %s ORDER BY s.registration_no ASC", studentSelect, where.clause())
	var students []models.StudentDetail
	if err := r.db.SelectContext(ctx, &students, query, where.args...); err != nil {
		return nil, fmt.Errorf("list all students: %w", err)
	}
	return students, nil
}

// FindByID fetches a student detail by ID.
func (r *StudentRepository) FindByID(ctx context.Context, centerID, id string) (*models.StudentDetail, error) {
	query := studentSelect + " WHERE s.center_id = $1 AND s.id = $2"
	var detail models.StudentDetail
	if err := r.db.GetContext(ctx, &detail, query, centerID, id); err != nil {
		return nil, err
	}
	return &detail, nil
}

// CountInBatch returns how many of ids belong to the center and batch.
func (r *StudentRepository) CountInBatch(ctx context.Context, centerID, batchID string, ids []string) (int, error) {
	const query = `SELECT COUNT(*) FROM students WHERE center_id = $1 AND batch_id = $2 AND id = ANY($3)`
	var count int
	if err := r.db.GetContext(ctx, &count, query, centerID, batchID, pq.Array(ids)); err != nil {
		return 0, fmt.Errorf("count batch students: %w", err)
	}
	return count, nil
}

// ExistsByRegistrationNo checks if a registration number is taken within a center.
func (r *StudentRepository) ExistsByRegistrationNo(ctx context.Context, centerID, registrationNo, excludeID string) (bool, error) {
	query := "SELECT 1 FROM students WHERE center_id = $1 AND registration_no = $2"
	args := []interface{}{centerID, registrationNo}
	if excludeID != "" {
		query += " AND id <> $3"
		args = append(args, excludeID)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check registration no: %w", err)
	}
	return true, nil
}

// Create inserts a new student record.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	if student.ID == "" {
		student.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if student.CreatedAt.IsZero() {
		student.CreatedAt = now
	}
	student.UpdatedAt = now
	const query = `INSERT INTO students (id, center_id, registration_no, full_name, guardian_name, phone, email, institution, class_level, batch_id, admission_date, admission_fee, monthly_fee, status, created_at, updated_at)
        VALUES (:id, :center_id, :registration_no, :full_name, :guardian_name, :phone, :email, :institution, :class_level, :batch_id, :admission_date, :admission_fee, :monthly_fee, :status, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, student); err != nil {
		return fmt.Errorf("create student: %w", err)
	}
	return nil
}

// Update modifies an existing student.
func (r *StudentRepository) Update(ctx context.Context, student *models.Student) error {
	student.UpdatedAt = time.Now().UTC()
	const query = `UPDATE students SET registration_no = :registration_no, full_name = :full_name, guardian_name = :guardian_name, phone = :phone, email = :email,
        institution = :institution, class_level = :class_level, batch_id = :batch_id, admission_date = :admission_date, admission_fee = :admission_fee,
        monthly_fee = :monthly_fee, status = :status, updated_at = :updated_at WHERE id = :id AND center_id = :center_id`
	if _, err := r.db.NamedExecContext(ctx, query, student); err != nil {
		return fmt.Errorf("update student: %w", err)
	}
	return nil
}

// UpdateStatus flips a student between active and inactive.
func (r *StudentRepository) UpdateStatus(ctx context.Context, centerID, id string, status models.StudentStatus) error {
	const query = `UPDATE students SET status = $3, updated_at = $4 WHERE center_id = $1 AND id = $2`
	if _, err := r.db.ExecContext(ctx, query, centerID, id, status, time.Now().UTC()); err != nil {
		return fmt.Errorf("update student status: %w", err)
	}
	return nil
}

// Delete removes a student.
func (r *StudentRepository) Delete(ctx context.Context, centerID, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM students WHERE center_id = $1 AND id = $2`, centerID, id); err != nil {
		return fmt.Errorf("delete student: %w", err)
	}
	return nil
}
