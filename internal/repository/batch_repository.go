package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/coaching-center-api/internal/models"
)

const batchSelect = `SELECT b.id, b.center_id, b.name, b.subject, b.teacher_id, b.room_id, b.class_times, b.start_date, b.fee, b.capacity, b.status, b.created_at, b.updated_at,
        t.full_name AS teacher_name, r.name AS room_name,
        (SELECT COUNT(*) FROM students s WHERE s.batch_id = b.id AND s.status = 'ACTIVE') AS student_count
        FROM batches b JOIN teachers t ON t.id = b.teacher_id JOIN rooms r ON r.id = b.room_id`

// BatchRepository persists batches and answers schedule lookups.
type BatchRepository struct {
	db *sqlx.DB
}

// NewBatchRepository constructs a BatchRepository.
func NewBatchRepository(db *sqlx.DB) *BatchRepository {
	return &BatchRepository{db: db}
}

// List returns batches with teacher and room names.
func (r *BatchRepository) List(ctx context.Context, filter models.BatchFilter) ([]models.BatchDetail, int, error) {
	where := newWhere("b.center_id", filter.CenterID)
	if filter.TeacherID != "" {
		where.add("b.teacher_id = $%d", filter.TeacherID)
	}
	if filter.RoomID != "" {
		where.add("b.room_id = $%d", filter.RoomID)
	}
	if filter.Status != nil {
		where.add("b.status = $%d", *filter.Status)
	}
	where.search([]string{"b.name", "b.subject"}, filter.Search)

	order := orderClause(filter.SortBy, filter.SortOrder, map[string]string{
		"name":       "b.name",
		"subject":    "b.subject",
		"start_date": "b.start_date",
		"created_at": "b.created_at",
	}, "created_at")
	limit, offset := pageWindow(filter.Page, filter.PageSize)

	query := fmt.Sprintf("%s WHERE %s ORDER BY %s LIMIT %d OFFSET %d", batchSelect, where.clause(), order, limit, offset)
	var batches []models.BatchDetail
	if err := r.db.SelectContext(ctx, &batches, query, where.args...); err != nil {
		return nil, 0, fmt.Errorf("list batches: %w", err)
	}
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM batches b WHERE "+where.clause(), where.args...); err != nil {
		return nil, 0, fmt.Errorf("count batches: %w", err)
	}
	return batches, total, nil
}

// FindByID returns a batch with display names.
func (r *BatchRepository) FindByID(ctx context.Context, centerID, id string) (*models.BatchDetail, error) {
	var batch models.BatchDetail
	if err := r.db.GetContext(ctx, &batch, batchSelect+" WHERE b.center_id = $1 AND b.id = $2", centerID, id); err != nil {
		return nil, err
	}
	return &batch, nil
}

// ListActive returns active batches of a center, optionally limited to a
// room or a teacher. excludeID skips the batch being edited.
func (r *BatchRepository) ListActive(ctx context.Context, centerID string, scope models.BatchFilter, excludeID string) ([]models.BatchDetail, error) {
	where := newWhere("b.center_id", centerID)
	where.add("b.status = $%d", models.BatchStatusActive)
	if scope.RoomID != "" {
		where.add("b.room_id = $%d", scope.RoomID)
	}
	if scope.TeacherID != "" {
		where.add("b.teacher_id = $%d", scope.TeacherID)
	}
	if excludeID != "" {
		where.add("b.id <> $%d", excludeID)
	}
	query := fmt.Sprintf("%s WHERE %s ORDER BY b.name ASC", batchSelect, where.clause())
	var batches []models.BatchDetail
	if err := r.db.SelectContext(ctx, &batches, query, where.args...); err != nil {
		return nil, fmt.Errorf("list active batches: %w", err)
	}
	return batches, nil
}

// Create inserts a batch.
func (r *BatchRepository) Create(ctx context.Context, batch *models.Batch) error {
	if batch.ID == "" {
		batch.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if batch.CreatedAt.IsZero() {
		batch.CreatedAt = now
	}
	batch.UpdatedAt = now
	const query = `INSERT INTO batches (id, center_id, name, subject, teacher_id, room_id, class_times, start_date, fee, capacity, status, created_at, updated_at)
        VALUES (:id, :center_id, :name, :subject, :teacher_id, :room_id, :class_times, :start_date, :fee, :capacity, :status, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, batch); err != nil {
		return fmt.Errorf("create batch: %w", err)
	}
	return nil
}

// Update modifies a batch.
func (r *BatchRepository) Update(ctx context.Context, batch *models.Batch) error {
	batch.UpdatedAt = time.Now().UTC()
	const query = `UPDATE batches SET name = :name, subject = :subject, teacher_id = :teacher_id, room_id = :room_id, class_times = :class_times,
        start_date = :start_date, fee = :fee, capacity = :capacity, status = :status, updated_at = :updated_at WHERE id = :id AND center_id = :center_id`
	if _, err := r.db.NamedExecContext(ctx, query, batch); err != nil {
		return fmt.Errorf("update batch: %w", err)
	}
	return nil
}

// UpdateStatus toggles a batch in or out of scheduling.
func (r *BatchRepository) UpdateStatus(ctx context.Context, centerID, id string, status models.BatchStatus) error {
	const query = `UPDATE batches SET status = $3, updated_at = $4 WHERE center_id = $1 AND id = $2`
	if _, err := r.db.ExecContext(ctx, query, centerID, id, status, time.Now().UTC()); err != nil {
		return fmt.Errorf("update batch status: %w", err)
	}
	return nil
}

// Delete removes a batch and detaches its students.
func (r *BatchRepository) Delete(ctx context.Context, centerID, id string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete batch: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `UPDATE students SET batch_id = NULL WHERE center_id = $1 AND batch_id = $2`, centerID, id); err != nil {
		return fmt.Errorf("detach batch students: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM batches WHERE center_id = $1 AND id = $2`, centerID, id); err != nil {
		return fmt.Errorf("delete batch: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete batch: %w", err)
	}
	return nil
}
