package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/coaching-center-api/internal/models"
)

const documentColumns = "id, center_id, title, batch_id, copies, requested_by, due_date, status, note, created_at, updated_at"

// DocumentRepository persists print tasks.
type DocumentRepository struct {
	db *sqlx.DB
}

// NewDocumentRepository constructs the repository.
func NewDocumentRepository(db *sqlx.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

// List returns print tasks of a center.
func (r *DocumentRepository) List(ctx context.Context, filter models.DocumentFilter) ([]models.Document, int, error) {
	where := newWhere("center_id", filter.CenterID)
	if filter.BatchID != "" {
		where.add("batch_id = $%d", filter.BatchID)
	}
	if filter.Status != nil {
		where.add("status = $%d", *filter.Status)
	}
	where.search([]string{"title", "requested_by"}, filter.Search)

	order := orderClause(filter.SortBy, filter.SortOrder, map[string]string{
		"title":      "title",
		"due_date":   "due_date",
		"created_at": "created_at",
	}, "created_at")
	limit, offset := pageWindow(filter.Page, filter.PageSize)

	base := "FROM documents WHERE " + where.clause()
	query := fmt.Sprintf("SELECT %s %s ORDER BY %s LIMIT %d OFFSET %d", documentColumns, base, order, limit, offset)
	var docs []models.Document
	if err := r.db.SelectContext(ctx, &docs, query, where.args...); err != nil {
		return nil, 0, fmt.Errorf("list documents: %w", err)
	}
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) "+base, where.args...); err != nil {
		return nil, 0, fmt.Errorf("count documents: %w", err)
	}
	return docs, total, nil
}

// FindByID returns a print task.
func (r *DocumentRepository) FindByID(ctx context.Context, centerID, id string) (*models.Document, error) {
	var doc models.Document
	if err := r.db.GetContext(ctx, &doc, "SELECT "+documentColumns+" FROM documents WHERE center_id = $1 AND id = $2", centerID, id); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Create inserts a print task.
func (r *DocumentRepository) Create(ctx context.Context, doc *models.Document) error {
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}
	doc.UpdatedAt = now
	const query = `INSERT INTO documents (id, center_id, title, batch_id, copies, requested_by, due_date, status, note, created_at, updated_at)
        VALUES (:id, :center_id, :title, :batch_id, :copies, :requested_by, :due_date, :status, :note, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, doc); err != nil {
		return fmt.Errorf("create document: %w", err)
	}
	return nil
}

// Update modifies a print task.
func (r *DocumentRepository) Update(ctx context.Context, doc *models.Document) error {
	doc.UpdatedAt = time.Now().UTC()
	const query = `UPDATE documents SET title = :title, batch_id = :batch_id, copies = :copies, requested_by = :requested_by, due_date = :due_date,
        status = :status, note = :note, updated_at = :updated_at WHERE id = :id AND center_id = :center_id`
	if _, err := r.db.NamedExecContext(ctx, query, doc); err != nil {
		return fmt.Errorf("update document: %w", err)
	}
	return nil
}

// UpdateStatus moves a task to a new status only if it is still in from.
// It returns false when another writer changed the status first.
func (r *DocumentRepository) UpdateStatus(ctx context.Context, centerID, id string, from, to models.DocumentStatus) (bool, error) {
	const query = `UPDATE documents SET status = $4, updated_at = $5 WHERE center_id = $1 AND id = $2 AND status = $3`
	res, err := r.db.ExecContext(ctx, query, centerID, id, from, to, time.Now().UTC())
	if err != nil {
		return false, fmt.Errorf("update document status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("document status rows: %w", err)
	}
	return affected == 1, nil
}

// Delete removes a print task.
func (r *DocumentRepository) Delete(ctx context.Context, centerID, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM documents WHERE center_id = $1 AND id = $2`, centerID, id); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return nil
}
