package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/coaching-center-api/internal/models"
)

const paymentColumns = "id, center_id, category, student_id, teacher_id, amount, month, paid_date, method, status, note, created_by, created_at, updated_at"

// PaymentRepository persists the fee and salary ledger.
type PaymentRepository struct {
	db *sqlx.DB
}

// NewPaymentRepository constructs the repository.
func NewPaymentRepository(db *sqlx.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// List returns payments of a center.
func (r *PaymentRepository) List(ctx context.Context, filter models.PaymentFilter) ([]models.Payment, int, error) {
	where := newWhere("center_id", filter.CenterID)
	if filter.Category != nil {
		where.add("category = $%d", *filter.Category)
	}
	if filter.StudentID != "" {
		where.add("student_id = $%d", filter.StudentID)
	}
	if filter.TeacherID != "" {
		where.add("teacher_id = $%d", filter.TeacherID)
	}
	if filter.Month != "" {
		where.add("month = $%d", filter.Month)
	}
	if filter.Status != nil {
		where.add("status = $%d", *filter.Status)
	}

	order := orderClause(filter.SortBy, filter.SortOrder, map[string]string{
		"amount":     "amount",
		"month":      "month",
		"paid_date":  "paid_date",
		"created_at": "created_at",
	}, "created_at")
	limit, offset := pageWindow(filter.Page, filter.PageSize)

	base := "FROM payments WHERE " + where.clause()
	query := fmt.Sprintf("SELECT %s %s ORDER BY %s LIMIT %d OFFSET %d", paymentColumns, base, order, limit, offset)
	var payments []models.Payment
	if err := r.db.SelectContext(ctx, &payments, query, where.args...); err != nil {
		return nil, 0, fmt.Errorf("list payments: %w", err)
	}
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) "+base, where.args...); err != nil {
		return nil, 0, fmt.Errorf("count payments: %w", err)
	}
	return payments, total, nil
}

// FindByID returns a payment.
func (r *PaymentRepository) FindByID(ctx context.Context, centerID, id string) (*models.Payment, error) {
	var payment models.Payment
	if err := r.db.GetContext(ctx, &payment, "SELECT "+paymentColumns+" FROM payments WHERE center_id = $1 AND id = $2", centerID, id); err != nil {
		return nil, err
	}
	return &payment, nil
}

// Create inserts a payment.
func (r *PaymentRepository) Create(ctx context.Context, payment *models.Payment) error {
	if payment.ID == "" {
		payment.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if payment.CreatedAt.IsZero() {
		payment.CreatedAt = now
	}
	payment.UpdatedAt = now
	const query = `INSERT INTO payments (id, center_id, category, student_id, teacher_id, amount, month, paid_date, method, status, note, created_by, created_at, updated_at)
        VALUES (:id, :center_id, :category, :student_id, :teacher_id, :amount, :month, :paid_date, :method, :status, :note, :created_by, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, payment); err != nil {
		return fmt.Errorf("create payment: %w", err)
	}
	return nil
}

// Update modifies a payment.
func (r *PaymentRepository) Update(ctx context.Context, payment *models.Payment) error {
	payment.UpdatedAt = time.Now().UTC()
	const query = `UPDATE payments SET category = :category, student_id = :student_id, teacher_id = :teacher_id, amount = :amount, month = :month,
        paid_date = :paid_date, method = :method, status = :status, note = :note, updated_at = :updated_at WHERE id = :id AND center_id = :center_id`
	if _, err := r.db.NamedExecContext(ctx, query, payment); err != nil {
		return fmt.Errorf("update payment: %w", err)
	}
	return nil
}

// Delete removes a payment.
func (r *PaymentRepository) Delete(ctx context.Context, centerID, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM payments WHERE center_id = $1 AND id = $2`, centerID, id); err != nil {
		return fmt.Errorf("delete payment: %w", err)
	}
	return nil
}
