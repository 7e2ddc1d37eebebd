package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/coaching-center-api/internal/models"
	appErrors "github.com/noah-isme/coaching-center-api/pkg/errors"
)

type mockPaymentRepo struct {
	payments map[string]models.Payment
	deleted  []string
}

func (m *mockPaymentRepo) List(ctx context.Context, filter models.PaymentFilter) ([]models.Payment, int, error) {
	return []models.Payment{}, 0, nil
}

func (m *mockPaymentRepo) FindByID(ctx context.Context, centerID, id string) (*models.Payment, error) {
	if p, ok := m.payments[id]; ok && p.CenterID == centerID {
		return &p, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockPaymentRepo) Create(ctx context.Context, payment *models.Payment) error {
	if m.payments == nil {
		m.payments = make(map[string]models.Payment)
	}
	payment.ID = "p-new"
	m.payments[payment.ID] = *payment
	return nil
}

func (m *mockPaymentRepo) Update(ctx context.Context, payment *models.Payment) error {
	m.payments[payment.ID] = *payment
	return nil
}

func (m *mockPaymentRepo) Delete(ctx context.Context, centerID, id string) error {
	m.deleted = append(m.deleted, id)
	return nil
}

type paymentFixture struct {
	repo  *mockPaymentRepo
	cache *memoryCacheRepo
	svc   *PaymentService
}

func newPaymentFixture() *paymentFixture {
	f := &paymentFixture{repo: &mockPaymentRepo{payments: map[string]models.Payment{
		"p-pending": {ID: "p-pending", CenterID: adminActor.CenterID, Category: models.PaymentCategoryMonthlyFee, Status: models.PaymentStatusPending},
		"p-cancel":  {ID: "p-cancel", CenterID: adminActor.CenterID, Category: models.PaymentCategoryExpense, Status: models.PaymentStatusCancelled},
	}}, cache: newMemoryCacheRepo()}
	students := stubRoster{members: map[string]bool{"s1": true}}
	teachers := &mockTeacherRepo{teachers: map[string]models.Teacher{"t1": {ID: "t1", CenterID: adminActor.CenterID}}}
	cache := NewCacheService(f.cache, nil, time.Minute, nil, true)
	f.svc = NewPaymentService(f.repo, students, teachers, cache, nil, nil)
	f.svc.now = func() time.Time { return time.Date(2024, 4, 15, 13, 0, 0, 0, time.UTC) }
	return f
}

func ptr(s string) *string { return &s }

func TestPaymentServiceCreateFee(t *testing.T) {
	f := newPaymentFixture()
	ctx := context.Background()
	require.NoError(t, f.cache.Set(ctx, CacheKey("finance", adminActor.CenterID, 2024), 1, time.Minute))
	require.NoError(t, f.cache.Set(ctx, CacheKey("dashboard", adminActor.CenterID), 1, time.Minute))
	require.NoError(t, f.cache.Set(ctx, CacheKey("finance", "other", 2024), 1, time.Minute))

	payment, err := f.svc.Create(ctx, adminActor, PaymentRequest{
		Category:  models.PaymentCategoryMonthlyFee,
		StudentID: ptr("s1"),
		Amount:    1500,
		Month:     "2024-04",
		Method:    models.PaymentMethodCash,
	})
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPaid, payment.Status)
	require.NotNil(t, payment.PaidDate)
	assert.Equal(t, time.Date(2024, 4, 15, 0, 0, 0, 0, time.UTC), *payment.PaidDate)
	require.NotNil(t, payment.CreatedBy)
	assert.Equal(t, adminActor.UserID, *payment.CreatedBy)

	assert.Len(t, f.cache.entries, 1)
	assert.Contains(t, f.cache.entries, CacheKey("finance", "other", 2024))
}

func TestPaymentServiceCategoryRules(t *testing.T) {
	cases := []struct {
		name string
		req  PaymentRequest
		want error
	}{
		{"fee without student", PaymentRequest{Category: models.PaymentCategoryAdmissionFee, Amount: 10, Month: "2024-01", Method: models.PaymentMethodCash}, appErrors.ErrValidation},
		{"salary without teacher", PaymentRequest{Category: models.PaymentCategorySalary, Amount: 10, Month: "2024-01", Method: models.PaymentMethodBank}, appErrors.ErrValidation},
		{"salary with student", PaymentRequest{Category: models.PaymentCategorySalary, TeacherID: ptr("t1"), StudentID: ptr("s1"), Amount: 10, Month: "2024-01", Method: models.PaymentMethodBank}, appErrors.ErrValidation},
		{"bad month", PaymentRequest{Category: models.PaymentCategoryExpense, Amount: 10, Month: "2024-1", Method: models.PaymentMethodCash}, appErrors.ErrValidation},
		{"zero amount", PaymentRequest{Category: models.PaymentCategoryExpense, Amount: 0, Month: "2024-01", Method: models.PaymentMethodCash}, appErrors.ErrValidation},
		{"unknown category", PaymentRequest{Category: "DONATION", Amount: 10, Month: "2024-01", Method: models.PaymentMethodCash}, appErrors.ErrValidation},
		{"unknown student", PaymentRequest{Category: models.PaymentCategoryExamFee, StudentID: ptr("s9"), Amount: 10, Month: "2024-01", Method: models.PaymentMethodMobile}, appErrors.ErrNotFound},
		{"unknown teacher", PaymentRequest{Category: models.PaymentCategorySalary, TeacherID: ptr("t9"), Amount: 10, Month: "2024-01", Method: models.PaymentMethodBank}, appErrors.ErrNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newPaymentFixture()
			_, err := f.svc.Create(context.Background(), adminActor, tc.req)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tc.want), err.Error())
		})
	}

	f := newPaymentFixture()
	expense, err := f.svc.Create(context.Background(), adminActor, PaymentRequest{
		Category: models.PaymentCategoryExpense, Amount: 300, Month: "2024-04", Method: models.PaymentMethodCash, Status: models.PaymentStatusPending, Note: " rent ",
	})
	require.NoError(t, err)
	assert.Nil(t, expense.PaidDate)
	require.NotNil(t, expense.Note)
	assert.Equal(t, "rent", *expense.Note)
}

func TestPaymentServiceChangeStatus(t *testing.T) {
	f := newPaymentFixture()

	payment, err := f.svc.ChangeStatus(context.Background(), adminActor, "p-pending", PaymentStatusRequest{Status: models.PaymentStatusPaid})
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPaid, payment.Status)
	assert.NotNil(t, payment.PaidDate)

	_, err = f.svc.ChangeStatus(context.Background(), adminActor, "p-pending", PaymentStatusRequest{Status: models.PaymentStatusPending})
	assert.True(t, errors.Is(err, appErrors.ErrInvalidTransition))

	_, err = f.svc.ChangeStatus(context.Background(), adminActor, "p-cancel", PaymentStatusRequest{Status: models.PaymentStatusPaid})
	assert.True(t, errors.Is(err, appErrors.ErrInvalidTransition))

	_, err = f.svc.Update(context.Background(), adminActor, "p-cancel", PaymentRequest{
		Category: models.PaymentCategoryExpense, Amount: 1, Month: "2024-04", Method: models.PaymentMethodCash,
	})
	assert.True(t, errors.Is(err, appErrors.ErrPreconditionFailed))
}

func TestPaymentServiceDelete(t *testing.T) {
	f := newPaymentFixture()

	require.NoError(t, f.svc.Delete(context.Background(), adminActor, "p-pending"))
	assert.Equal(t, []string{"p-pending"}, f.repo.deleted)
	assert.True(t, errors.Is(f.svc.Delete(context.Background(), adminActor, "nope"), appErrors.ErrNotFound))

	_, _, err := f.svc.List(context.Background(), adminActor, models.PaymentFilter{Month: "April"})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}
