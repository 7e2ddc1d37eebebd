package models

import "time"

// PaymentCategory classifies a ledger entry.
type PaymentCategory string

const (
	PaymentCategoryAdmissionFee PaymentCategory = "ADMISSION_FEE"
	PaymentCategoryMonthlyFee   PaymentCategory = "MONTHLY_FEE"
	PaymentCategoryExamFee      PaymentCategory = "EXAM_FEE"
	PaymentCategorySalary       PaymentCategory = "SALARY"
	PaymentCategoryExpense      PaymentCategory = "EXPENSE"
	PaymentCategoryOther        PaymentCategory = "OTHER"
)

// PaymentCategories lists all categories in report column order.
var PaymentCategories = []PaymentCategory{
	PaymentCategoryAdmissionFee,
	PaymentCategoryMonthlyFee,
	PaymentCategoryExamFee,
	PaymentCategoryOther,
	PaymentCategorySalary,
	PaymentCategoryExpense,
}

// Valid reports whether c is a known category.
func (c PaymentCategory) Valid() bool {
	for _, known := range PaymentCategories {
		if c == known {
			return true
		}
	}
	return false
}

// RequiresStudent is true for fee categories.
func (c PaymentCategory) RequiresStudent() bool {
	switch c {
	case PaymentCategoryAdmissionFee, PaymentCategoryMonthlyFee, PaymentCategoryExamFee:
		return true
	}
	return false
}

// RequiresTeacher is true for salary payouts.
func (c PaymentCategory) RequiresTeacher() bool {
	return c == PaymentCategorySalary
}

// IsExpense is true for outgoing money.
func (c PaymentCategory) IsExpense() bool {
	return c == PaymentCategorySalary || c == PaymentCategoryExpense
}

// IsIncome is true for incoming money.
func (c PaymentCategory) IsIncome() bool {
	return c.Valid() && !c.IsExpense()
}

// PaymentMethod records how money moved.
type PaymentMethod string

const (
	PaymentMethodCash   PaymentMethod = "CASH"
	PaymentMethodBank   PaymentMethod = "BANK"
	PaymentMethodMobile PaymentMethod = "MOBILE"
)

// PaymentStatus tracks settlement.
type PaymentStatus string

const (
	PaymentStatusPaid      PaymentStatus = "PAID"
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusCancelled PaymentStatus = "CANCELLED"
)

// Payment is a fee collected from a student or money paid out.
type Payment struct {
	ID        string          `db:"id" json:"id"`
	CenterID  string          `db:"center_id" json:"center_id"`
	Category  PaymentCategory `db:"category" json:"category"`
	StudentID *string         `db:"student_id" json:"student_id,omitempty"`
	TeacherID *string         `db:"teacher_id" json:"teacher_id,omitempty"`
	Amount    float64         `db:"amount" json:"amount"`
	Month     string          `db:"month" json:"month"`
	PaidDate  *time.Time      `db:"paid_date" json:"paid_date,omitempty"`
	Method    PaymentMethod   `db:"method" json:"method"`
	Status    PaymentStatus   `db:"status" json:"status"`
	Note      *string         `db:"note" json:"note,omitempty"`
	CreatedBy *string         `db:"created_by" json:"created_by,omitempty"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt time.Time       `db:"updated_at" json:"updated_at"`
}

// PaymentFilter scopes payment listings.
type PaymentFilter struct {
	CenterID  string
	Category  *PaymentCategory
	StudentID string
	TeacherID string
	Month     string
	Status    *PaymentStatus
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
