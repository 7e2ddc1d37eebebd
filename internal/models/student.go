package models

import "time"

// StudentStatus tracks whether an admitted student is still enrolled.
type StudentStatus string

const (
	StudentStatusActive   StudentStatus = "ACTIVE"
	StudentStatusInactive StudentStatus = "INACTIVE"
)

// Student represents an admitted learner of a coaching center.
type Student struct {
	ID             string        `db:"id" json:"id"`
	CenterID       string        `db:"center_id" json:"center_id"`
	RegistrationNo string        `db:"registration_no" json:"registration_no"`
	FullName       string        `db:"full_name" json:"full_name"`
	GuardianName   string        `db:"guardian_name" json:"guardian_name"`
	Phone          string        `db:"phone" json:"phone"`
	Email          *string       `db:"email" json:"email,omitempty"`
	Institution    *string       `db:"institution" json:"institution,omitempty"`
	ClassLevel     string        `db:"class_level" json:"class_level"`
	BatchID        *string       `db:"batch_id" json:"batch_id,omitempty"`
	AdmissionDate  time.Time     `db:"admission_date" json:"admission_date"`
	AdmissionFee   float64       `db:"admission_fee" json:"admission_fee"`
	MonthlyFee     float64       `db:"monthly_fee" json:"monthly_fee"`
	Status         StudentStatus `db:"status" json:"status"`
	CreatedAt      time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time     `db:"updated_at" json:"updated_at"`
}

// StudentFilter encapsulates allowed search parameters for listing students.
type StudentFilter struct {
	CenterID  string
	Search    string
	BatchID   string
	Status    *StudentStatus
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// StudentDetail adds the batch name for display.
type StudentDetail struct {
	Student
	BatchName *string `db:"batch_name" json:"batch_name,omitempty"`
}
