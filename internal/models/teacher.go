package models

import (
	"time"

	"github.com/lib/pq"

	"github.com/noah-isme/coaching-center-api/internal/timeslot"
)

// Teacher represents an instructor with a declared weekly availability.
type Teacher struct {
	ID             string         `db:"id" json:"id"`
	CenterID       string         `db:"center_id" json:"center_id"`
	FullName       string         `db:"full_name" json:"full_name"`
	Phone          string         `db:"phone" json:"phone"`
	Email          *string        `db:"email" json:"email,omitempty"`
	Subject        string         `db:"subject" json:"subject"`
	MonthlySalary  float64        `db:"monthly_salary" json:"monthly_salary"`
	AvailableTimes pq.StringArray `db:"available_times" json:"available_times"`
	Active         bool           `db:"active" json:"active"`
	CreatedAt      time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at" json:"updated_at"`
}

// TeacherFilter captures filtering options for listing teachers.
type TeacherFilter struct {
	CenterID  string
	Search    string
	Subject   string
	Active    *bool
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// TeacherAvailability is the per-day slot view of a teacher's declared times.
type TeacherAvailability struct {
	TeacherID string             `json:"teacher_id"`
	Interval  int                `json:"interval"`
	Days      []timeslot.DaySlot `json:"days"`
}
