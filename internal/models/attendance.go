package models

import "time"

// AttendanceStatus represents the status for attendance records.
type AttendanceStatus string

const (
	AttendanceStatusPresent AttendanceStatus = "PRESENT"
	AttendanceStatusAbsent  AttendanceStatus = "ABSENT"
	AttendanceStatusLate    AttendanceStatus = "LATE"
	AttendanceStatusLeave   AttendanceStatus = "LEAVE"
)

// Valid returns true when the status is a supported value.
func (s AttendanceStatus) Valid() bool {
	switch s {
	case AttendanceStatusPresent, AttendanceStatusAbsent, AttendanceStatusLate, AttendanceStatusLeave:
		return true
	default:
		return false
	}
}

// Attendance is a single student's mark for one class day of a batch.
type Attendance struct {
	ID        string           `db:"id" json:"id"`
	CenterID  string           `db:"center_id" json:"center_id"`
	BatchID   string           `db:"batch_id" json:"batch_id"`
	StudentID string           `db:"student_id" json:"student_id"`
	Date      time.Time        `db:"date" json:"date"`
	Status    AttendanceStatus `db:"status" json:"status"`
	Remark    *string          `db:"remark" json:"remark,omitempty"`
	CreatedAt time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt time.Time        `db:"updated_at" json:"updated_at"`
}

// AttendanceRecord extends the model with student and batch names.
type AttendanceRecord struct {
	Attendance
	StudentName    string `db:"student_name" json:"student_name"`
	RegistrationNo string `db:"registration_no" json:"registration_no"`
	BatchName      string `db:"batch_name" json:"batch_name"`
}

// AttendanceFilter defines query filters.
type AttendanceFilter struct {
	CenterID  string
	BatchID   string
	StudentID string
	Status    *AttendanceStatus
	DateFrom  *time.Time
	DateTo    *time.Time
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// AttendanceSummary aggregates a student's marks per status.
type AttendanceSummary struct {
	StudentID      string  `json:"student_id"`
	Total          int     `json:"total"`
	Present        int     `json:"present"`
	Absent         int     `json:"absent"`
	Late           int     `json:"late"`
	Leave          int     `json:"leave"`
	PresentPercent float64 `json:"present_percent"`
}

// AttendanceStatusCount is a grouped row used to build summaries.
type AttendanceStatusCount struct {
	Status AttendanceStatus `db:"status"`
	Count  int              `db:"count"`
}
