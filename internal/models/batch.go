package models

import (
	"time"

	"github.com/lib/pq"
)

// BatchStatus toggles whether a batch takes part in scheduling.
type BatchStatus string

const (
	BatchStatusActive   BatchStatus = "ACTIVE"
	BatchStatusInactive BatchStatus = "INACTIVE"
)

// Batch is a group of students taught one subject by one teacher in one
// room at fixed weekly class times ("Saturday 9:00 AM - 10:30 AM").
type Batch struct {
	ID         string         `db:"id" json:"id"`
	CenterID   string         `db:"center_id" json:"center_id"`
	Name       string         `db:"name" json:"name"`
	Subject    string         `db:"subject" json:"subject"`
	TeacherID  string         `db:"teacher_id" json:"teacher_id"`
	RoomID     string         `db:"room_id" json:"room_id"`
	ClassTimes pq.StringArray `db:"class_times" json:"class_times"`
	StartDate  time.Time      `db:"start_date" json:"start_date"`
	Fee        float64        `db:"fee" json:"fee"`
	Capacity   int            `db:"capacity" json:"capacity"`
	Status     BatchStatus    `db:"status" json:"status"`
	CreatedAt  time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time      `db:"updated_at" json:"updated_at"`
}

// BatchDetail adds display names and enrolment count.
type BatchDetail struct {
	Batch
	TeacherName  string `db:"teacher_name" json:"teacher_name"`
	RoomName     string `db:"room_name" json:"room_name"`
	StudentCount int    `db:"student_count" json:"student_count"`
}

// BatchFilter describes query params for listing batches.
type BatchFilter struct {
	CenterID  string
	Search    string
	TeacherID string
	RoomID    string
	Status    *BatchStatus
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// Conflict dimensions reported by schedule validation.
const (
	ConflictDimensionRoom    = "ROOM"
	ConflictDimensionTeacher = "TEACHER"
)

// ScheduleConflict describes an existing batch that collides with a request.
type ScheduleConflict struct {
	BatchID   string `json:"batch_id"`
	BatchName string `json:"batch_name"`
	Dimension string `json:"dimension"`
	Day       string `json:"day"`
	Existing  string `json:"existing"`
	Requested string `json:"requested"`
}

// ScheduleConflictError is returned when class times collide with other batches.
type ScheduleConflictError struct {
	Type      string             `json:"type"`
	Message   string             `json:"message"`
	Conflicts []ScheduleConflict `json:"conflicts"`
}

// Error implements the error interface for conflict errors.
func (e *ScheduleConflictError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return e.Message
}
