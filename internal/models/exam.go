package models

import "time"

// ExamStatus is the publication state of an exam.
type ExamStatus string

const (
	ExamStatusScheduled ExamStatus = "SCHEDULED"
	ExamStatusPublished ExamStatus = "PUBLISHED"
)

// Exam is an assessment taken by one batch.
type Exam struct {
	ID         string     `db:"id" json:"id"`
	CenterID   string     `db:"center_id" json:"center_id"`
	BatchID    string     `db:"batch_id" json:"batch_id"`
	Name       string     `db:"name" json:"name"`
	Subject    string     `db:"subject" json:"subject"`
	ExamDate   time.Time  `db:"exam_date" json:"exam_date"`
	TotalMarks float64    `db:"total_marks" json:"total_marks"`
	PassMarks  float64    `db:"pass_marks" json:"pass_marks"`
	Status     ExamStatus `db:"status" json:"status"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time  `db:"updated_at" json:"updated_at"`
}

// ExamFilter scopes exam listings.
type ExamFilter struct {
	CenterID  string
	BatchID   string
	Status    *ExamStatus
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// ExamResult stores the marks of one student in an exam.
type ExamResult struct {
	ID            string    `db:"id" json:"id"`
	CenterID      string    `db:"center_id" json:"center_id"`
	ExamID        string    `db:"exam_id" json:"exam_id"`
	StudentID     string    `db:"student_id" json:"student_id"`
	ObtainedMarks float64   `db:"obtained_marks" json:"obtained_marks"`
	Grade         string    `db:"grade" json:"grade"`
	Passed        bool      `db:"passed" json:"passed"`
	Remark        *string   `db:"remark" json:"remark,omitempty"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// ExamResultDetail adds the student identity for listings.
type ExamResultDetail struct {
	ExamResult
	StudentName    string `db:"student_name" json:"student_name"`
	RegistrationNo string `db:"registration_no" json:"registration_no"`
}

var gradeScale = []struct {
	min   float64
	grade string
}{
	{80, "A+"},
	{70, "A"},
	{60, "A-"},
	{50, "B"},
	{40, "C"},
	{33, "D"},
}

// GradeFor maps obtained marks to a letter grade using percentage bands.
func GradeFor(obtained, total float64) string {
	if total <= 0 {
		return "F"
	}
	percent := obtained / total * 100
	for _, band := range gradeScale {
		if percent >= band.min {
			return band.grade
		}
	}
	return "F"
}
