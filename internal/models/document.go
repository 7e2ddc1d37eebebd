package models

import "time"

// DocumentStatus is the state of a print task.
type DocumentStatus string

const (
	DocumentStatusPending   DocumentStatus = "PENDING"
	DocumentStatusPrinting  DocumentStatus = "PRINTING"
	DocumentStatusDone      DocumentStatus = "DONE"
	DocumentStatusCancelled DocumentStatus = "CANCELLED"
)

var documentTransitions = map[DocumentStatus][]DocumentStatus{
	DocumentStatusPending:  {DocumentStatusPrinting, DocumentStatusCancelled},
	DocumentStatusPrinting: {DocumentStatusDone, DocumentStatusCancelled},
}

// CanTransition reports whether a document may move from s to next.
func (s DocumentStatus) CanTransition(next DocumentStatus) bool {
	for _, allowed := range documentTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Document is a print task such as handouts or question papers.
type Document struct {
	ID          string         `db:"id" json:"id"`
	CenterID    string         `db:"center_id" json:"center_id"`
	Title       string         `db:"title" json:"title"`
	BatchID     *string        `db:"batch_id" json:"batch_id,omitempty"`
	Copies      int            `db:"copies" json:"copies"`
	RequestedBy string         `db:"requested_by" json:"requested_by"`
	DueDate     *time.Time     `db:"due_date" json:"due_date,omitempty"`
	Status      DocumentStatus `db:"status" json:"status"`
	Note        *string        `db:"note" json:"note,omitempty"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at" json:"updated_at"`
}

// DocumentFilter scopes document listings.
type DocumentFilter struct {
	CenterID  string
	Search    string
	BatchID   string
	Status    *DocumentStatus
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
