package models

import "time"

// FinanceMonth is one row of the yearly finance report.
type FinanceMonth struct {
	Month      string                      `json:"month"`
	Categories map[PaymentCategory]float64 `json:"categories"`
	Income     float64                     `json:"income"`
	Expense    float64                     `json:"expense"`
	Net        float64                     `json:"net"`
}

// FinanceReport aggregates paid payments of a year per month and category.
type FinanceReport struct {
	Year        int                         `json:"year"`
	Months      []FinanceMonth              `json:"months"`
	Totals      map[PaymentCategory]float64 `json:"totals"`
	Income      float64                     `json:"income"`
	Expense     float64                     `json:"expense"`
	Net         float64                     `json:"net"`
	GeneratedAt time.Time                   `json:"generated_at"`
}

// FinanceAggregateRow is the raw grouped sum returned by the repository.
type FinanceAggregateRow struct {
	Month    string          `db:"month"`
	Category PaymentCategory `db:"category"`
	Total    float64         `db:"total"`
}

// DashboardSummary is the landing page overview of a center.
type DashboardSummary struct {
	ActiveStudents   int       `db:"active_students" json:"active_students"`
	ActiveBatches    int       `db:"active_batches" json:"active_batches"`
	Teachers         int       `db:"teachers" json:"teachers"`
	PendingDocuments int       `db:"pending_documents" json:"pending_documents"`
	Month            string    `db:"-" json:"month"`
	MonthIncome      float64   `db:"-" json:"month_income"`
	MonthExpense     float64   `db:"-" json:"month_expense"`
	GeneratedAt      time.Time `db:"-" json:"generated_at"`
}

// SystemMetrics represents process level counters captured from instrumentation.
type SystemMetrics struct {
	CacheHitRatio            float64   `json:"cache_hit_ratio"`
	CacheHits                uint64    `json:"cache_hits"`
	CacheMisses              uint64    `json:"cache_misses"`
	RequestsTotal            uint64    `json:"requests_total"`
	AverageRequestDurationMs float64   `json:"average_request_duration_ms"`
	DBQueryCount             uint64    `json:"db_query_count"`
	AverageDBQueryDurationMs float64   `json:"average_db_query_duration_ms"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generated_at"`
}
