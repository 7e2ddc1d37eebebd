package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/coaching-center-api/internal/models"
	appErrors "github.com/noah-isme/coaching-center-api/pkg/errors"
)

// AnalyticsRepository describes the aggregate queries required by AnalyticsService.
type AnalyticsRepository interface {
	FinanceTotals(ctx context.Context, centerID string, year int) ([]models.FinanceAggregateRow, error)
	DashboardCounts(ctx context.Context, centerID string) (*models.DashboardSummary, error)
	MonthTotals(ctx context.Context, centerID, month string) ([]models.FinanceAggregateRow, error)
}

// AnalyticsService provides read-optimised finance reports with cache integration.
type AnalyticsService struct {
	repo    AnalyticsRepository
	cache   *CacheService
	metrics *MetricsService
	logger  *zap.Logger
	now     func() time.Time
}

// NewAnalyticsService constructs an analytics service.
func NewAnalyticsService(repo AnalyticsRepository, cache *CacheService, metrics *MetricsService, logger *zap.Logger) *AnalyticsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnalyticsService{repo: repo, cache: cache, metrics: metrics, logger: logger, now: time.Now}
}

// Finance returns the yearly finance report of the actor's center. Year 0
// means the current year. The boolean indicates whether data originated from cache.
func (s *AnalyticsService) Finance(ctx context.Context, actor models.Actor, year int) (*models.FinanceReport, bool, error) {
	if year == 0 {
		year = s.now().UTC().Year()
	}
	if year < 2000 || year > 2100 {
		return nil, false, appErrors.Clone(appErrors.ErrValidation, "year must be between 2000 and 2100")
	}

	cacheKey := CacheKey("finance", actor.CenterID, year)
	var cached models.FinanceReport
	if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
		return &cached, true, nil
	}

	start := time.Now()
	rows, err := s.repo.FinanceTotals(ctx, actor.CenterID, year)
	if err != nil {
		return nil, false, internalError(err, "failed to load finance totals")
	}
	s.metrics.ObserveDBQuery("finance_totals", time.Since(start))

	report := buildFinanceReport(year, rows)
	report.GeneratedAt = s.now().UTC()
	if err := s.cache.Set(ctx, cacheKey, report, 0); err != nil {
		s.logger.Warn("cache finance report", zap.String("center_id", actor.CenterID), zap.Error(err))
	}
	return report, false, nil
}

// SystemMetrics returns system instrumentation snapshot.
func (s *AnalyticsService) SystemMetrics() models.SystemMetrics {
	return s.metrics.Snapshot()
}

// buildFinanceReport spreads grouped sums over the twelve months of year.
// Rows outside the year or with unknown categories are ignored.
func buildFinanceReport(year int, rows []models.FinanceAggregateRow) *models.FinanceReport {
	report := &models.FinanceReport{
		Year:   year,
		Months: make([]models.FinanceMonth, 12),
		Totals: make(map[models.PaymentCategory]float64, len(models.PaymentCategories)),
	}
	index := make(map[string]int, 12)
	for i := range report.Months {
		month := fmt.Sprintf("%04d-%02d", year, i+1)
		index[month] = i
		report.Months[i] = models.FinanceMonth{
			Month:      month,
			Categories: make(map[models.PaymentCategory]float64, len(models.PaymentCategories)),
		}
		for _, category := range models.PaymentCategories {
			report.Months[i].Categories[category] = 0
		}
	}
	for _, category := range models.PaymentCategories {
		report.Totals[category] = 0
	}

	for _, row := range rows {
		i, ok := index[row.Month]
		if !ok || !row.Category.Valid() {
			continue
		}
		month := &report.Months[i]
		month.Categories[row.Category] += row.Total
		report.Totals[row.Category] += row.Total
		if row.Category.IsExpense() {
			month.Expense += row.Total
		} else {
			month.Income += row.Total
		}
	}

	for i := range report.Months {
		month := &report.Months[i]
		month.Income = roundMoney(month.Income)
		month.Expense = roundMoney(month.Expense)
		month.Net = roundMoney(month.Income - month.Expense)
		report.Income += month.Income
		report.Expense += month.Expense
	}
	report.Income = roundMoney(report.Income)
	report.Expense = roundMoney(report.Expense)
	report.Net = roundMoney(report.Income - report.Expense)
	return report
}

func roundMoney(v float64) float64 {
	return math.Round(v*100) / 100
}
