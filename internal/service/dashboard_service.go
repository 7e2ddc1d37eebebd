package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/coaching-center-api/internal/models"
)

type dashboardRepository interface {
	DashboardCounts(ctx context.Context, centerID string) (*models.DashboardSummary, error)
	MonthTotals(ctx context.Context, centerID, month string) ([]models.FinanceAggregateRow, error)
}

// DashboardServiceConfig tunes dashboard behaviour.
type DashboardServiceConfig struct {
	CacheTTL time.Duration
}

// DashboardService composes the landing page overview of a center.
type DashboardService struct {
	repo    dashboardRepository
	cache   *CacheService
	metrics *MetricsService
	logger  *zap.Logger
	now     func() time.Time
	cfg     DashboardServiceConfig
}

// NewDashboardService constructs a DashboardService with sane defaults.
func NewDashboardService(repo dashboardRepository, cache *CacheService, metrics *MetricsService, logger *zap.Logger, cfg DashboardServiceConfig) *DashboardService {
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{repo: repo, cache: cache, metrics: metrics, logger: logger, now: time.Now, cfg: cfg}
}

// Summary returns headline counts and the current month's cash flow. The
// boolean indicates whether the payload came from cache.
func (s *DashboardService) Summary(ctx context.Context, actor models.Actor) (*models.DashboardSummary, bool, error) {
	month := s.now().UTC().Format("2006-01")
	cacheKey := CacheKey("dashboard", actor.CenterID)

	var cached models.DashboardSummary
	if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit && cached.Month == month {
		return &cached, true, nil
	}

	start := time.Now()
	summary, err := s.repo.DashboardCounts(ctx, actor.CenterID)
	if err != nil {
		return nil, false, internalError(err, "failed to load dashboard counts")
	}
	rows, err := s.repo.MonthTotals(ctx, actor.CenterID, month)
	if err != nil {
		return nil, false, internalError(err, "failed to load month totals")
	}
	s.metrics.ObserveDBQuery("dashboard", time.Since(start))

	summary.Month = month
	for _, row := range rows {
		switch {
		case row.Category.IsExpense():
			summary.MonthExpense += row.Total
		case row.Category.IsIncome():
			summary.MonthIncome += row.Total
		}
	}
	summary.MonthIncome = roundMoney(summary.MonthIncome)
	summary.MonthExpense = roundMoney(summary.MonthExpense)
	summary.GeneratedAt = s.now().UTC()

	s.persistCache(ctx, cacheKey, summary)
	return summary, false, nil
}

func (s *DashboardService) persistCache(ctx context.Context, key string, value interface{}) {
	if err := s.cache.Set(ctx, key, value, s.cfg.CacheTTL); err != nil {
		s.logger.Warn("dashboard cache write failed", zap.String("key", key), zap.Error(err))
	}
}
