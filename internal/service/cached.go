package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/godilite/eqrev-analytics/pkg/cache"
)

// CachedDashboardService reads through a cache in front of DashboardService.
// Failed calls, including validation errors, are never stored.
type CachedDashboardService struct {
	*DashboardService
	cache  cache.Cacher
	sf     singleflight.Group
	ttl    time.Duration
	logger *zap.Logger
}

func NewCachedDashboardService(inner *DashboardService, c cache.Cacher, ttl time.Duration, logger *zap.Logger) *CachedDashboardService {
	if inner == nil || c == nil {
		panic("service and cache must not be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedDashboardService{
		DashboardService: inner,
		cache:            c,
		ttl:              ttl,
		logger:           logger,
	}
}

func (s *CachedDashboardService) GetDashboardMetrics(ctx context.Context, q DashboardQuery) (*DashboardResult, error) {
	return cache.FindAndCache(ctx, s.cache, &s.sf, dashboardKey(q), s.ttl, s.logger,
		func(ctx context.Context) (*DashboardResult, error) {
			return s.DashboardService.GetDashboardMetrics(ctx, q)
		})
}

func (s *CachedDashboardService) GetDailySeries(ctx context.Context, q SeriesQuery) (*SeriesResult, error) {
	return cache.FindAndCache(ctx, s.cache, &s.sf, s.seriesKey(q), s.ttl, s.logger,
		func(ctx context.Context) (*SeriesResult, error) {
			return s.DashboardService.GetDailySeries(ctx, q)
		})
}

func (s *CachedDashboardService) ListCategories(ctx context.Context) ([]string, error) {
	return cache.FindAndCache(ctx, s.cache, &s.sf, "categories", s.ttl, s.logger,
		s.DashboardService.ListCategories)
}

func dashboardKey(q DashboardQuery) string {
	p := q.Page.normalize()
	return strings.Join([]string{
		"dashboard",
		dayKey(&q.Start),
		dayKey(&q.End),
		dayKey(q.CustomStart),
		dayKey(q.CustomEnd),
		p.SortBy,
		p.Order,
		fmt.Sprint(p.Limit),
		fmt.Sprint(p.Offset),
	}, ":")
}

// seriesKey pins open-ended ranges to today so entries roll over at midnight.
func (s *CachedDashboardService) seriesKey(q SeriesQuery) string {
	today := TruncateDay(s.now())
	end := q.End
	if end == nil {
		end = &today
	}
	return strings.Join([]string{
		"series",
		dayKey(q.Start),
		dayKey(end),
		q.Metric1,
		q.Metric2,
		fmt.Sprint(q.FillGaps),
	}, ":")
}

func dayKey(t *time.Time) string {
	if t == nil || t.IsZero() {
		return "-"
	}
	return TruncateDay(*t).Format(DateLayout)
}
