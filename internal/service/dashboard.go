package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const defaultQueryTimeout = 5 * time.Second

// DashboardService serves category comparisons, daily series and the
// category list.
type DashboardService struct {
	storage      MetricsRepository
	logger       *zap.Logger
	queryTimeout time.Duration
	now          func() time.Time
}

type Option func(*DashboardService)

// WithQueryTimeout bounds every store round trip of a single call.
func WithQueryTimeout(d time.Duration) Option {
	return func(s *DashboardService) {
		if d > 0 {
			s.queryTimeout = d
		}
	}
}

// WithClock overrides the source of "today" for default chart ranges.
func WithClock(now func() time.Time) Option {
	return func(s *DashboardService) {
		if now != nil {
			s.now = now
		}
	}
}

// NewDashboardService creates a new DashboardService instance.
func NewDashboardService(storage MetricsRepository, logger *zap.Logger, opts ...Option) *DashboardService {
	if storage == nil {
		panic("storage must not be nil")
	}
	if logger == nil {
		l, _ := zap.NewProduction()
		logger = l
	}
	s := &DashboardService{
		storage:      storage,
		logger:       logger,
		queryTimeout: defaultQueryTimeout,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetDashboardMetrics compares the requested range against its comparison
// range per category and returns one sorted page led by the summary row.
func (s *DashboardService) GetDashboardMetrics(ctx context.Context, q DashboardQuery) (*DashboardResult, error) {
	if q.Start.IsZero() || q.End.IsZero() {
		return nil, newValidationError(ErrInvalidRequest, "Start and end dates are required.")
	}
	current := NewDateRange(q.Start, q.End)
	if current.Start.After(current.End) {
		return nil, newValidationError(ErrInvalidRequest, "Start date cannot be after end date.")
	}

	comparison, err := comparisonRange(current, q.CustomStart, q.CustomEnd)
	if err != nil {
		return nil, err
	}

	dbCtx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	var currentAggs, comparisonAggs []CategoryAggregate
	g, gctx := errgroup.WithContext(dbCtx)
	g.Go(func() error {
		aggs, err := s.fetchAggregates(gctx, current)
		currentAggs = aggs
		return err
	})
	g.Go(func() error {
		aggs, err := s.fetchAggregates(gctx, comparison)
		comparisonAggs = aggs
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.Error("failed to fetch category metrics",
			zap.Stringer("current", current),
			zap.Stringer("comparison", comparison),
			zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrStorageFailure, err)
	}

	records := Compare(currentAggs, comparisonAggs)
	summary := SummarizeComparison(records)
	page := SortAndPage(records, summary, q.Page)

	s.logger.Info("fetched dashboard metrics",
		zap.Stringer("current", current),
		zap.Stringer("comparison", comparison),
		zap.Int("categories", page.Total),
		zap.Int("limit", page.Limit),
		zap.Int("offset", page.Offset))

	return &DashboardResult{
		Limit:           page.Limit,
		Offset:          page.Offset,
		Total:           page.Total,
		CurrentRange:    current,
		ComparisonRange: comparison,
		Data:            page.Data,
	}, nil
}

// comparisonRange returns the custom pair when both ends are given, and the
// previous period when neither is.
func comparisonRange(current DateRange, customStart, customEnd *time.Time) (DateRange, error) {
	switch {
	case customStart != nil && customEnd != nil:
		custom := NewDateRange(*customStart, *customEnd)
		if m := ValidateRangeMatch(current, custom); !m.Valid {
			return DateRange{}, newValidationError(ErrRangeMismatch, "%s", m.Message)
		}
		return custom, nil
	case customStart != nil || customEnd != nil:
		return DateRange{}, newValidationError(ErrInvalidRequest, "customStart and customEnd must be provided together.")
	default:
		return PreviousPeriod(current), nil
	}
}

func (s *DashboardService) fetchAggregates(ctx context.Context, r DateRange) ([]CategoryAggregate, error) {
	from, to := r.Bounds()
	rows, err := s.storage.GetCategoryMetrics(ctx, from, to)
	if err != nil {
		return nil, err
	}
	aggs := make([]CategoryAggregate, 0, len(rows))
	for _, row := range rows {
		aggs = append(aggs, NewCategoryAggregate(row))
	}
	return aggs, nil
}

// GetDailySeries sums two metrics per day for charting. Without an end date
// the range ends today; without a start date it begins
// DefaultSeriesWindowDays before the end day.
func (s *DashboardService) GetDailySeries(ctx context.Context, q SeriesQuery) (*SeriesResult, error) {
	end := TruncateDay(s.now())
	if q.End != nil {
		end = TruncateDay(*q.End)
	}
	start := end.AddDate(0, 0, -DefaultSeriesWindowDays)
	if q.Start != nil {
		start = TruncateDay(*q.Start)
	}
	if start.After(end) {
		return nil, newValidationError(ErrInvalidRequest, "Start date cannot be after end date.")
	}
	r := DateRange{Start: start, End: end}

	metric1, metric2 := q.Metric1, q.Metric2
	if metric1 == "" {
		metric1 = DefaultMetric1
	}
	if metric2 == "" {
		metric2 = DefaultMetric2
	}
	col1, err := ResolveMetric(metric1)
	if err != nil {
		return nil, err
	}
	col2, err := ResolveMetric(metric2)
	if err != nil {
		return nil, err
	}

	dbCtx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	from, to := r.Bounds()
	rows, err := s.storage.GetDailyMetrics(dbCtx, from, to, col1, col2)
	if err != nil {
		s.logger.Error("failed to fetch daily metrics",
			zap.Stringer("range", r),
			zap.String("metric1", metric1),
			zap.String("metric2", metric2),
			zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrStorageFailure, err)
	}

	return &SeriesResult{
		Range:   r,
		Metric1: metric1,
		Metric2: metric2,
		Data:    buildSeries(rows, r, q.FillGaps),
	}, nil
}

// ListCategories returns distinct category names in ascending order.
func (s *DashboardService) ListCategories(ctx context.Context) ([]string, error) {
	dbCtx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	names, err := s.storage.ListCategoryNames(dbCtx)
	if err != nil {
		s.logger.Error("failed to list categories", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrStorageFailure, err)
	}
	if names == nil {
		names = []string{}
	}
	return names, nil
}

// Ping reports whether the store is reachable.
func (s *DashboardService) Ping(ctx context.Context) error {
	dbCtx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	if err := s.storage.Ping(dbCtx); err != nil {
		return fmt.Errorf("%w: %w", ErrStorageFailure, err)
	}
	return nil
}
