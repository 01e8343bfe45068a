package mocks

import (
	"context"
	"errors"

	"github.com/godilite/eqrev-analytics/internal/service"
)

// MockDashboardService is a function-field mock of the service behind the
// gRPC handlers.
type MockDashboardService struct {
	GetDashboardMetricsFunc func(ctx context.Context, q service.DashboardQuery) (*service.DashboardResult, error)
	GetDailySeriesFunc      func(ctx context.Context, q service.SeriesQuery) (*service.SeriesResult, error)
	ListCategoriesFunc      func(ctx context.Context) ([]string, error)
}

func (m *MockDashboardService) GetDashboardMetrics(ctx context.Context, q service.DashboardQuery) (*service.DashboardResult, error) {
	if m.GetDashboardMetricsFunc != nil {
		return m.GetDashboardMetricsFunc(ctx, q)
	}
	return nil, errors.New("GetDashboardMetricsFunc not implemented")
}

func (m *MockDashboardService) GetDailySeries(ctx context.Context, q service.SeriesQuery) (*service.SeriesResult, error) {
	if m.GetDailySeriesFunc != nil {
		return m.GetDailySeriesFunc(ctx, q)
	}
	return nil, errors.New("GetDailySeriesFunc not implemented")
}

func (m *MockDashboardService) ListCategories(ctx context.Context) ([]string, error) {
	if m.ListCategoriesFunc != nil {
		return m.ListCategoriesFunc(ctx)
	}
	return nil, errors.New("ListCategoriesFunc not implemented")
}
