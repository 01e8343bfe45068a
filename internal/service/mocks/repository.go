package mocks

import (
	"context"
	"errors"
	"time"

	"github.com/godilite/eqrev-analytics/internal/repository/models"
)

// MockMetricsRepository is a mock implementation of the MetricsRepository interface
// for testing the service layer.
type MockMetricsRepository struct {
	GetCategoryMetricsFunc func(ctx context.Context, from, to time.Time) ([]models.CategoryMetricRow, error)
	GetDailyMetricsFunc    func(ctx context.Context, from, to time.Time, metric1, metric2 models.FactColumn) ([]models.DailyMetricRow, error)
	ListCategoryNamesFunc  func(ctx context.Context) ([]string, error)
	PingFunc               func(ctx context.Context) error
}

// GetCategoryMetrics implements the MetricsRepository interface
func (m *MockMetricsRepository) GetCategoryMetrics(ctx context.Context, from, to time.Time) ([]models.CategoryMetricRow, error) {
	if m.GetCategoryMetricsFunc != nil {
		return m.GetCategoryMetricsFunc(ctx, from, to)
	}
	return nil, errors.New("GetCategoryMetricsFunc not implemented")
}

// GetDailyMetrics implements the MetricsRepository interface
func (m *MockMetricsRepository) GetDailyMetrics(ctx context.Context, from, to time.Time, metric1, metric2 models.FactColumn) ([]models.DailyMetricRow, error) {
	if m.GetDailyMetricsFunc != nil {
		return m.GetDailyMetricsFunc(ctx, from, to, metric1, metric2)
	}
	return nil, errors.New("GetDailyMetricsFunc not implemented")
}

// ListCategoryNames implements the MetricsRepository interface
func (m *MockMetricsRepository) ListCategoryNames(ctx context.Context) ([]string, error) {
	if m.ListCategoryNamesFunc != nil {
		return m.ListCategoryNamesFunc(ctx)
	}
	return nil, errors.New("ListCategoryNamesFunc not implemented")
}

// Ping implements the MetricsRepository interface
func (m *MockMetricsRepository) Ping(ctx context.Context) error {
	if m.PingFunc != nil {
		return m.PingFunc(ctx)
	}
	return nil
}
