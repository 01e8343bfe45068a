package service

import (
	"context"
	"time"

	"github.com/godilite/eqrev-analytics/internal/repository/models"
)

// MetricsRepository defines the store reads the dashboard needs. Ranges are
// half-open [from, to).
type MetricsRepository interface {
	GetCategoryMetrics(ctx context.Context, from, to time.Time) ([]models.CategoryMetricRow, error)
	GetDailyMetrics(ctx context.Context, from, to time.Time, metric1, metric2 models.FactColumn) ([]models.DailyMetricRow, error)
	ListCategoryNames(ctx context.Context) ([]string, error)
	Ping(ctx context.Context) error
}
