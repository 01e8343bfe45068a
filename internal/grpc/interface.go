package grpc

import (
	"context"

	"github.com/godilite/eqrev-analytics/internal/service"
)

// DashboardService is the subset of the service exposed over gRPC.
type DashboardService interface {
	GetDashboardMetrics(ctx context.Context, q service.DashboardQuery) (*service.DashboardResult, error)
	GetDailySeries(ctx context.Context, q service.SeriesQuery) (*service.SeriesResult, error)
	ListCategories(ctx context.Context) ([]string, error)
}
