package grpc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/godilite/eqrev-analytics/internal/grpc/mocks"
	"github.com/godilite/eqrev-analytics/internal/service"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func mustStruct(t *testing.T, m map[string]any) *structpb.Struct {
	t.Helper()
	s, err := structpb.NewStruct(m)
	require.NoError(t, err)
	return s
}

func TestNewHandlers(t *testing.T) {
	t.Run("valid parameters", func(t *testing.T) {
		svc := &mocks.MockDashboardService{}
		h := NewHandlers(svc, zap.NewNop(), 3*time.Second)

		assert.Equal(t, svc, h.svc)
		assert.Equal(t, 3*time.Second, h.timeout)
		assert.NotNil(t, h.logger)
	})

	t.Run("nil service panics", func(t *testing.T) {
		assert.Panics(t, func() {
			NewHandlers(nil, zap.NewNop(), time.Second)
		})
	})

	t.Run("zero timeout uses default", func(t *testing.T) {
		h := NewHandlers(&mocks.MockDashboardService{}, nil, 0)
		assert.Equal(t, defaultGRPCTimeout, h.timeout)
	})
}

func TestGetDashboardMetrics(t *testing.T) {
	t.Run("maps request and response", func(t *testing.T) {
		var got service.DashboardQuery
		svc := &mocks.MockDashboardService{
			GetDashboardMetricsFunc: func(ctx context.Context, q service.DashboardQuery) (*service.DashboardResult, error) {
				got = q
				_, hasDeadline := ctx.Deadline()
				assert.True(t, hasDeadline)
				return &service.DashboardResult{
					Limit:           2,
					Offset:          1,
					Total:           7,
					CurrentRange:    service.NewDateRange(day(2025, 9, 1), day(2025, 9, 7)),
					ComparisonRange: service.NewDateRange(day(2025, 8, 25), day(2025, 8, 31)),
					Data: []service.ComparisonRecord{
						{CategoryAggregate: service.CategoryAggregate{CategoryName: "Summary", TotalRevenue: 300}, TotalRevenueDiff: 50},
						{CategoryAggregate: service.CategoryAggregate{CategoryID: 4, CategoryName: "Snacks", TotalRevenue: 120}},
					},
				}, nil
			},
		}
		h := NewHandlers(svc, zap.NewNop(), time.Second)

		out, err := h.GetDashboardMetrics(context.Background(), mustStruct(t, map[string]any{
			"start":  "2025-09-01",
			"end":    "2025-09-07T15:04:05Z",
			"limit":  2,
			"offset": "1",
			"sortBy": "roasDiff",
			"order":  "asc",
		}))
		require.NoError(t, err)

		assert.Equal(t, day(2025, 9, 1), got.Start)
		assert.Equal(t, day(2025, 9, 7), got.End)
		assert.Nil(t, got.CustomStart)
		assert.Equal(t, service.PageRequest{SortBy: "roasDiff", Order: "asc", Limit: 2, Offset: 1}, got.Page)

		m := out.AsMap()
		assert.Equal(t, float64(7), m["total"])
		assert.Equal(t, map[string]any{"startDate": "2025-08-25", "endDate": "2025-08-31"}, m["comparisonRange"])
		data := m["data"].([]any)
		require.Len(t, data, 2)
		assert.Equal(t, "Summary", data[0].(map[string]any)["category"])
		assert.Equal(t, float64(50), data[0].(map[string]any)["totalRevenueDiff"])
	})

	t.Run("custom comparison dates", func(t *testing.T) {
		var got service.DashboardQuery
		svc := &mocks.MockDashboardService{
			GetDashboardMetricsFunc: func(ctx context.Context, q service.DashboardQuery) (*service.DashboardResult, error) {
				got = q
				return &service.DashboardResult{}, nil
			},
		}
		h := NewHandlers(svc, zap.NewNop(), time.Second)

		_, err := h.GetDashboardMetrics(context.Background(), mustStruct(t, map[string]any{
			"start":       "2025-09-01",
			"end":         "2025-09-07",
			"customStart": "2024-09-01",
			"customEnd":   "2024-09-07",
		}))
		require.NoError(t, err)
		require.NotNil(t, got.CustomStart)
		require.NotNil(t, got.CustomEnd)
		assert.Equal(t, day(2024, 9, 1), *got.CustomStart)
		assert.Equal(t, day(2024, 9, 7), *got.CustomEnd)
	})

	tests := []struct {
		name string
		in   map[string]any
	}{
		{"bad date", map[string]any{"start": "yesterday"}},
		{"date not a string", map[string]any{"start": 20250901}},
		{"fractional limit", map[string]any{"limit": 2.5}},
		{"non numeric offset", map[string]any{"offset": "two"}},
		{"sortBy not a string", map[string]any{"sortBy": true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mocks.MockDashboardService{
				GetDashboardMetricsFunc: func(ctx context.Context, q service.DashboardQuery) (*service.DashboardResult, error) {
					t.Fatal("service must not be called")
					return nil, nil
				},
			}
			h := NewHandlers(svc, zap.NewNop(), time.Second)

			_, err := h.GetDashboardMetrics(context.Background(), mustStruct(t, tt.in))
			assert.Equal(t, codes.InvalidArgument, status.Code(err))
		})
	}
}

func TestGetDailyMetrics(t *testing.T) {
	var got service.SeriesQuery
	svc := &mocks.MockDashboardService{
		GetDailySeriesFunc: func(ctx context.Context, q service.SeriesQuery) (*service.SeriesResult, error) {
			got = q
			return &service.SeriesResult{
				Range:   service.NewDateRange(day(2025, 9, 1), day(2025, 9, 2)),
				Metric1: "impressions",
				Metric2: "orders",
			}, nil
		},
	}
	h := NewHandlers(svc, zap.NewNop(), time.Second)

	out, err := h.GetDailyMetrics(context.Background(), mustStruct(t, map[string]any{
		"end":      "2025-09-02",
		"metric1":  "impressions",
		"metric2":  "orders",
		"fillGaps": true,
	}))
	require.NoError(t, err)

	assert.Nil(t, got.Start)
	require.NotNil(t, got.End)
	assert.Equal(t, day(2025, 9, 2), *got.End)
	assert.True(t, got.FillGaps)

	m := out.AsMap()
	assert.Equal(t, []any{}, m["data"])
	assert.Equal(t, "impressions", m["metric1"])
	assert.Equal(t, map[string]any{"startDate": "2025-09-01", "endDate": "2025-09-02"}, m["dateRange"])

	t.Run("fillGaps must be boolean", func(t *testing.T) {
		_, err := h.GetDailyMetrics(context.Background(), mustStruct(t, map[string]any{"fillGaps": "yes"}))
		assert.Equal(t, codes.InvalidArgument, status.Code(err))
	})
}

func TestListCategories(t *testing.T) {
	svc := &mocks.MockDashboardService{
		ListCategoriesFunc: func(ctx context.Context) ([]string, error) {
			return nil, nil
		},
	}
	h := NewHandlers(svc, zap.NewNop(), time.Second)

	out, err := h.ListCategories(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, []any{}, out.AsMap()["data"])
}

func TestHandleError(t *testing.T) {
	h := NewHandlers(&mocks.MockDashboardService{}, zap.NewNop(), time.Second)

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()

	tests := []struct {
		name    string
		ctx     context.Context
		err     error
		code    codes.Code
		message string
	}{
		{
			name:    "validation",
			ctx:     context.Background(),
			err:     &service.ValidationError{Err: service.ErrRangeMismatch, Message: "Comparison range must cover 7 days."},
			code:    codes.InvalidArgument,
			message: "Comparison range must cover 7 days.",
		},
		{
			name: "cancelled context",
			ctx:  cancelled,
			err:  errors.New("driver: bad connection"),
			code: codes.Canceled,
		},
		{
			name: "deadline in wrapped error",
			ctx:  context.Background(),
			err:  fmt.Errorf("%w: %w", service.ErrStorageFailure, context.DeadlineExceeded),
			code: codes.DeadlineExceeded,
		},
		{
			name:    "storage failure",
			ctx:     context.Background(),
			err:     fmt.Errorf("%w: connection refused", service.ErrStorageFailure),
			code:    codes.Internal,
			message: "database error",
		},
		{
			name:    "unexpected",
			ctx:     context.Background(),
			err:     errors.New("boom"),
			code:    codes.Internal,
			message: "op failed",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := h.handleError(tt.ctx, "op", tt.err)
			st, ok := status.FromError(err)
			require.True(t, ok)
			assert.Equal(t, tt.code, st.Code())
			if tt.message != "" {
				assert.Equal(t, tt.message, st.Message())
			}
		})
	}
}

func TestDashboardServiceOverConnection(t *testing.T) {
	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer()
	svc := &mocks.MockDashboardService{
		ListCategoriesFunc: func(ctx context.Context) ([]string, error) {
			return []string{"Beverages", "Snacks"}, nil
		},
		GetDashboardMetricsFunc: func(ctx context.Context, q service.DashboardQuery) (*service.DashboardResult, error) {
			return nil, &service.ValidationError{Err: service.ErrInvalidRequest, Message: "Start and end dates are required."}
		},
	}
	RegisterDashboardServer(srv, NewHandlers(svc, zap.NewNop(), time.Second))
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	client := NewDashboardClient(conn)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	out, err := client.ListCategories(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, []any{"Beverages", "Snacks"}, out.AsMap()["data"])

	_, err = client.GetDashboardMetrics(ctx, &structpb.Struct{})
	st, ok := status.FromError(err)
	require.True(t, ok)
	assert.Equal(t, codes.InvalidArgument, st.Code())
	assert.Equal(t, "Start and end dates are required.", st.Message())
}
