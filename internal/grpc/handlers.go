package grpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/godilite/eqrev-analytics/internal/service"
)

const defaultGRPCTimeout = 10 * time.Second

type Handlers struct {
	svc     DashboardService
	logger  *zap.Logger
	timeout time.Duration
}

var _ DashboardServer = (*Handlers)(nil)

// NewHandlers initializes the gRPC handlers. A non-positive timeout uses the
// default per-call deadline.
func NewHandlers(svc DashboardService, logger *zap.Logger, timeout time.Duration) *Handlers {
	if svc == nil {
		panic("nil DashboardService provided to NewHandlers")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = defaultGRPCTimeout
	}
	return &Handlers{
		svc:     svc,
		logger:  logger.Named("grpc-handler"),
		timeout: timeout,
	}
}

func (h *Handlers) GetDashboardMetrics(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	q, err := dashboardQuery(in.GetFields())
	if err != nil {
		return nil, h.handleError(ctx, methodGetDashboardMetrics, err)
	}

	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	res, err := h.svc.GetDashboardMetrics(ctx, q)
	if err != nil {
		return nil, h.handleError(ctx, methodGetDashboardMetrics, err)
	}

	return h.encode(methodGetDashboardMetrics, dashboardReply{
		Limit:  res.Limit,
		Offset: res.Offset,
		Total:  res.Total,
		CurrentRange: dayRange{
			StartDate: res.CurrentRange.Start.Format(service.DateLayout),
			EndDate:   res.CurrentRange.End.Format(service.DateLayout),
		},
		ComparisonRange: dayRange{
			StartDate: res.ComparisonRange.Start.Format(service.DateLayout),
			EndDate:   res.ComparisonRange.End.Format(service.DateLayout),
		},
		Data: res.Data,
	})
}

func (h *Handlers) GetDailyMetrics(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	q, err := seriesQuery(in.GetFields())
	if err != nil {
		return nil, h.handleError(ctx, methodGetDailyMetrics, err)
	}

	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	res, err := h.svc.GetDailySeries(ctx, q)
	if err != nil {
		return nil, h.handleError(ctx, methodGetDailyMetrics, err)
	}

	data := res.Data
	if data == nil {
		data = []service.DailyMetricPoint{}
	}
	return h.encode(methodGetDailyMetrics, seriesReply{
		DateRange: dayRange{
			StartDate: res.Range.Start.Format(service.DateLayout),
			EndDate:   res.Range.End.Format(service.DateLayout),
		},
		Metric1: res.Metric1,
		Metric2: res.Metric2,
		Data:    data,
	})
}

func (h *Handlers) ListCategories(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	names, err := h.svc.ListCategories(ctx)
	if err != nil {
		return nil, h.handleError(ctx, methodListCategories, err)
	}
	if names == nil {
		names = []string{}
	}
	return h.encode(methodListCategories, categoriesReply{Data: names})
}

func (h *Handlers) handleError(ctx context.Context, op string, err error) error {
	var ve *service.ValidationError
	if errors.As(err, &ve) {
		h.logger.Debug("invalid request", zap.String("op", op), zap.Error(err))
		return status.Error(codes.InvalidArgument, ve.Message)
	}

	switch {
	case errors.Is(err, context.Canceled) || errors.Is(ctx.Err(), context.Canceled):
		h.logger.Warn("request canceled", zap.String("op", op))
		return status.Error(codes.Canceled, "request canceled")
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded):
		h.logger.Warn("request timeout", zap.String("op", op))
		return status.Error(codes.DeadlineExceeded, "request timed out")
	case errors.Is(err, service.ErrStorageFailure):
		h.logger.Error("storage failure", zap.String("op", op), zap.Error(err))
		return status.Error(codes.Internal, "database error")
	default:
		h.logger.Error("unexpected error", zap.String("op", op), zap.Error(err))
		return status.Errorf(codes.Internal, "%s failed", op)
	}
}

// encode converts v to a Struct through its JSON form.
func (h *Handlers) encode(op string, v any) (*structpb.Struct, error) {
	b, err := json.Marshal(v)
	if err != nil {
		h.logger.Error("encode response", zap.String("op", op), zap.Error(err))
		return nil, status.Errorf(codes.Internal, "%s failed", op)
	}
	out := &structpb.Struct{}
	if err := protojson.Unmarshal(b, out); err != nil {
		h.logger.Error("encode response", zap.String("op", op), zap.Error(err))
		return nil, status.Errorf(codes.Internal, "%s failed", op)
	}
	return out, nil
}

type dayRange struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

type dashboardReply struct {
	Limit           int                        `json:"limit"`
	Offset          int                        `json:"offset"`
	Total           int                        `json:"total"`
	CurrentRange    dayRange                   `json:"currentRange"`
	ComparisonRange dayRange                   `json:"comparisonRange"`
	Data            []service.ComparisonRecord `json:"data"`
}

type seriesReply struct {
	DateRange dayRange                   `json:"dateRange"`
	Metric1   string                     `json:"metric1"`
	Metric2   string                     `json:"metric2"`
	Data      []service.DailyMetricPoint `json:"data"`
}

type categoriesReply struct {
	Data []string `json:"data"`
}

func dashboardQuery(f map[string]*structpb.Value) (service.DashboardQuery, error) {
	var (
		q   service.DashboardQuery
		err error
	)
	start, err := dateField(f, "start")
	if err != nil {
		return q, err
	}
	end, err := dateField(f, "end")
	if err != nil {
		return q, err
	}
	if start != nil {
		q.Start = *start
	}
	if end != nil {
		q.End = *end
	}
	if q.CustomStart, err = dateField(f, "customStart"); err != nil {
		return q, err
	}
	if q.CustomEnd, err = dateField(f, "customEnd"); err != nil {
		return q, err
	}
	if q.Page.Limit, err = intField(f, "limit"); err != nil {
		return q, err
	}
	if q.Page.Offset, err = intField(f, "offset"); err != nil {
		return q, err
	}
	if q.Page.SortBy, err = stringField(f, "sortBy"); err != nil {
		return q, err
	}
	if q.Page.Order, err = stringField(f, "order"); err != nil {
		return q, err
	}
	return q, nil
}

func seriesQuery(f map[string]*structpb.Value) (service.SeriesQuery, error) {
	var (
		q   service.SeriesQuery
		err error
	)
	if q.Start, err = dateField(f, "start"); err != nil {
		return q, err
	}
	if q.End, err = dateField(f, "end"); err != nil {
		return q, err
	}
	if q.Metric1, err = stringField(f, "metric1"); err != nil {
		return q, err
	}
	if q.Metric2, err = stringField(f, "metric2"); err != nil {
		return q, err
	}
	if v, ok := f["fillGaps"]; ok {
		switch k := v.GetKind().(type) {
		case *structpb.Value_BoolValue:
			q.FillGaps = k.BoolValue
		case *structpb.Value_NullValue:
		default:
			return q, invalidField("fillGaps", "a boolean")
		}
	}
	return q, nil
}

func invalidField(key, want string) error {
	return &service.ValidationError{
		Err:     service.ErrInvalidRequest,
		Message: fmt.Sprintf("Field %q must be %s.", key, want),
	}
}

func stringField(f map[string]*structpb.Value, key string) (string, error) {
	v, ok := f[key]
	if !ok {
		return "", nil
	}
	switch k := v.GetKind().(type) {
	case *structpb.Value_StringValue:
		return k.StringValue, nil
	case *structpb.Value_NullValue:
		return "", nil
	default:
		return "", invalidField(key, "a string")
	}
}

func dateField(f map[string]*structpb.Value, key string) (*time.Time, error) {
	s, err := stringField(f, key)
	if err != nil || strings.TrimSpace(s) == "" {
		return nil, err
	}
	t, err := service.ParseDate(s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// intField accepts a whole number or a numeric string.
func intField(f map[string]*structpb.Value, key string) (int, error) {
	v, ok := f[key]
	if !ok {
		return 0, nil
	}
	switch k := v.GetKind().(type) {
	case *structpb.Value_NumberValue:
		n := k.NumberValue
		if n != math.Trunc(n) || math.Abs(n) > math.MaxInt32 {
			return 0, invalidField(key, "an integer")
		}
		return int(n), nil
	case *structpb.Value_StringValue:
		if k.StringValue == "" {
			return 0, nil
		}
		n, err := strconv.Atoi(k.StringValue)
		if err != nil {
			return 0, invalidField(key, "an integer")
		}
		return n, nil
	case *structpb.Value_NullValue:
		return 0, nil
	default:
		return 0, invalidField(key, "an integer")
	}
}
