package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/godilite/eqrev-analytics/internal/service"
)

const maxBodyBytes = 1 << 20

// DashboardService is the subset of the service the HTTP API calls.
type DashboardService interface {
	GetDashboardMetrics(ctx context.Context, q service.DashboardQuery) (*service.DashboardResult, error)
	GetDailySeries(ctx context.Context, q service.SeriesQuery) (*service.SeriesResult, error)
	ListCategories(ctx context.Context) ([]string, error)
	Ping(ctx context.Context) error
}

type Handler struct {
	svc    DashboardService
	logger *zap.Logger
}

func NewHandler(svc DashboardService, logger *zap.Logger) *Handler {
	if svc == nil {
		panic("service must not be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{svc: svc, logger: logger.Named("http")}
}

func (h *Handler) dashboard(w http.ResponseWriter, r *http.Request) {
	var (
		req dashboardRequest
		err error
	)
	if r.Method == http.MethodGet {
		req, err = dashboardRequestFromQuery(r.URL.Query())
	} else {
		err = decodeBody(r, &req)
	}
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	res, err := h.svc.GetDashboardMetrics(r.Context(), req.query())
	if err != nil {
		h.handleError(w, r, err, "Something went wrong while fetching metrics.")
		return
	}
	writeJSON(w, http.StatusOK, newDashboardResponse(res))
}

func (h *Handler) lineChart(w http.ResponseWriter, r *http.Request) {
	var req seriesRequest
	if err := decodeBody(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	res, err := h.svc.GetDailySeries(r.Context(), req.query())
	if err != nil {
		h.handleError(w, r, err, "Something went wrong while fetching line chart metrics.")
		return
	}
	writeJSON(w, http.StatusOK, newSeriesResponse(res))
}

func (h *Handler) categories(w http.ResponseWriter, r *http.Request) {
	names, err := h.svc.ListCategories(r.Context())
	if err != nil {
		h.handleError(w, r, err, "Failed to fetch categories")
		return
	}
	writeJSON(w, http.StatusOK, categoriesResponse{Success: true, Data: names})
}

func (h *Handler) healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *Handler) readyz(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Ping(r.Context()); err != nil {
		h.logger.Warn("readiness check failed", zap.Error(err))
		http.Error(w, "not ready", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// decodeBody decodes a JSON body into dst. An empty body leaves dst unchanged.
func decodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func (h *Handler) badRequest(w http.ResponseWriter, r *http.Request, err error) {
	msg := "Invalid request body."
	var ve *service.ValidationError
	if errors.As(err, &ve) {
		msg = ve.Message
	}
	h.logger.Debug("rejected request body",
		zap.String("path", r.URL.Path),
		zap.String("request_id", RequestIDFromContext(r.Context())),
		zap.Error(err))
	writeJSON(w, http.StatusBadRequest, errorResponse{Message: msg})
}

// handleError maps service errors to status codes. Only validation messages
// reach the client; everything else is logged and replaced by fallback.
func (h *Handler) handleError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	var ve *service.ValidationError
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: ve.Message})
	case errors.Is(err, context.Canceled):
		h.logger.Info("request cancelled", zap.String("path", r.URL.Path))
		writeJSON(w, 499, errorResponse{Message: "Request cancelled."})
	case errors.Is(err, context.DeadlineExceeded):
		h.logger.Error("request timed out",
			zap.String("path", r.URL.Path),
			zap.String("request_id", RequestIDFromContext(r.Context())),
			zap.Error(err))
		writeJSON(w, http.StatusGatewayTimeout, errorResponse{Message: fallback})
	default:
		h.logger.Error("request failed",
			zap.String("path", r.URL.Path),
			zap.String("request_id", RequestIDFromContext(r.Context())),
			zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Message: fallback})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
