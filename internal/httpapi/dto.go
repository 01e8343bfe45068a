package httpapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/godilite/eqrev-analytics/internal/service"
)

// Date is a calendar day decoded from "YYYY-MM-DD", an RFC 3339 timestamp,
// an empty string or null. Empty and null leave the pointer nil.
type Date struct {
	time.Time
}

func (d *Date) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	return d.parse(s)
}

func (d *Date) parse(s string) error {
	if strings.TrimSpace(s) == "" {
		d.Time = time.Time{}
		return nil
	}
	t, err := service.ParseDate(s)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

// ptr returns nil for an absent or empty date.
func (d *Date) ptr() *time.Time {
	if d == nil || d.IsZero() {
		return nil
	}
	t := d.Time
	return &t
}

// Int accepts a JSON number or a numeric string.
type Int int

func (n *Int) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	s := strings.Trim(string(b), `"`)
	if s == "" {
		return nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("invalid integer %s", b)
	}
	*n = Int(v)
	return nil
}

type dashboardRequest struct {
	Start       *Date  `json:"start"`
	End         *Date  `json:"end"`
	CustomStart *Date  `json:"customStart"`
	CustomEnd   *Date  `json:"customEnd"`
	Limit       Int    `json:"limit"`
	Offset      Int    `json:"offset"`
	SortBy      string `json:"sortBy"`
	Order       string `json:"order"`
}

func (r dashboardRequest) query() service.DashboardQuery {
	q := service.DashboardQuery{
		CustomStart: r.CustomStart.ptr(),
		CustomEnd:   r.CustomEnd.ptr(),
		Page: service.PageRequest{
			SortBy: r.SortBy,
			Order:  r.Order,
			Limit:  int(r.Limit),
			Offset: int(r.Offset),
		},
	}
	if t := r.Start.ptr(); t != nil {
		q.Start = *t
	}
	if t := r.End.ptr(); t != nil {
		q.End = *t
	}
	return q
}

type seriesRequest struct {
	Start    *Date  `json:"start"`
	End      *Date  `json:"end"`
	Metric1  string `json:"metric1"`
	Metric2  string `json:"metric2"`
	FillGaps bool   `json:"fillGaps"`
}

func (r seriesRequest) query() service.SeriesQuery {
	return service.SeriesQuery{
		Start:    r.Start.ptr(),
		End:      r.End.ptr(),
		Metric1:  r.Metric1,
		Metric2:  r.Metric2,
		FillGaps: r.FillGaps,
	}
}

// dashboardRequestFromQuery reads the same fields as the JSON body from a
// query string.
func dashboardRequestFromQuery(v url.Values) (dashboardRequest, error) {
	var req dashboardRequest
	dates := map[string]**Date{
		"start":       &req.Start,
		"end":         &req.End,
		"customStart": &req.CustomStart,
		"customEnd":   &req.CustomEnd,
	}
	for key, dst := range dates {
		if s := v.Get(key); s != "" {
			d := &Date{}
			if err := d.parse(s); err != nil {
				return req, err
			}
			*dst = d
		}
	}
	for key, dst := range map[string]*Int{"limit": &req.Limit, "offset": &req.Offset} {
		if s := v.Get(key); s != "" {
			if err := dst.UnmarshalJSON([]byte(s)); err != nil {
				return req, err
			}
		}
	}
	req.SortBy = v.Get("sortBy")
	req.Order = v.Get("order")
	return req, nil
}

type dayRange struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

type comparisonDayRange struct {
	CompareStartDate string `json:"compareStartDate"`
	CompareEndDate   string `json:"compareEndDate"`
}

type dashboardResponse struct {
	Success         bool                       `json:"success"`
	Message         string                     `json:"message"`
	Limit           int                        `json:"limit"`
	Offset          int                        `json:"offset"`
	Total           int                        `json:"total"`
	CurrentRange    dayRange                   `json:"currentRange"`
	ComparisonRange comparisonDayRange         `json:"comparisonRange"`
	Data            []service.ComparisonRecord `json:"data"`
}

func newDashboardResponse(res *service.DashboardResult) dashboardResponse {
	return dashboardResponse{
		Success: true,
		Message: "Dashboard metrics fetched successfully",
		Limit:   res.Limit,
		Offset:  res.Offset,
		Total:   res.Total,
		CurrentRange: dayRange{
			StartDate: res.CurrentRange.Start.Format(service.DateLayout),
			EndDate:   res.CurrentRange.End.Format(service.DateLayout),
		},
		ComparisonRange: comparisonDayRange{
			CompareStartDate: res.ComparisonRange.Start.Format(service.DateLayout),
			CompareEndDate:   res.ComparisonRange.End.Format(service.DateLayout),
		},
		Data: res.Data,
	}
}

type metricNames struct {
	Metric1 string `json:"metric1"`
	Metric2 string `json:"metric2"`
}

type seriesResponse struct {
	Success   bool                       `json:"success"`
	Message   string                     `json:"message"`
	DateRange dayRange                   `json:"dateRange"`
	Metrics   metricNames                `json:"metrics"`
	Data      []service.DailyMetricPoint `json:"data"`
}

func newSeriesResponse(res *service.SeriesResult) seriesResponse {
	data := res.Data
	if data == nil {
		data = []service.DailyMetricPoint{}
	}
	return seriesResponse{
		Success: true,
		Message: "Daily metrics fetched successfully",
		DateRange: dayRange{
			StartDate: res.Range.Start.Format(service.DateLayout),
			EndDate:   res.Range.End.Format(service.DateLayout),
		},
		Metrics: metricNames{Metric1: res.Metric1, Metric2: res.Metric2},
		Data:    data,
	}
}

type categoriesResponse struct {
	Success bool     `json:"success"`
	Data    []string `json:"data"`
}

type errorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
