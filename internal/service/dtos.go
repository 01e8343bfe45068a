package service

import (
	"math"
	"time"

	"github.com/godilite/eqrev-analytics/internal/repository/models"
)

// DateLayout is the calendar-day wire format.
const DateLayout = "2006-01-02"

const (
	SummaryCategoryName    = "Summary"
	SummarySubcategoryName = "-"
)

// DateRange is an inclusive range of UTC calendar days.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// NewDateRange truncates both ends to their UTC calendar day.
func NewDateRange(start, end time.Time) DateRange {
	return DateRange{Start: TruncateDay(start), End: TruncateDay(end)}
}

// Bounds returns the half-open instant range [Start, End+1 day) so that facts
// recorded late on the end day are included.
func (r DateRange) Bounds() (from, to time.Time) {
	return r.Start, r.End.AddDate(0, 0, 1)
}

// Days returns the inclusive day count of r.
func (r DateRange) Days() int {
	return inclusiveDays(r.Start, r.End)
}

func (r DateRange) String() string {
	return r.Start.Format(DateLayout) + ".." + r.End.Format(DateLayout)
}

// TruncateDay returns midnight UTC of t's UTC calendar day.
func TruncateDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

func inclusiveDays(start, end time.Time) int {
	return int(math.Ceil(end.Sub(start).Hours()/24)) + 1
}

// CategoryAggregate holds one category's totals for a single period.
type CategoryAggregate struct {
	CategoryID      int64   `json:"categoryId"`
	CategoryName    string  `json:"category"`
	SubcategoryName string  `json:"subcategory"`
	TotalRevenue    float64 `json:"totalRevenue"`
	TotalOrders     int64   `json:"totalOrders"`
	AdSpends        float64 `json:"adSpends"`
	AdRevenue       float64 `json:"adRevenue"`
	ROAS            float64 `json:"roas"`
	AOV             float64 `json:"aov"`
}

// NewCategoryAggregate converts a store row, treating NULL or non-finite sums
// as zero, and derives ROAS and AOV from the sums.
func NewCategoryAggregate(row models.CategoryMetricRow) CategoryAggregate {
	agg := CategoryAggregate{
		CategoryID:      row.CategoryID,
		CategoryName:    row.CategoryName,
		SubcategoryName: row.SubcategoryName.String,
		TotalRevenue:    finite(row.TotalRevenue.Float64),
		TotalOrders:     row.TotalOrders.Int64,
		AdSpends:        finite(row.AdSpends.Float64),
		AdRevenue:       finite(row.AdRevenue.Float64),
	}
	agg.ROAS = ratio(agg.AdRevenue, agg.AdSpends)
	agg.AOV = ratio(agg.TotalRevenue, float64(agg.TotalOrders))
	return agg
}

// ratio returns num/den, or 0 when den is not positive.
func ratio(num, den float64) float64 {
	if den <= 0 {
		return 0
	}
	return finite(num / den)
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// ComparisonRecord is a current-period aggregate with its deltas against the
// comparison period.
type ComparisonRecord struct {
	CategoryAggregate
	TotalRevenueDiff float64 `json:"totalRevenueDiff"`
	TotalOrdersDiff  int64   `json:"totalOrdersDiff"`
	AdSpendsDiff     float64 `json:"adSpendsDiff"`
	AdRevenueDiff    float64 `json:"adRevenueDiff"`
	ROASDiff         float64 `json:"roasDiff"`
	AOVDiff          float64 `json:"aovDiff"`
}

// SummaryRecord is the roll-up row over every current-period category.
type SummaryRecord ComparisonRecord

// Record returns s in the shape of a table row.
func (s SummaryRecord) Record() ComparisonRecord {
	return ComparisonRecord(s)
}

type DailyMetricPoint struct {
	Date         string  `json:"date"`
	Metric1Value float64 `json:"metric1Value"`
	Metric2Value float64 `json:"metric2Value"`
}

type PageRequest struct {
	SortBy string
	Order  string
	Limit  int
	Offset int
}

// Page is one slice of sorted records with the summary at Data[0].
type Page struct {
	Limit  int
	Offset int
	Total  int
	Data   []ComparisonRecord
}

type DashboardQuery struct {
	Start       time.Time
	End         time.Time
	CustomStart *time.Time
	CustomEnd   *time.Time
	Page        PageRequest
}

type DashboardResult struct {
	Limit           int
	Offset          int
	Total           int
	CurrentRange    DateRange
	ComparisonRange DateRange
	Data            []ComparisonRecord
}

// SeriesQuery selects two metrics for a daily chart. Nil dates and empty
// metric names take the service defaults.
type SeriesQuery struct {
	Start    *time.Time
	End      *time.Time
	Metric1  string
	Metric2  string
	FillGaps bool
}

type SeriesResult struct {
	Range   DateRange
	Metric1 string
	Metric2 string
	Data    []DailyMetricPoint
}
