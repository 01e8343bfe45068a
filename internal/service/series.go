package service

import (
	"sort"
	"strings"

	"github.com/godilite/eqrev-analytics/internal/repository/models"
)

const (
	DefaultMetric1 = "totalRevenue"
	DefaultMetric2 = "totalOrders"

	// DefaultSeriesWindowDays is how far back the chart reaches from its end
	// day when the caller gives no start date.
	DefaultSeriesWindowDays = 15
)

// metricColumns maps chart metric names to fact columns. Only names listed
// here reach the query builder.
var metricColumns = map[string]models.FactColumn{
	"totalRevenue":      models.FactTotalFinalRevenue,
	"mrpRevenue":        models.FactTotalMRPRevenue,
	"totalOrders":       models.FactTotalOrders,
	"adSpends":          models.FactAdSpend,
	"adRevenue":         models.FactAdRevenue,
	"adImpressions":     models.FactAdImpressions,
	"adAddToCarts":      models.FactAdAddToCarts,
	"adOrders":          models.FactAdOrders,
	"adOrdersOtherSku":  models.FactAdOrdersOtherSKU,
	"adOrdersSameSku":   models.FactAdOrdersSameSKU,
	"stockAtDarkstores": models.FactStockDarkstores,
	"stockAtWarehouses": models.FactStockWarehouses,
}

// ValidMetricNames returns the accepted chart metric names, sorted.
func ValidMetricNames() []string {
	names := make([]string, 0, len(metricColumns))
	for name := range metricColumns {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ResolveMetric maps a chart metric name to its fact column.
func ResolveMetric(name string) (models.FactColumn, error) {
	col, ok := metricColumns[name]
	if !ok {
		return "", newValidationError(ErrInvalidMetric,
			"Invalid metric %q. Valid metrics are: %s.", name, strings.Join(ValidMetricNames(), ", "))
	}
	return col, nil
}

// buildSeries converts store rows to chart points. With fillGaps every day of
// r is emitted and days without facts are zero; otherwise only days with
// facts appear.
func buildSeries(rows []models.DailyMetricRow, r DateRange, fillGaps bool) []DailyMetricPoint {
	if !fillGaps {
		out := make([]DailyMetricPoint, 0, len(rows))
		for _, row := range rows {
			out = append(out, toPoint(row))
		}
		return out
	}

	byDay := make(map[string]DailyMetricPoint, len(rows))
	for _, row := range rows {
		byDay[row.Day] = toPoint(row)
	}

	out := make([]DailyMetricPoint, 0, max(r.Days(), 0))
	for d := r.Start; !d.After(r.End); d = d.AddDate(0, 0, 1) {
		key := d.Format(DateLayout)
		if p, ok := byDay[key]; ok {
			out = append(out, p)
			continue
		}
		out = append(out, DailyMetricPoint{Date: key})
	}
	return out
}

func toPoint(row models.DailyMetricRow) DailyMetricPoint {
	return DailyMetricPoint{
		Date:         row.Day,
		Metric1Value: finite(row.Metric1Value.Float64),
		Metric2Value: finite(row.Metric2Value.Float64),
	}
}
