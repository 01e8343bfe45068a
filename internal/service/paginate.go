package service

import "sort"

const (
	DefaultSortKey = "totalRevenue"
	DefaultLimit   = 5
	MaxLimit       = 1000
)

var sortKeys = map[string]func(ComparisonRecord) float64{
	"totalRevenue":     func(r ComparisonRecord) float64 { return r.TotalRevenue },
	"totalOrders":      func(r ComparisonRecord) float64 { return float64(r.TotalOrders) },
	"adSpends":         func(r ComparisonRecord) float64 { return r.AdSpends },
	"adRevenue":        func(r ComparisonRecord) float64 { return r.AdRevenue },
	"roas":             func(r ComparisonRecord) float64 { return r.ROAS },
	"aov":              func(r ComparisonRecord) float64 { return r.AOV },
	"totalRevenueDiff": func(r ComparisonRecord) float64 { return r.TotalRevenueDiff },
	"totalOrdersDiff":  func(r ComparisonRecord) float64 { return float64(r.TotalOrdersDiff) },
	"adSpendsDiff":     func(r ComparisonRecord) float64 { return r.AdSpendsDiff },
	"adRevenueDiff":    func(r ComparisonRecord) float64 { return r.AdRevenueDiff },
	"roasDiff":         func(r ComparisonRecord) float64 { return r.ROASDiff },
	"aovDiff":          func(r ComparisonRecord) float64 { return r.AOVDiff },
}

// IsSortKey reports whether key orders the table.
func IsSortKey(key string) bool {
	_, ok := sortKeys[key]
	return ok
}

// normalize fills defaults and clamps the paging window.
func (p PageRequest) normalize() PageRequest {
	if p.SortBy == "" {
		p.SortBy = DefaultSortKey
	}
	if p.Order != "asc" {
		p.Order = "desc"
	}
	if p.Limit <= 0 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}

// SortAndPage orders a copy of records by p.SortBy, slices the requested page
// and prepends summary. An unknown sort key keeps the incoming order. Ties
// fall back to category id ascending so page boundaries are reproducible.
func SortAndPage(records []ComparisonRecord, summary SummaryRecord, p PageRequest) Page {
	p = p.normalize()

	sorted := make([]ComparisonRecord, len(records))
	copy(sorted, records)

	if value, ok := sortKeys[p.SortBy]; ok {
		asc := p.Order == "asc"
		sort.SliceStable(sorted, func(i, j int) bool {
			vi, vj := value(sorted[i]), value(sorted[j])
			if vi != vj {
				if asc {
					return vi < vj
				}
				return vi > vj
			}
			return sorted[i].CategoryID < sorted[j].CategoryID
		})
	}

	var window []ComparisonRecord
	if p.Offset < len(sorted) {
		end := min(p.Offset+p.Limit, len(sorted))
		window = sorted[p.Offset:end]
	}

	data := make([]ComparisonRecord, 0, len(window)+1)
	data = append(data, summary.Record())
	data = append(data, window...)

	return Page{
		Limit:  p.Limit,
		Offset: p.Offset,
		Total:  len(records),
		Data:   data,
	}
}
