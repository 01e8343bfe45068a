package service

import "github.com/shopspring/decimal"

// totals accumulates money in decimal so long category lists do not drift.
type totals struct {
	revenue, adSpends, adRevenue             decimal.Decimal
	revenueDiff, adSpendsDiff, adRevenueDiff decimal.Decimal
	roasDiff, aovDiff                        decimal.Decimal
	orders, ordersDiff                       int64
}

func (t *totals) addAggregate(a CategoryAggregate) {
	t.revenue = t.revenue.Add(decimal.NewFromFloat(finite(a.TotalRevenue)))
	t.adSpends = t.adSpends.Add(decimal.NewFromFloat(finite(a.AdSpends)))
	t.adRevenue = t.adRevenue.Add(decimal.NewFromFloat(finite(a.AdRevenue)))
	t.orders += a.TotalOrders
}

func (t *totals) addDiffs(r ComparisonRecord) {
	t.revenueDiff = t.revenueDiff.Add(decimal.NewFromFloat(finite(r.TotalRevenueDiff)))
	t.adSpendsDiff = t.adSpendsDiff.Add(decimal.NewFromFloat(finite(r.AdSpendsDiff)))
	t.adRevenueDiff = t.adRevenueDiff.Add(decimal.NewFromFloat(finite(r.AdRevenueDiff)))
	t.roasDiff = t.roasDiff.Add(decimal.NewFromFloat(finite(r.ROASDiff)))
	t.aovDiff = t.aovDiff.Add(decimal.NewFromFloat(finite(r.AOVDiff)))
	t.ordersDiff += r.TotalOrdersDiff
}

func (t *totals) summary() SummaryRecord {
	revenue := t.revenue.InexactFloat64()
	adSpends := t.adSpends.InexactFloat64()
	adRevenue := t.adRevenue.InexactFloat64()

	return SummaryRecord{
		CategoryAggregate: CategoryAggregate{
			CategoryID:      0,
			CategoryName:    SummaryCategoryName,
			SubcategoryName: SummarySubcategoryName,
			TotalRevenue:    revenue,
			TotalOrders:     t.orders,
			AdSpends:        adSpends,
			AdRevenue:       adRevenue,
			ROAS:            ratio(adRevenue, adSpends),
			AOV:             ratio(revenue, float64(t.orders)),
		},
		TotalRevenueDiff: t.revenueDiff.InexactFloat64(),
		TotalOrdersDiff:  t.ordersDiff,
		AdSpendsDiff:     t.adSpendsDiff.InexactFloat64(),
		AdRevenueDiff:    t.adRevenueDiff.InexactFloat64(),
		ROASDiff:         t.roasDiff.InexactFloat64(),
		AOVDiff:          t.aovDiff.InexactFloat64(),
	}
}

// Summarize rolls every aggregate into one row. ROAS and AOV are recomputed
// from the summed totals; diff fields are zero.
func Summarize(current []CategoryAggregate) SummaryRecord {
	var t totals
	for _, a := range current {
		t.addAggregate(a)
	}
	return t.summary()
}

// SummarizeComparison is Summarize over the records' aggregates, with each
// diff field set to the sum of the per-category diffs. It must be given the
// full record set, not a page.
func SummarizeComparison(records []ComparisonRecord) SummaryRecord {
	var t totals
	for _, r := range records {
		t.addAggregate(r.CategoryAggregate)
		t.addDiffs(r)
	}
	return t.summary()
}
