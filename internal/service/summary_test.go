package service_test

import (
	"database/sql"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/godilite/eqrev-analytics/internal/repository/models"
	"github.com/godilite/eqrev-analytics/internal/service"
)

func TestNewCategoryAggregate(t *testing.T) {
	t.Run("derives ratios from sums", func(t *testing.T) {
		a := service.NewCategoryAggregate(models.CategoryMetricRow{
			CategoryID:      4,
			CategoryName:    "Snacks",
			SubcategoryName: sql.NullString{String: "Chips", Valid: true},
			TotalRevenue:    sql.NullFloat64{Float64: 90, Valid: true},
			TotalOrders:     sql.NullInt64{Int64: 3, Valid: true},
			AdSpends:        sql.NullFloat64{Float64: 10, Valid: true},
			AdRevenue:       sql.NullFloat64{Float64: 25, Valid: true},
		})

		assert.Equal(t, int64(4), a.CategoryID)
		assert.Equal(t, "Snacks", a.CategoryName)
		assert.Equal(t, "Chips", a.SubcategoryName)
		assert.Equal(t, 2.5, a.ROAS)
		assert.Equal(t, 30.0, a.AOV)
	})

	t.Run("null sums become zero", func(t *testing.T) {
		a := service.NewCategoryAggregate(models.CategoryMetricRow{CategoryID: 9, CategoryName: "Dairy"})

		assert.Zero(t, a.TotalRevenue)
		assert.Zero(t, a.TotalOrders)
		assert.Zero(t, a.ROAS)
		assert.Zero(t, a.AOV)
		assert.Empty(t, a.SubcategoryName)
	})

	t.Run("ratios never NaN or Inf", func(t *testing.T) {
		rows := []models.CategoryMetricRow{
			{AdRevenue: sql.NullFloat64{Float64: 50, Valid: true}},
			{TotalRevenue: sql.NullFloat64{Float64: 50, Valid: true}},
			{AdSpends: sql.NullFloat64{Float64: 0, Valid: true}},
			{TotalRevenue: sql.NullFloat64{Float64: math.NaN(), Valid: true}, TotalOrders: sql.NullInt64{Int64: 2, Valid: true}},
			{AdSpends: sql.NullFloat64{Float64: math.Inf(1), Valid: true}, AdRevenue: sql.NullFloat64{Float64: 5, Valid: true}},
		}
		for _, row := range rows {
			a := service.NewCategoryAggregate(row)
			for _, v := range []float64{a.TotalRevenue, a.AdSpends, a.AdRevenue, a.ROAS, a.AOV} {
				assert.False(t, math.IsNaN(v) || math.IsInf(v, 0), "row %+v", row)
			}
			if a.AdSpends == 0 {
				assert.Zero(t, a.ROAS)
			}
			if a.TotalOrders == 0 {
				assert.Zero(t, a.AOV)
			}
		}
	})
}

func TestSummarize(t *testing.T) {
	t.Run("totals and recomputed ratios", func(t *testing.T) {
		s := service.Summarize([]service.CategoryAggregate{
			agg(1, 100, 10, 20, 40),
			agg(2, 50, 5, 0, 0),
		})

		assert.Equal(t, int64(0), s.CategoryID)
		assert.Equal(t, "Summary", s.CategoryName)
		assert.Equal(t, "-", s.SubcategoryName)
		assert.Equal(t, 150.0, s.TotalRevenue)
		assert.Equal(t, int64(15), s.TotalOrders)
		assert.Equal(t, 20.0, s.AdSpends)
		assert.Equal(t, 40.0, s.AdRevenue)
		assert.Equal(t, 2.0, s.ROAS)
		assert.Equal(t, 10.0, s.AOV)
		assert.Zero(t, s.TotalRevenueDiff)
		assert.Zero(t, s.ROASDiff)
	})

	t.Run("ratios are not averaged", func(t *testing.T) {
		// Per-category ROAS is 10 and 1; pooled it is 20/11, not 5.5.
		s := service.Summarize([]service.CategoryAggregate{
			agg(1, 0, 0, 1, 10),
			agg(2, 0, 0, 10, 10),
		})
		assert.InDelta(t, 20.0/11.0, s.ROAS, 1e-12)
	})

	t.Run("empty set is all zero", func(t *testing.T) {
		s := service.Summarize(nil)
		assert.Equal(t, "Summary", s.CategoryName)
		assert.Zero(t, s.TotalRevenue)
		assert.Zero(t, s.ROAS)
		assert.Zero(t, s.AOV)
	})

	t.Run("decimal summation does not drift", func(t *testing.T) {
		aggs := make([]service.CategoryAggregate, 10)
		for i := range aggs {
			aggs[i] = agg(int64(i+1), 0.1, 0, 0, 0)
		}
		assert.Equal(t, 1.0, service.Summarize(aggs).TotalRevenue)
	})
}

func TestSummarizeComparison(t *testing.T) {
	records := service.Compare(
		[]service.CategoryAggregate{agg(1, 100, 10, 20, 40), agg(2, 50, 5, 0, 0)},
		[]service.CategoryAggregate{agg(1, 80, 8, 10, 10), agg(2, 60, 6, 0, 0)},
	)

	s := service.SummarizeComparison(records)

	assert.Equal(t, 150.0, s.TotalRevenue)
	assert.Equal(t, int64(15), s.TotalOrders)
	assert.Equal(t, 2.0, s.ROAS)
	assert.Equal(t, 10.0, s.AOV)
	assert.InDelta(t, 20.0+(-10.0), s.TotalRevenueDiff, 1e-9)
	assert.Equal(t, int64(2+(-1)), s.TotalOrdersDiff)
	assert.InDelta(t, 10.0, s.AdSpendsDiff, 1e-9)
	assert.InDelta(t, 30.0, s.AdRevenueDiff, 1e-9)
	assert.InDelta(t, records[0].ROASDiff+records[1].ROASDiff, s.ROASDiff, 1e-9)
	assert.InDelta(t, records[0].AOVDiff+records[1].AOVDiff, s.AOVDiff, 1e-9)

	record := s.Record()
	assert.Equal(t, "Summary", record.CategoryName)
	assert.Equal(t, s.TotalRevenueDiff, record.TotalRevenueDiff)
}
