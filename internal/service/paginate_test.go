package service_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/godilite/eqrev-analytics/internal/service"
)

func records(aggs ...service.CategoryAggregate) []service.ComparisonRecord {
	return service.Compare(aggs, nil)
}

func ids(rs []service.ComparisonRecord) []int64 {
	out := make([]int64, len(rs))
	for i, r := range rs {
		out[i] = r.CategoryID
	}
	return out
}

func TestSortAndPage(t *testing.T) {
	// Upstream order is revenue descending.
	upstream := records(
		agg(4, 900, 9, 100, 50),
		agg(2, 500, 50, 10, 80),
		agg(7, 500, 20, 0, 0),
		agg(1, 300, 3, 30, 300),
		agg(5, 100, 1, 5, 5),
		agg(3, 50, 0, 0, 0),
	)
	summary := service.SummarizeComparison(upstream)

	t.Run("defaults", func(t *testing.T) {
		page := service.SortAndPage(upstream, summary, service.PageRequest{})

		assert.Equal(t, service.DefaultLimit, page.Limit)
		assert.Equal(t, 0, page.Offset)
		assert.Equal(t, 6, page.Total)
		require.Len(t, page.Data, 6)
		assert.Equal(t, "Summary", page.Data[0].CategoryName)
		assert.Equal(t, []int64{4, 2, 7, 1, 5}, ids(page.Data[1:]), "revenue tie broken by id")
	})

	t.Run("ascending by orders", func(t *testing.T) {
		page := service.SortAndPage(upstream, summary, service.PageRequest{SortBy: "totalOrders", Order: "asc", Limit: 10})
		assert.Equal(t, []int64{3, 5, 1, 4, 7, 2}, ids(page.Data[1:]))
	})

	t.Run("anything but asc is descending", func(t *testing.T) {
		page := service.SortAndPage(upstream, summary, service.PageRequest{SortBy: "roas", Order: "sideways", Limit: 10})
		assert.Equal(t, []int64{1, 2, 5, 4, 3, 7}, ids(page.Data[1:]))
	})

	t.Run("diff keys are sortable", func(t *testing.T) {
		assert.True(t, service.IsSortKey("aovDiff"))
		page := service.SortAndPage(upstream, summary, service.PageRequest{SortBy: "totalRevenueDiff", Order: "asc", Limit: 2})
		assert.Equal(t, []int64{3, 5}, ids(page.Data[1:]))
	})

	t.Run("unknown key keeps upstream order", func(t *testing.T) {
		assert.False(t, service.IsSortKey("bogusKey"))
		page := service.SortAndPage(upstream, summary, service.PageRequest{SortBy: "bogusKey", Order: "asc", Limit: 10})
		assert.Equal(t, ids(upstream), ids(page.Data[1:]))
	})

	t.Run("offset and limit", func(t *testing.T) {
		page := service.SortAndPage(upstream, summary, service.PageRequest{Limit: 2, Offset: 3})
		assert.Equal(t, []int64{1, 5}, ids(page.Data[1:]))
		assert.Equal(t, 6, page.Total)
	})

	t.Run("offset past the end yields summary only", func(t *testing.T) {
		page := service.SortAndPage(upstream, summary, service.PageRequest{Limit: 5, Offset: 6})
		require.Len(t, page.Data, 1)
		assert.Equal(t, int64(0), page.Data[0].CategoryID)
		assert.Equal(t, 6, page.Total)
	})

	t.Run("window clamps", func(t *testing.T) {
		page := service.SortAndPage(upstream, summary, service.PageRequest{Limit: -3, Offset: -9})
		assert.Equal(t, service.DefaultLimit, page.Limit)
		assert.Equal(t, 0, page.Offset)

		page = service.SortAndPage(upstream, summary, service.PageRequest{Limit: 5000})
		assert.Equal(t, service.MaxLimit, page.Limit)
		assert.Len(t, page.Data, 7)
	})

	t.Run("summary is independent of the page", func(t *testing.T) {
		for _, p := range []service.PageRequest{{Limit: 1}, {Limit: 2, Offset: 4}, {Offset: 100}} {
			page := service.SortAndPage(upstream, summary, p)
			assert.Equal(t, 2350.0, page.Data[0].TotalRevenue)
			assert.Equal(t, int64(83), page.Data[0].TotalOrders)
			assert.LessOrEqual(t, len(page.Data), page.Limit+1)
		}
	})

	t.Run("repeated calls are identical", func(t *testing.T) {
		p := service.PageRequest{SortBy: "adSpends", Limit: 4, Offset: 1}
		first := service.SortAndPage(upstream, summary, p)
		for i := 0; i < 20; i++ {
			assert.Equal(t, first, service.SortAndPage(upstream, summary, p))
		}
	})

	t.Run("input is not reordered", func(t *testing.T) {
		before := ids(upstream)
		service.SortAndPage(upstream, summary, service.PageRequest{SortBy: "totalOrders", Order: "asc"})
		assert.Equal(t, before, ids(upstream))
	})

	t.Run("empty set", func(t *testing.T) {
		page := service.SortAndPage(nil, service.Summarize(nil), service.PageRequest{})
		assert.Equal(t, 0, page.Total)
		require.Len(t, page.Data, 1)
	})
}
