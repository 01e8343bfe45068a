package models

import "database/sql"

// FactColumn is a physical numeric column of the facts table. Only the
// constants below are ever interpolated into SQL.
type FactColumn string

const (
	FactTotalFinalRevenue FactColumn = "total_final_revenue"
	FactTotalMRPRevenue   FactColumn = "total_mrp_revenue"
	FactTotalOrders       FactColumn = "total_orders"
	FactAdSpend           FactColumn = "ad_spend"
	FactAdRevenue         FactColumn = "ad_revenue"
	FactAdImpressions     FactColumn = "ad_impressions"
	FactAdAddToCarts      FactColumn = "ad_add_to_carts"
	FactAdOrders          FactColumn = "ad_orders"
	FactAdOrdersOtherSKU  FactColumn = "ad_orders_othersku"
	FactAdOrdersSameSKU   FactColumn = "ad_orders_samesku"
	FactStockDarkstores   FactColumn = "stock_at_darkstores"
	FactStockWarehouses   FactColumn = "stock_at_warehouses"
)

var factColumns = map[FactColumn]struct{}{
	FactTotalFinalRevenue: {},
	FactTotalMRPRevenue:   {},
	FactTotalOrders:       {},
	FactAdSpend:           {},
	FactAdRevenue:         {},
	FactAdImpressions:     {},
	FactAdAddToCarts:      {},
	FactAdOrders:          {},
	FactAdOrdersOtherSKU:  {},
	FactAdOrdersSameSKU:   {},
	FactStockDarkstores:   {},
	FactStockWarehouses:   {},
}

// Valid reports whether c names a known numeric fact column.
func (c FactColumn) Valid() bool {
	_, ok := factColumns[c]
	return ok
}

// CategoryMetricRow is one category's summed facts for a date range.
type CategoryMetricRow struct {
	CategoryID      int64           `db:"category_id"`
	CategoryName    string          `db:"category_name"`
	SubcategoryName sql.NullString  `db:"subcategory_name"`
	TotalRevenue    sql.NullFloat64 `db:"total_revenue"`
	TotalOrders     sql.NullInt64   `db:"total_orders"`
	AdSpends        sql.NullFloat64 `db:"ad_spends"`
	AdRevenue       sql.NullFloat64 `db:"ad_revenue"`
}

// DailyMetricRow holds two summed metrics for one calendar day.
type DailyMetricRow struct {
	Day          string          `db:"day"`
	Metric1Value sql.NullFloat64 `db:"metric1_value"`
	Metric2Value sql.NullFloat64 `db:"metric2_value"`
}
