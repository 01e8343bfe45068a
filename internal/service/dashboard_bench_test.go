package service_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/godilite/eqrev-analytics/internal/repository"
	"github.com/godilite/eqrev-analytics/internal/service"
	dbbuilder "github.com/godilite/eqrev-analytics/pkg/database"
)

func setupRealDB(tb testing.TB) *repository.MetricsRepository {
	tb.Helper()

	db, err := dbbuilder.New(context.Background(),
		dbbuilder.WithDriver(dbbuilder.DriverSQLite),
		dbbuilder.WithDataSource(":memory:"),
		dbbuilder.WithMaxOpenConns(1),
	)
	if err != nil {
		tb.Fatalf("failed to create db pool via builder: %v", err)
	}

	_, err = db.Exec(`
		CREATE TABLE categories (id INTEGER PRIMARY KEY, name TEXT, subcategory_name TEXT);
		CREATE TABLE products (id INTEGER PRIMARY KEY, product_id TEXT, category_id INTEGER);
		CREATE TABLE facts (
			id INTEGER PRIMARY KEY,
			date DATETIME,
			product_id INTEGER,
			total_orders INTEGER,
			total_final_revenue REAL,
			ad_spend REAL,
			ad_revenue REAL
		);
	`)
	if err != nil {
		db.Close()
		tb.Fatalf("failed to create schema: %v", err)
	}

	start := time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC)
	for c := 1; c <= 40; c++ {
		db.MustExec(`INSERT INTO categories (id, name, subcategory_name) VALUES (?, ?, ?)`, c, fmt.Sprintf("cat-%02d", c), "sub")
		db.MustExec(`INSERT INTO products (id, product_id, category_id) VALUES (?, ?, ?)`, c, fmt.Sprintf("SKU-%d", c), c)
		for d := 0; d < 45; d++ {
			db.MustExec(`INSERT INTO facts (date, product_id, total_orders, total_final_revenue, ad_spend, ad_revenue) VALUES (?, ?, ?, ?, ?, ?)`,
				start.AddDate(0, 0, d), c, c+d, float64(c*d)+0.5, float64(d), float64(c))
		}
	}

	tb.Cleanup(func() { db.Close() })
	return repository.NewMetricsRepository(db)
}

func BenchmarkGetDashboardMetrics(b *testing.B) {
	svc := service.NewDashboardService(setupRealDB(b), zap.NewNop())
	q := service.DashboardQuery{
		Start: time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2025, 9, 14, 0, 0, 0, 0, time.UTC),
		Page:  service.PageRequest{SortBy: "roas", Limit: 10},
	}

	b.ReportAllocs()

	for b.Loop() {
		_, _ = svc.GetDashboardMetrics(context.Background(), q)
	}
}

func BenchmarkSortAndPage(b *testing.B) {
	aggs := make([]service.CategoryAggregate, 2000)
	for i := range aggs {
		aggs[i] = service.CategoryAggregate{
			CategoryID:   int64(i),
			TotalRevenue: float64(i % 97),
			TotalOrders:  int64(i % 13),
			AdSpends:     float64(i % 7),
		}
	}
	records := service.Compare(aggs, aggs[:1000])
	summary := service.SummarizeComparison(records)
	p := service.PageRequest{SortBy: "totalRevenue", Limit: 50, Offset: 100}

	b.ReportAllocs()

	for b.Loop() {
		_ = service.SortAndPage(records, summary, p)
	}
}
