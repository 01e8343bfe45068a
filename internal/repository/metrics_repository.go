package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/godilite/eqrev-analytics/internal/repository/models"
	"github.com/jmoiron/sqlx"
)

type MetricsRepository struct {
	db *sqlx.DB
}

func NewMetricsRepository(db *sqlx.DB) *MetricsRepository {
	return &MetricsRepository{db: db}
}

// GetCategoryMetrics sums facts per category over [from, to). Every category
// with at least one product is returned, including those without facts in
// range. Rows are ordered by revenue descending, then category id.
func (r *MetricsRepository) GetCategoryMetrics(ctx context.Context, from, to time.Time) ([]models.CategoryMetricRow, error) {
	const query = `
		SELECT
			c.id AS category_id,
			c.name AS category_name,
			c.subcategory_name AS subcategory_name,
			COALESCE(SUM(f.total_final_revenue), 0) AS total_revenue,
			COALESCE(SUM(f.total_orders), 0) AS total_orders,
			COALESCE(SUM(f.ad_spend), 0) AS ad_spends,
			COALESCE(SUM(f.ad_revenue), 0) AS ad_revenue
		FROM categories AS c
		JOIN products AS p ON p.category_id = c.id
		LEFT JOIN facts AS f ON f.product_id = p.id
			AND f.date >= :from AND f.date < :to
		GROUP BY c.id, c.name, c.subcategory_name
		ORDER BY total_revenue DESC, c.id ASC
	`

	rows, err := selectNamed[models.CategoryMetricRow](ctx, r.db, query, map[string]any{
		"from": from,
		"to":   to,
	})
	if err != nil {
		return nil, fmt.Errorf("query GetCategoryMetrics: %w", err)
	}
	return rows, nil
}

// GetDailyMetrics sums two fact columns per calendar day over [from, to).
// Days without facts are absent. Rows are ordered by day ascending.
func (r *MetricsRepository) GetDailyMetrics(ctx context.Context, from, to time.Time, metric1, metric2 models.FactColumn) ([]models.DailyMetricRow, error) {
	if !metric1.Valid() || !metric2.Valid() {
		return nil, fmt.Errorf("query GetDailyMetrics: unknown fact column %q/%q", metric1, metric2)
	}

	day := dayExpression(r.db.DriverName(), "f.date")
	query := fmt.Sprintf(`
		SELECT
			%[1]s AS day,
			COALESCE(SUM(f.%[2]s), 0) AS metric1_value,
			COALESCE(SUM(f.%[3]s), 0) AS metric2_value
		FROM facts AS f
		WHERE f.date >= :from AND f.date < :to
		GROUP BY %[1]s
		ORDER BY day ASC
	`, day, metric1, metric2)

	rows, err := selectNamed[models.DailyMetricRow](ctx, r.db, query, map[string]any{
		"from": from,
		"to":   to,
	})
	if err != nil {
		return nil, fmt.Errorf("query GetDailyMetrics: %w", err)
	}
	return rows, nil
}

// ListCategoryNames returns the distinct category names in ascending order.
func (r *MetricsRepository) ListCategoryNames(ctx context.Context) ([]string, error) {
	var names []string
	if err := r.db.SelectContext(ctx, &names, `SELECT DISTINCT name FROM categories ORDER BY name ASC`); err != nil {
		return nil, fmt.Errorf("query ListCategoryNames: %w", err)
	}
	return names, nil
}

// Ping checks that the store is reachable.
func (r *MetricsRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
