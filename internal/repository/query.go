package repository

import (
	"context"
	"fmt"

	namedParameterQuery "github.com/Knetic/go-namedParameterQuery"
	"github.com/jmoiron/sqlx"
)

// selectNamed runs a query written with :name parameters and scans every row
// into T. Placeholders are rebound for the connected driver.
func selectNamed[T any](ctx context.Context, db *sqlx.DB, query string, params map[string]any) ([]T, error) {
	named := namedParameterQuery.NewNamedParameterQuery(query)
	named.SetValuesFromMap(params)

	q, args, err := sqlx.In(named.GetParsedQuery(), named.GetParsedParameters()...)
	if err != nil {
		return nil, fmt.Errorf("expand args: %w", err)
	}

	var out []T
	if err := db.SelectContext(ctx, &out, db.Rebind(q), args...); err != nil {
		return nil, err
	}
	return out, nil
}

// dayExpression renders SQL that truncates col to a YYYY-MM-DD string.
func dayExpression(driver, col string) string {
	switch driver {
	case "postgres", "pgx":
		return fmt.Sprintf("to_char(%s, 'YYYY-MM-DD')", col)
	case "mysql":
		return fmt.Sprintf("DATE_FORMAT(%s, '%%Y-%%m-%%d')", col)
	default:
		return fmt.Sprintf("strftime('%%Y-%%m-%%d', %s)", col)
	}
}
