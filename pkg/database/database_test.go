package database

import (
	"context"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("sqlite in memory", func(t *testing.T) {
		db, err := New(context.Background(),
			WithDriver(DriverSQLite),
			WithDataSource(":memory:"),
			WithMaxOpenConns(1),
		)
		require.NoError(t, err)
		defer db.Close()

		assert.Equal(t, DriverSQLite, db.DriverName())
		assert.Equal(t, 1, db.Stats().MaxOpenConnections)
	})

	t.Run("unsupported driver", func(t *testing.T) {
		db, err := New(context.Background(), WithDriver("oracle"))
		assert.Nil(t, db)
		assert.ErrorContains(t, err, "unsupported database driver")
	})

	t.Run("empty data source", func(t *testing.T) {
		db, err := New(context.Background(), WithDataSource(""))
		assert.Nil(t, db)
		assert.ErrorContains(t, err, "data source cannot be empty")
	})

	t.Run("gives up when context is cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		db, err := New(ctx,
			WithDriver(DriverSQLite),
			WithDataSource("file:/nonexistent-dir/eqrev.db?mode=ro"),
			WithRetry(5, time.Hour),
		)
		assert.Nil(t, db)
		require.Error(t, err)
	})
}
