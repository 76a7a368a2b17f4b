// Package postgres registers the "postgres" source kind. Connections come
// from a pgx pool exposed to database/sql through pgx's stdlib adapter.
package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"

	"github.com/Karanpr-18/Excel-cleaning/internal/source/sqlsource"
)

func init() {
	sqlsource.Register("postgres", Connect, Quote)
}

// Connect builds a pool for dsn and wraps it as a *sqlx.DB. Closing the
// returned handle closes the pool.
func Connect(ctx context.Context, dsn string) (*sqlx.DB, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres dsn: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("pgxpool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping: %w", err)
	}
	return sqlx.NewDb(stdlib.OpenDBFromPool(pool), "pgx"), nil
}

// Quote quotes one identifier segment for Postgres.
func Quote(id string) string { return `"` + strings.ReplaceAll(id, `"`, `""`) + `"` }
