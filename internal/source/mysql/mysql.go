// Package mysql registers the "mysql" source kind using go-sql-driver/mysql.
package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"

	"github.com/Karanpr-18/Excel-cleaning/internal/source/sqlsource"
)

func init() {
	sqlsource.Register("mysql", Connect, Quote)
}

// Connect parses dsn and opens it. Date columns are scanned as time.Time so
// they reach the rules as dates rather than text.
func Connect(ctx context.Context, dsn string) (*sqlx.DB, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("mysql dsn: %w", err)
	}
	cfg.ParseTime = true
	conn, err := mysql.NewConnector(cfg)
	if err != nil {
		return nil, fmt.Errorf("mysql connector: %w", err)
	}
	db := sqlx.NewDb(sql.OpenDB(conn), "mysql")
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return db, nil
}

// Quote quotes one identifier segment with backticks.
func Quote(id string) string { return "`" + strings.ReplaceAll(id, "`", "``") + "`" }
