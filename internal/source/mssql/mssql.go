// Package mssql registers the "mssql" source kind using go-mssqldb.
package mssql

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/microsoft/go-mssqldb"
	"github.com/microsoft/go-mssqldb/msdsn"

	"github.com/Karanpr-18/Excel-cleaning/internal/source/sqlsource"
)

func init() {
	sqlsource.Register("mssql", Connect, Quote)
}

// Connect validates dsn, opens it with the "sqlserver" driver and pings it.
func Connect(ctx context.Context, dsn string) (*sqlx.DB, error) {
	if _, err := msdsn.Parse(dsn); err != nil {
		return nil, fmt.Errorf("mssql dsn: %w", err)
	}
	db, err := sqlx.Open("sqlserver", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql.Open: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return db, nil
}

// Quote quotes a SQL Server identifier using [brackets], escaping ].
func Quote(id string) string { return `[` + strings.ReplaceAll(id, `]`, `]]`) + `]` }
