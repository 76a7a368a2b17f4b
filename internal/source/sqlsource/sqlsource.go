// Package sqlsource reads a database table or query result into a
// table.Table. The driver-specific packages open the connection and hand it
// here; this package owns scanning and value conversion.
package sqlsource

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/Karanpr-18/Excel-cleaning/internal/config"
	"github.com/Karanpr-18/Excel-cleaning/internal/source"
	"github.com/Karanpr-18/Excel-cleaning/internal/table"
)

// Quoter quotes a single identifier segment for one SQL dialect.
type Quoter func(ident string) string

// Connector opens a database handle for a DSN.
type Connector func(ctx context.Context, dsn string) (*sqlx.DB, error)

// Register installs a database source kind built from connect and quote.
func Register(kind string, connect Connector, quote Quoter) {
	source.Register(kind, func(ctx context.Context, src config.Source) (*table.Table, source.Origin, error) {
		stmt, err := Statement(src.DB, quote)
		if err != nil {
			return nil, source.Origin{}, err
		}
		if strings.TrimSpace(src.DB.DSN) == "" {
			return nil, source.Origin{}, errors.New("db.dsn is required")
		}
		db, err := connect(ctx, src.DB.DSN)
		if err != nil {
			return nil, source.Origin{}, err
		}
		defer db.Close()

		name := src.DB.Table
		if name == "" {
			name = "query"
		}
		t, err := Load(ctx, db, name, stmt)
		if err != nil {
			return nil, source.Origin{}, err
		}
		return t, source.Origin{Table: name}, nil
	})
}

// Statement returns the SQL to run: Query when set, otherwise a SELECT of every
// column of Table.
func Statement(db config.DBSource, quote Quoter) (string, error) {
	if q := strings.TrimSpace(db.Query); q != "" {
		return q, nil
	}
	if strings.TrimSpace(db.Table) == "" {
		return "", errors.New("db.table or db.query is required")
	}
	return "SELECT * FROM " + QualifiedName(db.Table, quote), nil
}

// QualifiedName quotes a possibly schema-qualified name such as
// "public.survey" segment by segment.
func QualifiedName(name string, quote Quoter) string {
	parts := strings.Split(name, ".")
	for i, p := range parts {
		parts[i] = quote(p)
	}
	return strings.Join(parts, ".")
}

// Load runs stmt and collects every row in result-column order.
func Load(ctx context.Context, db *sqlx.DB, name, stmt string) (*table.Table, error) {
	rows, err := db.QueryxContext(ctx, stmt)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("columns: %w", err)
	}
	t := table.New(name, cols)
	for rows.Next() {
		vals, err := rows.SliceScan()
		if err != nil {
			return nil, fmt.Errorf("scan row %d: %w", t.Len()+1, err)
		}
		row := make(table.Row, len(vals))
		for i, v := range vals {
			row[i] = table.FromAny(v)
		}
		t.Append(row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return t, nil
}
