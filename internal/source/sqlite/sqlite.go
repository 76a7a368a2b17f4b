// Package sqlite registers the "sqlite" source kind using the pure-Go
// modernc.org/sqlite driver.
package sqlite

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/Karanpr-18/Excel-cleaning/internal/source/sqlsource"
)

func init() {
	sqlsource.Register("sqlite", Connect, Quote)
}

// Connect opens dsn (a file path or "file:" URI) and pings it.
func Connect(ctx context.Context, dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: ping: %w", err)
	}
	return db, nil
}

// Quote quotes one identifier segment with double quotes.
func Quote(id string) string { return `"` + strings.ReplaceAll(id, `"`, `""`) + `"` }
