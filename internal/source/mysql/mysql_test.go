package mysql

import (
	"context"
	"testing"
)

func TestQuote(t *testing.T) {
	t.Parallel()

	if got := Quote("a`b"); got != "`a``b`" {
		t.Fatalf("Quote = %s", got)
	}
}

func TestConnect_BadDSN(t *testing.T) {
	t.Parallel()

	if _, err := Connect(context.Background(), "no-slash-here"); err == nil {
		t.Fatal("expected dsn error")
	}
}
