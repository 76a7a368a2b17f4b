// Package source turns a config.Source into a table. Concrete kinds live in
// sub-packages and register themselves here from init; import
// internal/source/all to enable every built-in kind.
package source

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/Karanpr-18/Excel-cleaning/internal/config"
	"github.com/Karanpr-18/Excel-cleaning/internal/table"
)

// ErrUnknownKind is returned by Open for a kind nobody registered.
var ErrUnknownKind = errors.New("unknown source kind")

// Origin records where a table came from. Workbook sources set Sheet so the
// annotated copy can be written back into the original file layout.
type Origin struct {
	Kind  string
	Path  string
	Sheet string
	Table string
}

// Workbook reports whether the table was read from an XLSX sheet.
func (o Origin) Workbook() bool { return o.Kind == "xlsx" }

// Factory loads the table described by src.
type Factory func(ctx context.Context, src config.Source) (*table.Table, Origin, error)

var (
	mu        sync.RWMutex
	factories = map[string]Factory{}
)

// Register makes a source kind available to Open. Registering the same kind
// twice replaces the earlier factory.
func Register(kind string, f Factory) {
	mu.Lock()
	defer mu.Unlock()
	factories[strings.ToLower(kind)] = f
}

// Kinds lists registered kinds in sorted order.
func Kinds() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(factories))
	for k := range factories {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Open loads the table described by src using the factory registered for
// src.Kind.
func Open(ctx context.Context, src config.Source) (*table.Table, Origin, error) {
	kind := strings.ToLower(strings.TrimSpace(src.Kind))
	mu.RLock()
	f, ok := factories[kind]
	mu.RUnlock()
	if !ok {
		return nil, Origin{}, fmt.Errorf("%w: %q (registered: %s)", ErrUnknownKind, src.Kind, strings.Join(Kinds(), ", "))
	}
	if err := ctx.Err(); err != nil {
		return nil, Origin{}, err
	}
	t, o, err := f(ctx, src)
	if err != nil {
		return nil, Origin{}, fmt.Errorf("%s source: %w", kind, err)
	}
	o.Kind = kind
	return t, o, nil
}

// KindForPath guesses a file source kind from a file name extension. It
// returns "" for extensions no file source reads.
func KindForPath(path string) string {
	p := strings.ToLower(path)
	switch {
	case strings.HasSuffix(p, ".xlsx"), strings.HasSuffix(p, ".xlsm"):
		return "xlsx"
	case strings.HasSuffix(p, ".csv"), strings.HasSuffix(p, ".txt"):
		return "csv"
	}
	return ""
}
