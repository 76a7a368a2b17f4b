// Package datasource abstracts where input bytes come from, so file-backed
// sources can be tested against something other than the local disk.
package datasource

import (
	"context"
	"io"
)

// Source opens a named byte stream.
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
	// Name is the base name used to label the loaded table.
	Name() string
}
