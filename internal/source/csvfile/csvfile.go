// Package csvfile registers the "csv" source kind: a local delimited text
// file read with the CSV parser.
package csvfile

import (
	"context"
	"errors"

	"github.com/Karanpr-18/Excel-cleaning/internal/config"
	"github.com/Karanpr-18/Excel-cleaning/internal/datasource"
	"github.com/Karanpr-18/Excel-cleaning/internal/datasource/file"
	pcsv "github.com/Karanpr-18/Excel-cleaning/internal/parser/csv"
	"github.com/Karanpr-18/Excel-cleaning/internal/source"
	"github.com/Karanpr-18/Excel-cleaning/internal/table"
)

func init() {
	source.Register("csv", func(ctx context.Context, src config.Source) (*table.Table, source.Origin, error) {
		if src.File.Path == "" {
			return nil, source.Origin{}, errors.New("file.path is required")
		}
		t, err := Read(ctx, file.NewLocal(src.File.Path), pcsv.OptionsFrom(src.Options))
		if err != nil {
			return nil, source.Origin{}, err
		}
		return t, source.Origin{Path: src.File.Path}, nil
	})
}

// Read parses the file ds opens into a table named after it.
func Read(ctx context.Context, ds datasource.Source, opt pcsv.Options) (*table.Table, error) {
	rc, err := ds.Open(ctx)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return pcsv.NewParser(opt).Parse(rc, ds.Name())
}
