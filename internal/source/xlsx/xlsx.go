// Package xlsx registers the "xlsx" source kind: one worksheet of a local
// OOXML workbook.
package xlsx

import (
	"context"
	"errors"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/Karanpr-18/Excel-cleaning/internal/config"
	"github.com/Karanpr-18/Excel-cleaning/internal/datasource"
	"github.com/Karanpr-18/Excel-cleaning/internal/datasource/file"
	"github.com/Karanpr-18/Excel-cleaning/internal/source"
	"github.com/Karanpr-18/Excel-cleaning/internal/table"
	"github.com/Karanpr-18/Excel-cleaning/internal/workbook"
)

func init() {
	source.Register("xlsx", func(ctx context.Context, src config.Source) (*table.Table, source.Origin, error) {
		if src.File.Path == "" {
			return nil, source.Origin{}, errors.New("file.path is required")
		}
		t, err := Read(ctx, file.NewLocal(src.File.Path), src.File.Sheet)
		if err != nil {
			return nil, source.Origin{}, err
		}
		return t, source.Origin{Path: src.File.Path, Sheet: t.Name}, nil
	})
}

// Read loads sheet from the workbook ds opens. An empty sheet selects the
// first worksheet. The returned table is named after the resolved sheet.
func Read(ctx context.Context, ds datasource.Source, sheet string) (*table.Table, error) {
	rc, err := ds.Open(ctx)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	f, err := excelize.OpenReader(rc)
	if err != nil {
		return nil, fmt.Errorf("read workbook %s: %w", ds.Name(), err)
	}
	defer f.Close()
	return workbook.FromFile(f, sheet)
}
