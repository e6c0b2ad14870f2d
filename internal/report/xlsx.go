package report

import (
	"context"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// LoadXLSX reads one XLSX export with the same semantics as LoadCSV, taking
// the first sheet of the workbook. Seller Central offers the same business
// report as both formats.
func (l *Loader) LoadXLSX(ctx context.Context, r io.Reader, fileName string) (*Report, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open xlsx %s: %w", fileName, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("open xlsx %s: no sheets", fileName)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read xlsx %s: %w", fileName, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("read xlsx %s: empty sheet", fileName)
	}

	headers, headerIndex := dedupeHeaders(rows[0])
	return l.build(ctx, fileName, headers, headerIndex, rows[1:]), nil
}
