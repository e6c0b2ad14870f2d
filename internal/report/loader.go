package report

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Loader turns uploaded business report files into Records with period keys
// attached. It never fails on malformed cells (the normalizer absorbs them);
// only unreadable files return errors.
type Loader struct {
	logger *slog.Logger
}

// NewLoader creates a report loader.
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{logger: logger}
}

// LoadCSV reads one CSV export. The report type is detected from the header
// row: a "Datum" column marks an account-level report, anything else is a
// product-level report whose day comes from the file name.
func (l *Loader) LoadCSV(ctx context.Context, r io.Reader, fileName string) (*Report, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv %s: %w", fileName, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("read csv %s: empty file", fileName)
	}

	headers, headerIndex := dedupeHeaders(rows[0])
	rep := l.build(ctx, fileName, headers, headerIndex, rows[1:])
	return rep, nil
}

// build assembles a Report from a header list and raw cell rows. rows are
// indexed by original column position; headerIndex maps the kept header to
// that position (first occurrence wins for duplicated headers).
func (l *Loader) build(ctx context.Context, fileName string, headers []string, headerIndex map[string]int, rows [][]string) *Report {
	reportType := ReportTypeProduct
	dateCol, hasDateCol := ResolveColumn(headers, []string{dateColumn})
	if hasDateCol {
		reportType = ReportTypeAccount
	}

	asinCol, hasASIN := ResolveColumn(headers, []string{childASINColumn})
	if !hasASIN {
		asinCol, hasASIN = ResolveColumn(headers, []string{parentASINColumn})
	}

	// Product-level reports carry their date in the file name. When absent
	// the raw file name becomes a degenerate period key so the rows still
	// group together instead of being dropped.
	fileDate, fileHasDate := ParseReportDate(fileName)
	filePeriod := fileName
	if fileHasDate {
		filePeriod = fileDate.Format("2006-01-02")
	}

	rep := &Report{
		FileName: fileName,
		Type:     reportType,
		Headers:  headers,
		Records:  make([]Record, 0, len(rows)),
	}

	dropped := 0
	for _, row := range rows {
		raw := make(RawRecord, len(headers))
		for h, idx := range headerIndex {
			if idx < len(row) {
				raw[h] = row[idx]
			}
		}

		rec := Record{Raw: raw, FileName: fileName}
		if reportType == ReportTypeAccount {
			date, ok := ParseReportDate(raw[dateCol])
			if !ok {
				// Account-level rows without a parseable date have no
				// place on the time axis.
				dropped++
				continue
			}
			rec.Date = date
			rec.HasDate = true
			rec.PeriodKey = date.Format("2006-01-02")
		} else {
			rec.Date = fileDate
			rec.HasDate = fileHasDate
			rec.PeriodKey = filePeriod
			if hasASIN {
				rec.ASIN = strings.TrimSpace(raw[asinCol])
			}
		}
		rep.Records = append(rep.Records, rec)
	}

	l.logger.InfoContext(ctx, "loaded business report",
		slog.String("file", fileName),
		slog.String("type", string(reportType)),
		slog.Int("records", len(rep.Records)),
		slog.Int("dropped", dropped))

	return rep
}

// dedupeHeaders trims the header row and drops repeated names, keeping the
// first occurrence. Duplicated headers appear in some export revisions.
func dedupeHeaders(row []string) ([]string, map[string]int) {
	headers := make([]string, 0, len(row))
	index := make(map[string]int, len(row))
	for i, h := range row {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\uFEFF"))
		if h == "" {
			continue
		}
		if _, seen := index[h]; seen {
			continue
		}
		index[h] = i
		headers = append(headers, h)
	}
	return headers, index
}
