package exporter

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"bizreport/internal/dataprocessing"
)

// AggregateExporter writes aggregated report data to CSV and JSON files.
type AggregateExporter struct {
	csvWriter *CSVWriter
	outputDir string
}

// NewAggregateExporter creates an exporter writing into outputDir.
func NewAggregateExporter(outputDir string) *AggregateExporter {
	return &AggregateExporter{
		csvWriter: NewCSVWriter(outputDir),
		outputDir: outputDir,
	}
}

var aggregateHeaders = []string{
	"Key",
	"Units",
	"Revenue",
	"PageViews",
	"Sessions",
	"Orders",
	"MobileSessions",
	"BrowserSessions",
	"ConversionRate",
	"AverageOrderValue",
	"RevenuePerSession",
}

// WritePeriodSeries writes the time-series aggregate rows to a CSV file.
func (e *AggregateExporter) WritePeriodSeries(fileName string, rows []dataprocessing.AggregateRow) error {
	return e.csvWriter.WriteSimpleCSV(fileName, aggregateHeaders, rowsToCSV(rows))
}

// WriteLeaderboard writes the per-product aggregate rows to a CSV file.
func (e *AggregateExporter) WriteLeaderboard(fileName string, rows []dataprocessing.AggregateRow) error {
	return e.csvWriter.WriteSimpleCSV(fileName, aggregateHeaders, rowsToCSV(rows))
}

// WriteJSON writes any aggregate payload to a JSON file with a metadata
// envelope compatible with the web frontend.
func (e *AggregateExporter) WriteJSON(fileName string, payload interface{}) error {
	fullPath := fileName
	if !filepath.IsAbs(fullPath) && e.outputDir != "" {
		fullPath = filepath.Join(e.outputDir, fileName)
	}

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return fmt.Errorf("create JSON file: %w", err)
	}
	defer file.Close()

	envelope := map[string]interface{}{
		"data":         payload,
		"generated_at": time.Now().Format(time.RFC3339),
		"format":       "business_report_aggregate_v1",
	}

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(envelope); err != nil {
		return fmt.Errorf("encode JSON: %w", err)
	}
	return nil
}

func rowsToCSV(rows []dataprocessing.AggregateRow) [][]string {
	records := make([][]string, 0, len(rows))
	for _, row := range rows {
		records = append(records, []string{
			row.Key,
			formatCount(row.Units),
			formatFloat(row.Revenue),
			formatCount(row.PageViews),
			formatCount(row.Sessions),
			formatCount(row.Orders),
			formatCount(row.MobileSessions),
			formatCount(row.BrowserSessions),
			formatFloat(row.ConversionRate),
			formatFloat(row.AverageOrderValue),
			formatFloat(row.RevenuePerSession),
		})
	}
	return records
}
