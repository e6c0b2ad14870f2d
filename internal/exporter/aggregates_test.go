package exporter

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bizreport/internal/dataprocessing"
)

func sampleRows() []dataprocessing.AggregateRow {
	return []dataprocessing.AggregateRow{
		{
			Key:               "2025-03-01",
			Units:             10,
			Revenue:           100,
			Sessions:          50,
			Orders:            8,
			ConversionRate:    16,
			AverageOrderValue: 12.5,
			RevenuePerSession: 2,
		},
		{
			Key:     "2025-03-02",
			Units:   12,
			Revenue: 150.5,
		},
	}
}

func TestWritePeriodSeries(t *testing.T) {
	dir := t.TempDir()
	e := NewAggregateExporter(dir)

	require.NoError(t, e.WritePeriodSeries("periods.csv", sampleRows()))

	data, err := os.ReadFile(filepath.Join(dir, "periods.csv"))
	require.NoError(t, err)

	content := string(data)
	assert.True(t, strings.HasPrefix(content, "\xef\xbb\xbf"), "missing UTF-8 BOM")

	lines := strings.Split(strings.TrimSpace(strings.TrimPrefix(content, "\xef\xbb\xbf")), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, strings.Join(aggregateHeaders, ","), lines[0])
	assert.Equal(t, "2025-03-01,10,100.00,0,50,8,0,0,16.00,12.50,2.00", lines[1])
	assert.Equal(t, "2025-03-02,12,150.50,0,0,0,0,0,0.00,0.00,0.00", lines[2])
}

func TestWriteJSONEnvelope(t *testing.T) {
	dir := t.TempDir()
	e := NewAggregateExporter(dir)

	require.NoError(t, e.WriteJSON("periods.json", sampleRows()))

	data, err := os.ReadFile(filepath.Join(dir, "periods.json"))
	require.NoError(t, err)

	var envelope map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &envelope))
	assert.Equal(t, "business_report_aggregate_v1", envelope["format"])
	assert.NotEmpty(t, envelope["generated_at"])
	assert.Len(t, envelope["data"], 2)
}

func TestWriteCSVAppend(t *testing.T) {
	dir := t.TempDir()
	w := NewCSVWriter(dir)

	require.NoError(t, w.WriteSimpleCSV("out.csv", []string{"a", "b"}, [][]string{{"1", "2"}}))
	require.NoError(t, w.WriteCSV("out.csv", WriteOptions{Records: [][]string{{"3", "4"}}, Append: true}))

	data, err := os.ReadFile(filepath.Join(dir, "out.csv"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(strings.TrimPrefix(string(data), "\xef\xbb\xbf")), "\n")
	assert.Equal(t, []string{"a,b", "1,2", "3,4"}, lines)
}
