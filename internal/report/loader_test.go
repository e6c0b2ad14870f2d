package report

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadCSVProductLevel(t *testing.T) {
	csvData := "(Untergeordnete) ASIN,Bestellte Einheiten,Durch bestellte Produkte erzielter Umsatz,Sitzungen – Summe,Zahl der Bestellposten\n" +
		"B0ABC12345,10,\"100,00 €\",50,8\n" +
		"B0DEF67890,3,\"36,50 €\",20,2\n"

	loader := NewLoader(nil)
	rep, err := loader.LoadCSV(context.Background(), strings.NewReader(csvData), "BusinessReport-01.03.25.csv")
	require.NoError(t, err)

	assert.Equal(t, ReportTypeProduct, rep.Type)
	require.Len(t, rep.Records, 2)

	rec := rep.Records[0]
	assert.Equal(t, "2025-03-01", rec.PeriodKey)
	assert.True(t, rec.HasDate)
	assert.Equal(t, "B0ABC12345", rec.ASIN)
	assert.InDelta(t, 100.0, rec.Value("Durch bestellte Produkte erzielter Umsatz", KindCurrency), 1e-9)
	assert.InDelta(t, 10.0, rec.Value("Bestellte Einheiten", KindNumeric), 1e-9)
}

func TestLoadCSVProductLevelWithoutFileDate(t *testing.T) {
	csvData := "(Untergeordnete) ASIN,Bestellte Einheiten\nB0ABC12345,5\n"

	loader := NewLoader(nil)
	rep, err := loader.LoadCSV(context.Background(), strings.NewReader(csvData), "report.csv")
	require.NoError(t, err)

	require.Len(t, rep.Records, 1)
	// No date in the file name: the raw file name is the degenerate key.
	assert.Equal(t, "report.csv", rep.Records[0].PeriodKey)
	assert.False(t, rep.Records[0].HasDate)
}

func TestLoadCSVAccountLevel(t *testing.T) {
	csvData := "Datum,Bestellte Einheiten,Sitzungen – Summe\n" +
		"01.03.25,12,60\n" +
		"02.03.25,15,70\n" +
		"kein datum,9,30\n"

	loader := NewLoader(nil)
	rep, err := loader.LoadCSV(context.Background(), strings.NewReader(csvData), "account.csv")
	require.NoError(t, err)

	assert.Equal(t, ReportTypeAccount, rep.Type)
	// The row without a parseable date is dropped.
	require.Len(t, rep.Records, 2)
	assert.Equal(t, "2025-03-01", rep.Records[0].PeriodKey)
	assert.Equal(t, "2025-03-02", rep.Records[1].PeriodKey)
	assert.Empty(t, rep.Records[0].ASIN)
}

func TestLoadCSVParentASINFallback(t *testing.T) {
	csvData := "(Übergeordnete) ASIN,Bestellte Einheiten\nB0PARENT01,4\n"

	loader := NewLoader(nil)
	rep, err := loader.LoadCSV(context.Background(), strings.NewReader(csvData), "BusinessReport-05.04.25.csv")
	require.NoError(t, err)

	require.Len(t, rep.Records, 1)
	assert.Equal(t, "B0PARENT01", rep.Records[0].ASIN)
}

func TestLoadCSVDuplicateHeaders(t *testing.T) {
	csvData := "Bestellte Einheiten,Bestellte Einheiten,Sitzungen – Summe\n7,99,50\n"

	loader := NewLoader(nil)
	rep, err := loader.LoadCSV(context.Background(), strings.NewReader(csvData), "BusinessReport-01.03.25.csv")
	require.NoError(t, err)

	assert.Equal(t, []string{"Bestellte Einheiten", "Sitzungen – Summe"}, rep.Headers)
	require.Len(t, rep.Records, 1)
	// First occurrence wins.
	assert.InDelta(t, 7.0, rep.Records[0].Value("Bestellte Einheiten", KindNumeric), 1e-9)
}

func TestLoadCSVByteOrderMark(t *testing.T) {
	csvData := "\uFEFFDatum,Bestellte Einheiten\n01.03.25,12\n"

	loader := NewLoader(nil)
	rep, err := loader.LoadCSV(context.Background(), strings.NewReader(csvData), "account.csv")
	require.NoError(t, err)

	// Excel exports prefix the first header with a UTF-8 BOM.
	assert.Equal(t, []string{"Datum", "Bestellte Einheiten"}, rep.Headers)
	assert.Equal(t, ReportTypeAccount, rep.Type)
	require.Len(t, rep.Records, 1)
	assert.InDelta(t, 12.0, rep.Records[0].Value("Bestellte Einheiten", KindNumeric), 1e-9)
}

func TestLoadCSVErrors(t *testing.T) {
	loader := NewLoader(nil)

	_, err := loader.LoadCSV(context.Background(), strings.NewReader(""), "empty.csv")
	assert.Error(t, err)

	_, err = loader.LoadCSV(context.Background(), strings.NewReader("a,\"b\nbroken"), "broken.csv")
	assert.Error(t, err)
}

func TestRecordValueMissingCell(t *testing.T) {
	rec := Record{Raw: RawRecord{}}
	assert.Zero(t, rec.Value("Bestellte Einheiten", KindNumeric))
	assert.Zero(t, rec.Value("Umsatz", KindCurrency))
}
