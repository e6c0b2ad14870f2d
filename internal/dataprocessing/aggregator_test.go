package dataprocessing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bizreport/internal/report"
)

var productHeaders = []string{
	"(Untergeordnete) ASIN",
	"Bestellte Einheiten",
	"Durch bestellte Produkte erzielter Umsatz",
	"Seitenaufrufe – Summe",
	"Sitzungen – Summe",
	"Zahl der Bestellposten",
	"Sitzungen – mobile App",
	"Sitzungen – Browser",
}

func productRecord(period, asin, units, revenue, sessions, orders string) report.Record {
	return report.Record{
		Raw: report.RawRecord{
			"Bestellte Einheiten":                       units,
			"Durch bestellte Produkte erzielter Umsatz": revenue,
			"Sitzungen – Summe":                         sessions,
			"Zahl der Bestellposten":                    orders,
		},
		PeriodKey: period,
		HasDate:   true,
		ASIN:      asin,
	}
}

func TestByPeriodSumsAndKPIs(t *testing.T) {
	records := []report.Record{
		productRecord("2025-03-01", "B0A", "10", "100,00 €", "50", "8"),
		productRecord("2025-03-02", "B0A", "12", "150,50 €", "60", "10"),
	}

	agg := NewAggregator(nil, AggregatorConfig{Segment: report.SegmentNormal})
	res := agg.ByPeriod(context.Background(), productHeaders, records)

	require.Len(t, res.Rows, 2)
	assert.Empty(t, res.MissingColumns)

	day1 := res.Rows[0]
	assert.Equal(t, "2025-03-01", day1.Key)
	assert.InDelta(t, 100.0, day1.Revenue, 1e-9)
	assert.InDelta(t, 16.0, day1.ConversionRate, 1e-9)
	assert.InDelta(t, 12.5, day1.AverageOrderValue, 1e-9)
	assert.InDelta(t, 2.0, day1.RevenuePerSession, 1e-9)

	day2 := res.Rows[1]
	assert.Equal(t, "2025-03-02", day2.Key)
	assert.InDelta(t, 150.5, day2.Revenue, 1e-9)
	assert.InDelta(t, 100.0/6.0, day2.ConversionRate, 1e-9)
	assert.InDelta(t, 15.05, day2.AverageOrderValue, 1e-9)
}

func TestByPeriodMergesRowsOfSameDay(t *testing.T) {
	records := []report.Record{
		productRecord("2025-03-01", "B0A", "10", "100,00 €", "50", "8"),
		productRecord("2025-03-01", "B0B", "5", "50,00 €", "30", "4"),
	}

	agg := NewAggregator(nil, AggregatorConfig{})
	res := agg.ByPeriod(context.Background(), productHeaders, records)

	require.Len(t, res.Rows, 1)
	assert.InDelta(t, 15.0, res.Rows[0].Units, 1e-9)
	assert.InDelta(t, 150.0, res.Rows[0].Revenue, 1e-9)
	assert.InDelta(t, 80.0, res.Rows[0].Sessions, 1e-9)
}

func TestGuardedDivision(t *testing.T) {
	records := []report.Record{
		productRecord("2025-03-01", "B0A", "0", "0,00 €", "0", "0"),
	}

	agg := NewAggregator(nil, AggregatorConfig{})
	res := agg.ByPeriod(context.Background(), productHeaders, records)

	require.Len(t, res.Rows, 1)
	row := res.Rows[0]
	assert.Zero(t, row.ConversionRate)
	assert.Zero(t, row.AverageOrderValue)
	assert.Zero(t, row.RevenuePerSession)
	assert.False(t, row.ConversionRate != row.ConversionRate, "NaN leaked into conversion rate")
}

func TestMissingColumnsZeroFilledAndDisclosed(t *testing.T) {
	headers := []string{"(Untergeordnete) ASIN", "Bestellte Einheiten"}
	records := []report.Record{
		{
			Raw:       report.RawRecord{"Bestellte Einheiten": "5"},
			PeriodKey: "2025-03-01",
			HasDate:   true,
			ASIN:      "B0A",
		},
	}

	agg := NewAggregator(nil, AggregatorConfig{})
	res := agg.ByPeriod(context.Background(), headers, records)

	require.Len(t, res.Rows, 1)
	assert.InDelta(t, 5.0, res.Rows[0].Units, 1e-9)
	assert.Zero(t, res.Rows[0].Revenue)
	assert.Zero(t, res.Rows[0].Sessions)

	assert.Contains(t, res.MissingColumns, "Durch bestellte Produkte erzielter Umsatz")
	assert.Contains(t, res.MissingColumns, "Sitzungen – Summe")
	assert.NotContains(t, res.MissingColumns, "Bestellte Einheiten")
}

func TestB2BSegmentNeverFallsBackToPlainColumns(t *testing.T) {
	// Only plain columns present: the B2B aggregation must report every
	// field missing and produce zeros, not silently read the plain data.
	records := []report.Record{
		productRecord("2025-03-01", "B0A", "10", "100,00 €", "50", "8"),
	}

	agg := NewAggregator(nil, AggregatorConfig{Segment: report.SegmentB2B})
	res := agg.ByPeriod(context.Background(), productHeaders, records)

	require.Len(t, res.Rows, 1)
	assert.Zero(t, res.Rows[0].Units)
	assert.Zero(t, res.Rows[0].Revenue)
	assert.Contains(t, res.MissingColumns, "Bestellte Einheiten – B2B")
	assert.Contains(t, res.MissingColumns, "Bestellsumme – B2B")
}

func TestB2BSegmentReadsB2BColumns(t *testing.T) {
	headers := []string{
		"(Untergeordnete) ASIN",
		"Bestellte Einheiten",
		"Bestellte Einheiten - B2B",
		"Bestellsumme - B2B",
		"Sitzungen - Summe - B2B",
		"Zahl der Bestellposten - B2B",
	}
	records := []report.Record{
		{
			Raw: report.RawRecord{
				"Bestellte Einheiten":          "100",
				"Bestellte Einheiten - B2B":    "3",
				"Bestellsumme - B2B":           "30,00 €",
				"Sitzungen - Summe - B2B":      "10",
				"Zahl der Bestellposten - B2B": "2",
			},
			PeriodKey: "2025-03-01",
			HasDate:   true,
			ASIN:      "B0A",
		},
	}

	agg := NewAggregator(nil, AggregatorConfig{Segment: report.SegmentB2B})
	res := agg.ByPeriod(context.Background(), headers, records)

	require.Len(t, res.Rows, 1)
	assert.InDelta(t, 3.0, res.Rows[0].Units, 1e-9)
	assert.InDelta(t, 30.0, res.Rows[0].Revenue, 1e-9)
	assert.InDelta(t, 20.0, res.Rows[0].ConversionRate, 1e-9)
}

func TestNativeConversionRateMeanPreserved(t *testing.T) {
	headers := append(productHeaders, "Prozentsatz Bestellposten pro Sitzung")
	rec1 := productRecord("2025-03-01", "B0A", "10", "100,00 €", "50", "8")
	rec1.Raw["Prozentsatz Bestellposten pro Sitzung"] = "10,00%"
	rec2 := productRecord("2025-03-01", "B0B", "5", "50,00 €", "30", "4")
	rec2.Raw["Prozentsatz Bestellposten pro Sitzung"] = "20,00%"

	agg := NewAggregator(nil, AggregatorConfig{UseNativeRate: true})
	res := agg.ByPeriod(context.Background(), headers, []report.Record{rec1, rec2})

	require.Len(t, res.Rows, 1)
	// Mean of the reported rates, not orders/sessions from the sums.
	assert.InDelta(t, 15.0, res.Rows[0].ConversionRate, 1e-9)
}

func TestNativeRateAbsentFallsBackToDerived(t *testing.T) {
	records := []report.Record{
		productRecord("2025-03-01", "B0A", "10", "100,00 €", "50", "8"),
	}

	agg := NewAggregator(nil, AggregatorConfig{UseNativeRate: true})
	res := agg.ByPeriod(context.Background(), productHeaders, records)

	require.Len(t, res.Rows, 1)
	assert.InDelta(t, 16.0, res.Rows[0].ConversionRate, 1e-9)
	// Optional native column absence is not an operator-visible defect.
	assert.NotContains(t, res.MissingColumns, "Prozentsatz Bestellposten pro Sitzung")
}

func TestByASINLeaderboard(t *testing.T) {
	records := []report.Record{
		productRecord("2025-03-01", "B0LOW", "2", "20,00 €", "10", "1"),
		productRecord("2025-03-01", "B0HIGH", "10", "100,00 €", "50", "8"),
		productRecord("2025-03-02", "B0HIGH", "5", "60,00 €", "25", "4"),
		{Raw: report.RawRecord{}, PeriodKey: "2025-03-01", HasDate: true}, // no ASIN
	}

	agg := NewAggregator(nil, AggregatorConfig{})
	res := agg.ByASIN(context.Background(), productHeaders, records)

	require.Len(t, res.Rows, 2)
	assert.Equal(t, "B0HIGH", res.Rows[0].Key)
	assert.InDelta(t, 160.0, res.Rows[0].Revenue, 1e-9)
	assert.Equal(t, "B0LOW", res.Rows[1].Key)
}

// Re-aggregating per-day rows under the same day key reproduces the sums
// exactly: summation is idempotent under identity regrouping.
func TestIdentityRegroupingIdempotent(t *testing.T) {
	records := []report.Record{
		productRecord("2025-03-01", "B0A", "10", "100,00 €", "50", "8"),
		productRecord("2025-03-01", "B0B", "5", "50,50 €", "30", "4"),
	}

	agg := NewAggregator(nil, AggregatorConfig{})
	first := agg.ByPeriod(context.Background(), productHeaders, records)
	require.Len(t, first.Rows, 1)

	day := first.Rows[0]
	rerecords := []report.Record{
		{
			Raw: report.RawRecord{
				"Bestellte Einheiten":                       "15",
				"Durch bestellte Produkte erzielter Umsatz": "150,50 €",
				"Sitzungen – Summe":                         "80",
				"Zahl der Bestellposten":                    "12",
			},
			PeriodKey: day.Key,
			HasDate:   true,
		},
	}
	second := agg.ByPeriod(context.Background(), productHeaders, rerecords)
	require.Len(t, second.Rows, 1)

	assert.InDelta(t, day.Units, second.Rows[0].Units, 1e-9)
	assert.InDelta(t, day.Revenue, second.Rows[0].Revenue, 1e-9)
	assert.InDelta(t, day.Sessions, second.Rows[0].Sessions, 1e-9)
	assert.InDelta(t, day.Orders, second.Rows[0].Orders, 1e-9)
}

func TestByPeriodDegenerateKeysSortLast(t *testing.T) {
	dated := productRecord("2025-03-02", "B0A", "1", "10,00 €", "5", "1")
	undated := productRecord("report.csv", "B0B", "2", "20,00 €", "8", "2")
	undated.HasDate = false

	agg := NewAggregator(nil, AggregatorConfig{})
	res := agg.ByPeriod(context.Background(), productHeaders, []report.Record{undated, dated})

	require.Len(t, res.Rows, 2)
	assert.Equal(t, "2025-03-02", res.Rows[0].Key)
	assert.Equal(t, "report.csv", res.Rows[1].Key)
}
