package report

import "time"

// ReportType identifies the granularity of an uploaded business report.
type ReportType string

const (
	// ReportTypeAccount is a report already aggregated to one row per
	// calendar day, with an explicit date column and no product dimension.
	ReportTypeAccount ReportType = "account-level"
	// ReportTypeProduct is a report with one row per ASIN; the day it
	// covers is embedded in the file name.
	ReportTypeProduct ReportType = "product-level"
)

// TrafficSegment selects which parallel set of metric columns to read.
type TrafficSegment string

const (
	SegmentNormal TrafficSegment = "normal"
	SegmentB2B    TrafficSegment = "b2b"
)

// Field is a logical metric field, independent of the raw header spelling
// a particular export uses for it.
type Field string

const (
	FieldUnits           Field = "units"
	FieldRevenue         Field = "revenue"
	FieldPageViews       Field = "page_views"
	FieldSessions        Field = "sessions"
	FieldOrders          Field = "orders"
	FieldMobileSessions  Field = "mobile_sessions"
	FieldBrowserSessions Field = "browser_sessions"
	// FieldConversionRate is the report-native conversion rate column.
	// It is a pre-computed average, not a summable base metric.
	FieldConversionRate Field = "conversion_rate"
)

// BaseFields lists the summable metric fields in aggregation order.
var BaseFields = []Field{
	FieldUnits,
	FieldRevenue,
	FieldPageViews,
	FieldSessions,
	FieldOrders,
	FieldMobileSessions,
	FieldBrowserSessions,
}

// ValueKind tells the normalizer which parsing rules apply to a cell.
type ValueKind int

const (
	KindNumeric ValueKind = iota
	KindCurrency
	KindPercent
)

// Kind returns the value kind of a logical field.
func (f Field) Kind() ValueKind {
	switch f {
	case FieldRevenue:
		return KindCurrency
	case FieldConversionRate:
		return KindPercent
	default:
		return KindNumeric
	}
}

// RawRecord is one row of an uploaded report: raw header to raw cell.
type RawRecord map[string]string

// Record is a raw row plus the load-time context every aggregation needs:
// the period it belongs to and, for product-level reports, its ASIN.
type Record struct {
	Raw RawRecord
	// PeriodKey is the day the row belongs to, formatted 2006-01-02, or
	// the raw file name when no date could be determined (degenerate key,
	// product-level only).
	PeriodKey string
	// Date is the parsed period when PeriodKey is a real date.
	Date time.Time
	// HasDate reports whether Date carries a parsed value.
	HasDate bool
	// ASIN is empty for account-level rows.
	ASIN     string
	FileName string
}

// Report is the result of loading one uploaded file.
type Report struct {
	FileName string
	Type     ReportType
	// Headers preserves the deduplicated header order of the source file.
	Headers []string
	Records []Record
}

// Headers of special, non-metric columns in the German exports.
const (
	dateColumn       = "Datum"
	childASINColumn  = "(Untergeordnete) ASIN"
	parentASINColumn = "(Übergeordnete) ASIN"
)

// segment vocabulary observed across export revisions: en-dash headers are
// the common case, plain hyphens show up in older files.
var fieldCandidates = map[TrafficSegment]map[Field][]string{
	SegmentNormal: {
		FieldUnits:   {"Bestellte Einheiten"},
		FieldRevenue: {"Durch bestellte Produkte erzielter Umsatz"},
		FieldPageViews: {
			"Seitenaufrufe – Summe",
			"Seitenaufrufe - Summe",
			"Sitzungen – Summe",
			"Sitzungen - Summe",
		},
		FieldSessions:        {"Sitzungen – Summe", "Sitzungen - Summe"},
		FieldOrders:          {"Zahl der Bestellposten"},
		FieldMobileSessions:  {"Sitzungen – mobile App", "Sitzungen - mobile App"},
		FieldBrowserSessions: {"Sitzungen – Browser", "Sitzungen - Browser"},
		FieldConversionRate:  {"Prozentsatz Bestellposten pro Sitzung"},
	},
	SegmentB2B: {
		FieldUnits:   {"Bestellte Einheiten – B2B", "Bestellte Einheiten - B2B"},
		FieldRevenue: {"Bestellsumme – B2B", "Bestellsumme - B2B"},
		FieldPageViews: {
			"Seitenaufrufe – Summe – B2B",
			"Seitenaufrufe - Summe - B2B",
			"Sitzungen – Summe – B2B",
			"Sitzungen - Summe - B2B",
		},
		FieldSessions: {"Sitzungen – Summe – B2B", "Sitzungen - Summe - B2B"},
		FieldOrders:   {"Zahl der Bestellposten – B2B", "Zahl der Bestellposten - B2B"},
		FieldMobileSessions: {
			"Sitzungen – mobile App – B2B",
			"Sitzungen - mobile App - B2B",
		},
		FieldBrowserSessions: {
			"Sitzungen – Browser – B2B",
			"Sitzungen - Browser - B2B",
		},
		FieldConversionRate: {"Bestellposten pro Sitzung Prozentwert – B2B"},
	},
}

// Candidates returns the ordered list of acceptable raw header spellings for
// a logical field within a traffic segment.
func Candidates(segment TrafficSegment, field Field) []string {
	return fieldCandidates[segment][field]
}

// Value normalizes the cell for a resolved header according to the field's
// value kind. A missing cell yields 0.
func (r Record) Value(header string, kind ValueKind) float64 {
	cell, ok := r.Raw[header]
	if !ok {
		return 0
	}
	switch kind {
	case KindCurrency:
		return ParseCurrency(cell)
	case KindPercent:
		return ParsePercent(cell)
	default:
		return ParseNumeric(cell)
	}
}
