package dataprocessing

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"bizreport/internal/report"
)

// Aggregator groups raw report records and derives KPIs. It consolidates the
// aggregation logic for the time-series view, the product leaderboard, and
// the top/flop selection into one configurable component.
type Aggregator struct {
	logger        *slog.Logger
	segment       report.TrafficSegment
	useNativeRate bool
}

// AggregatorConfig holds configuration options for the Aggregator.
type AggregatorConfig struct {
	// Segment selects the Normal or B2B metric columns.
	Segment report.TrafficSegment
	// UseNativeRate prefers the report-native conversion rate column when
	// it resolves, averaging it across the group instead of recomputing
	// from summed components. Native average-rate columns cannot be
	// re-derived from sums without weighting error.
	UseNativeRate bool
}

// AggregateRow is one output row per group: summed base metrics plus
// derived KPIs. Key is either a period key or an ASIN.
type AggregateRow struct {
	Key     string    `json:"key"`
	Date    time.Time `json:"date,omitempty"`
	HasDate bool      `json:"has_date"`

	Units           float64 `json:"units"`
	Revenue         float64 `json:"revenue"`
	PageViews       float64 `json:"page_views"`
	Sessions        float64 `json:"sessions"`
	Orders          float64 `json:"orders"`
	MobileSessions  float64 `json:"mobile_sessions"`
	BrowserSessions float64 `json:"browser_sessions"`

	ConversionRate    float64 `json:"conversion_rate"`
	AverageOrderValue float64 `json:"average_order_value"`
	RevenuePerSession float64 `json:"revenue_per_session"`
}

// Result carries the aggregate rows together with the column resolution
// outcome. MissingColumns lists the expected header of every logical field
// that could not be resolved; those metrics are zero-filled, and the caller
// must surface the list to the operator.
type Result struct {
	Rows           []AggregateRow          `json:"rows"`
	Columns        map[report.Field]string `json:"columns"`
	MissingColumns []string                `json:"missing_columns,omitempty"`
}

// NewAggregator creates an aggregator for one traffic segment.
func NewAggregator(logger *slog.Logger, config AggregatorConfig) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	if config.Segment == "" {
		config.Segment = report.SegmentNormal
	}
	return &Aggregator{
		logger:        logger,
		segment:       config.Segment,
		useNativeRate: config.UseNativeRate,
	}
}

// ByPeriod groups records by period key and sums the base metrics per day,
// producing the time-series rows sorted chronologically. Degenerate keys
// (rows whose day could not be determined) sort after dated rows.
func (a *Aggregator) ByPeriod(ctx context.Context, headers []string, records []report.Record) *Result {
	res := a.aggregate(ctx, headers, records, func(r report.Record) (string, bool) {
		return r.PeriodKey, true
	})

	sort.Slice(res.Rows, func(i, j int) bool {
		ri, rj := res.Rows[i], res.Rows[j]
		if ri.HasDate != rj.HasDate {
			return ri.HasDate
		}
		if ri.HasDate {
			return ri.Date.Before(rj.Date)
		}
		return ri.Key < rj.Key
	})

	return res
}

// ByASIN groups product-level records by product identifier, producing the
// leaderboard rows sorted by revenue descending. Records without an ASIN
// (account-level data has no product dimension) are skipped.
func (a *Aggregator) ByASIN(ctx context.Context, headers []string, records []report.Record) *Result {
	res := a.aggregate(ctx, headers, records, func(r report.Record) (string, bool) {
		return r.ASIN, r.ASIN != ""
	})

	sort.Slice(res.Rows, func(i, j int) bool {
		if res.Rows[i].Revenue != res.Rows[j].Revenue {
			return res.Rows[i].Revenue > res.Rows[j].Revenue
		}
		return res.Rows[i].Key < res.Rows[j].Key
	})

	return res
}

// ResolveFields resolves every logical field of the configured segment
// against the given headers. The second return value lists the expected
// header (first candidate spelling) of every field that did not resolve.
func (a *Aggregator) ResolveFields(headers []string) (map[report.Field]string, []string) {
	columns := make(map[report.Field]string, len(report.BaseFields)+1)
	var missing []string

	fields := append([]report.Field{}, report.BaseFields...)
	if a.useNativeRate {
		fields = append(fields, report.FieldConversionRate)
	}

	for _, field := range fields {
		candidates := report.Candidates(a.segment, field)
		header, ok := report.ResolveColumn(headers, candidates)
		if !ok {
			// The native rate column is an optional optimization; its
			// absence is not an operator-visible defect.
			if field != report.FieldConversionRate {
				missing = append(missing, candidates[0])
			}
			continue
		}
		columns[field] = header
	}

	return columns, missing
}

type keyFunc func(report.Record) (string, bool)

func (a *Aggregator) aggregate(ctx context.Context, headers []string, records []report.Record, key keyFunc) *Result {
	columns, missing := a.ResolveFields(headers)
	if len(missing) > 0 {
		a.logger.WarnContext(ctx, "expected report columns not found, metrics zero-filled",
			slog.String("segment", string(a.segment)),
			slog.Any("missing_columns", missing))
	}

	type group struct {
		row       AggregateRow
		rateSum   float64
		rateCount int
	}

	groups := make(map[string]*group)
	order := make([]string, 0)

	nativeRateCol, hasNativeRate := columns[report.FieldConversionRate]

	for _, rec := range records {
		k, ok := key(rec)
		if !ok {
			continue
		}
		g, exists := groups[k]
		if !exists {
			g = &group{row: AggregateRow{Key: k, Date: rec.Date, HasDate: rec.HasDate}}
			groups[k] = g
			order = append(order, k)
		}

		for _, field := range report.BaseFields {
			header, ok := columns[field]
			if !ok {
				continue // zero-filled
			}
			v := rec.Value(header, field.Kind())
			switch field {
			case report.FieldUnits:
				g.row.Units += v
			case report.FieldRevenue:
				g.row.Revenue += v
			case report.FieldPageViews:
				g.row.PageViews += v
			case report.FieldSessions:
				g.row.Sessions += v
			case report.FieldOrders:
				g.row.Orders += v
			case report.FieldMobileSessions:
				g.row.MobileSessions += v
			case report.FieldBrowserSessions:
				g.row.BrowserSessions += v
			}
		}

		if a.useNativeRate && hasNativeRate {
			g.rateSum += rec.Value(nativeRateCol, report.KindPercent)
			g.rateCount++
		}
	}

	rows := make([]AggregateRow, 0, len(groups))
	for _, k := range order {
		g := groups[k]
		a.deriveKPIs(&g.row, g.rateSum, g.rateCount)
		rows = append(rows, g.row)
	}

	a.logger.DebugContext(ctx, "aggregated report records",
		slog.String("segment", string(a.segment)),
		slog.Int("records", len(records)),
		slog.Int("groups", len(rows)))

	return &Result{Rows: rows, Columns: columns, MissingColumns: missing}
}

// deriveKPIs fills the derived metrics on a summed row. When a native rate
// column was resolved its group mean is preserved as reported; otherwise
// the rate is recomputed from orders and sessions.
func (a *Aggregator) deriveKPIs(row *AggregateRow, rateSum float64, rateCount int) {
	if rateCount > 0 {
		row.ConversionRate = rateSum / float64(rateCount)
	} else {
		row.ConversionRate = safeDiv(row.Orders, row.Sessions) * 100
	}
	row.AverageOrderValue = safeDiv(row.Revenue, row.Orders)
	row.RevenuePerSession = safeDiv(row.Revenue, row.Sessions)
}

// safeDiv is the guarded division used for every derived metric: a zero
// denominator yields 0, never NaN or Inf.
func safeDiv(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}
