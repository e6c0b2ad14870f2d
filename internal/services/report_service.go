package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"bizreport/internal/dataprocessing"
	"bizreport/internal/infrastructure"
	"bizreport/internal/report"
)

// ErrNoReports indicates that no dataset has been loaded yet.
var ErrNoReports = errors.New("no reports loaded")

// ReportService orchestrates the full pipeline: load files, resolve columns,
// aggregate, derive KPIs. It holds the most recently uploaded dataset; every
// aggregation request recomputes from the raw records, nothing derived is
// cached.
type ReportService struct {
	logger        *slog.Logger
	loader        *report.Loader
	metrics       *infrastructure.Metrics
	useNativeRate bool

	mu      sync.RWMutex
	reports []*report.Report
}

// NewReportService creates the report service.
func NewReportService(logger *slog.Logger, metrics *infrastructure.Metrics, useNativeRate bool) *ReportService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReportService{
		logger:        logger.With(slog.String("component", "report_service")),
		loader:        report.NewLoader(logger),
		metrics:       metrics,
		useNativeRate: useNativeRate,
	}
}

// UploadFile is one file of an upload batch.
type UploadFile struct {
	Name   string
	Reader io.Reader
	// XLSX selects the Excel loader; CSV otherwise.
	XLSX bool
}

// LoadSummary describes the outcome of one dataset load.
type LoadSummary struct {
	Files       int      `json:"files"`
	Records     int      `json:"records"`
	ReportTypes []string `json:"report_types"`
}

// Load replaces the current dataset with the given files. A file that
// cannot be read at all fails the whole load; malformed cells inside a
// readable file never do.
func (s *ReportService) Load(ctx context.Context, uploads []UploadFile) (*LoadSummary, error) {
	if len(uploads) == 0 {
		return nil, fmt.Errorf("no files provided")
	}

	reports := make([]*report.Report, 0, len(uploads))
	summary := &LoadSummary{}
	seenTypes := make(map[report.ReportType]bool)

	for _, up := range uploads {
		var (
			rep *report.Report
			err error
		)
		if up.XLSX {
			rep, err = s.loader.LoadXLSX(ctx, up.Reader, up.Name)
		} else {
			rep, err = s.loader.LoadCSV(ctx, up.Reader, up.Name)
		}
		if err != nil {
			return nil, err
		}

		reports = append(reports, rep)
		summary.Files++
		summary.Records += len(rep.Records)
		if !seenTypes[rep.Type] {
			seenTypes[rep.Type] = true
			summary.ReportTypes = append(summary.ReportTypes, string(rep.Type))
		}

		if s.metrics != nil {
			s.metrics.ReportsLoaded.WithLabelValues(string(rep.Type)).Inc()
			s.metrics.RecordsLoaded.Add(float64(len(rep.Records)))
		}
	}

	s.mu.Lock()
	s.reports = reports
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "dataset loaded",
		slog.Int("files", summary.Files),
		slog.Int("records", summary.Records))

	return summary, nil
}

// AggregateOptions selects segment and optional product filter for an
// aggregation request.
type AggregateOptions struct {
	Segment report.TrafficSegment
	// ASINs restricts product-level records to the given products when
	// non-empty. Account-level records have no product dimension and are
	// unaffected.
	ASINs []string
}

// PeriodSeries aggregates the dataset by day.
func (s *ReportService) PeriodSeries(ctx context.Context, opts AggregateOptions) (*dataprocessing.Result, error) {
	headers, records, err := s.snapshot(opts)
	if err != nil {
		return nil, err
	}

	agg := s.newAggregator(opts.Segment)
	res := agg.ByPeriod(ctx, headers, records)
	s.countAggregation("period", opts.Segment, res)
	return res, nil
}

// Leaderboard aggregates the dataset by product.
func (s *ReportService) Leaderboard(ctx context.Context, opts AggregateOptions) (*dataprocessing.Result, error) {
	headers, records, err := s.snapshot(opts)
	if err != nil {
		return nil, err
	}

	agg := s.newAggregator(opts.Segment)
	res := agg.ByASIN(ctx, headers, records)
	s.countAggregation("asin", opts.Segment, res)
	return res, nil
}

// TopFlopResult pairs the selection with the disclosure data of the
// underlying leaderboard aggregation.
type TopFlopResult struct {
	dataprocessing.TopFlop
	MissingColumns []string `json:"missing_columns,omitempty"`
	// Informational is set when the selection is not meaningful (no
	// product with positive revenue).
	Informational string `json:"informational,omitempty"`
}

// TopFlop selects the best and worst performing products by revenue.
func (s *ReportService) TopFlop(ctx context.Context, opts AggregateOptions) (*TopFlopResult, error) {
	res, err := s.Leaderboard(ctx, opts)
	if err != nil {
		return nil, err
	}

	result := &TopFlopResult{
		TopFlop:        dataprocessing.SelectTopFlop(res.Rows),
		MissingColumns: res.MissingColumns,
	}
	if result.Top == nil {
		result.Informational = "no product with positive revenue"
	} else if result.Flop == nil {
		result.Informational = "only one product with positive revenue; top reported without flop"
	}
	return result, nil
}

// ComparisonResult pairs a period comparison with its disclosure data.
type ComparisonResult struct {
	Comparison     *dataprocessing.Comparison `json:"comparison,omitempty"`
	MissingColumns []string                   `json:"missing_columns,omitempty"`
	Informational  string                     `json:"informational,omitempty"`
}

// Comparison compares the two most recent periods of the dataset.
func (s *ReportService) Comparison(ctx context.Context, opts AggregateOptions) (*ComparisonResult, error) {
	res, err := s.PeriodSeries(ctx, opts)
	if err != nil {
		return nil, err
	}

	result := &ComparisonResult{MissingColumns: res.MissingColumns}
	cmp, ok := dataprocessing.ComparePeriods(res.Rows)
	if !ok {
		result.Informational = "fewer than two periods loaded; no comparison available"
		return result, nil
	}
	result.Comparison = cmp
	return result, nil
}

// ASINs returns the distinct product identifiers of the current dataset,
// for filter UIs. Empty for account-level data.
func (s *ReportService) ASINs() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.reports) == 0 {
		return nil, ErrNoReports
	}

	seen := make(map[string]bool)
	var asins []string
	for _, rep := range s.reports {
		for _, rec := range rep.Records {
			if rec.ASIN != "" && !seen[rec.ASIN] {
				seen[rec.ASIN] = true
				asins = append(asins, rec.ASIN)
			}
		}
	}
	return asins, nil
}

func (s *ReportService) newAggregator(segment report.TrafficSegment) *dataprocessing.Aggregator {
	return dataprocessing.NewAggregator(s.logger, dataprocessing.AggregatorConfig{
		Segment:       segment,
		UseNativeRate: s.useNativeRate,
	})
}

// snapshot returns the union headers and (optionally ASIN-filtered) records
// of the current dataset.
func (s *ReportService) snapshot(opts AggregateOptions) ([]string, []report.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.reports) == 0 {
		return nil, nil, ErrNoReports
	}

	var headers []string
	seen := make(map[string]bool)
	var records []report.Record

	filter := make(map[string]bool, len(opts.ASINs))
	for _, a := range opts.ASINs {
		filter[a] = true
	}

	for _, rep := range s.reports {
		for _, h := range rep.Headers {
			if !seen[h] {
				seen[h] = true
				headers = append(headers, h)
			}
		}
		for _, rec := range rep.Records {
			if len(filter) > 0 && rec.ASIN != "" && !filter[rec.ASIN] {
				continue
			}
			records = append(records, rec)
		}
	}

	return headers, records, nil
}

func (s *ReportService) countAggregation(grouping string, segment report.TrafficSegment, res *dataprocessing.Result) {
	if s.metrics == nil {
		return
	}
	if segment == "" {
		segment = report.SegmentNormal
	}
	s.metrics.Aggregations.WithLabelValues(grouping, string(segment)).Inc()
	if len(res.MissingColumns) > 0 {
		s.metrics.MissingColumns.WithLabelValues(string(segment)).Add(float64(len(res.MissingColumns)))
	}
}
