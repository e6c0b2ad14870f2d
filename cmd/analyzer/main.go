// Command analyzer runs the report pipeline in batch mode: it discovers
// business report files in a directory, aggregates them, and writes the
// period series, leaderboard and top/flop selection as CSV and JSON files.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"bizreport/internal/config"
	"bizreport/internal/exporter"
	"bizreport/internal/files"
	"bizreport/internal/infrastructure"
	"bizreport/internal/report"
	"bizreport/internal/services"
)

func main() {
	inputDir := flag.String("in", "", "directory containing business report CSV/XLSX files (default: configured reports dir)")
	outputDir := flag.String("out", "", "directory for aggregate output files (default: configured output dir)")
	segment := flag.String("segment", "normal", "traffic segment to aggregate: normal or b2b")
	flag.Parse()

	if err := run(*inputDir, *outputDir, *segment); err != nil {
		fmt.Fprintf(os.Stderr, "analyzer: %v\n", err)
		os.Exit(1)
	}
}

func run(inputDir, outputDir, segmentFlag string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("initialize logger: %w", err)
	}

	if inputDir == "" {
		inputDir = cfg.Paths.ReportsDir
	}
	if outputDir == "" {
		outputDir = cfg.Paths.OutputDir
	}

	var segment report.TrafficSegment
	switch segmentFlag {
	case "normal":
		segment = report.SegmentNormal
	case "b2b":
		segment = report.SegmentB2B
	default:
		return fmt.Errorf("invalid segment %q: must be normal or b2b", segmentFlag)
	}

	ctx := context.Background()

	discovery := files.NewDiscovery(".")
	found, err := discovery.FindReportFiles(inputDir)
	if err != nil {
		return fmt.Errorf("discover report files: %w", err)
	}
	if len(found) == 0 {
		return fmt.Errorf("no report files found in %s", inputDir)
	}

	logger.Info("discovered report files",
		slog.String("dir", inputDir),
		slog.Int("count", len(found)))

	uploads := make([]services.UploadFile, 0, len(found))
	var handles []*os.File
	defer func() {
		for _, f := range handles {
			f.Close()
		}
	}()
	for _, fi := range found {
		f, err := os.Open(fi.Path)
		if err != nil {
			return fmt.Errorf("open %s: %w", fi.Path, err)
		}
		handles = append(handles, f)
		uploads = append(uploads, services.UploadFile{Name: fi.Name, Reader: f, XLSX: fi.IsXLSX()})
	}

	svc := services.NewReportService(logger, nil, cfg.Reports.UseNativeConversionRate)
	summary, err := svc.Load(ctx, uploads)
	if err != nil {
		return fmt.Errorf("load reports: %w", err)
	}
	logger.Info("reports loaded",
		slog.Int("files", summary.Files),
		slog.Int("records", summary.Records))

	opts := services.AggregateOptions{Segment: segment}
	periods, err := svc.PeriodSeries(ctx, opts)
	if err != nil {
		return fmt.Errorf("aggregate by period: %w", err)
	}
	if len(periods.MissingColumns) > 0 {
		logger.Warn("expected columns missing from the reports, metrics zero-filled",
			slog.Any("columns", periods.MissingColumns))
	}

	leaderboard, err := svc.Leaderboard(ctx, opts)
	if err != nil {
		return fmt.Errorf("aggregate by product: %w", err)
	}

	topflop, err := svc.TopFlop(ctx, opts)
	if err != nil {
		return fmt.Errorf("select top/flop: %w", err)
	}
	if topflop.Informational != "" {
		logger.Info(topflop.Informational)
	}

	comparison, err := svc.Comparison(ctx, opts)
	if err != nil {
		return fmt.Errorf("compare periods: %w", err)
	}
	if comparison.Informational != "" {
		logger.Info(comparison.Informational)
	}

	exp := exporter.NewAggregateExporter(outputDir)
	prefix := string(segment)
	if err := exp.WritePeriodSeries(prefix+"_periods.csv", periods.Rows); err != nil {
		return err
	}
	if err := exp.WriteLeaderboard(prefix+"_leaderboard.csv", leaderboard.Rows); err != nil {
		return err
	}
	if err := exp.WriteJSON(prefix+"_periods.json", periods.Rows); err != nil {
		return err
	}
	if err := exp.WriteJSON(prefix+"_topflop.json", topflop); err != nil {
		return err
	}
	if comparison.Comparison != nil {
		if err := exp.WriteJSON(prefix+"_comparison.json", comparison); err != nil {
			return err
		}
	}

	logger.Info("aggregates written", slog.String("dir", filepath.Clean(outputDir)))
	return nil
}
