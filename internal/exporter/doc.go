// Package exporter writes aggregated business report data to CSV and JSON
// files. CSV output carries a UTF-8 BOM so Excel renders the German column
// content correctly.
package exporter
