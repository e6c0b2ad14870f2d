// Package report contains the domain core for Amazon seller business
// report exports: loading CSV/XLSX files into raw records with period keys,
// normalizing German/mixed-locale cell values, and resolving logical metric
// fields against drifting column headers.
package report
