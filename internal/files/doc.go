// Package files provides discovery of business report files on disk for
// the batch CLI: CSV and XLSX exports, ordered by the date embedded in
// their file names.
package files
