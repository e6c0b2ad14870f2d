package files

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"bizreport/internal/report"
)

// FileInfo represents information about a discovered report file.
type FileInfo struct {
	Path    string
	Name    string
	Size    int64
	ModTime time.Time
	// Date is the day embedded in the file name, when present.
	Date    time.Time
	HasDate bool
}

// Discovery provides report file discovery operations.
type Discovery struct {
	basePath string
}

// NewDiscovery creates a new file discovery instance rooted at basePath.
func NewDiscovery(basePath string) *Discovery {
	return &Discovery{basePath: basePath}
}

// FindReportFiles finds all CSV and XLSX report files in dir, sorted by the
// date embedded in their names (oldest first). Files without an embedded
// date sort last, by modification time.
func (d *Discovery) FindReportFiles(dir string) ([]FileInfo, error) {
	fullPath := dir
	if !filepath.IsAbs(dir) {
		fullPath = filepath.Join(d.basePath, dir)
	}

	entries, err := os.ReadDir(fullPath)
	if err != nil {
		return nil, fmt.Errorf("read directory %s: %w", fullPath, err)
	}

	var files []FileInfo
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()
		if !isReportFile(name) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}

		fi := FileInfo{
			Path:    filepath.Join(fullPath, name),
			Name:    name,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		}
		fi.Date, fi.HasDate = report.ParseReportDate(name)
		files = append(files, fi)
	}

	sort.Slice(files, func(i, j int) bool {
		fi, fj := files[i], files[j]
		if fi.HasDate != fj.HasDate {
			return fi.HasDate
		}
		if fi.HasDate && !fi.Date.Equal(fj.Date) {
			return fi.Date.Before(fj.Date)
		}
		if !fi.ModTime.Equal(fj.ModTime) {
			return fi.ModTime.Before(fj.ModTime)
		}
		return fi.Name < fj.Name
	})

	return files, nil
}

// IsXLSX reports whether the file is an Excel workbook by extension.
func (f FileInfo) IsXLSX() bool {
	return strings.EqualFold(filepath.Ext(f.Name), ".xlsx")
}

func isReportFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv", ".xlsx":
		return true
	}
	return false
}
