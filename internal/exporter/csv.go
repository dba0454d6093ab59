package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"shoppulse/internal/config"
)

// CSVWriter writes flattened reports into the configured reports directory
type CSVWriter struct {
	paths *config.Paths
}

// NewCSVWriter creates a new CSV writer instance
func NewCSVWriter(paths *config.Paths) *CSVWriter {
	return &CSVWriter{paths: paths}
}

// WriteReport writes one report as a CSV file. Relative filenames resolve
// into the reports directory. Files start with a UTF-8 BOM so Excel opens
// them correctly.
func (w *CSVWriter) WriteReport(filename string, report Report) error {
	fullPath := w.resolvePath(filename)

	slog.Info("Writing CSV report",
		slog.String("report", report.Name),
		slog.String("path", fullPath),
		slog.Int("record_count", len(report.Records)))

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	// BOM helps Excel recognize UTF-8
	if _, err := file.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		return fmt.Errorf("failed to write BOM: %w", err)
	}

	return WriteReportTo(file, report)
}

// WriteReportTo streams one report as CSV without a BOM, for HTTP responses
func WriteReportTo(w io.Writer, report Report) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(report.Headers); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}
	for i, record := range report.Records {
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// resolvePath resolves a relative path into the reports directory
func (w *CSVWriter) resolvePath(filename string) string {
	if filepath.IsAbs(filename) {
		return filename
	}
	return w.paths.GetReportPath(filename)
}
