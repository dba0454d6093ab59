package exporter

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"
)

// Sheet names are capped by the xlsx format
const maxSheetNameLen = 31

// WriteWorkbook writes one xlsx workbook with a sheet per report. Each
// sheet gets the report's headers in row 1 followed by its records.
func WriteWorkbook(path string, reports []Report) error {
	f, err := buildWorkbook(reports)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}

	slog.Info("Workbook written",
		slog.String("path", path),
		slog.Int("sheets", len(reports)))
	return nil
}

// WriteWorkbookTo streams the workbook to a writer, for HTTP downloads
func WriteWorkbookTo(w io.Writer, reports []Report) error {
	f, err := buildWorkbook(reports)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to stream workbook: %w", err)
	}
	return nil
}

func buildWorkbook(reports []Report) (*excelize.File, error) {
	if len(reports) == 0 {
		return nil, fmt.Errorf("no reports to write")
	}

	f := excelize.NewFile()

	for i, report := range reports {
		sheet := sheetName(report.Name)
		if i == 0 {
			// Rename the default sheet instead of leaving it empty
			if err := f.SetSheetName("Sheet1", sheet); err != nil {
				f.Close()
				return nil, fmt.Errorf("failed to rename sheet %s: %w", sheet, err)
			}
		} else {
			if _, err := f.NewSheet(sheet); err != nil {
				f.Close()
				return nil, fmt.Errorf("failed to create sheet %s: %w", sheet, err)
			}
		}

		if err := writeSheet(f, sheet, report); err != nil {
			f.Close()
			return nil, err
		}
	}
	return f, nil
}

func writeSheet(f *excelize.File, sheet string, report Report) error {
	row := make([]interface{}, len(report.Headers))
	for i, h := range report.Headers {
		row[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &row); err != nil {
		return fmt.Errorf("failed to write headers to %s: %w", sheet, err)
	}

	for i, record := range report.Records {
		row := make([]interface{}, len(record))
		for j, v := range record {
			row[j] = v
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("failed to compute cell for %s row %d: %w", sheet, i+2, err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+2, err)
		}
	}
	return nil
}

func sheetName(name string) string {
	if len(name) > maxSheetNameLen {
		return name[:maxSheetNameLen]
	}
	return name
}
