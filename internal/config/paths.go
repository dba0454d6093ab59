package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Paths resolves the data and report locations used across the application
type Paths struct {
	DataDir    string
	ReportsDir string

	OrderItemsCSV string
	ProductsCSV   string
	OrdersCSV     string
}

// NewPaths derives absolute paths from the data configuration. Relative
// directories resolve against the working directory.
func NewPaths(data DataConfig) (*Paths, error) {
	dataDir, err := filepath.Abs(data.Dir)
	if err != nil {
		return nil, fmt.Errorf("resolve data dir: %w", err)
	}
	reportsDir, err := filepath.Abs(data.ReportsDir)
	if err != nil {
		return nil, fmt.Errorf("resolve reports dir: %w", err)
	}

	return &Paths{
		DataDir:       dataDir,
		ReportsDir:    reportsDir,
		OrderItemsCSV: filepath.Join(dataDir, data.OrderItemsFile),
		ProductsCSV:   filepath.Join(dataDir, data.ProductsFile),
		OrdersCSV:     filepath.Join(dataDir, data.OrdersFile),
	}, nil
}

// GetReportPath returns the path of a report file inside the reports dir
func (p *Paths) GetReportPath(filename string) string {
	return filepath.Join(p.ReportsDir, filename)
}

// EnsureReportsDir creates the reports directory if missing
func (p *Paths) EnsureReportsDir() error {
	if err := os.MkdirAll(p.ReportsDir, 0o755); err != nil {
		return fmt.Errorf("create reports dir: %w", err)
	}
	return nil
}
