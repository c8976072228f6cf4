package catalog

import (
	"context"
	"sync"

	"github.com/anime-shed/pokemon-palette-go/internal/logger"
	"github.com/anime-shed/pokemon-palette-go/pkg/models"
)

// Catalog ties the scanner, the report file and the run-once gate together.
type Catalog struct {
	scanner    *Scanner
	gate       *Gate
	reportPath string

	mu     sync.RWMutex
	report *models.Report
}

func New(scanner *Scanner, gate *Gate, reportPath string) *Catalog {
	return &Catalog{scanner: scanner, gate: gate, reportPath: reportPath}
}

// ReportPath returns where the report is written.
func (c *Catalog) ReportPath() string {
	return c.reportPath
}

// Process scans and writes the report unless the gate says it already ran.
// force resets the gate first.
func (c *Catalog) Process(ctx context.Context, force bool) (bool, error) {
	if force {
		if err := c.gate.Reset(); err != nil {
			return false, err
		}
	}

	return c.gate.RunOnce(ctx, func(ctx context.Context) error {
		report, err := c.scanner.Scan(ctx)
		if err != nil {
			return err
		}
		if err := WriteReport(c.reportPath, report); err != nil {
			return err
		}

		c.mu.Lock()
		c.report = report
		c.mu.Unlock()

		logger.WithField("report_path", c.reportPath).
			WithField("total_images", report.TotalImages).
			Info("Catalog report written")
		return nil
	})
}

// Report returns the last report, reading it from disk if this process has
// not produced one.
func (c *Catalog) Report() (*models.Report, error) {
	c.mu.RLock()
	report := c.report
	c.mu.RUnlock()
	if report != nil {
		return report, nil
	}

	report, err := ReadReport(c.reportPath)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.report = report
	c.mu.Unlock()
	return report, nil
}
