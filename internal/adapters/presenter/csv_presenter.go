package presenter

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/mikey/applytrack/internal/core"
)

var csvHeaders = []string{"Date", "Company", "Role", "Status", "Subject", "Notes"}

// CSVPresenter exports the records of a run to a CSV file, replacing any previous export
type CSVPresenter struct {
	filename string
	logger   *zap.Logger
}

// NewCSVPresenter creates a CSV exporter writing to filename
func NewCSVPresenter(filename string, logger *zap.Logger) *CSVPresenter {
	return &CSVPresenter{
		filename: filename,
		logger:   logger,
	}
}

// Present writes a header row and one row per record
func (p *CSVPresenter) Present(_ context.Context, result *core.RunResult) error {
	file, err := os.Create(p.filename)
	if err != nil {
		return fmt.Errorf("create CSV file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)

	if err := writer.Write(csvHeaders); err != nil {
		return fmt.Errorf("write CSV headers: %w", err)
	}

	var records []core.ApplicationRecord
	if result != nil {
		records = result.Records
	}
	for _, r := range records {
		row := []string{r.Date, r.Company, r.Role, string(r.Status), r.Subject, r.Notes}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush CSV file: %w", err)
	}

	p.logger.Info("Exported records", zap.String("file", p.filename), zap.Int("count", len(records)))
	return nil
}
