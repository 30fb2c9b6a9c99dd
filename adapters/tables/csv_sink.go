// Package tables writes flat tables to disk, one CSV file per table.
package tables

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"designspace/domain/tabular"
	"designspace/internal"
	"designspace/internal/errors"
)

// CSVSink writes each table to <dir>/<name>.csv
type CSVSink struct {
	dir    string
	logger *internal.Logger
}

// NewCSVSink creates the output directory if needed
func NewCSVSink(dir string) (*CSVSink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.ExportFailed("output directory", err)
	}
	return &CSVSink{
		dir:    dir,
		logger: internal.DefaultLogger.WithComponent("CSVSink"),
	}, nil
}

// Path returns the file a table is written to
func (s *CSVSink) Path(table string) string {
	return filepath.Join(s.dir, table+".csv")
}

// WriteTable writes header and records. Each call owns its own file, so
// concurrent calls for different tables are safe.
func (s *CSVSink) WriteTable(ctx context.Context, table *tabular.Table) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path := s.Path(table.Name)
	file, err := os.Create(path)
	if err != nil {
		return errors.ExportFailed(table.Name, err)
	}

	w := csv.NewWriter(file)
	if cols := table.Columns(); len(cols) > 0 {
		if err := w.Write(cols); err != nil {
			file.Close()
			return errors.ExportFailed(table.Name, err)
		}
	}
	if err := w.WriteAll(table.Records()); err != nil {
		file.Close()
		return errors.ExportFailed(table.Name, err)
	}
	if err := file.Close(); err != nil {
		return errors.ExportFailed(table.Name, fmt.Errorf("close %s: %w", path, err))
	}

	s.logger.Info("saved %d rows to %s", table.Len(), path)
	return nil
}

// Close is a no-op; every file is closed by WriteTable
func (s *CSVSink) Close() error {
	return nil
}
