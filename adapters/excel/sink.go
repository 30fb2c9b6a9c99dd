package excel

import (
	"context"
	"fmt"
	"sync"

	"designspace/domain/tabular"
	"designspace/internal"
	"designspace/internal/errors"

	"github.com/xuri/excelize/v2"
)

// maxSheetName is the Excel limit on sheet name length
const maxSheetName = 31

// WorkbookSink collects tables as sheets of one workbook, saved on Close
type WorkbookSink struct {
	mu     sync.Mutex
	path   string
	f      *excelize.File
	sheets []string
	logger *internal.Logger
}

// NewWorkbookSink creates a sink that writes a single workbook to path
func NewWorkbookSink(path string) *WorkbookSink {
	return &WorkbookSink{
		path:   path,
		f:      excelize.NewFile(),
		logger: internal.DefaultLogger.WithComponent("WorkbookSink"),
	}
}

// WriteTable adds one sheet holding the table's header and records
func (s *WorkbookSink) WriteTable(ctx context.Context, table *tabular.Table) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	name := table.Name
	if len(name) > maxSheetName {
		name = name[:maxSheetName]
	}

	if len(s.sheets) == 0 {
		if err := s.f.SetSheetName("Sheet1", name); err != nil {
			return errors.ExportFailed(table.Name, err)
		}
	} else if _, err := s.f.NewSheet(name); err != nil {
		return errors.ExportFailed(table.Name, err)
	}
	s.sheets = append(s.sheets, name)

	header := make([]interface{}, 0, len(table.Columns()))
	for _, col := range table.Columns() {
		header = append(header, col)
	}
	if err := setRow(s.f, name, 1, 1, header); err != nil {
		return errors.ExportFailed(table.Name, err)
	}
	for i, record := range table.Records() {
		values := make([]interface{}, len(record))
		for j, v := range record {
			values[j] = v
		}
		if err := setRow(s.f, name, 1, i+2, values); err != nil {
			return errors.ExportFailed(table.Name, err)
		}
	}

	s.logger.Debug("sheet %s: %d rows, %d columns", name, table.Len(), len(header))
	return nil
}

// Sheets returns the sheet names written so far, in order
func (s *WorkbookSink) Sheets() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.sheets...)
}

// Close saves the workbook. A sink with no tables writes nothing.
func (s *WorkbookSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer s.f.Close()

	if len(s.sheets) == 0 {
		return nil
	}
	if err := s.f.SaveAs(s.path); err != nil {
		return errors.ExportFailed("workbook", fmt.Errorf("save %s: %w", s.path, err))
	}
	s.logger.Info("saved %d sheets to %s", len(s.sheets), s.path)
	return nil
}
