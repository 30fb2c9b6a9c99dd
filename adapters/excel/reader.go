package excel

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"designspace/domain/core"
	"designspace/domain/tabular"
	"designspace/internal"

	"github.com/xuri/excelize/v2"
)

// DataReader reads a previously exported table back from .xlsx or .csv
type DataReader struct {
	filePath string
	fileType string // "xlsx" or "csv"
	logger   *internal.Logger
}

// NewDataReader creates a reader; the file type follows the extension
func NewDataReader(filePath string) *DataReader {
	fileType := "xlsx"
	if strings.ToLower(filepath.Ext(filePath)) == ".csv" {
		fileType = "csv"
	}
	return &DataReader{
		filePath: filePath,
		fileType: fileType,
		logger:   internal.DefaultLogger.WithComponent("DataReader"),
	}
}

// ReadTables reads every sheet of a workbook, in sheet order, or the single table of a CSV
func (r *DataReader) ReadTables(ctx context.Context) ([]*tabular.Table, error) {
	if r.fileType == "csv" {
		t, err := r.ReadTable("")
		if err != nil {
			return nil, err
		}
		return []*tabular.Table{t}, nil
	}

	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", core.ErrInputNotFound, r.filePath)
	}
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	sheets := f.GetSheetList()
	f.Close()

	tables := make([]*tabular.Table, 0, len(sheets))
	for _, sheet := range sheets {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		t, err := r.ReadTable(sheet)
		if err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}
	r.logger.Info("loaded %d sheets from %s", len(tables), r.filePath)
	return tables, nil
}

// ReadTable reads one sheet (ignored for CSV) into a table. The first row is the header.
func (r *DataReader) ReadTable(sheet string) (*tabular.Table, error) {
	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", core.ErrInputNotFound, r.filePath)
	}

	start := time.Now()
	var rows [][]string
	var err error
	switch r.fileType {
	case "csv":
		rows, err = r.readCSV()
	default:
		rows, err = r.readSheet(sheet)
	}
	if err != nil {
		return nil, err
	}
	r.logger.Debug("%s read in %.2fms (%d rows)", r.filePath, float64(time.Since(start).Microseconds())/1e3, len(rows))

	name := sheet
	if r.fileType == "csv" {
		name = strings.TrimSuffix(filepath.Base(r.filePath), filepath.Ext(r.filePath))
	}
	return processRows(name, rows)
}

func (r *DataReader) readSheet(sheet string) ([][]string, error) {
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}
	return rows, nil
}

func (r *DataReader) readCSV() ([][]string, error) {
	file, err := os.Open(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV file: %w", err)
	}
	return rows, nil
}

// processRows turns raw rows into a table; short rows leave trailing cells empty
func processRows(name string, rows [][]string) (*tabular.Table, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%s has no header row", name)
	}

	headers := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		headers[i] = strings.TrimSpace(h)
	}

	table := tabular.NewTable(name, headers...)
	for _, raw := range rows[1:] {
		row := make(tabular.Row, 0, len(headers))
		for j, cell := range raw {
			if j < len(headers) {
				row = append(row, tabular.Field{Key: headers[j], Value: strings.TrimSpace(cell)})
			}
		}
		table.Append(row)
	}
	return table, nil
}
