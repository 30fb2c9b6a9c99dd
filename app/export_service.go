package app

import (
	"context"

	"designspace/domain/core"
	"designspace/domain/tabular"
	"designspace/internal"
	"designspace/internal/errors"
	"designspace/ports"

	"golang.org/x/sync/errgroup"
)

// ExportSummary counts the rows written per table
type ExportSummary struct {
	RunID  core.RunID     `json:"run_id"`
	Tables []string       `json:"tables"`
	Rows   map[string]int `json:"rows"`
}

// ExportService flattens a participant export and writes every table to each sink
type ExportService struct {
	source ports.ExportSource
	sinks  []ports.TableSink
	logger *internal.Logger
}

// NewExportService creates an export service
func NewExportService(source ports.ExportSource, sinks ...ports.TableSink) *ExportService {
	return &ExportService{
		source: source,
		sinks:  sinks,
		logger: internal.DefaultLogger.WithComponent("ExportService"),
	}
}

// Export reads the source once and fans the tables out to the sinks. Each sink
// runs in its own goroutine and receives tables in source order. Sinks are
// closed even when a write fails.
func (s *ExportService) Export(ctx context.Context) (*ExportSummary, error) {
	tables, err := s.source.ReadTables(ctx)
	if err != nil {
		return nil, err
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, sink := range s.sinks {
		g.Go(func() error {
			for _, table := range tables {
				if err := sink.WriteTable(gctx, table); err != nil {
					return err
				}
			}
			return nil
		})
	}
	writeErr := g.Wait()

	var closeErr error
	for _, sink := range s.sinks {
		if err := sink.Close(); err != nil && closeErr == nil {
			closeErr = err
		}
	}
	if writeErr != nil {
		return nil, writeErr
	}
	if closeErr != nil {
		return nil, errors.Wrap(closeErr, "close sink")
	}

	summary := summarizeTables(tables)
	for _, name := range summary.Tables {
		s.logger.Info("%s: %d rows", name, summary.Rows[name])
	}
	return summary, nil
}

func summarizeTables(tables []*tabular.Table) *ExportSummary {
	summary := &ExportSummary{
		RunID: core.NewRunID(),
		Rows:  make(map[string]int, len(tables)),
	}
	for _, t := range tables {
		summary.Tables = append(summary.Tables, t.Name)
		summary.Rows[t.Name] = t.Len()
	}
	return summary
}
