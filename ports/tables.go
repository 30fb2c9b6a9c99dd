package ports

import (
	"context"

	"designspace/domain/tabular"
)

// ExportSource reads a participant export into flat tables
type ExportSource interface {
	ReadTables(ctx context.Context) ([]*tabular.Table, error)
}

// TableSink persists flat tables. Tables arrive one at a time in export order;
// Close flushes anything buffered.
type TableSink interface {
	WriteTable(ctx context.Context, table *tabular.Table) error
	Close() error
}
