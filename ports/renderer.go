package ports

import (
	"context"
	"io"

	"designspace/domain/report"
)

// MatrixRenderer draws a matrix view in one output format
type MatrixRenderer interface {
	// Name is the format key used on the command line ("terminal", "xlsx", ...)
	Name() string
	// Extension is the file suffix for written output, including the dot
	Extension() string
	Render(ctx context.Context, view report.MatrixView, w io.Writer) error
}
