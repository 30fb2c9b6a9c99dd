package app

import (
	"context"
	"image/color"
	"io"

	"designspace/domain/report"
	"designspace/domain/tabular"

	"github.com/stretchr/testify/mock"
)

type MockRenderer struct {
	mock.Mock
	name string
	ext  string
}

func (m *MockRenderer) Name() string      { return m.name }
func (m *MockRenderer) Extension() string { return m.ext }

func (m *MockRenderer) Render(ctx context.Context, view report.MatrixView, w io.Writer) error {
	args := m.Called(ctx, view, w)
	if err := args.Error(0); err != nil {
		return err
	}
	_, err := io.WriteString(w, m.name)
	return err
}

type MockExportSource struct {
	mock.Mock
}

func (m *MockExportSource) ReadTables(ctx context.Context) ([]*tabular.Table, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*tabular.Table), args.Error(1)
}

type MockTableSink struct {
	mock.Mock
}

func (m *MockTableSink) WriteTable(ctx context.Context, table *tabular.Table) error {
	args := m.Called(ctx, table)
	return args.Error(0)
}

func (m *MockTableSink) Close() error {
	args := m.Called()
	return args.Error(0)
}

type MockCompositor struct {
	mock.Mock
}

func (m *MockCompositor) List(ctx context.Context, dir string) ([]string, error) {
	args := m.Called(ctx, dir)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockCompositor) Composite(ctx context.Context, src, dst string, bg color.RGBA) error {
	args := m.Called(ctx, src, dst, bg)
	return args.Error(0)
}
