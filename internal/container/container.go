package container

import (
	"fmt"
	"path/filepath"
	"strings"

	"designspace/adapters/excel"
	"designspace/adapters/firebase"
	"designspace/adapters/imaging"
	"designspace/adapters/markdown"
	"designspace/adapters/tables"
	"designspace/adapters/terminal"
	"designspace/app"
	"designspace/internal"
	"designspace/internal/config"
	"designspace/ports"
	"designspace/ui"
)

// Container holds all application dependencies
type Container struct {
	Config *config.Config
	Design *config.DesignFile

	// Services
	Matrix    *app.MatrixService
	Composite *app.CompositeService

	logger *internal.Logger
}

// New creates a new dependency injection container
func New(cfg *config.Config, df *config.DesignFile) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if df == nil {
		return nil, fmt.Errorf("design file cannot be nil")
	}

	c := &Container{
		Config: cfg,
		Design: df,
		Matrix: app.NewMatrixService(
			terminal.NewHeatmapRenderer(),
			excel.NewWorkbookRenderer(),
			markdown.NewRenderer(),
			markdown.NewHTMLRenderer(),
		),
		Composite: app.NewCompositeService(imaging.NewPNGCompositor()),
		logger:    internal.DefaultLogger.WithComponent("Container"),
	}
	c.logger.Debug("renderers: %v", c.Matrix.Formats())
	return c, nil
}

// MatrixRequest builds the evaluation described by the design file
func (c *Container) MatrixRequest() app.MatrixRequest {
	return app.MatrixRequest{
		Constants:  c.Design.Constants,
		NValues:    append([]int(nil), c.Design.NValues...),
		EValues:    append([]int(nil), c.Design.EValues...),
		Highlights: c.Design.Highlights,
	}
}

// ExportService reads input (the configured export when empty) and writes one CSV
// per table. A non-empty workbook path adds an xlsx sink with one sheet per table.
// A .xlsx or .csv input is read back as tables instead of parsed as a JSON export.
func (c *Container) ExportService(input, outputDir, workbook string) (*app.ExportService, error) {
	if input == "" {
		input = c.Config.Paths.ExportInput
	}
	if outputDir == "" {
		outputDir = c.Config.Paths.ExportOutputDir
	}

	csvSink, err := tables.NewCSVSink(outputDir)
	if err != nil {
		return nil, err
	}
	sinks := []ports.TableSink{csvSink}
	if workbook != "" {
		sinks = append(sinks, excel.NewWorkbookSink(workbook))
	}
	return app.NewExportService(exportSource(input), sinks...), nil
}

func exportSource(input string) ports.ExportSource {
	switch strings.ToLower(filepath.Ext(input)) {
	case ".xlsx", ".csv":
		return excel.NewDataReader(input)
	default:
		return firebase.NewFileSource(input)
	}
}

// RosterService writes the roster CSV into dir, the configured output when empty
func (c *Container) RosterService(dir string) (*app.RosterService, error) {
	if dir == "" {
		dir = c.Config.Roster.Output
	}
	sink, err := tables.NewCSVSink(dir)
	if err != nil {
		return nil, err
	}
	return app.NewRosterService(sink), nil
}

// CompositeRequest builds a compositing run from the configured directories
func (c *Container) CompositeRequest() app.CompositeRequest {
	return app.CompositeRequest{
		InputDir:  c.Config.Paths.FacesInputDir,
		OutputDir: c.Config.Paths.FacesOutputDir,
		Palette:   app.DefaultPalette(),
		Workers:   c.Config.Composite.Workers,
	}
}

// Server builds the report preview server over the design file's evaluation
func (c *Container) Server() *ui.Server {
	return ui.NewServer(c.Matrix, c.MatrixRequest())
}

// Addr is the listen address for the configured port
func (c *Container) Addr() string {
	return ":" + c.Config.Server.Port
}

// ReportPath is where a format lands under the configured output directory
func (c *Container) ReportPath(ext string) string {
	return filepath.Join(c.Config.Paths.OutputDir, app.OutputStem+ext)
}
