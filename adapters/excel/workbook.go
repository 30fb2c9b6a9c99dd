package excel

import (
	"context"
	"fmt"
	"io"
	"strings"

	"designspace/domain/design"
	"designspace/domain/report"
	"designspace/internal/errors"

	"github.com/xuri/excelize/v2"
)

// Sheet names written by the workbook renderer
const (
	SheetMatrix      = "Matrix"
	SheetFeasibility = "Feasibility"
	SheetColumns     = "Columns"
	SheetMetrics     = "Metrics"
)

// WorkbookRenderer writes a MatrixView as an .xlsx workbook: a coloured heatmap
// sheet plus flat sheets for feasibility, column probabilities and raw metrics.
type WorkbookRenderer struct{}

// NewWorkbookRenderer creates a workbook renderer
func NewWorkbookRenderer() *WorkbookRenderer {
	return &WorkbookRenderer{}
}

func (r *WorkbookRenderer) Name() string      { return "xlsx" }
func (r *WorkbookRenderer) Extension() string { return ".xlsx" }

// Render builds the workbook in memory and streams it to w
func (r *WorkbookRenderer) Render(ctx context.Context, view report.MatrixView, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	b := &workbookBuilder{f: f, styles: make(map[string]int)}
	steps := []struct {
		name string
		fn   func(report.MatrixView) error
	}{
		{SheetMatrix, b.writeMatrix},
		{SheetFeasibility, b.writeFeasibility},
		{SheetColumns, b.writeColumns},
		{SheetMetrics, b.writeMetrics},
	}
	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := step.fn(view); err != nil {
			return errors.RenderFailed("xlsx sheet "+step.name, err)
		}
	}

	f.SetActiveSheet(0)
	if err := f.Write(w); err != nil {
		return errors.RenderFailed("xlsx", err)
	}
	return nil
}

type workbookBuilder struct {
	f       *excelize.File
	styles  map[string]int
	renamed bool
}

// sheet renames the default sheet on first use, otherwise adds a new one
func (b *workbookBuilder) sheet(name string) error {
	if !b.renamed {
		b.renamed = true
		return b.f.SetSheetName("Sheet1", name)
	}
	_, err := b.f.NewSheet(name)
	return err
}

func (b *workbookBuilder) style(fill, font string, bold, boxed bool) (int, error) {
	key := fmt.Sprintf("%s|%s|%t|%t", fill, font, bold, boxed)
	if id, ok := b.styles[key]; ok {
		return id, nil
	}

	s := &excelize.Style{
		Font:      &excelize.Font{Color: hexArgb(font), Bold: bold},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
	}
	if fill != "" {
		s.Fill = excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{hexArgb(fill)}}
	}
	if boxed {
		for _, side := range []string{"left", "top", "right", "bottom"} {
			s.Border = append(s.Border, excelize.Border{Type: side, Color: "000000", Style: 5})
		}
	}

	id, err := b.f.NewStyle(s)
	if err != nil {
		return 0, err
	}
	b.styles[key] = id
	return id, nil
}

func (b *workbookBuilder) writeMatrix(view report.MatrixView) error {
	if err := b.sheet(SheetMatrix); err != nil {
		return err
	}
	f := b.f

	if err := f.SetCellValue(SheetMatrix, "A1", view.Title); err != nil {
		return err
	}
	titleStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 14}})
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(SheetMatrix, "A1", "A1", titleStyle); err != nil {
		return err
	}

	const headerRow = 3
	header := []interface{}{"N \\ E"}
	for _, col := range view.Columns {
		header = append(header, col.Label+"\n"+col.InteractionLabel)
	}
	header = append(header, "minority good-rate")
	if err := setRow(f, SheetMatrix, 1, headerRow, header); err != nil {
		return err
	}

	for i, row := range view.Rows {
		r := headerRow + 1 + i
		if err := setRow(f, SheetMatrix, 1, r, []interface{}{row.Label}); err != nil {
			return err
		}
		for j, cell := range row.Cells {
			name, err := excelize.CoordinatesToCellName(j+2, r)
			if err != nil {
				return err
			}
			text := cell.Text
			if cell.Highlight != nil {
				text = cell.Highlight.Marker + " " + text
			}
			if err := f.SetCellValue(SheetMatrix, name, text); err != nil {
				return err
			}
			id, err := b.style(cell.FillColor, cell.TextColor, cell.Highlight != nil, cell.Highlight != nil)
			if err != nil {
				return err
			}
			if err := f.SetCellStyle(SheetMatrix, name, name, id); err != nil {
				return err
			}
		}

		subCell, err := excelize.CoordinatesToCellName(len(row.Cells)+2, r)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(SheetMatrix, subCell, row.SubLabel); err != nil {
			return err
		}
		id, err := b.style("", row.SubLabelColor, false, false)
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(SheetMatrix, subCell, subCell, id); err != nil {
			return err
		}
		if err := f.SetRowHeight(SheetMatrix, r, 32); err != nil {
			return err
		}
	}

	// Probability row under the heatmap
	probRow := headerRow + len(view.Rows) + 1
	if err := setRow(f, SheetMatrix, 1, probRow, []interface{}{"P(≥1 interaction)"}); err != nil {
		return err
	}
	for j, col := range view.Columns {
		name, err := excelize.CoordinatesToCellName(j+2, probRow)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(SheetMatrix, name, fmt.Sprintf("%s %s", col.ProbLabel, col.Tier)); err != nil {
			return err
		}
		id, err := b.style(col.BarColor, report.DarkText, false, false)
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(SheetMatrix, name, name, id); err != nil {
			return err
		}
	}

	lastCol, err := excelize.ColumnNumberToName(len(view.Columns) + 1)
	if err != nil {
		return err
	}
	if err := f.SetColWidth(SheetMatrix, "A", "A", 12); err != nil {
		return err
	}
	if err := f.SetColWidth(SheetMatrix, "B", lastCol, 14); err != nil {
		return err
	}
	subCol, err := excelize.ColumnNumberToName(len(view.Columns) + 2)
	if err != nil {
		return err
	}
	return f.SetColWidth(SheetMatrix, subCol, subCol, 34)
}

func (b *workbookBuilder) writeFeasibility(view report.MatrixView) error {
	if err := b.sheet(SheetFeasibility); err != nil {
		return err
	}
	header := []interface{}{"n", "minority_count", "feasible", "good_count_exact",
		"good_count_rounded", "achieved_good_pct", "deviation_pp", "tier", "label"}
	if err := setRow(b.f, SheetFeasibility, 1, 1, header); err != nil {
		return err
	}
	for i, row := range view.Rows {
		f := row.Feasibility
		values := []interface{}{row.N, f.MinorityCount, f.Feasible}
		if f.Ratio != nil {
			values = append(values, f.Ratio.GoodCountExact, f.Ratio.GoodCountRounded,
				f.Ratio.AchievedGoodFraction*100, f.Ratio.DeviationPP)
		} else {
			values = append(values, "", "", "", "")
		}
		values = append(values, string(row.Tier), row.SubLabel)
		if err := setRow(b.f, SheetFeasibility, 1, i+2, values); err != nil {
			return err
		}
	}
	return nil
}

func (b *workbookBuilder) writeColumns(view report.MatrixView) error {
	if err := b.sheet(SheetColumns); err != nil {
		return err
	}
	header := []interface{}{"e", "label", "expected_interactions", "p_at_least_one", "tier"}
	if err := setRow(b.f, SheetColumns, 1, 1, header); err != nil {
		return err
	}
	k := view.Constants.ItemsPerTrial
	for j, col := range view.Columns {
		values := []interface{}{col.E, col.Label, design.ExpectedInteractions(col.E, k), col.ProbAtLeastOne, string(col.Tier)}
		if err := setRow(b.f, SheetColumns, 1, j+2, values); err != nil {
			return err
		}
	}
	if len(view.Columns) == 0 {
		return nil
	}

	last := len(view.Columns) + 1
	return b.f.AddChart(SheetColumns, "G2", &excelize.Chart{
		Type: excelize.Col,
		Series: []excelize.ChartSeries{{
			Name:       fmt.Sprintf("%s!$D$1", SheetColumns),
			Categories: fmt.Sprintf("%s!$B$2:$B$%d", SheetColumns, last),
			Values:     fmt.Sprintf("%s!$D$2:$D$%d", SheetColumns, last),
		}},
		Title:  []excelize.RichTextRun{{Text: "P(item seen at least once)"}},
		Legend: excelize.ChartLegend{Position: "none"},
	})
}

func (b *workbookBuilder) writeMetrics(view report.MatrixView) error {
	if err := b.sheet(SheetMetrics); err != nil {
		return err
	}
	header := []interface{}{"n", "e", "total_trials", "duration_minutes",
		"expected_interactions_per_item", "prob_at_least_one", "severity", "highlight"}
	if err := setRow(b.f, SheetMetrics, 1, 1, header); err != nil {
		return err
	}
	r := 2
	for _, row := range view.Rows {
		for _, cell := range row.Cells {
			m := cell.Metrics
			highlight := ""
			if cell.Highlight != nil {
				highlight = cell.Highlight.Name
			}
			values := []interface{}{m.Point.PopulationSize, m.Point.Exposures, m.TotalTrials,
				m.DurationMinutes, m.ExpectedInteractionsPerItem, m.ProbAtLeastOne, cell.Severity, highlight}
			if err := setRow(b.f, SheetMetrics, 1, r, values); err != nil {
				return err
			}
			r++
		}
	}
	return nil
}

func setRow(f *excelize.File, sheet string, col, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}

// hexArgb strips the leading '#' excelize does not expect
func hexArgb(hex string) string {
	return strings.ToUpper(strings.TrimPrefix(hex, "#"))
}
