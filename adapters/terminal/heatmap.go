// Package terminal renders the design matrix as a coloured heatmap for the console.
package terminal

import (
	"context"
	"fmt"
	"io"
	"strings"

	"designspace/domain/design"
	"designspace/domain/report"

	"github.com/charmbracelet/lipgloss"
)

const (
	cellWidth  = 16
	labelWidth = 38
	barWidth   = 12
)

// HeatmapRenderer draws a MatrixView with lipgloss styles
type HeatmapRenderer struct{}

// NewHeatmapRenderer creates a terminal renderer
func NewHeatmapRenderer() *HeatmapRenderer {
	return &HeatmapRenderer{}
}

func (r *HeatmapRenderer) Name() string      { return "terminal" }
func (r *HeatmapRenderer) Extension() string { return ".txt" }

// Render writes the heatmap, column legend and P(>=1) bars to w
func (r *HeatmapRenderer) Render(ctx context.Context, view report.MatrixView, w io.Writer) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	re := lipgloss.NewRenderer(w)
	styles := newStyles(re)

	var blocks []string
	blocks = append(blocks, styles.title.Render(view.Title))
	blocks = append(blocks, styles.muted.Render(constantsLine(view.Constants)))
	blocks = append(blocks, "")

	for _, row := range view.Rows {
		blocks = append(blocks, r.renderRow(styles, row))
	}

	blocks = append(blocks, r.renderColumnLegend(styles, view.Columns))
	blocks = append(blocks, "")
	blocks = append(blocks, r.renderProbabilityBars(styles, view.Columns)...)

	if hl := view.HighlightedCells(); len(hl) > 0 {
		blocks = append(blocks, "")
		for _, cell := range hl {
			line := fmt.Sprintf("%s %s: %d trials, %.1f min", cell.Highlight.Marker, cell.Highlight.Name,
				cell.Metrics.TotalTrials, cell.Metrics.DurationMinutes)
			blocks = append(blocks, styles.bold.Render(line))
		}
	}

	_, err := io.WriteString(w, lipgloss.JoinVertical(lipgloss.Left, blocks...)+"\n")
	return err
}

type styles struct {
	re    *lipgloss.Renderer
	title lipgloss.Style
	muted lipgloss.Style
	bold  lipgloss.Style
	label lipgloss.Style
	cell  lipgloss.Style
}

func newStyles(re *lipgloss.Renderer) styles {
	return styles{
		re:    re,
		title: re.NewStyle().Bold(true),
		muted: re.NewStyle().Foreground(lipgloss.Color("241")),
		bold:  re.NewStyle().Bold(true),
		label: re.NewStyle().Width(labelWidth),
		cell:  re.NewStyle().Width(cellWidth).Height(2).Align(lipgloss.Center),
	}
}

func (r *HeatmapRenderer) renderRow(s styles, row report.RowView) string {
	sub := s.re.NewStyle().Foreground(lipgloss.Color(row.SubLabelColor)).Render(row.SubLabel)
	label := s.label.Render(s.bold.Render(row.Label) + "\n" + sub)

	parts := []string{label}
	for _, cell := range row.Cells {
		parts = append(parts, renderCell(s, cell))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func renderCell(s styles, cell report.CellView) string {
	text := cell.Text
	style := s.cell.
		Background(lipgloss.Color(cell.FillColor)).
		Foreground(lipgloss.Color(cell.TextColor))
	if cell.Highlight != nil {
		lines := strings.SplitN(text, "\n", 2)
		lines[0] = cell.Highlight.Marker + " " + lines[0]
		text = strings.Join(lines, "\n")
		style = style.Bold(true).Underline(true)
	}
	return style.Render(text)
}

func (r *HeatmapRenderer) renderColumnLegend(s styles, cols []report.ColumnView) string {
	parts := []string{s.label.Render("")}
	for _, col := range cols {
		parts = append(parts, s.cell.Render(col.Label+"\n"+col.InteractionLabel))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (r *HeatmapRenderer) renderProbabilityBars(s styles, cols []report.ColumnView) []string {
	lines := []string{s.bold.Render("P(item seen at least once)")}
	for _, col := range cols {
		filled := int(col.ProbAtLeastOne*barWidth + 0.5)
		bar := s.re.NewStyle().Foreground(lipgloss.Color(col.BarColor)).
			Render(strings.Repeat("█", filled)) + strings.Repeat("░", barWidth-filled)
		lines = append(lines, fmt.Sprintf("%-7s %s %4s  %s", col.Label, bar, col.ProbLabel, col.Tier))
	}
	lines = append(lines, s.muted.Render(fmt.Sprintf("reference lines: %.0f%% high, %.0f%% medium",
		design.HighProbabilityThreshold*100, design.MediumProbabilityThreshold*100)))
	return lines
}

func constantsLine(c design.ExperimentConstants) string {
	return fmt.Sprintf("k = %d items/trial, %.0f s/trial, minority %s, target good-rate %.0f%%",
		c.ItemsPerTrial, c.SecondsPerTrial, report.SplitLabel(c.MinorityShare), c.TargetGoodFraction*100)
}
