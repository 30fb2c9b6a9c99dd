// Package report turns a computed design grid into a presentation view: labels,
// colours and highlight markers. Renderers only ever see a MatrixView, so the
// numeric model and every output format stay decoupled.
package report

import (
	"fmt"
	"math"

	"designspace/domain/design"
)

// DefaultTitle heads every rendering of the matrix
const DefaultTitle = "Design Parameter Space: Population Size (N) × Exposures per Item (E)"

// CellView is one heatmap cell ready to draw
type CellView struct {
	Metrics   design.DerivedMetrics `json:"metrics"`
	Severity  float64               `json:"severity"`
	FillColor string                `json:"fill_color"`
	TextColor string                `json:"text_color"`
	Text      string                `json:"text"`
	Highlight *Highlight            `json:"highlight,omitempty"`
}

// RowView is one N row with its minority feasibility sub-label
type RowView struct {
	N             int                        `json:"n"`
	Label         string                     `json:"label"`
	Feasibility   design.MinorityFeasibility `json:"feasibility"`
	Tier          design.DeviationTier       `json:"tier"`
	SubLabel      string                     `json:"sub_label"`
	SubLabelColor string                     `json:"sub_label_color"`
	Cells         []CellView                 `json:"cells"`
}

// ColumnView is one E column with its P(>=1) bar
type ColumnView struct {
	E                int                    `json:"e"`
	Label            string                 `json:"label"`
	InteractionLabel string                 `json:"interaction_label"`
	ProbAtLeastOne   float64                `json:"prob_at_least_one"`
	ProbLabel        string                 `json:"prob_label"`
	Tier             design.ProbabilityTier `json:"tier"`
	BarColor         string                 `json:"bar_color"`
}

// MatrixView is everything a renderer needs
type MatrixView struct {
	Title       string                     `json:"title"`
	Constants   design.ExperimentConstants `json:"constants"`
	Rows        []RowView                  `json:"rows"`
	Columns     []ColumnView               `json:"columns"`
	MaxDuration float64                    `json:"max_duration"`
	Highlights  Highlights                 `json:"highlights"`
}

// BuildMatrixView lays out grid and feasibility rows; feasibility must be in grid row order
func BuildMatrixView(grid design.Grid, feasibility []design.MinorityFeasibility, highlights Highlights) MatrixView {
	if len(feasibility) != len(grid.NValues) {
		panic(fmt.Sprintf("feasibility rows (%d) do not match grid rows (%d)", len(feasibility), len(grid.NValues)))
	}

	maxDuration := grid.MaxDuration()
	c := grid.Constants

	rows := make([]RowView, len(grid.NValues))
	for i, n := range grid.NValues {
		f := feasibility[i]
		tier := f.Tier()
		cells := make([]CellView, len(grid.EValues))
		for j, m := range grid.Cells[i] {
			severity := design.ClassifyDuration(m.DurationMinutes, maxDuration)
			cell := CellView{
				Metrics:   m,
				Severity:  severity,
				FillColor: HeatColor(severity),
				TextColor: TextColorFor(severity),
				Text:      CellText(m),
			}
			if hl, ok := highlights.Lookup(n, m.Point.Exposures); ok {
				cell.Highlight = &hl
			}
			cells[j] = cell
		}
		rows[i] = RowView{
			N:             n,
			Label:         fmt.Sprintf("N = %d", n),
			Feasibility:   f,
			Tier:          tier,
			SubLabel:      MinorityLabel(f, c),
			SubLabelColor: DeviationColor(tier),
			Cells:         cells,
		}
	}

	columns := make([]ColumnView, len(grid.EValues))
	for j, e := range grid.EValues {
		p := design.ProbAtLeastOne(e, c.ItemsPerTrial)
		tier := design.ClassifyProbability(p)
		columns[j] = ColumnView{
			E:                e,
			Label:            fmt.Sprintf("E = %d", e),
			InteractionLabel: fmt.Sprintf("E[int] = %.1f", design.ExpectedInteractions(e, c.ItemsPerTrial)),
			ProbAtLeastOne:   p,
			ProbLabel:        fmt.Sprintf("%.0f%%", p*100),
			Tier:             tier,
			BarColor:         ProbabilityColor(tier),
		}
	}

	return MatrixView{
		Title:       DefaultTitle,
		Constants:   c,
		Rows:        rows,
		Columns:     columns,
		MaxDuration: maxDuration,
		Highlights:  highlights,
	}
}

// CellText is the two-line cell annotation
func CellText(m design.DerivedMetrics) string {
	return fmt.Sprintf("%d trials\n≈%.0f min", m.TotalTrials, m.DurationMinutes)
}

// MinorityLabel describes the achievable minority good-rate for a row
func MinorityLabel(f design.MinorityFeasibility, c design.ExperimentConstants) string {
	pp, ok := f.Deviation()
	if !ok {
		return fmt.Sprintf("%s split not possible", SplitLabel(c.MinorityShare))
	}

	actualPct := c.TargetGoodFraction*100 + pp
	if design.ClassifyDeviation(pp) == design.DeviationExact {
		return fmt.Sprintf("minority good-rate: %.0f%%  ✓", actualPct)
	}
	sign := ""
	if pp > 0 {
		sign = "+"
	}
	return fmt.Sprintf("minority good-rate: %.0f%% (%s%.1f pp)", actualPct, sign, pp)
}

// SplitLabel renders a minority share as "majority/minority", e.g. 0.20 -> "80/20"
func SplitLabel(minorityShare float64) string {
	minorityPct := math.Round(minorityShare * 100)
	return fmt.Sprintf("%.0f/%.0f", 100-minorityPct, minorityPct)
}

// HighlightedCells returns every highlighted cell in row-major order
func (v MatrixView) HighlightedCells() []CellView {
	var out []CellView
	for _, row := range v.Rows {
		for _, cell := range row.Cells {
			if cell.Highlight != nil {
				out = append(out, cell)
			}
		}
	}
	return out
}
