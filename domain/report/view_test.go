package report

import (
	"testing"

	"designspace/domain/design"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultView(t *testing.T) MatrixView {
	t.Helper()
	c := design.DefaultConstants()
	nValues := design.DefaultPopulationSizes()
	grid := design.ComputeGrid(nValues, design.DefaultExposureCounts(), c)
	return BuildMatrixView(grid, design.ComputeFeasibility(nValues, c), DefaultHighlights())
}

func TestBuildMatrixView_Layout(t *testing.T) {
	view := defaultView(t)

	require.Len(t, view.Rows, 5)
	require.Len(t, view.Columns, 7)
	assert.Equal(t, "N = 20", view.Rows[0].Label)
	assert.Equal(t, "E = 4", view.Columns[0].Label)
	assert.Equal(t, "E[int] = 1.0", view.Columns[0].InteractionLabel)
	assert.Equal(t, "E[int] = 3.0", view.Columns[4].InteractionLabel)
	assert.Equal(t, DefaultTitle, view.Title)
}

func TestBuildMatrixView_RowLabels(t *testing.T) {
	view := defaultView(t)

	expected := map[int]string{
		20:  "minority good-rate: 75% (+5.0 pp)",
		60:  "minority good-rate: 67% (-3.3 pp)",
		80:  "minority good-rate: 69% (-1.2 pp)",
		100: "minority good-rate: 70%  ✓",
	}
	for _, row := range view.Rows {
		if want, ok := expected[row.N]; ok {
			assert.Equal(t, want, row.SubLabel, "N=%d", row.N)
		}
	}

	assert.Equal(t, DeviationColor(design.DeviationExact), view.Rows[4].SubLabelColor)
	assert.Equal(t, DeviationColor(design.DeviationMinor), view.Rows[3].SubLabelColor)
	assert.Equal(t, DeviationColor(design.DeviationMajor), view.Rows[0].SubLabelColor)
}

func TestMinorityLabel_Unsatisfiable(t *testing.T) {
	c := design.DefaultConstants()
	f := design.ComputeFeasibility([]int{7}, c)[0]
	assert.Equal(t, "80/20 split not possible", MinorityLabel(f, c))

	c.MinorityShare = 0.35
	assert.Equal(t, "65/35 split not possible", MinorityLabel(design.ComputeFeasibility([]int{7}, c)[0], c))
}

func TestBuildMatrixView_Cells(t *testing.T) {
	view := defaultView(t)

	current := view.Rows[4].Cells[4] // N=100, E=12
	assert.Equal(t, "300 trials\n≈25 min", current.Text)
	require.NotNil(t, current.Highlight)
	assert.Equal(t, "★", current.Highlight.Marker)

	proposed := view.Rows[1].Cells[4] // N=40, E=12
	require.NotNil(t, proposed.Highlight)
	assert.Equal(t, "Proposed (N=40, E=12)", proposed.Highlight.Name)

	assert.Len(t, view.HighlightedCells(), 2)

	longest := view.Rows[4].Cells[6] // N=100, E=20
	assert.InDelta(t, 1/design.HeadroomFactor, longest.Severity, 1e-12)
	assert.Equal(t, LightText, longest.TextColor)

	shortest := view.Rows[0].Cells[0] // N=20, E=4: 20 trials
	assert.Equal(t, DarkText, shortest.TextColor)
	assert.Less(t, shortest.Severity, longest.Severity)
}

func TestBuildMatrixView_ColumnTiers(t *testing.T) {
	view := defaultView(t)

	tiers := make([]design.ProbabilityTier, len(view.Columns))
	for j, col := range view.Columns {
		tiers[j] = col.Tier
		assert.Equal(t, ProbabilityColor(col.Tier), col.BarColor)
	}
	assert.Equal(t, []design.ProbabilityTier{
		design.ProbabilityLow, design.ProbabilityLow,
		design.ProbabilityMedium, design.ProbabilityMedium,
		design.ProbabilityHigh, design.ProbabilityHigh, design.ProbabilityHigh,
	}, tiers)
	assert.Equal(t, "97%", view.Columns[4].ProbLabel)
}

func TestBuildMatrixView_MismatchedRowsPanics(t *testing.T) {
	c := design.DefaultConstants()
	grid := design.ComputeGrid([]int{20, 40}, []int{4}, c)
	assert.Panics(t, func() {
		BuildMatrixView(grid, design.ComputeFeasibility([]int{20}, c), nil)
	})
}

func TestHeatColor(t *testing.T) {
	assert.Equal(t, "#ffffcc", HeatColor(0))
	assert.Equal(t, "#800026", HeatColor(1))
	assert.Equal(t, "#800026", HeatColor(2))
	assert.Regexp(t, `^#[0-9a-f]{6}$`, HeatColor(0.37))
}

func TestHighlightsLookup(t *testing.T) {
	hl := DefaultHighlights()
	got, ok := hl.Lookup(100, 12)
	require.True(t, ok)
	assert.Equal(t, "Current (N=100, E=12)", got.Name)

	_, ok = hl.Lookup(100, 16)
	assert.False(t, ok)
}
