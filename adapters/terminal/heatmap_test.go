package terminal

import (
	"bytes"
	"context"
	"testing"

	"designspace/domain/design"
	"designspace/domain/report"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultView() report.MatrixView {
	c := design.DefaultConstants()
	n := design.DefaultPopulationSizes()
	grid := design.ComputeGrid(n, design.DefaultExposureCounts(), c)
	return report.BuildMatrixView(grid, design.ComputeFeasibility(n, c), report.DefaultHighlights())
}

func TestHeatmapRenderer_Render(t *testing.T) {
	var buf bytes.Buffer
	r := NewHeatmapRenderer()
	require.NoError(t, r.Render(context.Background(), defaultView(), &buf))

	out := buf.String()
	assert.Contains(t, out, report.DefaultTitle)
	assert.Contains(t, out, "N = 100")
	assert.Contains(t, out, "minority good-rate: 70%  ✓")
	assert.Contains(t, out, "★ 300 trials")
	assert.Contains(t, out, "● 120 trials")
	assert.Contains(t, out, "E[int] = 3.0")
	assert.Contains(t, out, "97%")
	assert.Contains(t, out, "Proposed (N=40, E=12): 120 trials, 10.0 min")
	assert.Equal(t, "terminal", r.Name())
}

func TestHeatmapRenderer_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var buf bytes.Buffer
	err := NewHeatmapRenderer().Render(ctx, defaultView(), &buf)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, buf.Len())
}
