package report

import (
	"fmt"

	"designspace/domain/design"

	"github.com/lucasb-eyer/go-colorful"
)

// Text and tier colours shared by every renderer
const (
	DarkText  = "#1a1a1a"
	LightText = "#ffffff"

	// Cells whose severity exceeds this get light text
	LightTextThreshold = 0.55
)

var deviationColors = map[design.DeviationTier]string{
	design.DeviationExact:         "#27ae60",
	design.DeviationMinor:         "#e67e22",
	design.DeviationMajor:         "#c0392b",
	design.DeviationUnsatisfiable: "#cc0000",
}

var probabilityColors = map[design.ProbabilityTier]string{
	design.ProbabilityHigh:   "#2ecc71",
	design.ProbabilityMedium: "#f39c12",
	design.ProbabilityLow:    "#e74c3c",
}

// Nine-class yellow-orange-red ramp
var heatStops = mustParseStops(
	"#ffffcc", "#ffeda0", "#fed976", "#feb24c", "#fd8d3c",
	"#fc4e2a", "#e31a1c", "#bd0026", "#800026",
)

func mustParseStops(hexes ...string) []colorful.Color {
	stops := make([]colorful.Color, len(hexes))
	for i, h := range hexes {
		c, err := colorful.Hex(h)
		if err != nil {
			panic(fmt.Sprintf("invalid heat stop %q: %v", h, err))
		}
		stops[i] = c
	}
	return stops
}

// HeatColor maps a severity in [0,1] onto the ramp
func HeatColor(severity float64) string {
	if severity <= 0 {
		return heatStops[0].Hex()
	}
	if severity >= 1 {
		return heatStops[len(heatStops)-1].Hex()
	}
	pos := severity * float64(len(heatStops)-1)
	lo := int(pos)
	return heatStops[lo].BlendRgb(heatStops[lo+1], pos-float64(lo)).Clamped().Hex()
}

// TextColorFor picks readable text for a cell of the given severity
func TextColorFor(severity float64) string {
	if severity > LightTextThreshold {
		return LightText
	}
	return DarkText
}

// DeviationColor returns the label colour for a deviation tier
func DeviationColor(tier design.DeviationTier) string {
	return deviationColors[tier]
}

// ProbabilityColor returns the bar colour for a probability tier
func ProbabilityColor(tier design.ProbabilityTier) string {
	return probabilityColors[tier]
}
