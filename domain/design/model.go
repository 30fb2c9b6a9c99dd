// Package design holds the experimental design parameter model: the pure formulas
// relating population size (N) and exposures per item (E) to trial counts, session
// duration, per-item interaction probability and minority subgroup feasibility.
//
// Everything here is deterministic and free of I/O. Invalid inputs are programming
// errors and panic with an error wrapping core.ErrPreconditionViolated; callers that
// accept user input validate first with ExperimentConstants.Validate and
// ValidateCandidates.
package design

import (
	"math"
)

// DesignPoint is one (population size, exposures per item) pair
type DesignPoint struct {
	PopulationSize int `json:"n"`
	Exposures      int `json:"e"`
}

// DerivedMetrics are the quantities computed for a single design point
type DerivedMetrics struct {
	Point                       DesignPoint `json:"point"`
	TotalTrials                 int         `json:"total_trials"`
	DurationMinutes             float64     `json:"duration_minutes"`
	ExpectedInteractionsPerItem float64     `json:"expected_interactions_per_item"`
	ProbAtLeastOne              float64     `json:"prob_at_least_one"`
}

// Grid holds DerivedMetrics for the cross product of N (rows) and E (columns)
type Grid struct {
	NValues   []int               `json:"n_values"`
	EValues   []int               `json:"e_values"`
	Constants ExperimentConstants `json:"constants"`
	Cells     [][]DerivedMetrics  `json:"cells"` // Cells[row][col] = (NValues[row], EValues[col])
}

// ComputeGrid derives metrics for every (n, e) pair, rows following nValues order
// and columns following eValues order.
func ComputeGrid(nValues, eValues []int, c ExperimentConstants) Grid {
	mustValidate(
		c.Validate(),
		ValidateCandidates("n_values", nValues),
		ValidateCandidates("e_values", eValues),
		ValidateProducts(nValues, eValues),
	)

	cells := make([][]DerivedMetrics, len(nValues))
	for i, n := range nValues {
		row := make([]DerivedMetrics, len(eValues))
		for j, e := range eValues {
			row[j] = computeMetrics(DesignPoint{PopulationSize: n, Exposures: e}, c)
		}
		cells[i] = row
	}

	return Grid{
		NValues:   append([]int(nil), nValues...),
		EValues:   append([]int(nil), eValues...),
		Constants: c,
		Cells:     cells,
	}
}

// ComputeMetrics derives metrics for a single design point
func ComputeMetrics(p DesignPoint, c ExperimentConstants) DerivedMetrics {
	mustValidate(
		c.Validate(),
		ValidateCandidates("n_values", []int{p.PopulationSize}),
		ValidateCandidates("e_values", []int{p.Exposures}),
		ValidateProducts([]int{p.PopulationSize}, []int{p.Exposures}),
	)
	return computeMetrics(p, c)
}

func computeMetrics(p DesignPoint, c ExperimentConstants) DerivedMetrics {
	trials := TotalTrials(p.PopulationSize, p.Exposures, c.ItemsPerTrial)
	return DerivedMetrics{
		Point:                       p,
		TotalTrials:                 trials,
		DurationMinutes:             float64(trials) * c.SecondsPerTrial / 60.0,
		ExpectedInteractionsPerItem: ExpectedInteractions(p.Exposures, c.ItemsPerTrial),
		ProbAtLeastOne:              ProbAtLeastOne(p.Exposures, c.ItemsPerTrial),
	}
}

// TotalTrials is floor(n*e / itemsPerTrial). Leftover item slots never form a
// partial trial, so the count is truncated rather than rounded or ceiled.
func TotalTrials(n, e, itemsPerTrial int) int {
	return (n * e) / itemsPerTrial
}

// ExpectedInteractions is the expected number of times a participant acts on one
// specific item across its e appearances.
func ExpectedInteractions(e, itemsPerTrial int) float64 {
	return float64(e) / float64(itemsPerTrial)
}

// ProbAtLeastOne treats each of the e appearances as an independent Bernoulli
// trial with success probability 1/itemsPerTrial: 1 - ((k-1)/k)^e.
func ProbAtLeastOne(e, itemsPerTrial int) float64 {
	miss := float64(itemsPerTrial-1) / float64(itemsPerTrial)
	return 1.0 - math.Pow(miss, float64(e))
}

// Cell returns the metrics for (n, e) if both values are on the grid
func (g Grid) Cell(n, e int) (DerivedMetrics, bool) {
	for i, nv := range g.NValues {
		if nv != n {
			continue
		}
		for j, ev := range g.EValues {
			if ev == e {
				return g.Cells[i][j], true
			}
		}
	}
	return DerivedMetrics{}, false
}

// Durations returns every cell duration in row-major order
func (g Grid) Durations() []float64 {
	out := make([]float64, 0, len(g.NValues)*len(g.EValues))
	for _, row := range g.Cells {
		for _, cell := range row {
			out = append(out, cell.DurationMinutes)
		}
	}
	return out
}

// MaxDuration returns the longest cell duration on the grid
func (g Grid) MaxDuration() float64 {
	maxDuration := 0.0
	for _, d := range g.Durations() {
		if d > maxDuration {
			maxDuration = d
		}
	}
	return maxDuration
}

// ColumnProbabilities returns P(>=1) per E column; it depends on E only
func (g Grid) ColumnProbabilities() []float64 {
	out := make([]float64, len(g.EValues))
	for j, e := range g.EValues {
		out[j] = ProbAtLeastOne(e, g.Constants.ItemsPerTrial)
	}
	return out
}
