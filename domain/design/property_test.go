package design

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func drawConstants(rt *rapid.T) ExperimentConstants {
	return ExperimentConstants{
		ItemsPerTrial:      rapid.IntRange(1, 12).Draw(rt, "itemsPerTrial"),
		SecondsPerTrial:    rapid.Float64Range(0.5, 30).Draw(rt, "secondsPerTrial"),
		MinorityShare:      rapid.Float64Range(0.05, 0.5).Draw(rt, "minorityShare"),
		TargetGoodFraction: rapid.Float64Range(0.05, 0.95).Draw(rt, "targetGoodFraction"),
	}
}

// TestProperty_TotalTrialsFloorLaw checks total_trials = floor(N*E/k) on random grids
func TestProperty_TotalTrialsFloorLaw(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		c := drawConstants(rt)
		nValues := rapid.SliceOfN(rapid.IntRange(1, 500), 1, 6).Draw(rt, "n")
		eValues := rapid.SliceOfN(rapid.IntRange(1, 60), 1, 6).Draw(rt, "e")

		grid := ComputeGrid(nValues, eValues, c)
		for i, n := range nValues {
			for j, e := range eValues {
				want := int(math.Floor(float64(n*e) / float64(c.ItemsPerTrial)))
				require.Equal(rt, want, grid.Cells[i][j].TotalTrials)
				require.GreaterOrEqual(rt, grid.Cells[i][j].TotalTrials, 0)
			}
		}
	})
}

// TestProperty_TotalTrialsMonotonic checks non-decreasing trials in both N and E
func TestProperty_TotalTrialsMonotonic(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		k := rapid.IntRange(1, 12).Draw(rt, "k")
		n := rapid.IntRange(1, 500).Draw(rt, "n")
		e := rapid.IntRange(1, 60).Draw(rt, "e")
		dn := rapid.IntRange(0, 100).Draw(rt, "dn")
		de := rapid.IntRange(0, 20).Draw(rt, "de")

		base := TotalTrials(n, e, k)
		assert.LessOrEqual(rt, base, TotalTrials(n+dn, e, k))
		assert.LessOrEqual(rt, base, TotalTrials(n, e+de, k))
	})
}

// TestProperty_DurationScalesWithSeconds checks doubling seconds exactly doubles every duration
func TestProperty_DurationScalesWithSeconds(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		c := drawConstants(rt)
		doubled := c
		doubled.SecondsPerTrial = 2 * c.SecondsPerTrial

		nValues := rapid.SliceOfN(rapid.IntRange(1, 200), 1, 5).Draw(rt, "n")
		eValues := rapid.SliceOfN(rapid.IntRange(1, 40), 1, 5).Draw(rt, "e")

		base := ComputeGrid(nValues, eValues, c)
		scaled := ComputeGrid(nValues, eValues, doubled)
		for i := range base.Cells {
			for j := range base.Cells[i] {
				require.Equal(rt, 2*base.Cells[i][j].DurationMinutes, scaled.Cells[i][j].DurationMinutes)
			}
		}
	})
}

// TestProperty_ProbAtLeastOneStrictlyIncreasing checks the Bernoulli law and its monotonicity
func TestProperty_ProbAtLeastOneStrictlyIncreasing(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		k := rapid.IntRange(2, 12).Draw(rt, "k")
		e := rapid.IntRange(1, 39).Draw(rt, "e")

		p := ProbAtLeastOne(e, k)
		next := ProbAtLeastOne(e+1, k)

		require.Equal(rt, 1-math.Pow(float64(k-1)/float64(k), float64(e)), p)
		require.Less(rt, p, next)
		require.GreaterOrEqual(rt, p, 0.0)
		require.LessOrEqual(rt, next, 1.0)
	})
}

// TestProperty_DeviationDefinedIffIntegral checks the feasibility invariant
func TestProperty_DeviationDefinedIffIntegral(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		c := drawConstants(rt)
		n := rapid.IntRange(1, 1000).Draw(rt, "n")

		row := ComputeFeasibility([]int{n}, c)[0]
		minority := float64(n) * c.MinorityShare
		_, ok := row.Deviation()

		require.Equal(rt, minority == math.Trunc(minority), ok)
		if ok {
			require.NotEqual(rt, DeviationUnsatisfiable, row.Tier())
			require.GreaterOrEqual(rt, row.Ratio.GoodCountRounded, 0)
		} else {
			require.Equal(rt, DeviationUnsatisfiable, row.Tier())
		}
	})
}
