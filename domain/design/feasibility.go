package design

import (
	"math"
)

// MinorityRatio is the good/bad composition achievable inside a realizable minority subgroup
type MinorityRatio struct {
	MinorityCount        int     `json:"minority_count"`
	GoodCountExact       float64 `json:"good_count_exact"`
	GoodCountRounded     int     `json:"good_count_rounded"`
	AchievedGoodFraction float64 `json:"achieved_good_fraction"`
	DeviationPP          float64 `json:"deviation_pp"` // Signed, percentage points
}

// MinorityFeasibility reports whether a population of size N can be split into the
// configured minority share, and if so how far rounding pushes the good fraction.
// Ratio is nil exactly when the split is not realizable.
type MinorityFeasibility struct {
	PopulationSize int            `json:"n"`
	MinorityCount  float64        `json:"minority_count"` // N * MinorityShare, possibly fractional
	Feasible       bool           `json:"feasible"`
	Ratio          *MinorityRatio `json:"ratio,omitempty"`
}

// ComputeFeasibility evaluates the minority split once per N; exposures play no part
func ComputeFeasibility(nValues []int, c ExperimentConstants) []MinorityFeasibility {
	mustValidate(c.Validate(), ValidateCandidates("n_values", nValues))

	out := make([]MinorityFeasibility, len(nValues))
	for i, n := range nValues {
		out[i] = feasibilityFor(n, c)
	}
	return out
}

func feasibilityFor(n int, c ExperimentConstants) MinorityFeasibility {
	minority := float64(n) * c.MinorityShare
	f := MinorityFeasibility{
		PopulationSize: n,
		MinorityCount:  minority,
	}
	if minority != math.Trunc(minority) {
		return f
	}

	goodExact := minority * c.TargetGoodFraction
	goodRounded := math.RoundToEven(goodExact)
	achieved := goodRounded / minority

	f.Feasible = true
	f.Ratio = &MinorityRatio{
		MinorityCount:        int(minority),
		GoodCountExact:       goodExact,
		GoodCountRounded:     int(goodRounded),
		AchievedGoodFraction: achieved,
		DeviationPP:          (achieved - c.TargetGoodFraction) * 100,
	}
	return f
}

// Deviation returns the signed deviation in percentage points; ok is false when the
// split is not realizable and no deviation exists.
func (f MinorityFeasibility) Deviation() (pp float64, ok bool) {
	if f.Ratio == nil {
		return 0, false
	}
	return f.Ratio.DeviationPP, true
}

// Tier classifies the row. UNSATISFIABLE takes precedence over every numeric tier.
func (f MinorityFeasibility) Tier() DeviationTier {
	pp, ok := f.Deviation()
	if !ok {
		return DeviationUnsatisfiable
	}
	return ClassifyDeviation(pp)
}
