package design

import (
	"gonum.org/v1/gonum/stat/distuv"
)

// InteractionProfile describes how often a participant acts on one specific item
// under the same independence assumption as ProbAtLeastOne: Binomial(E, 1/k).
type InteractionProfile struct {
	Exposures     int       `json:"e"`
	ItemsPerTrial int       `json:"items_per_trial"`
	Mean          float64   `json:"mean"`
	Variance      float64   `json:"variance"`
	PMF           []float64 `json:"pmf"` // PMF[j] = P(exactly j interactions), j = 0..E
}

// ComputeInteractionProfile builds the Binomial(E, 1/k) profile for one E value
func ComputeInteractionProfile(e int, c ExperimentConstants) InteractionProfile {
	mustValidate(c.Validate(), ValidateCandidates("e_values", []int{e}))

	dist := distuv.Binomial{
		N: float64(e),
		P: 1.0 / float64(c.ItemsPerTrial),
	}

	pmf := make([]float64, e+1)
	if c.ItemsPerTrial == 1 {
		// P = 1: every appearance is an interaction; the log-space PMF is undefined here
		pmf[e] = 1
	} else {
		for j := 0; j <= e; j++ {
			pmf[j] = dist.Prob(float64(j))
		}
	}

	return InteractionProfile{
		Exposures:     e,
		ItemsPerTrial: c.ItemsPerTrial,
		Mean:          dist.Mean(),
		Variance:      dist.Variance(),
		PMF:           pmf,
	}
}

// AtLeast returns P(at least j interactions)
func (p InteractionProfile) AtLeast(j int) float64 {
	if j <= 0 {
		return 1
	}
	if j > p.Exposures {
		return 0
	}
	tail := 0.0
	for x := j; x <= p.Exposures; x++ {
		tail += p.PMF[x]
	}
	return tail
}
