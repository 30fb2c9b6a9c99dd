package design

import (
	"math"

	"designspace/domain/core"
)

// ExperimentConstants are the fixed parameters shared by every cell of a design grid
type ExperimentConstants struct {
	ItemsPerTrial      int     `json:"items_per_trial" yaml:"items_per_trial" validate:"gt=0"`                   // Stimulus items shown per trial panel
	SecondsPerTrial    float64 `json:"seconds_per_trial" yaml:"seconds_per_trial" validate:"gt=0"`               // Decision + feedback + gap
	MinorityShare      float64 `json:"minority_share" yaml:"minority_share" validate:"gt=0,lt=1"`                // Minority subgroup share of the population
	TargetGoodFraction float64 `json:"target_good_fraction" yaml:"target_good_fraction" validate:"gt=0,lt=1"` // Desired "good" fraction within a subgroup
}

// DefaultConstants returns the constants of the current experiment protocol
func DefaultConstants() ExperimentConstants {
	return ExperimentConstants{
		ItemsPerTrial:      4,
		SecondsPerTrial:    5,
		MinorityShare:      0.20,
		TargetGoodFraction: 0.70,
	}
}

// DefaultPopulationSizes returns the N candidates evaluated by default
func DefaultPopulationSizes() []int {
	return []int{20, 40, 60, 80, 100}
}

// DefaultExposureCounts returns the E candidates evaluated by default
func DefaultExposureCounts() []int {
	return []int{4, 6, 8, 10, 12, 16, 20}
}

// Validate reports the first constant outside its permitted range
func (c ExperimentConstants) Validate() error {
	if c.ItemsPerTrial <= 0 {
		return core.NewConstantsError("items_per_trial", "must be positive")
	}
	if !(c.SecondsPerTrial > 0) || math.IsInf(c.SecondsPerTrial, 0) {
		return core.NewConstantsError("seconds_per_trial", "must be a positive finite number")
	}
	if !openUnit(c.MinorityShare) {
		return core.NewConstantsError("minority_share", "must lie strictly between 0 and 1")
	}
	if !openUnit(c.TargetGoodFraction) {
		return core.NewConstantsError("target_good_fraction", "must lie strictly between 0 and 1")
	}
	return nil
}

// ValidateCandidates checks that a candidate list is non-empty and strictly positive
func ValidateCandidates(name string, values []int) error {
	if len(values) == 0 {
		return core.NewEmptyCandidatesError(name)
	}
	for i, v := range values {
		if v <= 0 {
			return core.NewCandidateError(name, i, v)
		}
	}
	return nil
}

// ValidateProducts checks that every n*e in the cross product fits in an int, so
// trial counts stay non-negative. Non-positive values are left to ValidateCandidates.
func ValidateProducts(nValues, eValues []int) error {
	maxN, maxE := largest(nValues), largest(eValues)
	if maxN > 0 && maxE > 0 && maxE > math.MaxInt/maxN {
		return core.NewOverflowError(maxN, maxE)
	}
	return nil
}

func largest(values []int) int {
	out := 0
	for _, v := range values {
		out = max(out, v)
	}
	return out
}

func openUnit(v float64) bool {
	return v > 0 && v < 1
}

// mustValidate panics on any precondition failure; the model never substitutes defaults
func mustValidate(errs ...error) {
	for _, err := range errs {
		if err != nil {
			panic(err)
		}
	}
}
