package design

import (
	"fmt"
	"math"

	"designspace/domain/core"
)

// HeadroomFactor keeps the longest cell just below the top of a colour scale
const HeadroomFactor = 1.05

// Probability tier thresholds, inclusive at the lower bound
const (
	HighProbabilityThreshold   = 0.95
	MediumProbabilityThreshold = 0.85
)

// Deviation tier thresholds in percentage points
const (
	ExactDeviationTolerance = 0.01 // Below this |pp| is rounding noise
	MinorDeviationLimit     = 2.0  // Up to and including this |pp| is minor
)

// ProbabilityTier is a design-review bucket for P(at least one interaction)
type ProbabilityTier string

const (
	ProbabilityHigh   ProbabilityTier = "HIGH"
	ProbabilityMedium ProbabilityTier = "MEDIUM"
	ProbabilityLow    ProbabilityTier = "LOW"
)

// DeviationTier buckets a minority good-fraction deviation
type DeviationTier string

const (
	DeviationExact         DeviationTier = "EXACT"
	DeviationMinor         DeviationTier = "MINOR"
	DeviationMajor         DeviationTier = "MAJOR"
	DeviationUnsatisfiable DeviationTier = "UNSATISFIABLE"
)

// ClassifyDuration maps a duration to [0,1] for colour selection only. The value
// orders cells; it carries no other meaning.
func ClassifyDuration(durationMinutes, gridMaxDuration float64) float64 {
	if durationMinutes < 0 || math.IsNaN(durationMinutes) {
		panic(fmt.Errorf("%w: duration %v must be non-negative", core.ErrPreconditionViolated, durationMinutes))
	}
	if gridMaxDuration < 0 || math.IsNaN(gridMaxDuration) {
		panic(fmt.Errorf("%w: grid max duration %v must be non-negative", core.ErrPreconditionViolated, gridMaxDuration))
	}
	if gridMaxDuration == 0 {
		return 0
	}
	return math.Min(durationMinutes/(gridMaxDuration*HeadroomFactor), 1)
}

// ClassifyProbability buckets P(>=1): HIGH from 0.95, MEDIUM from 0.85, LOW below
func ClassifyProbability(p float64) ProbabilityTier {
	switch {
	case p >= HighProbabilityThreshold:
		return ProbabilityHigh
	case p >= MediumProbabilityThreshold:
		return ProbabilityMedium
	default:
		return ProbabilityLow
	}
}

// ClassifyDeviation buckets a numeric deviation. Rows without a realizable split
// never reach this; see MinorityFeasibility.Tier.
func ClassifyDeviation(deviationPP float64) DeviationTier {
	abs := math.Abs(deviationPP)
	switch {
	case abs < ExactDeviationTolerance:
		return DeviationExact
	case abs <= MinorDeviationLimit:
		return DeviationMinor
	default:
		return DeviationMajor
	}
}
