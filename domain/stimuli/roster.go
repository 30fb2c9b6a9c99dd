// Package stimuli builds the counterbalanced face roster used as experiment items.
package stimuli

import (
	"fmt"
	"math"
	"math/rand/v2"
	"sort"

	"designspace/domain/core"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat/distuv"
)

// Gender of a generated face
type Gender string

const (
	Male   Gender = "male"
	Female Gender = "female"
)

// Stimulus is one face in the roster
type Stimulus struct {
	ID     core.StimulusID `json:"face_id"`
	Group  string          `json:"race"`
	Gender Gender          `json:"gender"`
	Age    int             `json:"age"`
}

// RosterSpec describes a balanced roster
type RosterSpec struct {
	Groups        []string `yaml:"groups" validate:"required,min=1,dive,required"`
	PerGroup      int      `yaml:"per_group" validate:"gt=0"`
	MalesPerGroup int      `yaml:"males_per_group" validate:"gte=0,ltefield=PerGroup"`
	MinAge        int      `yaml:"min_age" validate:"gt=0"`
	MaxAge        int      `yaml:"max_age" validate:"gtfield=MinAge"`
	AgeAlpha      float64  `yaml:"age_alpha" validate:"gt=0"`
	AgeBeta       float64  `yaml:"age_beta" validate:"gt=0"`
}

// DefaultRosterSpec is 4 groups of 25 with a 13/12 gender split and ages 18-35
// drawn from Beta(2,2), which centres on the mid-20s.
func DefaultRosterSpec() RosterSpec {
	return RosterSpec{
		Groups:        []string{"african", "european", "eastAsian", "southAsian"},
		PerGroup:      25,
		MalesPerGroup: 13,
		MinAge:        18,
		MaxAge:        35,
		AgeAlpha:      2,
		AgeBeta:       2,
	}
}

// Validate checks the spec is internally consistent
func (s RosterSpec) Validate() error {
	switch {
	case len(s.Groups) == 0:
		return core.NewRosterError("groups", "at least one group is required")
	case s.PerGroup <= 0:
		return core.NewRosterError("per_group", fmt.Sprintf("must be positive, got %d", s.PerGroup))
	case s.MalesPerGroup < 0 || s.MalesPerGroup > s.PerGroup:
		return core.NewRosterError("males_per_group", fmt.Sprintf("must be within [0, %d], got %d", s.PerGroup, s.MalesPerGroup))
	case s.MinAge <= 0 || s.MaxAge <= s.MinAge:
		return core.NewRosterError("age", fmt.Sprintf("need 0 < min < max, got %d..%d", s.MinAge, s.MaxAge))
	case s.AgeAlpha <= 0 || s.AgeBeta <= 0:
		return core.NewRosterError("age_shape", "beta parameters must be positive")
	}
	return nil
}

// Size is the total number of stimuli the spec yields
func (s RosterSpec) Size() int {
	return len(s.Groups) * s.PerGroup
}

// GenerateRoster draws a roster. The same seed always gives the same roster.
func GenerateRoster(spec RosterSpec, seed uint64) ([]Stimulus, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	src := rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)
	rng := rand.New(src)
	ages := distuv.Beta{Alpha: spec.AgeAlpha, Beta: spec.AgeBeta, Src: src}
	span := float64(spec.MaxAge - spec.MinAge)

	roster := make([]Stimulus, 0, spec.Size())
	for _, group := range spec.Groups {
		genders := make([]Gender, spec.PerGroup)
		for i := range genders {
			if i < spec.MalesPerGroup {
				genders[i] = Male
			} else {
				genders[i] = Female
			}
		}
		rng.Shuffle(len(genders), func(i, j int) { genders[i], genders[j] = genders[j], genders[i] })

		for _, g := range genders {
			age := int(math.RoundToEven(ages.Rand()*span)) + spec.MinAge
			roster = append(roster, Stimulus{
				ID:     core.NewStimulusID(len(roster) + 1),
				Group:  group,
				Gender: g,
				Age:    age,
			})
		}
	}
	return roster, nil
}

// RosterSummary reports balance and age statistics
type RosterSummary struct {
	Total     int            `json:"total"`
	PerGroup  map[string]int `json:"per_group"`
	PerGender map[Gender]int `json:"per_gender"`
	MinAge    int            `json:"min_age"`
	MaxAge    int            `json:"max_age"`
	MeanAge   float64        `json:"mean_age"`
	StdAge    float64        `json:"std_age"`
}

// Summarize computes counts and sample age statistics for a roster
func Summarize(roster []Stimulus) (RosterSummary, error) {
	summary := RosterSummary{
		Total:     len(roster),
		PerGroup:  make(map[string]int),
		PerGender: make(map[Gender]int),
	}
	if len(roster) == 0 {
		return summary, nil
	}

	ages := make(stats.Float64Data, len(roster))
	for i, s := range roster {
		summary.PerGroup[s.Group]++
		summary.PerGender[s.Gender]++
		ages[i] = float64(s.Age)
	}

	minAge, err := ages.Min()
	if err != nil {
		return summary, err
	}
	maxAge, err := ages.Max()
	if err != nil {
		return summary, err
	}
	if summary.MeanAge, err = ages.Mean(); err != nil {
		return summary, err
	}
	if len(ages) > 1 {
		if summary.StdAge, err = ages.StandardDeviationSample(); err != nil {
			return summary, err
		}
	}
	summary.MinAge = int(minAge)
	summary.MaxAge = int(maxAge)
	return summary, nil
}

// Groups returns the group names present in a summary, sorted
func (s RosterSummary) Groups() []string {
	out := make([]string, 0, len(s.PerGroup))
	for g := range s.PerGroup {
		out = append(out, g)
	}
	sort.Strings(out)
	return out
}
