package app

import (
	"context"
	"fmt"
	"strconv"

	"designspace/domain/stimuli"
	"designspace/domain/tabular"
	"designspace/internal"
	"designspace/ports"
)

// RosterTable is the table name used for the stimulus design file
const RosterTable = "face_design"

// RosterService draws the stimulus roster and writes it as a table
type RosterService struct {
	sink   ports.TableSink
	logger *internal.Logger
}

// NewRosterService creates a roster service; sink may be nil to skip writing
func NewRosterService(sink ports.TableSink) *RosterService {
	return &RosterService{
		sink:   sink,
		logger: internal.DefaultLogger.WithComponent("RosterService"),
	}
}

// Generate draws a roster for spec and seed, writes it and returns its summary
func (s *RosterService) Generate(ctx context.Context, spec stimuli.RosterSpec, seed uint64) ([]stimuli.Stimulus, stimuli.RosterSummary, error) {
	roster, err := stimuli.GenerateRoster(spec, seed)
	if err != nil {
		return nil, stimuli.RosterSummary{}, err
	}
	summary, err := stimuli.Summarize(roster)
	if err != nil {
		return nil, stimuli.RosterSummary{}, fmt.Errorf("summarize roster: %w", err)
	}

	if s.sink != nil {
		if err := s.sink.WriteTable(ctx, RosterToTable(roster)); err != nil {
			return nil, stimuli.RosterSummary{}, err
		}
		if err := s.sink.Close(); err != nil {
			return nil, stimuli.RosterSummary{}, err
		}
	}

	s.logger.Info("roster of %d (seed %d): ages %d-%d, mean %.1f, std %.1f",
		summary.Total, seed, summary.MinAge, summary.MaxAge, summary.MeanAge, summary.StdAge)
	return roster, summary, nil
}

// RosterToTable lays a roster out as face_id, race, gender, age
func RosterToTable(roster []stimuli.Stimulus) *tabular.Table {
	t := tabular.NewTable(RosterTable, "face_id", "race", "gender", "age")
	for _, s := range roster {
		t.Append(tabular.Row{
			{Key: "face_id", Value: s.ID.String()},
			{Key: "race", Value: s.Group},
			{Key: "gender", Value: string(s.Gender)},
			{Key: "age", Value: strconv.Itoa(s.Age)},
		})
	}
	return t
}
