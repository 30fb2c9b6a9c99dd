package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"designspace/domain/core"
	"designspace/domain/design"
	"designspace/domain/report"
	"designspace/internal"
	"designspace/internal/errors"
	"designspace/ports"

	"github.com/montanaflynn/stats"
	"golang.org/x/sync/errgroup"
)

// OutputStem names every rendered matrix file
const OutputStem = "design_parameter_matrix"

// MatrixRequest is one evaluation of the design space
type MatrixRequest struct {
	Constants  design.ExperimentConstants
	NValues    []int
	EValues    []int
	Highlights report.Highlights
}

// Upper bounds on one evaluation. Profiles allocate E+1 values per column and the
// grid holds len(N)*len(E) cells, so both are capped before any model call.
const (
	MaxCandidates      = 64
	MaxPopulation      = 1_000_000
	MaxExposures       = 10_000
	MaxSecondsPerTrial = 3600
)

// DefaultMatrixRequest reproduces the reference experiment
func DefaultMatrixRequest() MatrixRequest {
	return MatrixRequest{
		Constants:  design.DefaultConstants(),
		NValues:    design.DefaultPopulationSizes(),
		EValues:    design.DefaultExposureCounts(),
		Highlights: report.DefaultHighlights(),
	}
}

// RunManifest identifies one evaluation and the inputs that produced it
type RunManifest struct {
	RunID       core.RunID     `json:"run_id"`
	Fingerprint core.Hash      `json:"fingerprint"`
	CreatedAt   core.Timestamp `json:"created_at"`
}

// GridSummary aggregates the cells of a grid
type GridSummary struct {
	Cells          int     `json:"cells"`
	MinTrials      int     `json:"min_trials"`
	MaxTrials      int     `json:"max_trials"`
	MinDuration    float64 `json:"min_duration_minutes"`
	MaxDuration    float64 `json:"max_duration_minutes"`
	MeanDuration   float64 `json:"mean_duration_minutes"`
	MedianDuration float64 `json:"median_duration_minutes"`
	FeasibleRows   int     `json:"feasible_rows"`
	HighColumns    int     `json:"high_probability_columns"`
}

// MatrixResult bundles everything computed for a request
type MatrixResult struct {
	Manifest    RunManifest                  `json:"manifest"`
	Grid        design.Grid                  `json:"grid"`
	Feasibility []design.MinorityFeasibility `json:"feasibility"`
	Profiles    []design.InteractionProfile  `json:"profiles"`
	Summary     GridSummary                  `json:"summary"`
	View        report.MatrixView            `json:"view"`
}

// MatrixService evaluates design grids and hands them to renderers
type MatrixService struct {
	renderers map[string]ports.MatrixRenderer
	logger    *internal.Logger
}

// NewMatrixService registers the available renderers by name
func NewMatrixService(renderers ...ports.MatrixRenderer) *MatrixService {
	s := &MatrixService{
		renderers: make(map[string]ports.MatrixRenderer, len(renderers)),
		logger:    internal.DefaultLogger.WithComponent("MatrixService"),
	}
	for _, r := range renderers {
		s.renderers[r.Name()] = r
	}
	return s
}

// Formats lists registered renderer names, sorted
func (s *MatrixService) Formats() []string {
	out := make([]string, 0, len(s.renderers))
	for name := range s.renderers {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Renderer looks up a renderer by format name
func (s *MatrixService) Renderer(format string) (ports.MatrixRenderer, error) {
	r, ok := s.renderers[format]
	if !ok {
		return nil, errors.InvalidInput(fmt.Sprintf("unknown format %q (available: %v)", format, s.Formats()))
	}
	return r, nil
}

// Validate checks a request without computing anything. The domain model panics
// on these inputs; callers at the edge get an error instead.
func (s *MatrixService) Validate(req MatrixRequest) error {
	for _, err := range []error{
		req.Constants.Validate(),
		design.ValidateCandidates("n_values", req.NValues),
		design.ValidateCandidates("e_values", req.EValues),
		design.ValidateProducts(req.NValues, req.EValues),
	} {
		if err != nil {
			return errors.WithCode(errors.CodeInvalidInput, err)
		}
	}
	return validateLimits(req)
}

func validateLimits(req MatrixRequest) error {
	for _, list := range []struct {
		name   string
		values []int
		max    int
	}{
		{"n_values", req.NValues, MaxPopulation},
		{"e_values", req.EValues, MaxExposures},
	} {
		if len(list.values) > MaxCandidates {
			return errors.InvalidInput(fmt.Sprintf("%s has %d values, at most %d allowed", list.name, len(list.values), MaxCandidates))
		}
		for i, v := range list.values {
			if v > list.max {
				return errors.InvalidInput(fmt.Sprintf("%s[%d] = %d exceeds the limit of %d", list.name, i, v, list.max))
			}
		}
	}
	if req.Constants.SecondsPerTrial > MaxSecondsPerTrial {
		return errors.InvalidInput(fmt.Sprintf("seconds_per_trial %v exceeds the limit of %d", req.Constants.SecondsPerTrial, MaxSecondsPerTrial))
	}
	return nil
}

// Compute evaluates the grid, feasibility rows and interaction profiles for req
func (s *MatrixService) Compute(ctx context.Context, req MatrixRequest) (*MatrixResult, error) {
	if err := s.Validate(req); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	grid := design.ComputeGrid(req.NValues, req.EValues, req.Constants)
	feasibility := design.ComputeFeasibility(req.NValues, req.Constants)

	profiles := make([]design.InteractionProfile, len(req.EValues))
	for j, e := range req.EValues {
		profiles[j] = design.ComputeInteractionProfile(e, req.Constants)
	}

	summary, err := Summarize(grid, feasibility)
	if err != nil {
		return nil, errors.Wrap(err, "summarize grid")
	}

	result := &MatrixResult{
		Manifest:    newManifest(req),
		Grid:        grid,
		Feasibility: feasibility,
		Profiles:    profiles,
		Summary:     summary,
		View:        report.BuildMatrixView(grid, feasibility, req.Highlights),
	}

	s.logger.Info("run %s: %d cells, durations %.1f-%.1f min, %d/%d rows feasible",
		result.Manifest.RunID, summary.Cells, summary.MinDuration, summary.MaxDuration,
		summary.FeasibleRows, len(req.NValues))
	return result, nil
}

// Render writes result in one format to w
func (s *MatrixService) Render(ctx context.Context, result *MatrixResult, format string, w io.Writer) error {
	r, err := s.Renderer(format)
	if err != nil {
		return err
	}
	return r.Render(ctx, result.View, w)
}

// RenderFiles writes result in each format to dir/OutputStem<ext>, concurrently.
// The returned paths follow the order of formats.
func (s *MatrixService) RenderFiles(ctx context.Context, result *MatrixResult, dir string, formats ...string) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.RenderFailed(dir, err)
	}

	paths := make([]string, len(formats))
	g, gctx := errgroup.WithContext(ctx)
	for i, format := range formats {
		r, err := s.Renderer(format)
		if err != nil {
			return nil, err
		}
		path := filepath.Join(dir, OutputStem+r.Extension())
		paths[i] = path

		g.Go(func() error {
			f, err := os.Create(path)
			if err != nil {
				return errors.RenderFailed(path, err)
			}
			if err := r.Render(gctx, result.View, f); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return errors.RenderFailed(path, err)
			}
			s.logger.Info("saved %s", path)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return paths, nil
}

func newManifest(req MatrixRequest) RunManifest {
	return RunManifest{
		RunID: core.NewRunID(),
		Fingerprint: core.ComputeFingerprint(map[string]interface{}{
			"items_per_trial":      req.Constants.ItemsPerTrial,
			"seconds_per_trial":    req.Constants.SecondsPerTrial,
			"minority_share":       req.Constants.MinorityShare,
			"target_good_fraction": req.Constants.TargetGoodFraction,
			"n_values":             req.NValues,
			"e_values":             req.EValues,
		}),
		CreatedAt: core.Now(),
	}
}

// Summarize aggregates trial counts and durations over every cell
func Summarize(grid design.Grid, feasibility []design.MinorityFeasibility) (GridSummary, error) {
	durations := stats.Float64Data(grid.Durations())
	trials := make(stats.Float64Data, 0, len(durations))
	for _, row := range grid.Cells {
		for _, m := range row {
			trials = append(trials, float64(m.TotalTrials))
		}
	}

	summary := GridSummary{Cells: len(durations)}
	if len(durations) == 0 {
		return summary, nil
	}

	var err error
	if summary.MinDuration, err = durations.Min(); err != nil {
		return summary, err
	}
	if summary.MaxDuration, err = durations.Max(); err != nil {
		return summary, err
	}
	if summary.MeanDuration, err = durations.Mean(); err != nil {
		return summary, err
	}
	if summary.MedianDuration, err = durations.Median(); err != nil {
		return summary, err
	}
	minTrials, err := trials.Min()
	if err != nil {
		return summary, err
	}
	maxTrials, err := trials.Max()
	if err != nil {
		return summary, err
	}
	summary.MinTrials = int(minTrials)
	summary.MaxTrials = int(maxTrials)

	for _, f := range feasibility {
		if f.Feasible {
			summary.FeasibleRows++
		}
	}
	for _, p := range grid.ColumnProbabilities() {
		if design.ClassifyProbability(p) == design.ProbabilityHigh {
			summary.HighColumns++
		}
	}
	return summary, nil
}
