package app

import (
	"context"
	"image/color"
	"path/filepath"
	"strings"
	"sync"

	"designspace/internal"
	"designspace/internal/errors"
	"designspace/ports"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// DefaultPalette is the pair of backgrounds every stimulus is produced on
func DefaultPalette() []ports.NamedColor {
	return []ports.NamedColor{
		{Name: "red", Color: color.RGBA{R: 255, A: 255}},
		{Name: "blue", Color: color.RGBA{B: 255, A: 255}},
	}
}

// CompositeRequest describes one compositing batch
type CompositeRequest struct {
	InputDir  string
	OutputDir string
	Palette   []ports.NamedColor
	Workers   int
}

// CompositeFailure records one output that could not be produced
type CompositeFailure struct {
	Source string `json:"source"`
	Color  string `json:"color"`
	Error  string `json:"error"`
}

// CompositeReport lists what a batch produced
type CompositeReport struct {
	Sources int                `json:"sources"`
	Written []string           `json:"written"`
	Failed  []CompositeFailure `json:"failed,omitempty"`
}

// CompositeService flattens every source image onto every palette colour
type CompositeService struct {
	compositor ports.ImageCompositor
	logger     *internal.Logger
}

// NewCompositeService creates a compositing service
func NewCompositeService(compositor ports.ImageCompositor) *CompositeService {
	return &CompositeService{
		compositor: compositor,
		logger:     internal.DefaultLogger.WithComponent("CompositeService"),
	}
}

// OutputName is <stem>_<colour>.png for a source path
func OutputName(src, colorName string) string {
	stem := strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))
	return stem + "_" + colorName + ".png"
}

// Run composites with at most req.Workers images in flight. A failing image is
// recorded and the batch continues; only cancellation aborts it.
func (s *CompositeService) Run(ctx context.Context, req CompositeRequest) (*CompositeReport, error) {
	if req.Workers <= 0 {
		return nil, errors.InvalidInput("workers must be positive")
	}
	if len(req.Palette) == 0 {
		req.Palette = DefaultPalette()
	}

	sources, err := s.compositor.List(ctx, req.InputDir)
	if err != nil {
		return nil, err
	}
	report := &CompositeReport{Sources: len(sources)}
	if len(sources) == 0 {
		s.logger.Warn("no images found in %s", req.InputDir)
		return report, nil
	}

	type job struct {
		src, dst string
		bg       ports.NamedColor
	}
	var jobs []job
	for _, src := range sources {
		for _, bg := range req.Palette {
			jobs = append(jobs, job{src: src, dst: filepath.Join(req.OutputDir, OutputName(src, bg.Name)), bg: bg})
		}
	}

	var mu sync.Mutex
	written := make([]string, len(jobs))
	sem := semaphore.NewWeighted(int64(req.Workers))
	g, gctx := errgroup.WithContext(ctx)

	for i, j := range jobs {
		if err := sem.Acquire(gctx, 1); err != nil {
			break
		}
		g.Go(func() error {
			defer sem.Release(1)
			if err := s.compositor.Composite(gctx, j.src, j.dst, j.bg.Color); err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				s.logger.Warn("%s on %s: %v", filepath.Base(j.src), j.bg.Name, err)
				mu.Lock()
				report.Failed = append(report.Failed, CompositeFailure{Source: j.src, Color: j.bg.Name, Error: err.Error()})
				mu.Unlock()
				return nil
			}
			written[i] = j.dst
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	for _, path := range written {
		if path != "" {
			report.Written = append(report.Written, path)
		}
	}
	s.logger.Info("composited %d images onto %d colours: %d written, %d failed",
		len(sources), len(req.Palette), len(report.Written), len(report.Failed))
	return report, nil
}
