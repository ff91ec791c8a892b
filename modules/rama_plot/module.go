package rama_plot

import (
	"context"
	"fmt"
	"reflect"

	"github.com/vk/mdgridgo/internal/ctxlog"
	"github.com/vk/mdgridgo/internal/rama"
	"github.com/vk/mdgridgo/internal/registry"
	"github.com/vk/mdgridgo/internal/xvg"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Input defines the arguments for the rama_plot runner. Phi and psi come
// from one or more xvg_read steps; ensemble grids concatenate the member
// columns in the argument expression.
type Input struct {
	Phi      []float64 `mdg:"phi"`
	Psi      []float64 `mdg:"psi"`
	Bins     int       `mdg:"bins"`
	Sigma    float64   `mdg:"sigma"`
	SvgPath  string    `mdg:"svg_path"`
	Terminal bool      `mdg:"terminal"`
	Title    string    `mdg:"title"`
}

// Output defines the data structure returned by the runner.
type Output struct {
	Peak    float64 `cty:"peak"`
	Samples int     `cty:"samples"`
	SvgPath string  `cty:"svg_path"`
}

// Deps is an empty struct because this runner does not use any resources.
type Deps struct{}

// OnRunRamaPlot is the handler for the 'rama_plot' runner's on_run
// lifecycle event. It blurs the samples onto a density grid and renders a
// Ramachandran diagram.
func OnRunRamaPlot(ctx context.Context, deps *Deps, input *Input) (*Output, error) {
	logger := ctxlog.FromContext(ctx).With("runner", "rama_plot", "samples", len(input.Phi))
	logger.Debug("Handler started")
	defer logger.Debug("Handler finished")

	if len(input.Phi) != len(input.Psi) {
		return nil, fmt.Errorf("phi and psi columns differ in length: %d vs %d", len(input.Phi), len(input.Psi))
	}
	if len(input.Phi) == 0 {
		return nil, fmt.Errorf("no dihedral samples to plot")
	}

	points := make([]xvg.Point, len(input.Phi))
	for i := range input.Phi {
		points[i] = xvg.Point{Phi: input.Phi[i], Psi: input.Psi[i]}
	}

	density, err := rama.NewDensity(input.Bins, input.Sigma)
	if err != nil {
		return nil, err
	}
	density.Accumulate(points)

	if input.SvgPath != "" {
		if err := rama.WriteSVGFile(input.SvgPath, density, input.Title); err != nil {
			return nil, err
		}
		logger.Info("Wrote Ramachandran diagram.", "svg", input.SvgPath)
	}
	if input.Terminal {
		fmt.Print(rama.RenderTerminal(density, 36))
	}

	return &Output{
		Peak:    density.Max(),
		Samples: len(points),
		SvgPath: input.SvgPath,
	}, nil
}

// Register registers the handler with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterRunner("OnRunRamaPlot", &registry.RegisteredRunner{
		NewInput:  func() any { return new(Input) },
		InputType: reflect.TypeOf(Input{}),
		NewDeps:   func() any { return new(Deps) },
		Fn:        OnRunRamaPlot,
	})
}
