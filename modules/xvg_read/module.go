package xvg_read

import (
	"context"
	"fmt"
	"reflect"

	"github.com/vk/mdgridgo/internal/ctxlog"
	"github.com/vk/mdgridgo/internal/registry"
	"github.com/vk/mdgridgo/internal/xvg"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Input defines the arguments for the xvg_read runner.
type Input struct {
	Path     string `mdg:"path"`
	SkipRows int    `mdg:"skip_rows"`
}

// Output defines the data structure returned by the runner: the parsed
// phi/psi columns, ready for plotting or aggregation.
type Output struct {
	Phi   []float64 `cty:"phi"`
	Psi   []float64 `cty:"psi"`
	Count int       `cty:"count"`
}

// Deps is an empty struct because this runner does not use any resources.
type Deps struct{}

// OnRunXvgRead is the handler for the 'xvg_read' runner's on_run lifecycle
// event. Comment and directive lines never count toward skip_rows.
func OnRunXvgRead(ctx context.Context, deps *Deps, input *Input) (*Output, error) {
	logger := ctxlog.FromContext(ctx).With("runner", "xvg_read", "path", input.Path)
	logger.Debug("Handler started")
	defer logger.Debug("Handler finished")

	points, err := xvg.ReadRamachandranFile(input.Path)
	if err != nil {
		return nil, err
	}
	if input.SkipRows < 0 {
		return nil, fmt.Errorf("skip_rows cannot be negative, got %d", input.SkipRows)
	}
	if input.SkipRows > len(points) {
		return nil, fmt.Errorf("asked to skip %d rows but table only has %d data rows", input.SkipRows, len(points))
	}
	points = points[input.SkipRows:]

	out := &Output{
		Phi:   make([]float64, len(points)),
		Psi:   make([]float64, len(points)),
		Count: len(points),
	}
	for i, p := range points {
		out.Phi[i] = p.Phi
		out.Psi[i] = p.Psi
	}

	logger.Info("Parsed dihedral table.", "samples", out.Count)
	return out, nil
}

// Register registers the handler with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterRunner("OnRunXvgRead", &registry.RegisteredRunner{
		NewInput:  func() any { return new(Input) },
		InputType: reflect.TypeOf(Input{}),
		NewDeps:   func() any { return new(Deps) },
		Fn:        OnRunXvgRead,
	})
}
