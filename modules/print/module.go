package print

import (
	"context"
	"reflect"
	"sort"

	"github.com/vk/mdgridgo/internal/ctxlog"
	"github.com/vk/mdgridgo/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Input defines the arguments for the print runner.
type Input struct {
	Value map[string]string `mdg:"input"`
}

// Deps is an empty struct because this runner does not use any resources.
type Deps struct{}

// OnRunPrint is the handler for the 'print' runner's on_run lifecycle event.
// It reports each entry through the run's logger, keys in sorted order, so
// summaries land in the same stream as the rest of the run.
func OnRunPrint(ctx context.Context, deps *Deps, input *Input) (any, error) {
	logger := ctxlog.FromContext(ctx).With("runner", "print")

	if len(input.Value) == 0 {
		logger.Info("📋 Nothing to print.")
		return nil, nil
	}

	keys := make([]string, 0, len(input.Value))
	for k := range input.Value {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		logger.Info("📋 "+k, "value", input.Value[k])
	}
	return nil, nil
}

// Register registers the handler with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterRunner("OnRunPrint", &registry.RegisteredRunner{
		NewInput:  func() any { return new(Input) },
		InputType: reflect.TypeOf(Input{}),
		NewDeps:   func() any { return new(Deps) },
		Fn:        OnRunPrint,
	})
}
