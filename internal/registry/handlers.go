package registry

import (
	"fmt"
	"log/slog"
	"reflect"
)

// RegisteredRunner holds the compiled Go parts of a runner's lifecycle.
// Fn must have the shape func(ctx, *Deps, *Input) (output, error); it is
// invoked through reflection by the executor.
type RegisteredRunner struct {
	NewInput  func() any
	InputType reflect.Type
	NewDeps   func() any
	Fn        any
}

// RegisterRunner registers a Go handler for a runner's on_run event.
// Duplicate registration is a programmer error.
func (r *Registry) RegisterRunner(name string, handler *RegisteredRunner) {
	if _, exists := r.HandlerRegistry[name]; exists {
		panic(fmt.Sprintf("runner handler %q already registered", name))
	}
	slog.Debug("Registering runner handler.", "name", name)
	r.HandlerRegistry[name] = handler
}

// RegisteredAsset holds the compiled Go parts of an asset's lifecycle.
// CreateFn must have the shape func(ctx, *Input) (instance, error); the
// returned instance is what steps receive through their `uses` block.
// DestroyFn takes the instance and returns an error.
type RegisteredAsset struct {
	NewInput  func() any
	InputType reflect.Type
	CreateFn  any
	DestroyFn any
}

// RegisterAsset registers Go handlers for an asset's lifecycle events.
func (r *Registry) RegisterAsset(name string, handler *RegisteredAsset) {
	if _, exists := r.AssetHandlerRegistry[name]; exists {
		panic(fmt.Sprintf("asset handler %q already registered", name))
	}
	slog.Debug("Registering asset handler.", "name", name)
	r.AssetHandlerRegistry[name] = handler
}
