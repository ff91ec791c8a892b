package config

import (
	"context"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
)

// Loader reads configuration from the given paths and translates it into the
// format-agnostic model, returning the Converter that matches the format.
type Loader interface {
	Load(ctx context.Context, paths ...string) (*Model, Converter, error)
}

// Converter bridges raw configuration values and the Go structs used by
// module handlers.
type Converter interface {
	// DecodeBody evaluates the raw argument expressions of a step or
	// resource, applies manifest defaults, and populates inputStruct.
	DecodeBody(
		ctx context.Context,
		inputStruct any,
		args map[string]hcl.Expression,
		defs map[string]*InputDefinition,
		evalCtx *hcl.EvalContext,
	) error

	// ToCtyValue converts a native Go value returned by a handler into a
	// cty.Value for use in downstream expressions.
	ToCtyValue(v any) (cty.Value, error)
}
