package hcl

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"

	"github.com/vk/mdgridgo/internal/config"
	"github.com/vk/mdgridgo/internal/ctxlog"
)

// InputTag is the struct tag binding a handler input field to a manifest
// input name.
const InputTag = "mdg"

// Converter is the HCL implementation of config.Converter.
type Converter struct{}

// NewConverter creates an HCL converter.
func NewConverter() *Converter {
	return &Converter{}
}

// DecodeBody evaluates argument expressions, applies manifest defaults and
// populates inputStruct field by field. Fields are matched to manifest
// inputs through the `mdg` struct tag.
func (c *Converter) DecodeBody(
	ctx context.Context,
	inputStruct any,
	args map[string]hcl.Expression,
	defs map[string]*config.InputDefinition,
	evalCtx *hcl.EvalContext,
) error {
	logger := ctxlog.FromContext(ctx)

	structVal := reflect.ValueOf(inputStruct)
	if structVal.Kind() != reflect.Ptr || structVal.IsNil() {
		return fmt.Errorf("inputStruct must be a non-nil pointer, got %T", inputStruct)
	}
	structVal = structVal.Elem()
	structType := structVal.Type()

	for i := 0; i < structType.NumField(); i++ {
		field := structType.Field(i)
		fieldVal := structVal.Field(i)
		if !fieldVal.CanSet() {
			continue
		}

		name := field.Name
		if tag := field.Tag.Get(InputTag); tag != "" {
			name = strings.Split(tag, ",")[0]
		}

		def, declared := defs[name]
		if !declared {
			continue
		}

		target := fieldVal.Addr().Interface()
		expr, provided := args[name]

		switch {
		case provided:
			val, diags := expr.Value(evalCtx)
			if diags.HasErrors() {
				return fmt.Errorf("evaluating argument %q: %w", name, diags)
			}
			if err := decodeValue(val, target); err != nil {
				return fmt.Errorf("failed to decode argument %q: %w", name, err)
			}
		case def.Default != nil:
			logger.Debug("Applying manifest default.", "input", name)
			if err := decodeValue(*def.Default, target); err != nil {
				return fmt.Errorf("failed to apply default for %q: %w", name, err)
			}
		case !def.Optional:
			return fmt.Errorf("missing required argument %q", name)
		}
	}
	return nil
}

// decodeValue converts a cty.Value into the pointed-to Go value, converting
// to the implied target type first so that tuples become lists and numbers
// fit the field width.
func decodeValue(val cty.Value, goPtr any) error {
	ptr := reflect.ValueOf(goPtr)
	if ptr.Kind() != reflect.Ptr {
		return fmt.Errorf("decode target must be a pointer, got %T", goPtr)
	}

	impliedType, err := gocty.ImpliedType(ptr.Elem().Interface())
	if err != nil {
		// No implied type (e.g. map[string]any); fall back to direct decoding.
		return gocty.FromCtyValue(val, goPtr)
	}

	converted, err := convert.Convert(val, impliedType)
	if err != nil {
		return fmt.Errorf("cannot convert %s to %s: %w",
			val.Type().FriendlyName(), impliedType.FriendlyName(), err)
	}
	return gocty.FromCtyValue(converted, goPtr)
}

// ToCtyValue converts a native handler output into a cty.Value. Structs use
// their `cty` tags; nil maps to a null value.
func (c *Converter) ToCtyValue(v any) (cty.Value, error) {
	if v == nil {
		return cty.NullVal(cty.DynamicPseudoType), nil
	}
	if val, ok := v.(cty.Value); ok {
		return val, nil
	}

	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return cty.NullVal(cty.DynamicPseudoType), nil
		}
		rv = rv.Elem()
	}

	impliedType, err := gocty.ImpliedType(rv.Interface())
	if err != nil {
		return cty.NilVal, fmt.Errorf("cannot derive cty type for %T: %w", v, err)
	}
	return gocty.ToCtyValue(rv.Interface(), impliedType)
}
