package registry

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"strings"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"

	"github.com/vk/mdgridgo/internal/config"
	"github.com/vk/mdgridgo/internal/ctxlog"
)

// inputTag mirrors the converter's struct tag for binding input fields.
const inputTag = "mdg"

// Validate performs a strict parity check between loaded manifests and the
// registered Go handlers: every manifest lifecycle handler must exist, and
// declared inputs must match the handler's input struct in both presence
// and type.
func (r *Registry) Validate(ctx context.Context) error {
	var errs []string
	logger := ctxlog.FromContext(ctx)

	for runnerType, def := range r.DefinitionRegistry {
		if def.Lifecycle == nil || def.Lifecycle.OnRun == "" {
			errs = append(errs, fmt.Sprintf("runner %q: manifest declares no on_run handler", runnerType))
			continue
		}
		handler, ok := r.HandlerRegistry[def.Lifecycle.OnRun]
		if !ok {
			errs = append(errs, fmt.Sprintf("runner %q: handler %q is not registered", runnerType, def.Lifecycle.OnRun))
			continue
		}
		errs = append(errs, checkInputParity(logger, "runner", runnerType, handler.InputType, def.Inputs)...)
	}

	for assetType, def := range r.AssetDefinitionRegistry {
		if def.Lifecycle == nil {
			errs = append(errs, fmt.Sprintf("asset %q: manifest declares no lifecycle", assetType))
			continue
		}
		create, ok := r.AssetHandlerRegistry[def.Lifecycle.Create]
		if !ok || create.CreateFn == nil {
			errs = append(errs, fmt.Sprintf("asset %q: create handler %q is not registered", assetType, def.Lifecycle.Create))
			create = nil
		}
		if destroy, ok := r.AssetHandlerRegistry[def.Lifecycle.Destroy]; !ok || destroy.DestroyFn == nil {
			errs = append(errs, fmt.Sprintf("asset %q: destroy handler %q is not registered", assetType, def.Lifecycle.Destroy))
		}
		if create != nil {
			errs = append(errs, checkInputParity(logger, "asset", assetType, create.InputType, def.Inputs)...)
		}
	}

	// Reverse direction: a compiled handler nothing references is either a
	// missing manifest or a typo in a lifecycle block.
	referenced := map[string]bool{}
	for _, def := range r.DefinitionRegistry {
		if def.Lifecycle != nil {
			referenced[def.Lifecycle.OnRun] = true
		}
	}
	for _, def := range r.AssetDefinitionRegistry {
		if def.Lifecycle != nil {
			referenced[def.Lifecycle.Create] = true
			referenced[def.Lifecycle.Destroy] = true
		}
	}
	for name := range r.HandlerRegistry {
		if !referenced[name] {
			errs = append(errs, fmt.Sprintf("handler %q is registered but no manifest references it", name))
		}
	}
	for name := range r.AssetHandlerRegistry {
		if !referenced[name] {
			errs = append(errs, fmt.Sprintf("asset handler %q is registered but no manifest references it", name))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("registry validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}

// checkInputParity compares a handler input struct against manifest inputs.
func checkInputParity(
	logger *slog.Logger,
	kind, typeName string,
	inputType reflect.Type,
	defs map[string]*config.InputDefinition,
) []string {
	var errs []string

	if inputType == nil {
		if len(defs) > 0 {
			errs = append(errs, fmt.Sprintf("%s %q: manifest declares inputs, but Go handler has no input struct", kind, typeName))
		}
		return errs
	}

	goInputs := make(map[string]reflect.StructField)
	for i := 0; i < inputType.NumField(); i++ {
		field := inputType.Field(i)
		if !field.IsExported() {
			continue
		}
		tagName := strings.Split(field.Tag.Get(inputTag), ",")[0]
		if tagName != "" && tagName != "-" {
			goInputs[tagName] = field
		}
	}

	for name := range goInputs {
		if _, ok := defs[name]; !ok {
			errs = append(errs, fmt.Sprintf("%s %q: Go struct binds input %q which is not declared in manifest", kind, typeName, name))
		}
	}
	for name := range defs {
		if _, ok := goInputs[name]; !ok {
			errs = append(errs, fmt.Sprintf("%s %q: manifest declares input %q with no matching Go struct field", kind, typeName, name))
		}
	}

	for name, def := range defs {
		goField, ok := goInputs[name]
		if !ok {
			continue
		}
		if def.Type.Equals(cty.DynamicPseudoType) {
			logger.Warn("Manifest input has 'type = any', which disables static type checking.",
				"kind", kind, "type", typeName, "input", name)
			continue
		}
		goFieldType, err := gocty.ImpliedType(reflect.Zero(goField.Type).Interface())
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s %q, input %q: cannot imply cty type from Go field type %s: %v",
				kind, typeName, name, goField.Type, err))
			continue
		}
		if !def.Type.Equals(goFieldType) {
			errs = append(errs, fmt.Sprintf("%s %q, input %q: manifest requires %s but Go field %s provides %s",
				kind, typeName, name, def.Type.FriendlyName(), goField.Name, goFieldType.FriendlyName()))
		}
	}

	return errs
}
