package dag

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"

	"github.com/vk/mdgridgo/internal/ctxlog"
	"github.com/vk/mdgridgo/internal/registry"
)

// evalFunctions are the expression functions available in grid files.
// Ensemble grids lean on format (member file names) and concat (merging
// per-member output columns).
var evalFunctions = map[string]function.Function{
	"concat":  stdlib.ConcatFunc,
	"flatten": stdlib.FlattenFunc,
	"format":  stdlib.FormatFunc,
	"join":    stdlib.JoinFunc,
	"length":  stdlib.LengthFunc,
	"max":     stdlib.MaxFunc,
	"min":     stdlib.MinFunc,
	"range":   stdlib.RangeFunc,
}

// inputTag binds Go struct fields to configuration argument names.
const inputTag = "mdg"

// executeResourceNode creates an asset instance and registers its destroy
// function on the cleanup stack.
func (e *Executor) executeResourceNode(ctx context.Context, node *Node) error {
	logger := ctxlog.FromContext(ctx).With("nodeID", node.ID)
	assetType := node.ResourceConfig.AssetType

	def, ok := e.registry.AssetDefinitionRegistry[assetType]
	if !ok {
		return fmt.Errorf("unknown asset type %q for resource '%s'", assetType, node.ID)
	}
	handler, ok := e.registry.AssetHandlerRegistry[def.Lifecycle.Create]
	if !ok {
		return fmt.Errorf("create handler %q for asset %q is not registered", def.Lifecycle.Create, assetType)
	}

	fnVal := reflect.ValueOf(handler.CreateFn)
	args := []reflect.Value{reflect.ValueOf(ctx)}
	if fnVal.Type().NumIn() > 1 {
		var input any
		if handler.NewInput != nil {
			input = handler.NewInput()
		}
		if input == nil {
			input = newArgFor(fnVal.Type().In(1))
		}
		if err := e.converter.DecodeBody(ctx, input, node.ResourceConfig.Arguments, def.Inputs, e.buildEvalContext(node)); err != nil {
			return fmt.Errorf("decoding arguments for resource '%s': %w", node.ID, err)
		}
		args = append(args, reflect.ValueOf(input))
	}

	logger.Info("🔧 Creating resource.")
	results := fnVal.Call(args)
	if errVal := results[1].Interface(); errVal != nil {
		return fmt.Errorf("creating resource '%s': %w", node.ID, errVal.(error))
	}
	instance := results[0].Interface()
	e.resourceInstances.Store(node.ID, instance)

	destroyHandler, ok := e.registry.AssetHandlerRegistry[def.Lifecycle.Destroy]
	if !ok || destroyHandler.DestroyFn == nil {
		return fmt.Errorf("destroy handler %q for asset %q is not registered", def.Lifecycle.Destroy, assetType)
	}
	destroyVal := reflect.ValueOf(destroyHandler.DestroyFn)
	e.pushCleanup(node, func() {
		logger.Info("🗑️ Destroying resource.")
		out := destroyVal.Call([]reflect.Value{reflect.ValueOf(instance)})
		if errVal := out[0].Interface(); errVal != nil {
			logger.Error("Resource destruction failed.", "error", errVal)
		}
		e.resourceInstances.Delete(node.ID)
	})
	return nil
}

// executeStepNode decodes the step's arguments, resolves its asset
// dependencies, and invokes the runner handler.
func (e *Executor) executeStepNode(ctx context.Context, node *Node) error {
	logger := ctxlog.FromContext(ctx).With("nodeID", node.ID)
	runnerType := node.StepConfig.RunnerType

	def, ok := e.registry.DefinitionRegistry[runnerType]
	if !ok {
		return fmt.Errorf("unknown runner type %q for step '%s'", runnerType, node.ID)
	}
	handler, ok := e.registry.HandlerRegistry[def.Lifecycle.OnRun]
	if !ok {
		return fmt.Errorf("on_run handler %q for runner %q is not registered", def.Lifecycle.OnRun, runnerType)
	}

	fnVal := reflect.ValueOf(handler.Fn)
	fnType := fnVal.Type()

	evalCtx := e.buildEvalContext(node)

	var input any
	if handler.NewInput != nil {
		input = handler.NewInput()
	}
	if input == nil {
		input = newArgFor(fnType.In(2))
	}
	if err := e.converter.DecodeBody(ctx, input, node.StepConfig.Arguments, def.Inputs, evalCtx); err != nil {
		return fmt.Errorf("decoding arguments for step '%s': %w", node.ID, err)
	}

	deps, err := e.buildDepsStruct(node, handler)
	if err != nil {
		return err
	}
	if deps == nil {
		deps = newArgFor(fnType.In(1))
	}

	logger.Info("▶️ Executing step.")
	results := fnVal.Call([]reflect.Value{
		reflect.ValueOf(ctx),
		reflect.ValueOf(deps),
		reflect.ValueOf(input),
	})
	if errVal := results[1].Interface(); errVal != nil {
		return fmt.Errorf("step '%s' failed: %w", node.ID, errVal.(error))
	}

	output, err := e.converter.ToCtyValue(results[0].Interface())
	if err != nil {
		return fmt.Errorf("converting output of step '%s': %w", node.ID, err)
	}
	node.Output = output
	logger.Info("✅ Step finished.")
	return nil
}

// buildDepsStruct populates the handler's Deps struct by resolving each
// `uses` expression to the live instance of the referenced resource.
func (e *Executor) buildDepsStruct(node *Node, handler *registry.RegisteredRunner) (any, error) {
	if handler.NewDeps == nil {
		return nil, nil
	}
	deps := handler.NewDeps()
	if deps == nil {
		return nil, nil
	}

	v := reflect.ValueOf(deps).Elem()
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		localName := strings.Split(field.Tag.Get(inputTag), ",")[0]
		if localName == "" || localName == "-" {
			continue
		}

		expr, ok := node.StepConfig.Uses[localName]
		if !ok {
			return nil, fmt.Errorf("step '%s' does not bind required dependency %q in its uses block", node.ID, localName)
		}

		id, err := resolveResourceRef(expr)
		if err != nil {
			return nil, fmt.Errorf("step '%s', uses %q: %w", node.ID, localName, err)
		}
		instance, found := e.resourceInstances.Load(id)
		if !found {
			return nil, fmt.Errorf("step '%s', uses %q: resource '%s' has no live instance", node.ID, localName, id)
		}

		rv := reflect.ValueOf(instance)
		if !rv.Type().AssignableTo(field.Type) {
			return nil, fmt.Errorf("step '%s', uses %q: resource '%s' provides %s, handler expects %s",
				node.ID, localName, id, rv.Type(), field.Type)
		}
		v.Field(i).Set(rv)
	}
	return deps, nil
}

// newArgFor builds a non-nil placeholder for a handler parameter when the
// module registered no constructor for it.
func newArgFor(t reflect.Type) any {
	if t.Kind() == reflect.Ptr {
		return reflect.New(t.Elem()).Interface()
	}
	return new(struct{})
}

// resolveResourceRef extracts the node ID from a `resource.<type>.<name>`
// reference expression.
func resolveResourceRef(expr hcl.Expression) (string, error) {
	for _, traversal := range expr.Variables() {
		if traversal.RootName() != "resource" || len(traversal) < 3 {
			continue
		}
		typeAttr, typeOk := traversal[1].(hcl.TraverseAttr)
		nameAttr, nameOk := traversal[2].(hcl.TraverseAttr)
		if !typeOk || !nameOk {
			continue
		}
		return ResourceID(typeAttr.Name, nameAttr.Name), nil
	}
	return "", fmt.Errorf("expression does not reference a resource")
}

// buildEvalContext assembles the variables visible to a node's expressions:
// its own count.index and the outputs of every step it depends on. A step
// without a count appears as a single object; a fanned-out step appears as a
// tuple of objects, one per instance in index order.
func (e *Executor) buildEvalContext(node *Node) *hcl.EvalContext {
	vars := map[string]cty.Value{
		"count": cty.ObjectVal(map[string]cty.Value{
			"index": cty.NumberIntVal(int64(node.CountIndex)),
		}),
	}

	groups := map[string][]*Node{}
	for _, dep := range node.Deps {
		if dep.Type != StepNode {
			continue
		}
		fullName := dep.StepConfig.RunnerType + "." + dep.StepConfig.Name
		if _, seen := groups[fullName]; seen {
			continue
		}
		groups[fullName] = stepInstances(e.Graph, fullName)
	}

	if len(groups) > 0 {
		byRunner := map[string]map[string]cty.Value{}
		for fullName, instances := range groups {
			parts := strings.SplitN(fullName, ".", 2)
			objs := make([]cty.Value, len(instances))
			for i, inst := range instances {
				out := inst.Output
				if out == (cty.Value{}) || out.IsNull() {
					out = cty.NullVal(cty.DynamicPseudoType)
				}
				objs[i] = cty.ObjectVal(map[string]cty.Value{"output": out})
			}
			var val cty.Value
			if len(instances) == 1 && instances[0].StepConfig.Count == nil {
				val = objs[0]
			} else {
				val = cty.TupleVal(objs)
			}
			if byRunner[parts[0]] == nil {
				byRunner[parts[0]] = map[string]cty.Value{}
			}
			byRunner[parts[0]][parts[1]] = val
		}

		stepVars := map[string]cty.Value{}
		for runner, names := range byRunner {
			stepVars[runner] = cty.ObjectVal(names)
		}
		vars["step"] = cty.ObjectVal(stepVars)
	}

	return &hcl.EvalContext{Variables: vars, Functions: evalFunctions}
}
