package hcl

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/ext/typeexpr"
	"github.com/zclconf/go-cty/cty"

	"github.com/vk/mdgridgo/internal/config"
	"github.com/vk/mdgridgo/internal/schema"
)

// translateStep converts the HCL step schema into the agnostic model.
func (l *Loader) translateStep(s *schema.Step) *config.Step {
	return &config.Step{
		RunnerType: s.RunnerType,
		Name:       s.Name,
		Count:      s.Count,
		Arguments:  extractBodyAttributes(s.Arguments),
		Uses:       extractBodyAttributes(s.Uses),
		DependsOn:  s.DependsOn,
	}
}

// translateResource converts the HCL resource schema into the agnostic model.
func (l *Loader) translateResource(r *schema.Resource) *config.Resource {
	return &config.Resource{
		AssetType: r.AssetType,
		Name:      r.Name,
		Arguments: extractBodyAttributes(r.Arguments),
		DependsOn: r.DependsOn,
	}
}

// translateRunnerDefinition converts a runner manifest into the agnostic model.
func (l *Loader) translateRunnerDefinition(s *schema.RunnerDefinition) (*config.RunnerDefinition, error) {
	r := &config.RunnerDefinition{
		Type:        s.Type,
		Description: s.Description,
		Inputs:      make(map[string]*config.InputDefinition),
		Outputs:     make(map[string]*config.OutputDefinition),
		Uses:        make(map[string]*config.UsesDefinition),
	}
	if s.Lifecycle != nil {
		r.Lifecycle = &config.Lifecycle{OnRun: s.Lifecycle.OnRun}
	}
	for _, in := range s.Inputs {
		def, err := translateInput(in)
		if err != nil {
			return nil, err
		}
		r.Inputs[in.Name] = def
	}
	for _, out := range s.Outputs {
		ty, err := translateType(out.Type)
		if err != nil {
			return nil, fmt.Errorf("output %q: %w", out.Name, err)
		}
		r.Outputs[out.Name] = &config.OutputDefinition{
			Name:        out.Name,
			Type:        ty,
			Description: out.Description,
		}
	}
	for _, use := range s.Uses {
		r.Uses[use.LocalName] = &config.UsesDefinition{
			LocalName: use.LocalName,
			AssetType: use.AssetType,
		}
	}
	return r, nil
}

// translateAssetDefinition converts an asset manifest into the agnostic model.
func (l *Loader) translateAssetDefinition(s *schema.AssetDefinition) (*config.AssetDefinition, error) {
	a := &config.AssetDefinition{
		Type:        s.Type,
		Description: s.Description,
		Inputs:      make(map[string]*config.InputDefinition),
		Outputs:     make(map[string]*config.OutputDefinition),
	}
	if s.Lifecycle != nil {
		a.Lifecycle = &config.AssetLifecycle{Create: s.Lifecycle.Create, Destroy: s.Lifecycle.Destroy}
	}
	for _, in := range s.Inputs {
		def, err := translateInput(in)
		if err != nil {
			return nil, err
		}
		a.Inputs[in.Name] = def
	}
	for _, out := range s.Outputs {
		ty, err := translateType(out.Type)
		if err != nil {
			return nil, fmt.Errorf("output %q: %w", out.Name, err)
		}
		a.Outputs[out.Name] = &config.OutputDefinition{
			Name:        out.Name,
			Type:        ty,
			Description: out.Description,
		}
	}
	return a, nil
}

// translateInput resolves the declared type and default of one manifest input.
// A usable default makes the input optional.
func translateInput(in *schema.InputDefinition) (*config.InputDefinition, error) {
	ty, err := translateType(in.Type)
	if err != nil {
		return nil, fmt.Errorf("input %q: %w", in.Name, err)
	}

	var defaultVal *cty.Value
	var optional bool
	if in.Default != nil && !in.Default.IsNull() {
		defaultVal = in.Default
		optional = true
	}

	return &config.InputDefinition{
		Name:        in.Name,
		Type:        ty,
		Description: in.Description,
		Default:     defaultVal,
		Optional:    optional,
	}, nil
}

// translateType resolves a manifest type expression like `string`, `number`
// or `list(number)` into a cty type constraint. A missing expression means
// the author opted out of static checking.
func translateType(expr hcl.Expression) (cty.Type, error) {
	if expr == nil {
		return cty.DynamicPseudoType, nil
	}
	ty, diags := typeexpr.TypeConstraint(expr)
	if diags.HasErrors() {
		return cty.NilType, fmt.Errorf("invalid type expression: %w", diags)
	}
	return ty, nil
}

// extractBodyAttributes flattens an arguments or uses block body into a map
// of named, unevaluated expressions.
func extractBodyAttributes(block any) map[string]hcl.Expression {
	var body hcl.Body
	switch b := block.(type) {
	case *schema.StepArgs:
		if b == nil {
			return nil
		}
		body = b.Body
	case *schema.UsesBlock:
		if b == nil {
			return nil
		}
		body = b.Body
	default:
		return nil
	}
	if body == nil {
		return nil
	}

	attrs, _ := body.JustAttributes()
	if len(attrs) == 0 {
		return nil
	}
	exprs := make(map[string]hcl.Expression, len(attrs))
	for name, attr := range attrs {
		exprs[name] = attr.Expr
	}
	return exprs
}
