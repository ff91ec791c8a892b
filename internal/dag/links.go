package dag

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"

	"github.com/vk/mdgridgo/internal/config"
	"github.com/vk/mdgridgo/internal/ctxlog"
	"github.com/vk/mdgridgo/internal/registry"
)

// linkNodes establishes all dependency edges: explicit depends_on entries
// and implicit references found in argument and uses expressions.
func linkNodes(ctx context.Context, model *config.Model, graph *Graph, r *registry.Registry) error {
	for _, node := range graph.Nodes {
		var dependsOn []string
		var expressions []hcl.Expression

		if node.Type == StepNode {
			dependsOn = node.StepConfig.DependsOn
			for _, expr := range node.StepConfig.Arguments {
				expressions = append(expressions, expr)
			}
			for _, expr := range node.StepConfig.Uses {
				expressions = append(expressions, expr)
			}
		} else {
			dependsOn = node.ResourceConfig.DependsOn
			for _, expr := range node.ResourceConfig.Arguments {
				expressions = append(expressions, expr)
			}
		}

		if err := linkExplicitDeps(ctx, node, dependsOn, graph); err != nil {
			return err
		}
		for _, expr := range expressions {
			if err := linkImplicitDeps(ctx, node, expr, graph, r); err != nil {
				return err
			}
		}
	}
	return nil
}

// link records a single edge, ignoring duplicates.
func link(ctx context.Context, from, to *Node) {
	if _, exists := from.Deps[to.ID]; exists {
		return
	}
	ctxlog.FromContext(ctx).Debug("Linking dependency.", "from", from.ID, "to", to.ID)
	from.Deps[to.ID] = to
	to.Dependents[from.ID] = from
}

// depAddress is a parsed depends_on entry. Index is -1 for shorthand.
type depAddress struct {
	Name  string
	Index int
}

var depAddrRegex = regexp.MustCompile(`^([a-zA-Z0-9_.-]+)(?:\[(\d+)\])?$`)

// parseDepAddress parses "runner.name" or "runner.name[3]".
func parseDepAddress(addr string) (*depAddress, error) {
	matches := depAddrRegex.FindStringSubmatch(addr)
	if matches == nil {
		return nil, fmt.Errorf("invalid dependency address format: %q", addr)
	}
	index := -1
	if matches[2] != "" {
		index, _ = strconv.Atoi(matches[2])
	}
	return &depAddress{Name: matches[1], Index: index}, nil
}

// linkExplicitDeps resolves depends_on entries. A shorthand reference to a
// fanned-out step links to every instance, so `depends_on = ["mdrun.eq"]`
// is a barrier over the whole ensemble.
func linkExplicitDeps(ctx context.Context, node *Node, dependsOn []string, graph *Graph) error {
	for _, raw := range dependsOn {
		addr, err := parseDepAddress(raw)
		if err != nil {
			return err
		}

		if depNode, found := graph.Nodes["resource."+addr.Name]; found {
			link(ctx, node, depNode)
			continue
		}

		if addr.Index >= 0 {
			id := fmt.Sprintf("step.%s[%d]", addr.Name, addr.Index)
			depNode, found := graph.Nodes[id]
			if !found {
				return fmt.Errorf("node '%s' depends on non-existent step instance '%s'", node.ID, raw)
			}
			link(ctx, node, depNode)
			continue
		}

		instances := stepInstances(graph, addr.Name)
		if len(instances) == 0 {
			return fmt.Errorf("node '%s' depends on non-existent identifier '%s'", node.ID, raw)
		}
		for _, depNode := range instances {
			link(ctx, node, depNode)
		}
	}
	return nil
}

// linkImplicitDeps walks an expression's variable traversals and links any
// step or resource reference. Unindexed references to a fanned-out step link
// every instance; a literal index selects one.
func linkImplicitDeps(ctx context.Context, node *Node, expr hcl.Expression, graph *Graph, r *registry.Registry) error {
	for _, traversal := range expr.Variables() {
		if len(traversal) < 3 {
			continue
		}

		switch traversal.RootName() {
		case "step":
			ref, ok := parseStepTraversal(traversal)
			if !ok {
				continue
			}
			if ref.Index >= 0 {
				id := fmt.Sprintf("step.%s[%d]", ref.FullName, ref.Index)
				depNode, found := graph.Nodes[id]
				if !found {
					return fmt.Errorf("implicit dependency error in '%s': referenced step instance '%s' does not exist", node.ID, id)
				}
				if err := validateOutputReference(traversal, depNode, r); err != nil {
					return err
				}
				link(ctx, node, depNode)
				continue
			}
			instances := stepInstances(graph, ref.FullName)
			if len(instances) == 0 {
				// Not a known step; could be an unrelated variable.
				continue
			}
			for _, depNode := range instances {
				if err := validateOutputReference(traversal, depNode, r); err != nil {
					return err
				}
				link(ctx, node, depNode)
			}

		case "resource":
			typeAttr, typeOk := traversal[1].(hcl.TraverseAttr)
			nameAttr, nameOk := traversal[2].(hcl.TraverseAttr)
			if !typeOk || !nameOk {
				continue
			}
			id := ResourceID(typeAttr.Name, nameAttr.Name)
			if depNode, found := graph.Nodes[id]; found {
				link(ctx, node, depNode)
			}
		}
	}
	return nil
}

// parsedStepRef is a step reference extracted from a traversal.
type parsedStepRef struct {
	FullName string // "runner_type.instance_name"
	Index    int    // literal index, or -1
}

// parseStepTraversal extracts `step.<runner_type>.<instance_name>` and an
// optional literal index from a traversal.
func parseStepTraversal(traversal hcl.Traversal) (*parsedStepRef, bool) {
	runnerAttr, runnerOk := traversal[1].(hcl.TraverseAttr)
	nameAttr, nameOk := traversal[2].(hcl.TraverseAttr)
	if !runnerOk || !nameOk {
		return nil, false
	}

	ref := &parsedStepRef{
		FullName: fmt.Sprintf("%s.%s", runnerAttr.Name, nameAttr.Name),
		Index:    -1,
	}
	if len(traversal) > 3 {
		if indexer, ok := traversal[3].(hcl.TraverseIndex); ok && indexer.Key.Type() == cty.Number {
			if num := indexer.Key.AsBigFloat(); num.IsInt() {
				val, _ := num.Int64()
				ref.Index = int(val)
			}
		}
	}
	return ref, true
}

// stepInstances returns all instance nodes of "runner_type.instance_name",
// ordered by index.
func stepInstances(graph *Graph, fullName string) []*Node {
	var out []*Node
	for i := 0; ; i++ {
		node, ok := graph.Nodes[fmt.Sprintf("step.%s[%d]", fullName, i)]
		if !ok {
			break
		}
		out = append(out, node)
	}
	return out
}

// validateOutputReference checks `step.x.y.output.<name>` (or the indexed
// form) against the runner manifest's declared outputs.
func validateOutputReference(traversal hcl.Traversal, depNode *Node, r *registry.Registry) error {
	if depNode.Type != StepNode {
		return nil
	}

	// Find the "output" attribute position; it follows either the name or
	// a literal index.
	pos := 3
	if len(traversal) > 3 {
		if _, isIndex := traversal[3].(hcl.TraverseIndex); isIndex {
			pos = 4
		}
	}
	if len(traversal) <= pos+1 {
		return nil
	}
	outputAttr, ok := traversal[pos].(hcl.TraverseAttr)
	if !ok || outputAttr.Name != "output" {
		return nil
	}
	fieldAttr, ok := traversal[pos+1].(hcl.TraverseAttr)
	if !ok {
		return nil
	}

	def, ok := r.DefinitionRegistry[depNode.StepConfig.RunnerType]
	if !ok {
		return nil
	}
	if _, declared := def.Outputs[fieldAttr.Name]; !declared {
		var known []string
		for name := range def.Outputs {
			known = append(known, name)
		}
		return fmt.Errorf("reference to undeclared output %q of step '%s' (declared: %s)",
			fieldAttr.Name, depNode.ID, strings.Join(known, ", "))
	}
	return nil
}
