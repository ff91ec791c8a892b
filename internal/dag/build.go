package dag

import (
	"context"
	"fmt"

	"github.com/zclconf/go-cty/cty"

	"github.com/vk/mdgridgo/internal/config"
	"github.com/vk/mdgridgo/internal/ctxlog"
	"github.com/vk/mdgridgo/internal/registry"
)

// Build compiles a config model into a validated dependency graph: one node
// per expanded step instance and per resource, linked explicitly via
// depends_on and implicitly via expression references, with counters primed
// and cycles rejected.
func Build(ctx context.Context, model *config.Model, r *registry.Registry) (*Graph, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Build: starting graph construction.")
	graph := &Graph{Nodes: make(map[string]*Node)}

	if err := createNodes(ctx, model.Grid, graph); err != nil {
		return nil, err
	}
	logger.Debug("Build: node creation complete.", "node_count", len(graph.Nodes))

	if err := linkNodes(ctx, model, graph, r); err != nil {
		return nil, err
	}
	logger.Debug("Build: node linking complete.")

	for _, node := range graph.Nodes {
		node.SetInitialCounters()
	}

	if err := graph.detectCycles(); err != nil {
		return nil, fmt.Errorf("error validating dependency graph: %w", err)
	}
	logger.Debug("Build: graph construction successful.")
	return graph, nil
}

// createNodes expands every step by its count and adds one node per instance,
// plus one node per resource.
func createNodes(ctx context.Context, grid *config.Grid, graph *Graph) error {
	logger := ctxlog.FromContext(ctx)

	for _, s := range grid.Steps {
		count, err := resolveCount(s)
		if err != nil {
			return err
		}
		for i := 0; i < count; i++ {
			id := StepInstanceID(s.RunnerType, s.Name, i)
			if _, exists := graph.Nodes[id]; exists {
				logger.Warn("Duplicate step definition found, it will be overwritten.", "id", id)
			}
			graph.Nodes[id] = &Node{
				ID:         id,
				Name:       s.Name,
				Type:       StepNode,
				CountIndex: i,
				StepConfig: s,
				Deps:       make(map[string]*Node),
				Dependents: make(map[string]*Node),
			}
		}
	}

	for _, r := range grid.Resources {
		id := ResourceID(r.AssetType, r.Name)
		if _, exists := graph.Nodes[id]; exists {
			logger.Warn("Duplicate resource definition found, it will be overwritten.", "id", id)
		}
		graph.Nodes[id] = &Node{
			ID:             id,
			Name:           r.Name,
			Type:           ResourceNode,
			ResourceConfig: r,
			Deps:           make(map[string]*Node),
			Dependents:     make(map[string]*Node),
		}
	}
	return nil
}

// resolveCount evaluates a step's count expression. The expansion is static:
// the expression must be a literal non-negative number, known before any
// step has run. An absent count means a single instance.
func resolveCount(s *config.Step) (int, error) {
	if s.Count == nil {
		return 1, nil
	}
	val, diags := s.Count.Value(nil)
	if diags.HasErrors() {
		return 0, fmt.Errorf("count for step %s.%s must be a literal number: %w", s.RunnerType, s.Name, diags)
	}
	if val.IsNull() {
		return 1, nil
	}
	if val.Type() != cty.Number {
		return 0, fmt.Errorf("count for step %s.%s must be a number, got %s", s.RunnerType, s.Name, val.Type().FriendlyName())
	}
	n, _ := val.AsBigFloat().Int64()
	if n < 0 {
		return 0, fmt.Errorf("count for step %s.%s cannot be negative, got %d", s.RunnerType, s.Name, n)
	}
	return int(n), nil
}

// StepInstanceID returns the canonical node address of a step instance.
func StepInstanceID(runnerType, name string, index int) string {
	return fmt.Sprintf("step.%s.%s[%d]", runnerType, name, index)
}

// ResourceID returns the canonical node address of a resource.
func ResourceID(assetType, name string) string {
	return fmt.Sprintf("resource.%s.%s", assetType, name)
}

// detectCycles rejects circular dependencies using depth-first search.
func (g *Graph) detectCycles() error {
	visiting := make(map[string]bool)
	visited := make(map[string]bool)

	var visit func(node *Node) error
	visit = func(node *Node) error {
		visiting[node.ID] = true
		for _, dep := range node.Deps {
			if visiting[dep.ID] {
				return fmt.Errorf("cycle detected involving '%s'", dep.ID)
			}
			if !visited[dep.ID] {
				if err := visit(dep); err != nil {
					return err
				}
			}
		}
		delete(visiting, node.ID)
		visited[node.ID] = true
		return nil
	}

	for _, node := range g.Nodes {
		if !visited[node.ID] {
			if err := visit(node); err != nil {
				return err
			}
		}
	}
	return nil
}
