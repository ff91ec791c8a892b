package dag

import (
	"sync"
	"sync/atomic"

	"github.com/zclconf/go-cty/cty"

	"github.com/vk/mdgridgo/internal/config"
)

// NodeType distinguishes step nodes from resource nodes.
type NodeType int

const (
	// StepNode executes a runner handler once.
	StepNode NodeType = iota
	// ResourceNode manages a stateful asset instance.
	ResourceNode
)

// State is a node's execution state.
type State int32

const (
	// Pending means the node is waiting on unmet dependencies.
	Pending State = iota
	// Running means a worker is executing the node.
	Running
	// Done means the node completed successfully.
	Done
	// Failed means the node failed or was skipped.
	Failed
)

// Graph is the compiled execution plan: one node per step instance and per
// resource, linked by dependency edges.
type Graph struct {
	Nodes map[string]*Node
}

// Node is one vertex of the execution graph.
type Node struct {
	// ID is the canonical address, e.g. "step.mdrun.ensemble[2]" or
	// "resource.gromacs.local".
	ID string
	// Name is the instance name from the configuration.
	Name string
	// Type distinguishes steps from resources.
	Type NodeType
	// CountIndex is the instance index within a step fan-out. It plays the
	// role of the member rank in an ensemble run.
	CountIndex int

	// StepConfig is set for step nodes, ResourceConfig for resource nodes.
	StepConfig     *config.Step
	ResourceConfig *config.Resource

	// Deps and Dependents are the incoming and outgoing edges.
	Deps       map[string]*Node
	Dependents map[string]*Node

	// Error holds the failure that stopped this node, if any.
	Error error
	// Output holds the step handler's converted result for downstream
	// expressions. Unset for resources; their live instance is tracked by
	// the executor.
	Output cty.Value

	depCount        atomic.Int32
	descendantCount atomic.Int32
	state           atomic.Int32
	skipOnce        sync.Once
	destroyOnce     sync.Once
}

// SetInitialCounters primes the atomic counters after linking: the number of
// unmet dependencies, and for resources the number of step dependents whose
// completion permits early destruction.
func (n *Node) SetInitialCounters() {
	n.depCount.Store(int32(len(n.Deps)))
	if n.Type == ResourceNode {
		steps := 0
		for _, dep := range n.Dependents {
			if dep.Type == StepNode {
				steps++
			}
		}
		n.descendantCount.Store(int32(steps))
	}
}

// DepCount returns the current number of unmet dependencies.
func (n *Node) DepCount() int32 { return n.depCount.Load() }

// DecrementDepCount marks one dependency satisfied and returns the remainder.
func (n *Node) DecrementDepCount() int32 { return n.depCount.Add(-1) }

// DecrementDescendantCount marks one step dependent finished.
func (n *Node) DecrementDescendantCount() int32 { return n.descendantCount.Add(-1) }

// SetState atomically updates the execution state.
func (n *Node) SetState(s State) { n.state.Store(int32(s)) }

// State atomically reads the execution state.
func (n *Node) State() State { return State(n.state.Load()) }

// Skip marks the node failed with the given cause, exactly once.
func (n *Node) Skip(cause error, done func()) {
	n.skipOnce.Do(func() {
		n.SetState(Failed)
		n.Error = cause
		done()
	})
}

// Destroy runs the node's cleanup exactly once.
func (n *Node) Destroy(f func()) {
	n.destroyOnce.Do(f)
}
