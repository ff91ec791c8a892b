package dag

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/vk/mdgridgo/internal/config"
	"github.com/vk/mdgridgo/internal/ctxlog"
	"github.com/vk/mdgridgo/internal/registry"
)

// Executor runs a compiled graph with a bounded worker pool.
type Executor struct {
	Graph      *Graph
	numWorkers int
	registry   *registry.Registry
	converter  config.Converter

	wg                sync.WaitGroup
	resourceInstances sync.Map // node ID -> live asset instance
	destroyFns        sync.Map // node ID -> func()

	cleanupMu    sync.Mutex
	cleanupOrder []*Node
}

// New creates an executor for the given graph.
func New(graph *Graph, workers int, r *registry.Registry, conv config.Converter) *Executor {
	if workers < 1 {
		workers = 1
	}
	return &Executor{
		Graph:      graph,
		numWorkers: workers,
		registry:   r,
		converter:  conv,
	}
}

// Run executes the whole graph concurrently and returns the root cause error
// if any node failed. The provided context cancels the run.
func (e *Executor) Run(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)
	defer e.executeCleanupStack(ctx)

	readyChan := make(chan *Node, len(e.Graph.Nodes))
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	rootNodes := 0
	for _, node := range e.Graph.Nodes {
		if node.DepCount() == 0 {
			logger.Debug("Found root node.", "nodeID", node.ID)
			readyChan <- node
			rootNodes++
		}
	}
	logger.Debug("Found all root nodes.", "count", rootNodes)

	e.wg.Add(len(e.Graph.Nodes))

	logger.Debug("Starting worker pool.", "workers", e.numWorkers)
	for i := 0; i < e.numWorkers; i++ {
		go e.worker(runCtx, readyChan, cancel, i)
	}

	e.wg.Wait()
	close(readyChan)

	var failedNodes []string
	var rootCause error
	for _, node := range e.Graph.Nodes {
		if node.State() != Failed {
			continue
		}
		logger.Error("Node failed execution.", "nodeID", node.ID, "error", node.Error)
		// Skipped nodes are symptoms, not causes.
		if node.Error != nil && !strings.HasPrefix(node.Error.Error(), "skipped") && !errors.Is(node.Error, context.Canceled) {
			failedNodes = append(failedNodes, node.ID)
			if rootCause == nil {
				rootCause = node.Error
			}
		}
	}

	if rootCause != nil {
		return fmt.Errorf("execution failed for %s: %w", strings.Join(failedNodes, ", "), rootCause)
	}
	return nil
}

// worker is the processing loop of one concurrent worker.
func (e *Executor) worker(ctx context.Context, readyChan chan *Node, cancel context.CancelFunc, workerID int) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Worker started.", "workerID", workerID)

	for node := range readyChan {
		workerLogger := logger.With("workerID", workerID, "nodeID", node.ID)

		if ctx.Err() != nil {
			// Release the whole downstream closure too; dependents of a
			// skipped node will never see their counters reach zero.
			node.Skip(ctx.Err(), e.wg.Done)
			e.skipDependents(ctx, node)
			continue
		}

		workerLogger.Debug("Worker picked up node for execution.")
		node.SetState(Running)

		var err error
		switch node.Type {
		case ResourceNode:
			err = e.executeResourceNode(ctx, node)
		case StepNode:
			err = e.executeStepNode(ctx, node)
		}

		if err != nil {
			workerLogger.Error("Node execution failed.", "error", err)
			node.SetState(Failed)
			node.Error = err
			cancel()
			e.skipDependents(ctx, node)
			e.wg.Done()
			continue
		}

		workerLogger.Debug("Node execution succeeded.")
		node.SetState(Done)

		for _, dependent := range node.Dependents {
			if dependent.DecrementDepCount() == 0 {
				workerLogger.Debug("Unlocking dependent node.", "dependentID", dependent.ID)
				readyChan <- dependent
			}
		}

		// A finished step may have been the last user of a resource; if so,
		// destroy the resource without waiting for the end of the run.
		if node.Type == StepNode {
			for _, dep := range node.Deps {
				if dep.Type == ResourceNode && dep.DecrementDescendantCount() == 0 {
					workerLogger.Debug("Scheduling early destruction for resource.", "resourceID", dep.ID)
					go e.destroyResource(ctx, dep)
				}
			}
		}

		e.wg.Done()
	}
	logger.Debug("Worker finished.", "workerID", workerID)
}

// skipDependents recursively marks downstream nodes failed, exactly once each.
func (e *Executor) skipDependents(ctx context.Context, node *Node) {
	logger := ctxlog.FromContext(ctx)
	for _, dependent := range node.Dependents {
		dep := dependent
		dep.skipOnce.Do(func() {
			logger.Warn("Skipping dependent node due to upstream failure.", "nodeID", dep.ID, "dependency", node.ID)
			dep.SetState(Failed)
			dep.Error = fmt.Errorf("skipped due to upstream failure of '%s'", node.ID)
			e.wg.Done()
			e.skipDependents(ctx, dep)
		})
	}
}

// pushCleanup records a resource's destroy function for LIFO cleanup.
func (e *Executor) pushCleanup(node *Node, fn func()) {
	e.destroyFns.Store(node.ID, fn)
	e.cleanupMu.Lock()
	e.cleanupOrder = append(e.cleanupOrder, node)
	e.cleanupMu.Unlock()
}

// destroyResource runs a resource's destroy function exactly once.
func (e *Executor) destroyResource(ctx context.Context, node *Node) {
	fn, ok := e.destroyFns.Load(node.ID)
	if !ok {
		ctxlog.FromContext(ctx).Debug("No destroy function recorded for resource.", "nodeID", node.ID)
		return
	}
	node.Destroy(fn.(func()))
}

// executeCleanupStack destroys any resources still alive, most recent first.
func (e *Executor) executeCleanupStack(ctx context.Context) {
	e.cleanupMu.Lock()
	order := make([]*Node, len(e.cleanupOrder))
	copy(order, e.cleanupOrder)
	e.cleanupMu.Unlock()

	for i := len(order) - 1; i >= 0; i-- {
		e.destroyResource(ctx, order[i])
	}
}
