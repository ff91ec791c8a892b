// Package dag compiles a loaded config model into a dependency graph of
// step and resource nodes, and executes it with a bounded worker pool.
// Failures cancel the run and skip all downstream nodes; resources are
// destroyed as soon as their last dependent step completes.
package dag
