// Package config defines the format-agnostic model of a workflow
// configuration: the grid of steps and resources the user wants to run,
// and the runner/asset manifests that describe the available module types.
// Format-specific concerns (HCL parsing, expression evaluation) live behind
// the Loader and Converter interfaces so the engine never touches raw files.
package config
