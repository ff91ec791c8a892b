// Package registry holds the Go side of the module system: the handler
// functions registered by compiled-in modules, and the manifest definitions
// loaded from configuration. Validation enforces parity between the two.
package registry
