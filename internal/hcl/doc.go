// Package hcl implements the config.Loader and config.Converter interfaces
// on top of hashicorp/hcl/v2. It discovers .hcl files under the configured
// paths, decodes grid blocks and module manifests, and translates them into
// the format-agnostic config model.
package hcl
