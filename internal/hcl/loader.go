package hcl

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/vk/mdgridgo/internal/config"
	"github.com/vk/mdgridgo/internal/ctxlog"
	"github.com/vk/mdgridgo/internal/fsutil"
	"github.com/vk/mdgridgo/internal/schema"
)

// Loader is the HCL implementation of config.Loader.
type Loader struct{}

// NewLoader creates an HCL configuration loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load discovers, parses and translates every .hcl file under the given
// paths. Any top-level block is accepted from any file, so manifests may sit
// next to grid definitions.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, config.Converter, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	model := &config.Model{
		Runners: make(map[string]*config.RunnerDefinition),
		Assets:  make(map[string]*config.AssetDefinition),
		Grid:    &config.Grid{},
	}

	files, err := l.collectFiles(paths)
	if err != nil {
		return nil, nil, err
	}
	logger.Debug("Discovered HCL files.", "count", len(files))

	parser := hclparse.NewParser()
	for _, file := range files {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
		}

		var root schema.FileRoot
		if diags := gohcl.DecodeBody(hclFile.Body, nil, &root); diags.HasErrors() {
			return nil, nil, fmt.Errorf("failed to decode HCL file %s: %w", file, diags)
		}

		for _, runner := range root.Runners {
			def, err := l.translateRunnerDefinition(runner)
			if err != nil {
				return nil, nil, fmt.Errorf("invalid runner manifest %q in %s: %w", runner.Type, file, err)
			}
			model.Runners[def.Type] = def
		}
		for _, asset := range root.Assets {
			def, err := l.translateAssetDefinition(asset)
			if err != nil {
				return nil, nil, fmt.Errorf("invalid asset manifest %q in %s: %w", asset.Type, file, err)
			}
			model.Assets[def.Type] = def
		}
		for _, step := range root.Steps {
			model.Grid.Steps = append(model.Grid.Steps, l.translateStep(step))
		}
		for _, resource := range root.Resources {
			model.Grid.Resources = append(model.Grid.Resources, l.translateResource(resource))
		}
	}

	logger.Debug("HCL loading complete.",
		"runners", len(model.Runners),
		"assets", len(model.Assets),
		"steps", len(model.Grid.Steps),
		"resources", len(model.Grid.Resources))
	return model, NewConverter(), nil
}

// collectFiles resolves each path to a flat, de-duplicated list of .hcl files.
// Missing paths are skipped; optional config directories need not exist.
func (l *Loader) collectFiles(paths []string) ([]string, error) {
	var all []string
	seen := make(map[string]struct{})

	add := func(p string) {
		if _, ok := seen[p]; !ok {
			all = append(all, p)
			seen[p] = struct{}{}
		}
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("error accessing path %s: %w", path, err)
		}

		if info.IsDir() {
			found, err := fsutil.FindFilesByExtension(path, ".hcl")
			if err != nil {
				return nil, err
			}
			for _, f := range found {
				add(f)
			}
		} else if filepath.Ext(path) == ".hcl" {
			add(path)
		}
	}
	return all, nil
}
