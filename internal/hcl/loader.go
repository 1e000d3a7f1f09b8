package hcl

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/specialistvlad/loopbench/internal/config"
	"github.com/specialistvlad/loopbench/internal/ctxlog"
	"github.com/specialistvlad/loopbench/internal/fsutil"
	"github.com/specialistvlad/loopbench/internal/toolchain"
)

const fileExtension = ".hcl"

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct{}

// NewLoader creates a new HCL sweep loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load parses every .hcl file under paths and merges their blocks into one
// model. Benchmark names must be unique across all files.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	files, err := fsutil.CollectFiles(paths, fileExtension)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no %s files found in %v", fileExtension, paths)
	}
	logger.Debug("Discovered HCL files.", "count", len(files))

	model := &config.Model{}
	parser := hclparse.NewParser()
	evalCtx := newEvalContext()
	names := make(map[string]string)

	for _, file := range files {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
		}

		var root fileRoot
		diags = gohcl.DecodeBody(hclFile.Body, evalCtx, &root)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode HCL file %s: %w", file, diags)
		}

		for _, c := range root.Compilers {
			if model.Compiler != nil {
				return nil, fmt.Errorf("%s: only one compiler block is allowed per sweep", file)
			}
			compiler, err := translateCompiler(c)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", file, err)
			}
			model.Compiler = compiler
		}

		for _, b := range root.Benchmarks {
			if prev, dup := names[b.Name]; dup {
				return nil, fmt.Errorf("%s: benchmark %q already defined in %s", file, b.Name, prev)
			}
			names[b.Name] = file

			bench, err := translateBenchmark(b, evalCtx)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", file, err)
			}
			model.Benchmarks = append(model.Benchmarks, bench)
		}
	}

	if model.Compiler == nil {
		model.Compiler = &config.Compiler{Command: toolchain.DefaultCommand}
	}

	logger.Debug("HCL loading complete.", "benchmarks", len(model.Benchmarks), "compiler", model.Compiler.Command)
	return model, nil
}
