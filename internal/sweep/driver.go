package sweep

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/specialistvlad/loopbench/internal/codegen"
	"github.com/specialistvlad/loopbench/internal/ctxlog"
	"github.com/specialistvlad/loopbench/internal/matrix"
	"github.com/specialistvlad/loopbench/internal/report"
	"github.com/specialistvlad/loopbench/internal/toolchain"
)

// verifyTolerance bounds the difference between a compiled program's C and
// the reference product. Tiled nests sum in a different order, so the two
// are close but not always bit-identical.
const verifyTolerance = 1e-9

// Executable is a compiled benchmark program.
type Executable interface {
	Run(ctx context.Context, seed float64) (*toolchain.Output, error)
	Close() error
}

// Toolchain compiles generated sources.
type Toolchain interface {
	Build(ctx context.Context, compiler toolchain.Compiler, name, source string) (Executable, error)
}

// Native compiles with the compiler binary named in the toolchain.Compiler.
type Native struct{}

// Build implements Toolchain.
func (Native) Build(ctx context.Context, compiler toolchain.Compiler, name, source string) (Executable, error) {
	exe, err := compiler.Build(ctx, name, source)
	if err != nil {
		return nil, err
	}
	return exe, nil
}

// Driver runs cases through code generation, compilation and timing, one
// case at a time.
type Driver struct {
	Compiler  toolchain.Compiler
	Toolchain Toolchain
}

// NewDriver returns a Driver that compiles with the given compiler.
func NewDriver(compiler toolchain.Compiler) *Driver {
	return &Driver{Compiler: compiler, Toolchain: Native{}}
}

func (d *Driver) compilerFor(c Case) toolchain.Compiler {
	compiler := d.Compiler
	if c.OptimizationLevel != nil {
		compiler.OptimizationLevel = *c.OptimizationLevel
	}
	return compiler
}

// Run benchmarks every case and returns one record per run.
func (d *Driver) Run(ctx context.Context, cases []Case) ([]report.Record, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Info("Starting benchmark sweep.", "cases", len(cases), "compiler", d.Compiler.Command)

	var records []report.Record
	for i, c := range cases {
		if err := ctx.Err(); err != nil {
			return records, err
		}
		logger.Info("Benchmarking case.",
			"progress", fmt.Sprintf("%d/%d", i+1, len(cases)),
			"benchmark", c.Benchmark,
			"variant", c.Params.Variant,
			"block_size", c.Params.BlockSize,
			"second_block_size", c.Params.SecondBlockSize,
			"permutation", c.Params.Label(),
		)
		for _, w := range c.Params.Warnings() {
			logger.Warn("Degenerate tiling.", "case", c.ID(), "warning", w)
		}

		recs, err := d.runCase(ctx, c)
		if err != nil {
			return records, err
		}
		records = append(records, recs...)
	}

	logger.Info("Benchmark sweep finished.", "records", len(records))
	return records, nil
}

func (d *Driver) runCase(ctx context.Context, c Case) ([]report.Record, error) {
	logger := ctxlog.FromContext(ctx)

	exe, err := d.build(ctx, c, codegen.Options{})
	if err != nil {
		return nil, err
	}
	defer exe.Close()

	compiler := d.compilerFor(c)
	records := make([]report.Record, 0, c.Runs)
	for run := 1; run <= c.Runs; run++ {
		out, err := exe.Run(ctx, c.Seed)
		if err != nil {
			return nil, fmt.Errorf("case %s, run %d: %w", c.ID(), run, err)
		}
		logger.Debug("Run finished.", "case", c.ID(), "run", run, "clocks", out.Clocks)
		records = append(records, report.Record{
			Benchmark:         c.Benchmark,
			Variant:           string(c.Params.Variant),
			ArraySize:         c.Params.ArraySize,
			BlockSize:         c.Params.BlockSize,
			SecondBlockSize:   c.Params.SecondBlockSize,
			Permutation:       c.Params.Label(),
			OptimizationLevel: compiler.OptimizationLevel,
			Run:               run,
			Clocks:            out.Clocks,
		})
	}
	return records, nil
}

func (d *Driver) build(ctx context.Context, c Case, opts codegen.Options) (Executable, error) {
	logger := ctxlog.FromContext(ctx)

	source, err := codegen.Render(c.Params, opts)
	if err != nil {
		return nil, fmt.Errorf("case %s: %w", c.ID(), err)
	}

	exe, err := d.Toolchain.Build(ctx, d.compilerFor(c), c.ID(), source)
	if err != nil {
		var compileErr *toolchain.CompileError
		if errors.As(err, &compileErr) {
			logger.Error("Compiler rejected generated program.", "case", c.ID(), "output", compileErr.Output)
		}
		return nil, err
	}
	return exe, nil
}

// Emit writes every case's source into dir without compiling it and returns
// the written paths.
func (d *Driver) Emit(ctx context.Context, cases []Case, dir string) ([]string, error) {
	logger := ctxlog.FromContext(ctx)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", dir, err)
	}

	paths := make([]string, 0, len(cases))
	for _, c := range cases {
		source, err := codegen.Render(c.Params, codegen.Options{})
		if err != nil {
			return paths, fmt.Errorf("case %s: %w", c.ID(), err)
		}
		path := filepath.Join(dir, c.ID()+".cpp")
		if err := os.WriteFile(path, []byte(source), 0o644); err != nil {
			return paths, fmt.Errorf("failed to write %s: %w", path, err)
		}
		logger.Debug("Wrote generated program.", "path", path)
		paths = append(paths, path)
	}
	logger.Info("Generated programs written.", "dir", dir, "count", len(paths))
	return paths, nil
}

// Verification is the outcome of checking one case against the reference.
type Verification struct {
	Case  Case
	Match bool
}

// Verify compiles every case with the result dump enabled, runs it once and
// compares C with the reference product for the same seed.
func (d *Driver) Verify(ctx context.Context, cases []Case) ([]Verification, error) {
	logger := ctxlog.FromContext(ctx)

	results := make([]Verification, 0, len(cases))
	for _, c := range cases {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		match, err := d.verifyCase(ctx, c)
		if err != nil {
			return results, err
		}
		if match {
			logger.Info("Result matches reference.", "case", c.ID())
		} else {
			logger.Error("Result differs from reference.", "case", c.ID())
		}
		results = append(results, Verification{Case: c, Match: match})
	}
	return results, nil
}

func (d *Driver) verifyCase(ctx context.Context, c Case) (bool, error) {
	exe, err := d.build(ctx, c, codegen.Options{DumpResult: true})
	if err != nil {
		return false, err
	}
	defer exe.Close()

	out, err := exe.Run(ctx, c.Seed)
	if err != nil {
		return false, fmt.Errorf("case %s: %w", c.ID(), err)
	}
	if out.Result == nil {
		return false, fmt.Errorf("case %s: program printed no result", c.ID())
	}

	a, b, want := matrix.Seed(c.Params.ArraySize, c.Seed)
	if err := matrix.Reference(a, b, want); err != nil {
		return false, fmt.Errorf("case %s: %w", c.ID(), err)
	}
	return matrix.EqualApprox(out.Result, want, verifyTolerance), nil
}
