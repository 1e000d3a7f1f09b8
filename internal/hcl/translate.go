// This file contains the logic for translating decoded HCL blocks into the
// format-agnostic sweep model defined in the config package.

package hcl

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/loopbench/internal/config"
	"github.com/specialistvlad/loopbench/internal/params"
	"github.com/specialistvlad/loopbench/internal/toolchain"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"
)

// translateCompiler converts a compiler block into the agnostic model,
// filling in the default command.
func translateCompiler(c *Compiler) (*config.Compiler, error) {
	if err := checkOptimizationLevel(c.OptimizationLevel); err != nil {
		return nil, fmt.Errorf("compiler: %w", err)
	}
	cmd := c.Command
	if cmd == "" {
		cmd = toolchain.DefaultCommand
	}
	return &config.Compiler{
		Command:           cmd,
		OptimizationLevel: c.OptimizationLevel,
		ExtraArgs:         c.ExtraArgs,
	}, nil
}

func checkOptimizationLevel(level int) error {
	if level < toolchain.MinOptimizationLevel || level > toolchain.MaxOptimizationLevel {
		return fmt.Errorf("optimization_level must be between %d and %d, got %d",
			toolchain.MinOptimizationLevel, toolchain.MaxOptimizationLevel, level)
	}
	return nil
}

// translateBenchmark converts a benchmark block into the agnostic model,
// applying defaults and evaluating its var-list expressions.
func translateBenchmark(b *Benchmark, evalCtx *hcl.EvalContext) (*config.Benchmark, error) {
	variant, err := params.ParseVariant(b.Variant)
	if err != nil {
		return nil, fmt.Errorf("benchmark %q: %w", b.Name, err)
	}

	if b.OptimizationLevel != nil {
		if err := checkOptimizationLevel(*b.OptimizationLevel); err != nil {
			return nil, fmt.Errorf("benchmark %q: %w", b.Name, err)
		}
	}

	defaultRuns := config.DefaultRuns
	if variant == params.Naive {
		defaultRuns = config.DefaultNaiveRuns
	}

	out := &config.Benchmark{
		Variant:           variant,
		Name:              b.Name,
		ArraySize:         intOr(b.ArraySize, config.DefaultArraySize),
		Runs:              intOr(b.Runs, defaultRuns),
		Seed:              config.DefaultSeed,
		OptimizationLevel: b.OptimizationLevel,
		BlockSizes:        b.BlockSizes,
		BlockSizeSamples:  intOr(b.BlockSizeSamples, config.DefaultBlockSizeSamples),
		SecondBlockSizes:  b.SecondBlockSizes,
	}
	if b.Seed != nil {
		out.Seed = *b.Seed
	}

	lists := []struct {
		attr string
		expr hcl.Expression
		dst  *[][]string
	}{
		{"loop_order", b.LoopOrder, &out.LoopOrders},
		{"outer_vars", b.OuterVars, &out.OuterVars},
		{"inner_vars", b.InnerVars, &out.InnerVars},
		{"innermost_vars", b.InnermostVars, &out.InnermostVars},
	}
	for _, l := range lists {
		v, err := evalVarLists(l.expr, evalCtx)
		if err != nil {
			return nil, fmt.Errorf("benchmark %q: %s: %w", b.Name, l.attr, err)
		}
		*l.dst = v
	}
	return out, nil
}

// evalVarLists evaluates a var-list attribute. It accepts a single list of
// names, meaning one ordering, or a list of lists, meaning several. An absent
// attribute yields nil.
func evalVarLists(expr hcl.Expression, evalCtx *hcl.EvalContext) ([][]string, error) {
	if expr == nil {
		return nil, nil
	}
	val, diags := expr.Value(evalCtx)
	if diags.HasErrors() {
		return nil, diags
	}
	if val.IsNull() {
		return nil, nil
	}
	if !val.IsWhollyKnown() {
		return nil, fmt.Errorf("value must be known when the sweep is loaded")
	}

	if many, err := convert.Convert(val, nameLists); err == nil {
		var out [][]string
		if err := gocty.FromCtyValue(many, &out); err != nil {
			return nil, err
		}
		return out, nil
	}

	one, err := convert.Convert(val, nameList)
	if err != nil {
		return nil, fmt.Errorf("must be a list of names or a list of such lists, got %s", val.Type().FriendlyName())
	}
	var names []string
	if err := gocty.FromCtyValue(one, &names); err != nil {
		return nil, err
	}
	return [][]string{names}, nil
}

func intOr(v *int, def int) int {
	if v == nil {
		return def
	}
	return *v
}
