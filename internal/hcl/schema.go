package hcl

import "github.com/hashicorp/hcl/v2"

// fileRoot is a struct used to decode all possible top-level blocks from any file.
type fileRoot struct {
	Compilers  []*Compiler  `hcl:"compiler,block"`
	Benchmarks []*Benchmark `hcl:"benchmark,block"`
}

// Compiler represents a `compiler` block. At most one may appear across all
// loaded files.
type Compiler struct {
	Command           string   `hcl:"command,optional"`
	OptimizationLevel int      `hcl:"optimization_level,optional"`
	ExtraArgs         []string `hcl:"extra_args,optional"`
}

// Benchmark represents a `benchmark "<variant>" "<name>"` block. Var-list
// attributes stay expressions so they can hold either one list of names or a
// list of such lists.
type Benchmark struct {
	Variant string `hcl:"variant,label"`
	Name    string `hcl:"name,label"`

	ArraySize         *int     `hcl:"array_size,optional"`
	Runs              *int     `hcl:"runs,optional"`
	Seed              *float64 `hcl:"seed,optional"`
	OptimizationLevel *int     `hcl:"optimization_level,optional"`

	BlockSizes       []int `hcl:"block_sizes,optional"`
	BlockSizeSamples *int  `hcl:"block_size_samples,optional"`
	SecondBlockSizes []int `hcl:"second_block_sizes,optional"`

	LoopOrder     hcl.Expression `hcl:"loop_order,optional"`
	OuterVars     hcl.Expression `hcl:"outer_vars,optional"`
	InnerVars     hcl.Expression `hcl:"inner_vars,optional"`
	InnermostVars hcl.Expression `hcl:"innermost_vars,optional"`
}
