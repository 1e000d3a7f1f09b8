package config

import "github.com/specialistvlad/loopbench/internal/params"

// Defaults applied by loaders when a sweep file leaves a setting out.
const (
	DefaultArraySize        = 1000
	DefaultSeed             = 5.5
	DefaultRuns             = 3
	DefaultNaiveRuns        = 6
	DefaultBlockSizeSamples = 40
)

// Model is the unified representation of a sweep: how to compile, and which
// benchmarks to generate and time.
type Model struct {
	Compiler   *Compiler
	Benchmarks []*Benchmark
}

// Compiler is the format-agnostic representation of a `compiler` block.
type Compiler struct {
	Command           string
	OptimizationLevel int
	ExtraArgs         []string
}

// Benchmark is one sweep entry. Each list field holds the values to sweep
// over; an empty list means the loader's default for that dimension.
type Benchmark struct {
	Variant   params.Variant
	Name      string
	ArraySize int
	Runs      int
	Seed      float64

	// OptimizationLevel overrides the compiler's level when non-nil.
	OptimizationLevel *int

	BlockSizes       []int
	BlockSizeSamples int
	SecondBlockSizes []int

	LoopOrders    [][]string
	OuterVars     [][]string
	InnerVars     [][]string
	InnermostVars [][]string
}
