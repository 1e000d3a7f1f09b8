package sweep

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/specialistvlad/loopbench/internal/config"
	"github.com/specialistvlad/loopbench/internal/nest"
	"github.com/specialistvlad/loopbench/internal/params"
)

// DefaultLoopVars are the outer counter names used when a tiled benchmark does
// not name its own.
func DefaultLoopVars() []string { return []string{"i", "j", "k"} }

// Case is one generated program of a sweep, timed Runs times.
type Case struct {
	Benchmark string
	Params    params.Set
	Runs      int
	Seed      float64

	// OptimizationLevel overrides the driver's compiler level when non-nil.
	OptimizationLevel *int
}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9_]+`)

// ID is a file-name-safe identifier unique within a sweep.
func (c Case) ID() string {
	p := c.Params
	parts := []string{c.Benchmark, string(p.Variant), "n" + strconv.Itoa(p.ArraySize)}
	if p.Variant != params.Naive {
		parts = append(parts, "b"+strconv.Itoa(p.BlockSize))
	}
	if p.Variant == params.DoubleBlockTiled {
		parts = append(parts, "s"+strconv.Itoa(p.SecondBlockSize))
	}
	for _, vars := range [][]string{p.LoopOrder, p.OuterVars, p.InnerVars, p.InnermostVars} {
		if len(vars) > 0 {
			parts = append(parts, strings.Join(vars, ""))
		}
	}
	return unsafeChars.ReplaceAllString(strings.Join(parts, "_"), "-")
}

// Expand turns one benchmark entry into its cases. Every case is validated;
// the returned error joins all invalid ones.
func Expand(b *config.Benchmark) ([]Case, error) {
	newCase := func(set params.Set) Case {
		return Case{
			Benchmark:         b.Name,
			Params:            set,
			Runs:              b.Runs,
			Seed:              b.Seed,
			OptimizationLevel: b.OptimizationLevel,
		}
	}

	if b.Runs < 1 {
		return nil, fmt.Errorf("benchmark %q: runs must be positive, got %d", b.Name, b.Runs)
	}

	var cases []Case
	switch b.Variant {
	case params.Naive:
		for _, order := range orDefault(b.LoopOrders, Permutations(nest.NaiveVars())) {
			cases = append(cases, newCase(params.Set{
				Variant:   params.Naive,
				ArraySize: b.ArraySize,
				LoopOrder: order,
			}))
		}

	case params.BlockTiled, params.DoubleBlockTiled:
		sizes := b.BlockSizes
		if len(sizes) == 0 {
			var err error
			if sizes, err = BlockSizeSamples(b.ArraySize, b.BlockSizeSamples); err != nil {
				return nil, fmt.Errorf("benchmark %q: %w", b.Name, err)
			}
		}

		seconds := []int{0}
		innermosts := [][]string{nil}
		if b.Variant == params.DoubleBlockTiled {
			if len(b.SecondBlockSizes) == 0 {
				return nil, fmt.Errorf("benchmark %q: second_block_sizes is required for %s", b.Name, b.Variant)
			}
			seconds = b.SecondBlockSizes
			innermosts = orDefault(b.InnermostVars, Permutations(nest.MiddleVars()))
		}

		for _, size := range sizes {
			for _, second := range seconds {
				for _, outer := range orDefault(b.OuterVars, Permutations(DefaultLoopVars())) {
					// Inner orderings default to the permutations of this outer ordering.
					inners := orDefault(b.InnerVars, Permutations(outer))
					for _, combo := range Product([][]string{outer}, inners, innermosts) {
						cases = append(cases, newCase(params.Set{
							Variant:         b.Variant,
							ArraySize:       b.ArraySize,
							BlockSize:       size,
							SecondBlockSize: second,
							OuterVars:       combo[0],
							InnerVars:       combo[1],
							InnermostVars:   combo[2],
						}))
					}
				}
			}
		}

	default:
		return nil, fmt.Errorf("benchmark %q: unknown variant %q", b.Name, b.Variant)
	}

	var errs []error
	for _, c := range cases {
		if err := c.Params.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("benchmark %q, case %s: %w", b.Name, c.Params.Label(), err))
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return cases, nil
}

// ExpandAll expands every benchmark of the model. Nothing is returned unless
// every case of every benchmark is valid.
func ExpandAll(model *config.Model) ([]Case, error) {
	var (
		all  []Case
		errs []error
	)
	for _, b := range model.Benchmarks {
		cases, err := Expand(b)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		all = append(all, cases...)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return all, nil
}

func orDefault(lists, def [][]string) [][]string {
	if len(lists) == 0 {
		return def
	}
	return lists
}
