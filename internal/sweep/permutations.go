package sweep

import (
	"fmt"
	"slices"
)

// Permutations returns every ordering of names. Orderings are produced by
// position: with [i j k] the result is ijk, ikj, jik, jki, kij, kji.
func Permutations(names []string) [][]string {
	var out [][]string
	used := make([]bool, len(names))
	cur := make([]string, 0, len(names))

	var walk func()
	walk = func() {
		if len(cur) == len(names) {
			out = append(out, slices.Clone(cur))
			return
		}
		for i, n := range names {
			if used[i] {
				continue
			}
			used[i] = true
			cur = append(cur, n)
			walk()
			cur = cur[:len(cur)-1]
			used[i] = false
		}
	}
	walk()
	return out
}

// Product returns the cartesian product of levels, the last level varying
// fastest.
func Product(levels ...[][]string) [][][]string {
	out := [][][]string{{}}
	for _, level := range levels {
		next := make([][][]string, 0, len(out)*len(level))
		for _, prefix := range out {
			for _, item := range level {
				combo := append(slices.Clone(prefix), item)
				next = append(next, combo)
			}
		}
		out = next
	}
	return out
}

// BlockSizeSamples spreads samples block sizes evenly over [1, arraySize].
// The sizes are multiples of arraySize/samples (at least 1), and arraySize
// itself is always the last one.
func BlockSizeSamples(arraySize, samples int) ([]int, error) {
	if arraySize < 1 {
		return nil, fmt.Errorf("array size must be positive, got %d", arraySize)
	}
	if samples < 1 {
		return nil, fmt.Errorf("block size samples must be positive, got %d", samples)
	}

	step := max(arraySize/samples, 1)
	var sizes []int
	for s := step; s <= arraySize; s += step {
		sizes = append(sizes, s)
	}
	if sizes[len(sizes)-1] != arraySize {
		sizes = append(sizes, arraySize)
	}
	return sizes, nil
}
