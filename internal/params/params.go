// Package params defines the Parameter Set a program variant is generated
// from, and validates it before any template is expanded.
package params

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"slices"
	"strings"

	"github.com/specialistvlad/loopbench/internal/nest"
)

// Variant names one of the loop-nest templates.
type Variant string

const (
	Naive            Variant = "naive"
	BlockTiled       Variant = "block_tiled"
	DoubleBlockTiled Variant = "double_block_tiled"
)

// Variants lists every supported variant.
func Variants() []Variant {
	return []Variant{Naive, BlockTiled, DoubleBlockTiled}
}

// ParseVariant maps a variant name to its Variant.
func ParseVariant(s string) (Variant, error) {
	v := Variant(strings.ToLower(strings.TrimSpace(s)))
	if !slices.Contains(Variants(), v) {
		return "", fmt.Errorf("unknown variant %q: must be one of %s", s, strings.Join(variantNames(), ", "))
	}
	return v, nil
}

func variantNames() []string {
	names := make([]string, 0, len(Variants()))
	for _, v := range Variants() {
		names = append(names, string(v))
	}
	return names
}

// Set is the Parameter Set of one generated program.
type Set struct {
	Variant         Variant
	ArraySize       int
	BlockSize       int
	SecondBlockSize int

	// LoopOrder is the nesting order of i, j, k for the naive variant.
	LoopOrder []string
	// OuterVars name the tile counters of the tiled variants.
	OuterVars []string
	// InnerVars name, for ii, kk and jj in turn, the tile origin each starts from.
	InnerVars []string
	// InnermostVars name, for kkk, jjj and iii in turn, the middle counter each
	// starts from. Two-level variant only.
	InnermostVars []string
}

// FieldError describes one invalid Parameter Set entry.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

var identifierRE = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// inScope holds identifiers the skeleton and the loop nest already declare
// where the counters are introduced.
var inScope = map[string]struct{}{
	"N": {}, "M": {}, "A": {}, "B": {}, "C": {},
	"start": {}, "end": {}, "num": {}, "input": {}, "input_stream": {},
	nest.BlockSizeName: {}, nest.SecondBlockSizeName: {},
	"min": {}, "max": {}, "main": {}, "std": {}, "cin": {}, "cout": {}, "endl": {}, "clock": {},
	"ii": {}, "jj": {}, "kk": {}, "iii": {}, "jjj": {}, "kkk": {},
}

// cppKeywords is every C++20 keyword, including the alternative operator
// spellings.
var cppKeywords = map[string]struct{}{
	"alignas": {}, "alignof": {}, "and": {}, "and_eq": {}, "asm": {}, "auto": {},
	"bitand": {}, "bitor": {}, "bool": {}, "break": {}, "case": {}, "catch": {},
	"char": {}, "char8_t": {}, "char16_t": {}, "char32_t": {}, "class": {}, "compl": {},
	"concept": {}, "const": {}, "consteval": {}, "constexpr": {}, "constinit": {},
	"const_cast": {}, "continue": {}, "co_await": {}, "co_return": {}, "co_yield": {},
	"decltype": {}, "default": {}, "delete": {}, "do": {}, "double": {},
	"dynamic_cast": {}, "else": {}, "enum": {}, "explicit": {}, "export": {},
	"extern": {}, "false": {}, "float": {}, "for": {}, "friend": {}, "goto": {},
	"if": {}, "inline": {}, "int": {}, "long": {}, "mutable": {}, "namespace": {},
	"new": {}, "noexcept": {}, "not": {}, "not_eq": {}, "nullptr": {}, "operator": {},
	"or": {}, "or_eq": {}, "private": {}, "protected": {}, "public": {},
	"register": {}, "reinterpret_cast": {}, "requires": {}, "return": {},
	"short": {}, "signed": {}, "sizeof": {}, "static": {}, "static_assert": {},
	"static_cast": {}, "struct": {}, "switch": {}, "template": {}, "this": {},
	"thread_local": {}, "throw": {}, "true": {}, "try": {}, "typedef": {},
	"typeid": {}, "typename": {}, "union": {}, "unsigned": {}, "using": {},
	"virtual": {}, "void": {}, "volatile": {}, "wchar_t": {}, "while": {},
	"xor": {}, "xor_eq": {},
}

// MaxSize is the largest array or block size the generated program can
// declare as an int constant.
const MaxSize = math.MaxInt32

// Validate checks every entry the variant needs and returns all problems
// found, joined.
func (s Set) Validate() error {
	var errs []error
	add := func(field, format string, args ...any) {
		errs = append(errs, &FieldError{Field: field, Reason: fmt.Sprintf(format, args...)})
	}

	if !slices.Contains(Variants(), s.Variant) {
		add("variant", "unknown variant %q", s.Variant)
		return errors.Join(errs...)
	}
	if err := checkSize(s.ArraySize); err != nil {
		add("array_size", "%v", err)
	}

	switch s.Variant {
	case Naive:
		if err := checkPermutation(s.LoopOrder, nest.NaiveVars()); err != nil {
			add("loop_order", "%v", err)
		}
	case BlockTiled, DoubleBlockTiled:
		if err := checkSize(s.BlockSize); err != nil {
			add("block_size", "%v", err)
		}
		if err := checkCounters(s.OuterVars); err != nil {
			add("outer_vars", "%v", err)
		} else if err := checkPermutation(s.InnerVars, s.OuterVars); err != nil {
			add("inner_vars", "%v", err)
		}
		if s.Variant == DoubleBlockTiled {
			if err := checkSize(s.SecondBlockSize); err != nil {
				add("second_block_size", "%v", err)
			}
			if err := checkPermutation(s.InnermostVars, nest.MiddleVars()); err != nil {
				add("innermost_vars", "%v", err)
			}
		}
	}
	return errors.Join(errs...)
}

// Warnings reports entries that are valid but make the tiling degenerate.
func (s Set) Warnings() []string {
	var warnings []string
	if s.Variant == Naive {
		return nil
	}
	if s.BlockSize > s.ArraySize {
		warnings = append(warnings, fmt.Sprintf("block_size %d exceeds array_size %d: the whole matrix is one tile", s.BlockSize, s.ArraySize))
	}
	if s.Variant == DoubleBlockTiled && s.SecondBlockSize > s.BlockSize {
		warnings = append(warnings, fmt.Sprintf("second_block_size %d exceeds block_size %d: the second tiling level does nothing", s.SecondBlockSize, s.BlockSize))
	}
	return warnings
}

// Nest validates the set and builds its loop nest.
func (s Set) Nest() (*nest.Nest, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	switch s.Variant {
	case Naive:
		return nest.Naive(s.LoopOrder), nil
	case BlockTiled:
		return nest.BlockTiled(s.BlockSize, s.OuterVars, s.InnerVars), nil
	default:
		return nest.DoubleBlockTiled(s.BlockSize, s.SecondBlockSize, s.OuterVars, s.InnerVars, s.InnermostVars), nil
	}
}

// Label is a short human-readable name of the loop ordering, e.g. "i j k / i k j".
func (s Set) Label() string {
	if s.Variant == Naive {
		return strings.Join(s.LoopOrder, " ")
	}
	parts := []string{strings.Join(s.OuterVars, " "), strings.Join(s.InnerVars, " ")}
	if s.Variant == DoubleBlockTiled {
		parts = append(parts, strings.Join(s.InnermostVars, " "))
	}
	return strings.Join(parts, " / ")
}

func checkCounters(names []string) error {
	if len(names) != 3 {
		return fmt.Errorf("need exactly 3 names, got %d", len(names))
	}
	seen := make(map[string]struct{}, len(names))
	for _, n := range names {
		if !identifierRE.MatchString(n) {
			return fmt.Errorf("%q is not a valid C++ identifier", n)
		}
		if _, ok := cppKeywords[n]; ok {
			return fmt.Errorf("%q is a C++ keyword", n)
		}
		if _, ok := inScope[n]; ok {
			return fmt.Errorf("%q is already used by the generated program", n)
		}
		if strings.Contains(n, "__") || (len(n) > 1 && n[0] == '_' && n[1] >= 'A' && n[1] <= 'Z') {
			return fmt.Errorf("%q is reserved for the C++ implementation", n)
		}
		if _, ok := seen[n]; ok {
			return fmt.Errorf("%q appears more than once", n)
		}
		seen[n] = struct{}{}
	}
	return nil
}

func checkSize(v int) error {
	if v < 1 {
		return fmt.Errorf("must be a positive integer, got %d", v)
	}
	if v > MaxSize {
		return fmt.Errorf("must not exceed %d, got %d", MaxSize, v)
	}
	return nil
}

func checkPermutation(names, want []string) error {
	if len(names) != len(want) {
		return fmt.Errorf("need a permutation of [%s], got %d names", strings.Join(want, " "), len(names))
	}
	got := slices.Clone(names)
	ref := slices.Clone(want)
	slices.Sort(got)
	slices.Sort(ref)
	if !slices.Equal(got, ref) {
		return fmt.Errorf("[%s] is not a permutation of [%s]", strings.Join(names, " "), strings.Join(want, " "))
	}
	return nil
}
