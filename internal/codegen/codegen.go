// Package codegen expands a Parameter Set into a complete C++ benchmark
// program. The skeleton in templates/base.cpp.tmpl declares a single
// mmm_loop block; each variant template redefines that block with its loop
// nest.
package codegen

import (
	"bytes"
	"embed"
	"fmt"
	"strings"
	"text/template"

	"github.com/specialistvlad/loopbench/internal/nest"
	"github.com/specialistvlad/loopbench/internal/params"
)

//go:embed templates/*.cpp.tmpl
var templateFS embed.FS

const (
	skeletonName = "base.cpp.tmpl"
	nestName     = "loops.cpp.tmpl"
)

// Options controls harness features that are independent of the variant.
type Options struct {
	// DumpResult prints C after the timed region so the product can be
	// checked against a reference.
	DumpResult bool
}

// program is the data every template is executed with.
type program struct {
	Variant    params.Variant
	ArraySize  int
	Label      string
	Nest       *nest.Nest
	DumpResult bool
}

var funcs = template.FuncMap{
	// indent returns the leading whitespace of a line at the given loop depth
	// inside main().
	"indent": func(depth int) string {
		return strings.Repeat("    ", depth+1)
	},
	// closers lists the depths whose braces close after the update, innermost first.
	"closers": func(n int) []int {
		out := make([]int, 0, n)
		for d := n - 1; d >= 0; d-- {
			out = append(out, d)
		}
		return out
	},
}

// Render validates set and returns the generated program source.
func Render(set params.Set, opts Options) (string, error) {
	n, err := set.Nest()
	if err != nil {
		return "", err
	}

	tmpl, err := parse(set.Variant)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	data := program{
		Variant:    set.Variant,
		ArraySize:  set.ArraySize,
		Label:      set.Label(),
		Nest:       n,
		DumpResult: opts.DumpResult,
	}
	if err := tmpl.ExecuteTemplate(&buf, skeletonName, data); err != nil {
		return "", fmt.Errorf("failed to expand %s template: %w", set.Variant, err)
	}
	return buf.String(), nil
}

// parse composes the skeleton with one variant's mmm_loop definition. A fresh
// set is parsed per call because block redefinition is per template set.
func parse(v params.Variant) (*template.Template, error) {
	variantName := string(v) + ".cpp.tmpl"
	tmpl, err := template.New(skeletonName).
		Funcs(funcs).
		Option("missingkey=error").
		ParseFS(templateFS, "templates/"+skeletonName, "templates/"+nestName, "templates/"+variantName)
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates for %s: %w", v, err)
	}
	return tmpl, nil
}
