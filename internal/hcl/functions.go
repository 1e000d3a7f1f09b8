package hcl

import (
	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/loopbench/internal/nest"
	"github.com/specialistvlad/loopbench/internal/sweep"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/gocty"
)

var (
	nameList  = cty.List(cty.String)
	nameLists = cty.List(nameList)
)

// permutationsFunc returns every ordering of a list of names, so a sweep file
// can write `inner_vars = permutations(["i", "j", "k"])`.
var permutationsFunc = function.New(&function.Spec{
	Description: "Returns every ordering of the given names.",
	Params: []function.Parameter{
		{Name: "names", Type: nameList},
	},
	Type: function.StaticReturnType(nameLists),
	Impl: func(args []cty.Value, _ cty.Type) (cty.Value, error) {
		var names []string
		if err := gocty.FromCtyValue(args[0], &names); err != nil {
			return cty.NilVal, err
		}
		perms := sweep.Permutations(names)
		vals := make([]cty.Value, 0, len(perms))
		for _, p := range perms {
			vals = append(vals, namesToCty(p))
		}
		return cty.ListVal(vals), nil
	},
})

func namesToCty(names []string) cty.Value {
	if len(names) == 0 {
		return cty.ListValEmpty(cty.String)
	}
	vals := make([]cty.Value, len(names))
	for i, n := range names {
		vals[i] = cty.StringVal(n)
	}
	return cty.ListVal(vals)
}

// newEvalContext exposes the permutations function and the default counter
// names to sweep files.
func newEvalContext() *hcl.EvalContext {
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"loop_vars":   namesToCty(sweep.DefaultLoopVars()),
			"middle_vars": namesToCty(nest.MiddleVars()),
		},
		Functions: map[string]function.Function{
			"permutations": permutationsFunc,
		},
	}
}
