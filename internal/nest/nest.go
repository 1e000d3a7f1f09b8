package nest

import (
	"fmt"
	"strconv"
)

// Identifiers the generated program declares around the loop nest.
const (
	SizeName            = "N"
	BlockSizeName       = "block_size"
	SecondBlockSizeName = "second_block_size"
)

// NaiveVars are the counters of the naive nest in row, column, contraction
// order. The update is always C[i][j] += A[i][k] * B[k][j].
func NaiveVars() []string { return []string{"i", "j", "k"} }

// MiddleVars are the fixed counters of the tiled variants' second level.
func MiddleVars() []string { return []string{"ii", "kk", "jj"} }

// InnermostVars are the fixed counters of the two-level variant's third level.
func InnermostVars() []string { return []string{"kkk", "jjj", "iii"} }

// Constant is a compile-time integer declared ahead of the loops.
type Constant struct {
	Name  string
	Value int
}

// Limit is one upper bound of a loop: Base + Span, or Span alone when Base is
// empty.
type Limit struct {
	Base string
	Span string
}

func (l Limit) String() string {
	if l.Base == "" {
		return l.Span
	}
	return l.Base + " + " + l.Span
}

// Loop is one level of a nest. Its counter starts at Start and runs while it
// is below every limit, advancing by Stride, or by one when Stride is empty.
type Loop struct {
	Var     string
	Start   string
	Stride  string
	Limits  []Limit
	Comment string
}

// Bound renders the right-hand side of the loop condition.
func (l Loop) Bound() string {
	switch len(l.Limits) {
	case 0:
		return SizeName
	case 1:
		if l.Limits[0].Base == "" {
			return l.Limits[0].Span
		}
		return "(" + l.Limits[0].String() + ")"
	}
	expr := l.Limits[len(l.Limits)-1].String()
	for i := len(l.Limits) - 2; i >= 0; i-- {
		expr = "min(" + l.Limits[i].String() + ", " + expr + ")"
	}
	return expr
}

// Advance renders the loop increment.
func (l Loop) Advance() string {
	if l.Stride == "" {
		return l.Var + "++"
	}
	return l.Var + " += " + l.Stride
}

// Update is the multiply-accumulate at the bottom of every nest:
// C[Row][Col] += A[Row][Inner] * B[Inner][Col].
type Update struct {
	Row   string
	Inner string
	Col   string
}

// Statement renders the update without a trailing semicolon.
func (u Update) Statement() string {
	return fmt.Sprintf("C[%s][%s] += A[%s][%s] * B[%s][%s]", u.Row, u.Col, u.Row, u.Inner, u.Inner, u.Col)
}

// Nest is a complete MMM loop nest.
type Nest struct {
	Constants []Constant
	Loops     []Loop
	Update    Update
}

// Naive builds the untiled triple loop, nested in the given order of i, j, k.
func Naive(order []string) *Nest {
	n := &Nest{Update: Update{Row: "i", Inner: "k", Col: "j"}}
	for _, v := range order {
		n.Loops = append(n.Loops, Loop{Var: v, Start: "0", Limits: []Limit{{Span: SizeName}}})
	}
	return n
}

// BlockTiled builds the single-level tiled nest. The outer counters stride
// over the matrix in tiles and inner[d] names the tile origin the d-th inner
// counter (ii, kk, jj) starts from. Inner bounds are clamped to N so a
// trailing partial tile is handled.
func BlockTiled(blockSize int, outer, inner []string) *Nest {
	n := &Nest{
		Constants: []Constant{{Name: BlockSizeName, Value: blockSize}},
		Loops:     outerLoops(outer),
		Update:    Update{Row: "ii", Inner: "kk", Col: "jj"},
	}
	for d, v := range MiddleVars() {
		n.Loops = append(n.Loops, Loop{
			Var:   v,
			Start: inner[d],
			Limits: []Limit{
				{Span: SizeName},
				{Base: inner[d], Span: BlockSizeName},
			},
		})
	}
	return n
}

// DoubleBlockTiled builds the two-level tiled nest. The middle counters
// (ii, kk, jj) stride by secondBlockSize inside the tile whose origin is
// inner[d]; the innermost counters (kkk, jjj, iii) start at the middle counter
// named by innermost[d]. Every bound is clamped to N and to the enclosing
// tile, so neither size has to divide N.
func DoubleBlockTiled(blockSize, secondBlockSize int, outer, inner, innermost []string) *Nest {
	n := &Nest{
		Constants: []Constant{
			{Name: BlockSizeName, Value: blockSize},
			{Name: SecondBlockSizeName, Value: secondBlockSize},
		},
		Loops:  outerLoops(outer),
		Update: Update{Row: "iii", Inner: "kkk", Col: "jjj"},
	}
	n.Loops[0].Comment = "Outer tiles, sized for main memory."

	middle := MiddleVars()
	for d, v := range middle {
		l := Loop{
			Var:    v,
			Start:  inner[d],
			Stride: SecondBlockSizeName,
			Limits: []Limit{
				{Span: SizeName},
				{Base: inner[d], Span: BlockSizeName},
			},
		}
		if d == 0 {
			l.Comment = "Cache tiles."
		}
		n.Loops = append(n.Loops, l)
	}

	for d, v := range InnermostVars() {
		origin := innermost[d]
		limits := []Limit{{Span: SizeName}}
		if p := indexOf(middle, origin); p >= 0 {
			limits = append(limits, Limit{Base: inner[p], Span: BlockSizeName})
		}
		limits = append(limits, Limit{Base: origin, Span: SecondBlockSizeName})

		l := Loop{Var: v, Start: origin, Limits: limits}
		if d == 0 {
			l.Comment = "Register tiles."
		}
		n.Loops = append(n.Loops, l)
	}
	return n
}

func outerLoops(outer []string) []Loop {
	loops := make([]Loop, 0, len(outer))
	for _, v := range outer {
		loops = append(loops, Loop{
			Var:    v,
			Start:  "0",
			Stride: BlockSizeName,
			Limits: []Limit{{Span: SizeName}},
		})
	}
	return loops
}

func indexOf(names []string, name string) int {
	for i, n := range names {
		if n == name {
			return i
		}
	}
	return -1
}

// Run executes the nest in Go on square matrices of order len(c), stored as
// rows of rows like the generated program stores them.
func (n *Nest) Run(a, b, c [][]float64) error {
	size := len(c)
	if len(a) != size || len(b) != size {
		return fmt.Errorf("nest: matrix orders differ: A=%d B=%d C=%d", len(a), len(b), size)
	}

	env := map[string]int{SizeName: size}
	for _, k := range n.Constants {
		env[k.Name] = k.Value
	}
	x := &execution{nest: n, env: env, a: a, b: b, c: c}
	return x.level(0)
}

type execution struct {
	nest    *Nest
	env     map[string]int
	a, b, c [][]float64
}

func (x *execution) level(depth int) error {
	if depth == len(x.nest.Loops) {
		return x.update()
	}
	l := x.nest.Loops[depth]

	start, err := x.value(l.Start)
	if err != nil {
		return err
	}
	stride := 1
	if l.Stride != "" {
		if stride, err = x.value(l.Stride); err != nil {
			return err
		}
		if stride < 1 {
			return fmt.Errorf("nest: loop %s has non-positive stride %d", l.Var, stride)
		}
	}
	bound, err := x.bound(l)
	if err != nil {
		return err
	}

	for v := start; v < bound; v += stride {
		x.env[l.Var] = v
		if err := x.level(depth + 1); err != nil {
			return err
		}
	}
	delete(x.env, l.Var)
	return nil
}

func (x *execution) bound(l Loop) (int, error) {
	if len(l.Limits) == 0 {
		return x.env[SizeName], nil
	}
	bound := 0
	for i, lim := range l.Limits {
		v, err := x.value(lim.Span)
		if err != nil {
			return 0, err
		}
		if lim.Base != "" {
			base, err := x.value(lim.Base)
			if err != nil {
				return 0, err
			}
			v += base
		}
		if i == 0 || v < bound {
			bound = v
		}
	}
	return bound, nil
}

func (x *execution) value(token string) (int, error) {
	if v, err := strconv.Atoi(token); err == nil {
		return v, nil
	}
	v, ok := x.env[token]
	if !ok {
		return 0, fmt.Errorf("nest: identifier %q is not in scope", token)
	}
	return v, nil
}

func (x *execution) update() error {
	u := x.nest.Update
	r, err := x.value(u.Row)
	if err != nil {
		return err
	}
	k, err := x.value(u.Inner)
	if err != nil {
		return err
	}
	col, err := x.value(u.Col)
	if err != nil {
		return err
	}
	size := len(x.c)
	if r >= size || k >= size || col >= size {
		return fmt.Errorf("nest: update touches C[%d][%d] via k=%d outside order %d", r, col, k, size)
	}
	x.c[r][col] += x.a[r][k] * x.b[k][col]
	return nil
}
