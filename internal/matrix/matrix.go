// Package matrix mirrors the generated program's matrix harness in Go and
// provides the reference product the loop nests are checked against.
package matrix

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// New allocates an n x n matrix as independently allocated rows.
func New(n int) [][]float64 {
	m := make([][]float64, n)
	for i := range m {
		m[i] = make([]float64, n)
	}
	return m
}

// Seed returns A, B and C initialised the way the generated program
// initialises them from the number read on stdin.
func Seed(n int, num float64) (a, b, c [][]float64) {
	a, b, c = New(n), New(n), New(n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			c[i][j] = num
			a[i][j] = num * 2.0
			b[i][j] = num * 3.0
		}
	}
	return a, b, c
}

// Clone deep-copies m.
func Clone(m [][]float64) [][]float64 {
	out := make([][]float64, len(m))
	for i, row := range m {
		out[i] = append([]float64(nil), row...)
	}
	return out
}

// Dense copies a non-empty square matrix into a gonum dense matrix.
func Dense(m [][]float64) (*mat.Dense, error) {
	n := len(m)
	if n == 0 {
		return nil, fmt.Errorf("matrix: empty matrix")
	}
	data := make([]float64, 0, n*n)
	for i, row := range m {
		if len(row) != n {
			return nil, fmt.Errorf("matrix: row %d has %d columns, want %d", i, len(row), n)
		}
		data = append(data, row...)
	}
	return mat.NewDense(n, n, data), nil
}

// Reference computes C += A x B in place using gonum.
func Reference(a, b, c [][]float64) error {
	da, err := Dense(a)
	if err != nil {
		return fmt.Errorf("A: %w", err)
	}
	db, err := Dense(b)
	if err != nil {
		return fmt.Errorf("B: %w", err)
	}
	if len(c) != len(a) || len(b) != len(a) {
		return fmt.Errorf("matrix: orders differ: A=%d B=%d C=%d", len(a), len(b), len(c))
	}

	var prod mat.Dense
	prod.Mul(da, db)
	for i := range c {
		for j := range c[i] {
			c[i][j] += prod.At(i, j)
		}
	}
	return nil
}

// EqualApprox reports whether x and y have the same order and every element
// agrees within tol, absolutely or relatively.
func EqualApprox(x, y [][]float64, tol float64) bool {
	if len(x) != len(y) {
		return false
	}
	if len(x) == 0 {
		return true
	}
	dx, err := Dense(x)
	if err != nil {
		return false
	}
	dy, err := Dense(y)
	if err != nil {
		return false
	}
	return mat.EqualApprox(dx, dy, tol)
}
