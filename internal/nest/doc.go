// Package nest models the loop nests that implement C += A x B.
//
// A Nest is the single description of a variant's loops. The codegen package
// renders it into C++ and Run executes the same Nest in Go.
package nest
