// Package sweep turns a sweep description into concrete benchmark cases and
// drives them through code generation, compilation and timing.
package sweep
