// Package hcl provides the concrete HCL implementation of the config.Loader
// interface. It is responsible for file discovery, parsing, evaluating
// var-list expressions through cty, and translating sweep files into the
// format-agnostic config.Model.
package hcl
