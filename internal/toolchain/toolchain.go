// Package toolchain compiles generated programs with an external C++ compiler
// and runs the resulting binaries.
package toolchain

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/specialistvlad/loopbench/internal/ctxlog"
)

// DefaultCommand is the compiler used when none is configured.
const DefaultCommand = "c++"

// Optimisation levels accepted for -O<level>.
const (
	MinOptimizationLevel = 0
	MaxOptimizationLevel = 3
)

const (
	sourceFile = "source.cpp"
	binaryFile = "binary_out"
)

// Compiler describes how generated sources are compiled.
type Compiler struct {
	Command           string
	OptimizationLevel int
	ExtraArgs         []string
}

// CompileError carries the compiler's combined output for a failed build.
type CompileError struct {
	Name   string
	Output string
	Err    error
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("failed to compile %s: %v", e.Name, e.Err)
}

func (e *CompileError) Unwrap() error { return e.Err }

func (c *Compiler) command() string {
	if c.Command == "" {
		return DefaultCommand
	}
	return c.Command
}

// Version returns the first line of the compiler's --version output.
func (c *Compiler) Version(ctx context.Context) (string, error) {
	out, err := exec.CommandContext(ctx, c.command(), "--version").Output()
	if err != nil {
		return "", fmt.Errorf("failed to query %s version: %w", c.command(), err)
	}
	line, _, _ := strings.Cut(string(out), "\n")
	return strings.TrimSpace(line), nil
}

// Args returns the compiler arguments used to build src into out.
func (c *Compiler) Args(src, out string) []string {
	args := []string{src, "-O" + strconv.Itoa(c.OptimizationLevel), "-o", out}
	return append(args, c.ExtraArgs...)
}

// Build writes source into a private directory and compiles it. The caller
// must Close the returned Executable to remove the directory.
func (c *Compiler) Build(ctx context.Context, name, source string) (*Executable, error) {
	logger := ctxlog.FromContext(ctx)

	dir, err := os.MkdirTemp("", "loopbench-")
	if err != nil {
		return nil, fmt.Errorf("failed to create build directory: %w", err)
	}
	src := filepath.Join(dir, sourceFile)
	bin := filepath.Join(dir, binaryFile)

	if err := os.WriteFile(src, []byte(source), 0o600); err != nil {
		os.RemoveAll(dir)
		return nil, fmt.Errorf("failed to write %s: %w", src, err)
	}

	args := c.Args(src, bin)
	logger.Debug("Compiling generated program.", "name", name, "command", c.command(), "args", args)
	out, err := exec.CommandContext(ctx, c.command(), args...).CombinedOutput()
	if err != nil {
		os.RemoveAll(dir)
		return nil, &CompileError{Name: name, Output: string(out), Err: err}
	}
	return &Executable{Path: bin, dir: dir}, nil
}

// Executable is a compiled benchmark program.
type Executable struct {
	Path string
	dir  string
}

// Run executes the program once, feeding seed on stdin, and parses its output.
func (e *Executable) Run(ctx context.Context, seed float64) (*Output, error) {
	cmd := exec.CommandContext(ctx, e.Path)
	cmd.Stdin = strings.NewReader(FormatSeed(seed) + "\n")
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("benchmark %s failed: %w: %s", e.Path, err, strings.TrimSpace(stderr.String()))
	}
	return ParseOutput(out)
}

// Close removes the build directory.
func (e *Executable) Close() error {
	if e.dir == "" {
		return nil
	}
	return os.RemoveAll(e.dir)
}

// FormatSeed renders a seed the shortest way that reads back exactly.
func FormatSeed(seed float64) string {
	return strconv.FormatFloat(seed, 'g', -1, 64)
}
