package testutil

import (
	"context"
	"errors"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/specialistvlad/loopbench/internal/matrix"
	"github.com/specialistvlad/loopbench/internal/sweep"
	"github.com/specialistvlad/loopbench/internal/toolchain"
)

var sizeRE = regexp.MustCompile(`const int N = (\d+)`)

// Build records one call to FakeToolchain.Build.
type Build struct {
	Name     string
	Source   string
	Compiler toolchain.Compiler
}

// FakeToolchain stands in for a C++ compiler. Its executables report an
// increasing clock count and, when the source dumps its result, the
// reference product for the seed they are run with.
type FakeToolchain struct {
	// FailBuild makes every build fail with a CompileError.
	FailBuild bool
	// Corrupt makes executables report a wrong result.
	Corrupt bool

	mu     sync.Mutex
	builds []Build
	clocks int64
}

// Build implements sweep.Toolchain.
func (f *FakeToolchain) Build(_ context.Context, compiler toolchain.Compiler, name, source string) (sweep.Executable, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.builds = append(f.builds, Build{Name: name, Source: source, Compiler: compiler})
	if f.FailBuild {
		return nil, &toolchain.CompileError{Name: name, Output: "error: fake compiler refused", Err: errors.New("exit status 1")}
	}

	m := sizeRE.FindStringSubmatch(source)
	if m == nil {
		return nil, &toolchain.CompileError{Name: name, Output: "error: N not declared", Err: errors.New("exit status 1")}
	}
	n, _ := strconv.Atoi(m[1])
	return &fakeExecutable{
		toolchain: f,
		size:      n,
		dump:      strings.Contains(source, `"Result:"`),
	}, nil
}

// Builds returns every build requested so far.
func (f *FakeToolchain) Builds() []Build {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Build(nil), f.builds...)
}

func (f *FakeToolchain) tick() int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.clocks += 100
	return f.clocks
}

type fakeExecutable struct {
	toolchain *FakeToolchain
	size      int
	dump      bool
	closed    bool
}

func (e *fakeExecutable) Run(ctx context.Context, seed float64) (*toolchain.Output, error) {
	if e.closed {
		return nil, errors.New("executable already closed")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := &toolchain.Output{Clocks: e.toolchain.tick()}
	if e.dump {
		a, b, c := matrix.Seed(e.size, seed)
		if err := matrix.Reference(a, b, c); err != nil {
			return nil, err
		}
		if e.toolchain.Corrupt {
			c[0][0]++
		}
		out.Result = c
	}
	return out, nil
}

func (e *fakeExecutable) Close() error {
	e.closed = true
	return nil
}
