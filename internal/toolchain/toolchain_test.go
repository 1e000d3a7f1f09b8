package toolchain

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/specialistvlad/loopbench/internal/ctxlog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOutput(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		input   string
		want    *Output
		wantErr string
	}{
		{
			name:  "clocks only",
			input: "Enter a number: Initialising...complete.\nCalculating...\nClocks: 12345\n",
			want:  &Output{Clocks: 12345},
		},
		{
			name:  "last clock report wins",
			input: "Clocks: 1\nClocks: 2\n",
			want:  &Output{Clocks: 2},
		},
		{
			name:  "with result dump",
			input: "Calculating...\nResult:\n98 98\n1.5 -2\nClocks: 7\n",
			want:  &Output{Clocks: 7, Result: [][]float64{{98, 98}, {1.5, -2}}},
		},
		{
			name:    "missing clock report",
			input:   "Calculating...\n",
			wantErr: ErrNoClocks.Error(),
		},
		{
			name:    "garbled clock count",
			input:   "Clocks: lots\n",
			wantErr: "invalid clock report",
		},
		{
			name:    "garbled result row",
			input:   "Result:\n1 x\nClocks: 3\n",
			wantErr: "invalid result row 0",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := ParseOutput([]byte(tc.input))

			if tc.wantErr != "" {
				require.ErrorContains(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("ParseOutput() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseOutput_NoClocksIsSentinel(t *testing.T) {
	t.Parallel()
	_, err := ParseOutput(nil)
	require.True(t, errors.Is(err, ErrNoClocks))
}

func TestCompiler_Args(t *testing.T) {
	t.Parallel()

	c := &Compiler{OptimizationLevel: 2, ExtraArgs: []string{"-march=native", "-std=c++17"}}
	want := []string{"source.cpp", "-O2", "-o", "binary_out", "-march=native", "-std=c++17"}
	assert.Equal(t, want, c.Args("source.cpp", "binary_out"))
	assert.Equal(t, DefaultCommand, c.command())
}

func TestFormatSeed(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "5.5", FormatSeed(5.5))
	assert.Equal(t, "2", FormatSeed(2))
	assert.Equal(t, "0.1", FormatSeed(0.1))
	assert.Equal(t, "-3.25", FormatSeed(-3.25))
}

func TestCompileError(t *testing.T) {
	t.Parallel()

	cause := errors.New("exit status 1")
	err := error(&CompileError{Name: "case", Output: "error: expected ';'", Err: cause})
	assert.EqualError(t, err, "failed to compile case: exit status 1")
	assert.ErrorIs(t, err, cause)
}

func TestExecutable_CloseWithoutDirectory(t *testing.T) {
	t.Parallel()
	require.NoError(t, (&Executable{}).Close())
}

func requireCompiler(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("compiles C++")
	}
	if _, err := exec.LookPath(DefaultCommand); err != nil {
		t.Skipf("%s not available: %v", DefaultCommand, err)
	}
}

const echoProgram = `#include <iostream>
using namespace std;
int main() {
    double num;
    cin >> num;
    cout << "Result:" << endl << num * 2 << endl;
    cout << "Clocks: " << 42 << endl;
    return 0;
}
`

func TestCompiler_BuildAndRun(t *testing.T) {
	requireCompiler(t)
	ctx := ctxlog.Discard(context.Background())

	// --- Arrange ---
	c := &Compiler{}
	exe, err := c.Build(ctx, "echo", echoProgram)
	require.NoError(t, err)

	// --- Act ---
	out, err := exe.Run(ctx, 1.25)

	// --- Assert ---
	require.NoError(t, err)
	require.Equal(t, &Output{Clocks: 42, Result: [][]float64{{2.5}}}, out)

	require.NoError(t, exe.Close())
	_, statErr := os.Stat(exe.Path)
	require.True(t, os.IsNotExist(statErr), "Close must remove the build directory")
}

func TestCompiler_BuildRejectsBrokenSource(t *testing.T) {
	requireCompiler(t)
	ctx := ctxlog.Discard(context.Background())

	_, err := (&Compiler{}).Build(ctx, "broken", "int main( {")

	var compileErr *CompileError
	require.ErrorAs(t, err, &compileErr)
	require.Equal(t, "broken", compileErr.Name)
	require.NotEmpty(t, compileErr.Output)
}

func TestCompiler_Version(t *testing.T) {
	requireCompiler(t)

	v, err := (&Compiler{}).Version(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, v)
}
