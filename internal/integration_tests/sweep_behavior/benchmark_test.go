package integration_tests

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/specialistvlad/loopbench/internal/app"
	"github.com/specialistvlad/loopbench/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tiledSweep = `
compiler {
  command            = "fake++"
  optimization_level = 2
}

benchmark "block_tiled" "tiles" {
  array_size  = 4
  runs        = 2
  seed        = 2
  block_sizes = [2]
  outer_vars  = ["i0", "j0", "k0"]
  inner_vars  = [["i0", "k0", "j0"], ["k0", "i0", "j0"]]
}
`

// TestSweep_BenchmarkWritesSummaryAndCSV runs a small sweep end to end and
// checks both the printed summary and the per-run CSV.
func TestSweep_BenchmarkWritesSummaryAndCSV(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	files := map[string]string{"sweep.hcl": tiledSweep}
	csvPath := filepath.Join(t.TempDir(), "results.csv")
	cfg := app.Config{SweepPath: "sweep.hcl", OutputPath: csvPath}

	// --- Act ---
	result := testutil.RunIntegrationTest(t, files, cfg)

	// --- Assert ---
	require.NoError(t, result.Err)
	require.Len(t, result.Toolchain.Builds(), 2)
	for _, b := range result.Toolchain.Builds() {
		assert.Equal(t, 2, b.Compiler.OptimizationLevel)
		assert.Contains(t, b.Source, "const int block_size = 2;")
	}

	lines := strings.Split(strings.TrimSpace(result.Output), "\n")
	require.Len(t, lines, 3, "header plus one line per case")
	assert.Contains(t, lines[1], "i0 j0 k0 / i0 k0 j0")
	assert.Contains(t, lines[2], "i0 j0 k0 / k0 i0 j0")

	f, err := os.Open(csvPath)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 5)
	assert.Equal(t, []string{"tiles", "block_tiled", "4", "2", "0", "i0 j0 k0 / i0 k0 j0", "2", "1", "100"}, rows[1])
	assert.Equal(t, []string{"tiles", "block_tiled", "4", "2", "0", "i0 j0 k0 / k0 i0 j0", "2", "2", "400"}, rows[4])

	assert.Contains(t, result.LogOutput, "Benchmark sweep finished.")
}

// TestSweep_EmitWritesSourcesWithoutCompiling checks that emit mode writes one
// source per case and never invokes the compiler.
func TestSweep_EmitWritesSourcesWithoutCompiling(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	emitDir := filepath.Join(t.TempDir(), "generated")
	cfg := app.Config{SweepPath: "sweep.hcl", EmitDir: emitDir}

	// --- Act ---
	result := testutil.RunIntegrationTest(t, map[string]string{"sweep.hcl": tiledSweep}, cfg)

	// --- Assert ---
	require.NoError(t, result.Err)
	assert.Empty(t, result.Toolchain.Builds())

	entries, err := os.ReadDir(emitDir)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	for _, name := range []string{
		"tiles_block_tiled_n4_b2_i0j0k0_i0k0j0.cpp",
		"tiles_block_tiled_n4_b2_i0j0k0_k0i0j0.cpp",
	} {
		path := filepath.Join(emitDir, name)
		assert.Contains(t, result.Output, path)
		src, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(src), `cout << "Clocks: " << end - start << endl;`)
	}
}

// TestSweep_VerifyReportsEveryCase checks the verification table for a sweep
// whose programs all compute the reference product.
func TestSweep_VerifyReportsEveryCase(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	sweep := `
benchmark "double_block_tiled" "two" {
  array_size         = 5
  runs               = 1
  block_sizes        = [4]
  second_block_sizes = [2, 3]
  outer_vars         = ["i", "j", "k"]
  inner_vars         = ["i", "k", "j"]
  innermost_vars     = ["kk", "jj", "ii"]
}
`

	// --- Act ---
	result := testutil.RunIntegrationTest(t, map[string]string{"sweep.hcl": sweep}, app.Config{SweepPath: "sweep.hcl", Verify: true})

	// --- Assert ---
	require.NoError(t, result.Err)
	require.Len(t, result.Toolchain.Builds(), 2)
	for _, b := range result.Toolchain.Builds() {
		assert.Contains(t, b.Source, `"Result:"`)
	}
	assert.Contains(t, result.Output, "CASE")
	assert.Contains(t, result.Output, "two_double_block_tiled_n5_b4_s2_ijk_ikj_kkjjii")
	assert.Contains(t, result.Output, "two_double_block_tiled_n5_b4_s3_ijk_ikj_kkjjii")
	assert.NotContains(t, result.Output, "MISMATCH")
}
