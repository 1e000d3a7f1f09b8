package integration_tests

import (
	"strings"
	"testing"

	"github.com/specialistvlad/loopbench/internal/app"
	"github.com/specialistvlad/loopbench/internal/testutil"
)

// Test for: invalid parameters are rejected before anything is compiled
func TestErrorHandling_InvalidParameters_AreRejectedBeforeCompiling(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name      string
		sweep     string
		wantInErr string
	}{
		{
			name: "inner vars are not a permutation of outer vars",
			sweep: `
				benchmark "block_tiled" "ok" {
				  array_size  = 4
				  block_sizes = [2]
				}
				benchmark "block_tiled" "bad" {
				  array_size  = 4
				  block_sizes = [2]
				  outer_vars  = ["i", "j", "k"]
				  inner_vars  = ["i", "j", "x"]
				}
			`,
			wantInErr: "inner_vars",
		},
		{
			name: "counter shadows a program identifier",
			sweep: `
				benchmark "block_tiled" "bad" {
				  array_size  = 4
				  block_sizes = [2]
				  outer_vars  = ["N", "j", "k"]
				  inner_vars  = ["N", "j", "k"]
				}
			`,
			wantInErr: "outer_vars",
		},
		{
			name: "non-positive block size",
			sweep: `
				benchmark "double_block_tiled" "bad" {
				  array_size         = 4
				  block_sizes        = [2]
				  second_block_sizes = [0]
				}
			`,
			wantInErr: "second_block_size",
		},
		{
			name: "missing second block sizes",
			sweep: `
				benchmark "double_block_tiled" "bad" {
				  array_size  = 4
				  block_sizes = [2]
				}
			`,
			wantInErr: "second_block_sizes is required",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			// --- Act ---
			result := testutil.RunIntegrationTest(t, map[string]string{"sweep.hcl": tc.sweep}, app.Config{SweepPath: "sweep.hcl"})

			// --- Assert ---
			if result.Err == nil {
				t.Fatal("the app should have rejected the sweep, but it returned nil")
			}
			errMsg := result.Err.Error()
			if !strings.Contains(errMsg, "invalid sweep") || !strings.Contains(errMsg, tc.wantInErr) {
				t.Errorf("expected an invalid sweep error mentioning %q, got: %s", tc.wantInErr, errMsg)
			}
			if n := len(result.Toolchain.Builds()); n != 0 {
				t.Errorf("expected no compilation for an invalid sweep, got %d builds", n)
			}
		})
	}
}
