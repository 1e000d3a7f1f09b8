package sweep_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/specialistvlad/loopbench/internal/sweep"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPermutations(t *testing.T) {
	t.Parallel()

	want := [][]string{
		{"i", "j", "k"},
		{"i", "k", "j"},
		{"j", "i", "k"},
		{"j", "k", "i"},
		{"k", "i", "j"},
		{"k", "j", "i"},
	}
	if diff := cmp.Diff(want, sweep.Permutations([]string{"i", "j", "k"})); diff != "" {
		t.Errorf("Permutations() mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, [][]string{{}}, sweep.Permutations(nil))
	assert.Len(t, sweep.Permutations([]string{"a", "b", "c", "d"}), 24)
}

func TestPermutations_DoNotAliasInput(t *testing.T) {
	t.Parallel()

	names := []string{"x", "y"}
	perms := sweep.Permutations(names)
	perms[0][0] = "z"
	require.Equal(t, []string{"x", "y"}, names)
	require.Equal(t, []string{"y", "x"}, perms[1])
}

func TestProduct(t *testing.T) {
	t.Parallel()

	got := sweep.Product(
		[][]string{{"i", "j"}, {"j", "i"}},
		[][]string{{"a"}, {"b"}, {"c"}},
	)
	want := [][][]string{
		{{"i", "j"}, {"a"}},
		{{"i", "j"}, {"b"}},
		{{"i", "j"}, {"c"}},
		{{"j", "i"}, {"a"}},
		{{"j", "i"}, {"b"}},
		{{"j", "i"}, {"c"}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Product() mismatch (-want +got):\n%s", diff)
	}

	assert.Empty(t, sweep.Product([][]string{{"a"}}, nil))
}

func TestBlockSizeSamples(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name      string
		arraySize int
		samples   int
		want      []int
		wantErr   string
	}{
		{name: "even split", arraySize: 1000, samples: 4, want: []int{250, 500, 750, 1000}},
		{name: "remainder appends N", arraySize: 10, samples: 3, want: []int{3, 6, 9, 10}},
		{name: "more samples than sizes", arraySize: 3, samples: 40, want: []int{1, 2, 3}},
		{name: "single sample", arraySize: 7, samples: 1, want: []int{7}},
		{name: "bad array size", arraySize: 0, samples: 4, wantErr: "array size must be positive"},
		{name: "bad samples", arraySize: 8, samples: 0, wantErr: "block size samples must be positive"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := sweep.BlockSizeSamples(tc.arraySize, tc.samples)

			if tc.wantErr != "" {
				require.ErrorContains(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}

	sizes, err := sweep.BlockSizeSamples(1000, 40)
	require.NoError(t, err)
	require.Len(t, sizes, 40)
	require.Equal(t, 25, sizes[0])
}
