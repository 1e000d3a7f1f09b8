// Package report collects benchmark timings and writes them out, one row per
// run or summarised per case.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Record is the timing of one run of one case.
type Record struct {
	Benchmark         string
	Variant           string
	ArraySize         int
	BlockSize         int
	SecondBlockSize   int
	Permutation       string
	OptimizationLevel int
	Run               int
	Clocks            int64
}

// Key identifies the case a record belongs to.
type Key struct {
	Benchmark       string
	Variant         string
	ArraySize       int
	BlockSize       int
	SecondBlockSize int
	Permutation     string
}

func (r Record) key() Key {
	return Key{
		Benchmark:       r.Benchmark,
		Variant:         r.Variant,
		ArraySize:       r.ArraySize,
		BlockSize:       r.BlockSize,
		SecondBlockSize: r.SecondBlockSize,
		Permutation:     r.Permutation,
	}
}

// Summary aggregates the runs of one case.
type Summary struct {
	Key
	Runs   int
	Mean   float64
	StdDev float64
	Min    float64
}

// Summarise groups records by case, keeping first-seen order, and computes
// the mean, sample standard deviation and minimum clock count of each.
func Summarise(records []Record) []Summary {
	var order []Key
	samples := make(map[Key][]float64)
	for _, r := range records {
		k := r.key()
		if _, ok := samples[k]; !ok {
			order = append(order, k)
		}
		samples[k] = append(samples[k], float64(r.Clocks))
	}

	out := make([]Summary, 0, len(order))
	for _, k := range order {
		xs := samples[k]
		s := Summary{Key: k, Runs: len(xs), Min: floats.Min(xs)}
		if len(xs) > 1 {
			s.Mean, s.StdDev = stat.MeanStdDev(xs, nil)
		} else {
			s.Mean = xs[0]
		}
		out = append(out, s)
	}
	return out
}

var csvHeader = []string{
	"benchmark", "variant", "array_size", "block_size", "second_block_size",
	"permutation", "optimization_level", "run", "clocks",
}

// WriteCSV writes one row per record, preceded by a header row.
func WriteCSV(w io.Writer, records []Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, r := range records {
		row := []string{
			r.Benchmark,
			r.Variant,
			strconv.Itoa(r.ArraySize),
			strconv.Itoa(r.BlockSize),
			strconv.Itoa(r.SecondBlockSize),
			r.Permutation,
			strconv.Itoa(r.OptimizationLevel),
			strconv.Itoa(r.Run),
			strconv.FormatInt(r.Clocks, 10),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteSummary writes an aligned table of summaries.
func WriteSummary(w io.Writer, summaries []Summary) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "BENCHMARK\tVARIANT\tN\tBLOCK\tSECOND\tPERMUTATION\tRUNS\tMEAN\tSTDDEV\tMIN")
	for _, s := range summaries {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\t%s\t%d\t%.1f\t%.1f\t%.0f\n",
			s.Benchmark, s.Variant, s.ArraySize, dash(s.BlockSize), dash(s.SecondBlockSize),
			s.Permutation, s.Runs, s.Mean, s.StdDev, s.Min)
	}
	return tw.Flush()
}

func dash(v int) string {
	if v == 0 {
		return "-"
	}
	return strconv.Itoa(v)
}
