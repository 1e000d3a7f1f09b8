package toolchain

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const (
	clocksMarker = "Clocks: "
	resultMarker = "Result:"
)

// Output is what one run of a generated program reported.
type Output struct {
	Clocks int64
	// Result is the C matrix, present only when the program was generated
	// with the result dump enabled.
	Result [][]float64
}

// ErrNoClocks is returned when a program's output has no clock report.
var ErrNoClocks = errors.New("no clock report in program output")

// ParseOutput extracts the clock count and, if present, the result dump.
func ParseOutput(out []byte) (*Output, error) {
	text := string(out)
	idx := strings.LastIndex(text, clocksMarker)
	if idx < 0 {
		return nil, ErrNoClocks
	}
	clocks, err := strconv.ParseInt(strings.TrimSpace(text[idx+len(clocksMarker):]), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid clock report: %w", err)
	}

	result, err := parseResult(text[:idx])
	if err != nil {
		return nil, err
	}
	return &Output{Clocks: clocks, Result: result}, nil
}

func parseResult(text string) ([][]float64, error) {
	idx := strings.Index(text, resultMarker)
	if idx < 0 {
		return nil, nil
	}

	var rows [][]float64
	sc := bufio.NewScanner(bytes.NewBufferString(text[idx+len(resultMarker):]))
	sc.Buffer(make([]byte, 0, 64*1024), 64*1024*1024)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		row := make([]float64, len(fields))
		for i, f := range fields {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid result row %d: %w", len(rows), err)
			}
			row[i] = v
		}
		rows = append(rows, row)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read result dump: %w", err)
	}
	return rows, nil
}
