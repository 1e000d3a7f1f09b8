package app

import "errors"

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	SweepPath  string // hcl file or directory of hcl files
	OutputPath string // per-run CSV; empty disables it
	EmitDir    string // write generated sources here instead of benchmarking
	Verify     bool   // check each program's result against the reference

	// Compiler and OptimizationLevel override the sweep file when set.
	Compiler          string
	OptimizationLevel *int

	LogFormat string
	LogLevel  string
}

func NewConfig(cfg Config) (*Config, error) {
	if cfg.SweepPath == "" {
		return nil, errors.New("SweepPath is a required configuration field and cannot be empty")
	}
	if cfg.EmitDir != "" && cfg.Verify {
		return nil, errors.New("emit and verify cannot be combined: emitting does not compile")
	}
	if cfg.EmitDir != "" && cfg.OutputPath != "" {
		return nil, errors.New("emit and out cannot be combined: emitting does not benchmark")
	}

	return &cfg, nil
}
