package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/specialistvlad/loopbench/internal/app"
	"github.com/specialistvlad/loopbench/internal/toolchain"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Parse processes command-line arguments. It returns a populated app.Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("loopbench", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
loopbench - generate and time loop-tiled matrix multiplication programs.

Usage:
  loopbench [options] [SWEEP_PATH]

Arguments:
  SWEEP_PATH
    Path to a single .hcl sweep file or a directory containing .hcl files.

Options:
`)
		flagSet.PrintDefaults()
	}

	sweepFlag := flagSet.String("sweep", "", "Path to the sweep file or directory.")
	sFlag := flagSet.String("s", "", "Path to the sweep file or directory (shorthand).")
	outFlag := flagSet.String("out", "", "Write every run's timing to this CSV file.")
	emitFlag := flagSet.String("emit", "", "Write the generated C++ sources to this directory instead of benchmarking.")
	verifyFlag := flagSet.Bool("verify", false, "Compile each program with a result dump and compare it with a reference product.")
	compilerFlag := flagSet.String("compiler", "", "C++ compiler command. Overrides the sweep file.")
	optFlag := flagSet.Int("opt-level", -1, "Compiler optimisation level. Overrides the sweep file; -1 keeps it.")
	logFormatFlag := flagSet.String("log-format", "json", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	path := ""
	if *sweepFlag != "" {
		path = *sweepFlag
	} else if *sFlag != "" {
		path = *sFlag
	} else if flagSet.NArg() > 0 {
		path = flagSet.Arg(0)
	}
	slog.Debug("Sweep path determined.", "path", path)

	if path == "" {
		slog.Debug("No sweep path provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}

	var optLevel *int
	switch {
	case *optFlag >= toolchain.MinOptimizationLevel && *optFlag <= toolchain.MaxOptimizationLevel:
		optLevel = optFlag
	case *optFlag != -1:
		return nil, false, &ExitError{Code: 2, Message: "invalid opt-level: must be between 0 and 3, or -1"}
	}
	slog.Debug("CLI parameter validation complete.")

	config, err := app.NewConfig(app.Config{
		SweepPath:         path,
		OutputPath:        *outFlag,
		EmitDir:           *emitFlag,
		Verify:            *verifyFlag,
		Compiler:          *compilerFlag,
		OptimizationLevel: optLevel,
		LogFormat:         logFormat,
		LogLevel:          logLevel,
	})

	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}
