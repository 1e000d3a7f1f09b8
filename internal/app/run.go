package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/specialistvlad/loopbench/internal/ctxlog"
	"github.com/specialistvlad/loopbench/internal/report"
	"github.com/specialistvlad/loopbench/internal/sweep"
)

// ErrVerificationFailed is returned when at least one generated program
// computes a different product than the reference.
var ErrVerificationFailed = errors.New("verification failed")

// Run executes the sweep in the mode the configuration selects: emit sources,
// verify results, or benchmark.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	// Every case is validated here, before anything is written or compiled.
	cases, err := sweep.ExpandAll(a.model)
	if err != nil {
		return fmt.Errorf("invalid sweep: %w", err)
	}
	if len(cases) == 0 {
		a.logger.Warn("No benchmarks found in sweep, nothing to do.")
		return nil
	}
	a.logger.Info("Sweep expanded.", "benchmarks", len(a.model.Benchmarks), "cases", len(cases))

	switch {
	case a.config.EmitDir != "":
		paths, err := a.driver.Emit(ctx, cases, a.config.EmitDir)
		if err != nil {
			return fmt.Errorf("emit failed: %w", err)
		}
		for _, p := range paths {
			fmt.Fprintln(a.outW, p)
		}
	case a.config.Verify:
		if err := a.verify(ctx, cases); err != nil {
			return err
		}
	default:
		if err := a.benchmark(ctx, cases); err != nil {
			return err
		}
	}

	a.logger.Debug("App.Run method finished.")
	return nil
}

func (a *App) benchmark(ctx context.Context, cases []sweep.Case) error {
	if version, err := a.driver.Compiler.Version(ctx); err != nil {
		a.logger.Warn("Could not determine compiler version.", "error", err)
	} else {
		a.logger.Info("Using compiler.", "version", version)
	}

	records, err := a.driver.Run(ctx, cases)
	if err != nil {
		return fmt.Errorf("benchmark failed: %w", err)
	}

	if err := report.WriteSummary(a.outW, report.Summarise(records)); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}
	if a.config.OutputPath == "" {
		return nil
	}

	f, err := os.Create(a.config.OutputPath)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", a.config.OutputPath, err)
	}
	defer f.Close()
	if err := report.WriteCSV(f, records); err != nil {
		return fmt.Errorf("failed to write %s: %w", a.config.OutputPath, err)
	}
	a.logger.Info("Results written.", "path", a.config.OutputPath, "records", len(records))
	return f.Close()
}

func (a *App) verify(ctx context.Context, cases []sweep.Case) error {
	results, err := a.driver.Verify(ctx, cases)
	if err != nil {
		return fmt.Errorf("verification aborted: %w", err)
	}

	failed := 0
	tw := tabwriter.NewWriter(a.outW, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "CASE\tRESULT")
	for _, r := range results {
		status := "ok"
		if !r.Match {
			status = "MISMATCH"
			failed++
		}
		fmt.Fprintf(tw, "%s\t%s\n", r.Case.ID(), status)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if failed > 0 {
		return fmt.Errorf("%w: %d of %d cases differ from the reference", ErrVerificationFailed, failed, len(results))
	}
	a.logger.Info("All cases match the reference.", "cases", len(results))
	return nil
}
