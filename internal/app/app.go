package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/specialistvlad/loopbench/internal/config"
	"github.com/specialistvlad/loopbench/internal/ctxlog"
	"github.com/specialistvlad/loopbench/internal/sweep"
	"github.com/specialistvlad/loopbench/internal/toolchain"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW   io.Writer
	logger *slog.Logger
	config *Config
	model  *config.Model
	driver *sweep.Driver
}

// NewApp is the constructor for the main application. Results go to outW and
// logs to logW. It loads the sweep through loader and panics if that fails.
func NewApp(outW, logW io.Writer, appConfig *Config, loader config.Loader) *App {
	logger := newLogger(appConfig.LogLevel, appConfig.LogFormat, logW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	model, err := loader.Load(ctx, appConfig.SweepPath)
	if err != nil {
		// A failure to load the sweep is a fatal startup error.
		panic(fmt.Errorf("failed to load sweep: %w", err))
	}
	logger.Debug("Sweep loaded and translated into unified model.", "benchmarks", len(model.Benchmarks))

	compiler := toolchain.Compiler{
		Command:           model.Compiler.Command,
		OptimizationLevel: model.Compiler.OptimizationLevel,
		ExtraArgs:         model.Compiler.ExtraArgs,
	}
	if appConfig.Compiler != "" {
		compiler.Command = appConfig.Compiler
	}
	if appConfig.OptimizationLevel != nil {
		compiler.OptimizationLevel = *appConfig.OptimizationLevel
	}
	logger.Debug("Compiler configured.", "command", compiler.Command, "optimization_level", compiler.OptimizationLevel)

	return &App{
		outW:   outW,
		logger: logger,
		config: appConfig,
		model:  model,
		driver: sweep.NewDriver(compiler),
	}
}

// Driver returns the application's sweep driver. This is primarily for testing.
func (a *App) Driver() *sweep.Driver {
	return a.driver
}
