// Package testutil provides shared harnesses for loopbench tests: writing
// sweep files to disk, running the app end to end, and a toolchain that
// needs no C++ compiler.
package testutil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/loopbench/internal/app"
	"github.com/stretchr/testify/require"
)

// HarnessResult holds the outcomes of an integration test run.
type HarnessResult struct {
	Output    string
	LogOutput string
	Err       error
	App       *app.App
	Toolchain *FakeToolchain
}

// WriteFiles writes files, keyed by slash-separated relative path, below a
// fresh temporary directory and returns the directory.
func WriteFiles(t *testing.T, files map[string]string) string {
	t.Helper()

	root := t.TempDir()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return root
}

// RunIntegrationTest writes files to disk, points cfg at them (relative
// SweepPath, OutputPath and EmitDir are resolved against the temporary root)
// and runs the app with a FakeToolchain.
func RunIntegrationTest(t *testing.T, files map[string]string, cfg app.Config) *HarnessResult {
	t.Helper()
	return RunIntegrationTestWithToolchain(context.Background(), t, files, cfg, &FakeToolchain{})
}

// RunIntegrationTestWithToolchain is RunIntegrationTest with a caller-provided
// context and toolchain.
func RunIntegrationTestWithToolchain(ctx context.Context, t *testing.T, files map[string]string, cfg app.Config, fake *FakeToolchain) *HarnessResult {
	t.Helper()

	root := WriteFiles(t, files)
	resolve := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(root, filepath.FromSlash(p))
	}
	cfg.SweepPath = resolve(cfg.SweepPath)
	cfg.OutputPath = resolve(cfg.OutputPath)
	cfg.EmitDir = resolve(cfg.EmitDir)
	if cfg.LogFormat == "" {
		cfg.LogFormat = "text"
	}

	result := &HarnessResult{Toolchain: fake}
	testApp, out, logs, err := setupApp(t, &cfg)
	if err != nil {
		result.Err = err
		return result
	}
	testApp.Driver().Toolchain = result.Toolchain

	result.App = testApp
	result.Err = testApp.Run(ctx)
	result.Output = out.String()
	result.LogOutput = logs.String()
	return result
}

// setupApp converts a startup panic into an error, the way main does.
func setupApp(t *testing.T, cfg *app.Config) (testApp *app.App, out, logs *app.SafeBuffer, err error) {
	t.Helper()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("application startup panicked: %v", r)
		}
	}()
	testApp, out, logs = app.SetupAppTest(t, cfg)
	return testApp, out, logs, nil
}
