// Package dotnet drives the .NET SDK toolchain and the coverage
// report generator for whole-solution builds and test runs.
package dotnet

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/dotnetkit/dotnetkit/pkg/errors"
	"github.com/dotnetkit/dotnetkit/pkg/runner"
)

// Build configurations accepted by the build pipeline.
const (
	ConfigDebug   = "Debug"
	ConfigRelease = "Release"
)

// DefaultConfigurations builds both configurations, Debug first.
func DefaultConfigurations() []string {
	return []string{ConfigDebug, ConfigRelease}
}

// DefaultCoverageFormats collected during test runs.
func DefaultCoverageFormats() []string {
	return []string{"json", "lcov", "cobertura"}
}

// DefaultReportTypes rendered by the report generator.
func DefaultReportTypes() []string {
	return []string{"Html"}
}

// ValidateConfiguration accepts Debug or Release, nothing else.
func ValidateConfiguration(cfg string) error {
	if cfg != ConfigDebug && cfg != ConfigRelease {
		return errors.New(fmt.Sprintf("configuration must be %s or %s, not %q", ConfigDebug, ConfigRelease, cfg))
	}
	return nil
}

// Toolchain invokes dotnet and reportgenerator through a Runner.
type Toolchain struct {
	run runner.Runner
	fs  afero.Fs
	log *zap.Logger
}

// Option tunes a Toolchain.
type Option func(*Toolchain)

// WithFs overrides the filesystem used for artifact handling.
func WithFs(fs afero.Fs) Option {
	return func(t *Toolchain) {
		t.fs = fs
	}
}

// WithLogger attaches a logger.
func WithLogger(log *zap.Logger) Option {
	return func(t *Toolchain) {
		t.log = log
	}
}

// New builds a Toolchain on top of run.
func New(run runner.Runner, opts ...Option) *Toolchain {
	t := &Toolchain{run: run, fs: afero.NewOsFs(), log: zap.NewNop()}
	for _, apply := range opts {
		apply(t)
	}
	return t
}

// BuildOptions parameterizes one build pipeline run.
type BuildOptions struct {
	// Solution is the resolved .sln path
	Solution string
	// Configurations to build in order; empty means Debug then Release
	Configurations []string
	// NoRestore skips the restore step and passes --no-restore to builds
	NoRestore bool
}

// Build restores the solution unless told otherwise, then builds every
// requested configuration sequentially.
func (t *Toolchain) Build(ctx context.Context, opts BuildOptions) error {
	configs := opts.Configurations
	if len(configs) == 0 {
		configs = DefaultConfigurations()
	}
	for _, cfg := range configs {
		if err := ValidateConfiguration(cfg); err != nil {
			return err
		}
	}

	if !opts.NoRestore {
		t.log.Debug("restoring solution", zap.String("solution", opts.Solution))
		if err := t.run.Run(ctx, runner.Command{Name: "dotnet", Args: []string{"restore", opts.Solution}}); err != nil {
			return errors.New(fmt.Sprintf("restoring %q", opts.Solution)).Wrap(err)
		}
	}

	for _, cfg := range configs {
		args := []string{"build", opts.Solution, "-c", cfg}
		if opts.NoRestore {
			args = append(args, "--no-restore")
		}
		t.log.Debug("building solution", zap.String("solution", opts.Solution), zap.String("configuration", cfg))
		if err := t.run.Run(ctx, runner.Command{Name: "dotnet", Args: args}); err != nil {
			return errors.New(fmt.Sprintf("building %q (%s)", opts.Solution, cfg)).Wrap(err)
		}
	}
	return nil
}

// PrepareOutputDirs creates the results and coverage directories and
// empties any leftovers from earlier runs.
func (t *Toolchain) PrepareOutputDirs(results, coverage string) error {
	for _, dir := range []string{results, coverage} {
		if err := t.fs.MkdirAll(dir, 0o755); err != nil {
			return errors.New(fmt.Sprintf("creating output directory %q", dir)).Wrap(err)
		}
		if err := t.emptyDir(dir); err != nil {
			return err
		}
	}
	return nil
}

func (t *Toolchain) emptyDir(dir string) error {
	infos, err := afero.ReadDir(t.fs, dir)
	if err != nil {
		return errors.New(fmt.Sprintf("reading output directory %q", dir)).Wrap(err)
	}
	for _, info := range infos {
		child := filepath.Join(dir, info.Name())
		if err := t.fs.RemoveAll(child); err != nil {
			return errors.New(fmt.Sprintf("removing previous output %q", child)).Wrap(err)
		}
	}
	return nil
}

// Test runs every project with coverage collection, writing raw
// results under resultsDir.
func (t *Toolchain) Test(ctx context.Context, projects []string, resultsDir string, formats []string) error {
	if len(formats) == 0 {
		formats = DefaultCoverageFormats()
	}
	collect := "XPlat Code Coverage;Format=" + strings.Join(formats, ",")
	for _, project := range projects {
		t.log.Debug("running tests", zap.String("project", project))
		cmd := runner.Command{Name: "dotnet", Args: []string{
			"test", project,
			"--collect:" + collect,
			"--results-directory", resultsDir,
		}}
		if err := t.run.Run(ctx, cmd); err != nil {
			return errors.New(fmt.Sprintf("testing %q", project)).Wrap(err)
		}
	}
	return nil
}

// GenerateCoverageReport renders the collected cobertura files under
// resultsDir into reports under coverageDir.
func (t *Toolchain) GenerateCoverageReport(ctx context.Context, resultsDir, coverageDir string, types []string) error {
	if len(types) == 0 {
		types = DefaultReportTypes()
	}
	pattern := filepath.Join(resultsDir, "**", "coverage.cobertura.xml")
	cmd := runner.Command{Name: "reportgenerator", Args: []string{
		"-reports:" + pattern,
		"-targetdir:" + coverageDir,
		"-reporttypes:" + strings.Join(types, ";"),
	}}
	t.log.Debug("generating coverage report", zap.String("pattern", pattern), zap.String("target", coverageDir))
	if err := t.run.Run(ctx, cmd); err != nil {
		return errors.New(fmt.Sprintf("generating coverage report in %q", coverageDir)).Wrap(err)
	}
	return nil
}

// CleanArtifacts removes every bin and obj directory under root and
// reports what was removed. Artifact directories are not descended
// into, so a nested pair counts once.
func (t *Toolchain) CleanArtifacts(root string) ([]string, error) {
	info, err := t.fs.Stat(root)
	if err != nil || !info.IsDir() {
		return nil, errors.New(fmt.Sprintf("target directory %q is not usable", root)).Wrap(err)
	}
	var removed []string
	walkErr := afero.Walk(t.fs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() || path == root {
			return nil
		}
		name := filepath.Base(path)
		if name != "bin" && name != "obj" {
			return nil
		}
		if err := t.fs.RemoveAll(path); err != nil {
			return err
		}
		t.log.Debug("removed artifact directory", zap.String("dir", path))
		removed = append(removed, path)
		return filepath.SkipDir
	})
	if walkErr != nil {
		return removed, errors.New(fmt.Sprintf("cleaning artifacts under %q", root)).Wrap(walkErr)
	}
	return removed, nil
}
