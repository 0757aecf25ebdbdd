package cmd

import (
	"context"
	"path/filepath"

	"github.com/dotnetkit/dotnetkit/pkg/locator"
	"github.com/spf13/cobra"
)

var testCmd = &cobra.Command{
	Use:   "test [path]",
	Short: "Run tests with coverage and generate an HTML report",
	Long: `Discover test projects, run them with coverage collection and render an HTML coverage report.

Without a path, test projects are discovered under the configured tests folder,
results go to tests/TestResults and the report to docs/coverage-report.
With a path, discovery happens under it and both output directories are created inside it.
Projects under a Setup directory are skipped. Previous results are cleared before the run.
`,
	Example: `% dotnetkit test
% dotnetkit test integration --no-report`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		optionInputs := newCliOptionInputs(config, &dotnetkitFlags)

		root := targetPath(args)
		var resultsDir, coverageDir string
		if root != "" {
			resultsDir = filepath.Join(root, "TestResults")
			coverageDir = filepath.Join(root, "coverage-report")
		} else {
			root = config.Tests
			resultsDir = filepath.Join(config.Tests, "TestResults")
			coverageDir = filepath.Join(config.Docs, "coverage-report")
		}

		toolchain, err := optionInputs.toolchain()
		if err != nil {
			wrapFatalln("initialize toolchain", err)
			return
		}
		if err = toolchain.PrepareOutputDirs(resultsDir, coverageDir); err != nil {
			wrapFatalln("prepare output directories", err)
			return
		}

		projects, err := optionInputs.testProjects(root)
		if err != nil {
			wrapFatalln("discover test projects", err)
			return
		}
		if len(projects) == 0 {
			warnf("no test projects found under %s, nothing to run", root)
			return
		}

		stepf("running %d test projects with coverage collection", len(projects))
		if err = toolchain.Test(ctx, projects, resultsDir, config.CoverageFormats); err != nil {
			wrapFatalln("run tests", err)
			return
		}

		if dotnetkitFlags.test.noReport {
			okf("tests passed, results in %s", resultsDir)
			return
		}
		stepf("generating coverage report")
		if err = toolchain.GenerateCoverageReport(ctx, resultsDir, coverageDir, config.ReportTypes); err != nil {
			wrapFatalln("generate coverage report", err)
			return
		}
		okf("tests passed, coverage report written to %s", coverageDir)
	},
}

// testProjects returns the projects to run: the single project named by
// --project when given, otherwise every test project discovered under root.
func (in *cliOptionInputs) testProjects(root string) ([]string, error) {
	loc, err := in.locator()
	if err != nil {
		return nil, err
	}
	if in.flags.test.project != "" {
		project, err := loc.Resolve(in.flags.test.project, locator.Project)
		if err != nil {
			return nil, err
		}
		return []string{project}, nil
	}
	return loc.TestProjects(root)
}

func init() {
	addTestProjectFlag(testCmd)
	addNoReportFlag(testCmd)
	rootCmd.AddCommand(testCmd)
}
