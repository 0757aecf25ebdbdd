package cmd

import (
	"fmt"

	"github.com/dotnetkit/dotnetkit/pkg/dlogger"
	"github.com/dotnetkit/dotnetkit/pkg/dotnet"
	"github.com/dotnetkit/dotnetkit/pkg/locator"
	"github.com/dotnetkit/dotnetkit/pkg/manifest"
	"github.com/dotnetkit/dotnetkit/pkg/runner"
	"github.com/dotnetkit/dotnetkit/pkg/scaffold"
	"github.com/dotnetkit/dotnetkit/pkg/vcs"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type flagsT struct {
	build struct {
		solution       string
		configurations []string
		noRestore      bool
	}
	test struct {
		project  string
		noReport bool
	}
	bump struct {
		major bool
		minor bool
		patch bool
		set   string
	}
	tag struct {
		push   bool
		remote string
	}
	scaffold struct {
		root        string
		solution    string
		project     string
		author      string
		company     string
		description string
		packageID   string
		repoURL     string
		license     string
		version     string
		paramsFile  string
		name        string
		minimal     bool
		nuget       bool
		output      string
	}
	doc struct {
		docTarget string
	}
	root struct {
		logLevel string
	}
	upgrade upgradeFlags
}

var dotnetkitFlags = flagsT{}

var (
	// cliFS is the file system commands operate on, patched over in tests
	cliFS = afero.NewOsFs()

	// cliRun executes external tools, patched over with a scripted runner in tests
	cliRun runner.Runner = runner.NewExec(nil)
)

/** pipeline flags */

func addSolutionFlag(cmd *cobra.Command) string {
	c := "solution"
	cmd.Flags().StringVar(&dotnetkitFlags.build.solution, c, "",
		"File name of the solution to pick when several are found")
	return c
}

func addConfigurationFlag(cmd *cobra.Command) string {
	c := "configuration"
	cmd.Flags().StringSliceVar(&dotnetkitFlags.build.configurations, c, nil,
		"Build configuration to use (repeatable). Defaults to Debug and Release")
	return c
}

func addNoRestoreFlag(cmd *cobra.Command) string {
	c := "no-restore"
	cmd.Flags().BoolVar(&dotnetkitFlags.build.noRestore, c, false,
		"Skip the restore step and pass --no-restore to dotnet build")
	return c
}

func addTestProjectFlag(cmd *cobra.Command) string {
	c := "project"
	cmd.Flags().StringVar(&dotnetkitFlags.test.project, c, "",
		"Path to a single test project to run instead of discovering all test projects")
	return c
}

func addNoReportFlag(cmd *cobra.Command) string {
	c := "no-report"
	cmd.Flags().BoolVar(&dotnetkitFlags.test.noReport, c, false,
		"Collect coverage but skip the HTML report generation")
	return c
}

/** bump flags */

func addBumpMajorFlag(cmd *cobra.Command) string {
	c := "major"
	cmd.Flags().BoolVar(&dotnetkitFlags.bump.major, c, false,
		"Bump the major component and zero minor and patch")
	return c
}

func addBumpMinorFlag(cmd *cobra.Command) string {
	c := "minor"
	cmd.Flags().BoolVar(&dotnetkitFlags.bump.minor, c, false,
		"Bump the minor component and zero patch")
	return c
}

func addBumpPatchFlag(cmd *cobra.Command) string {
	c := "patch"
	cmd.Flags().BoolVar(&dotnetkitFlags.bump.patch, c, false,
		"Bump the patch component")
	return c
}

func addBumpSetFlag(cmd *cobra.Command) string {
	c := "set"
	cmd.Flags().StringVar(&dotnetkitFlags.bump.set, c, "",
		"Set the version to the given major.minor.patch literal, inserting the element when absent")
	return c
}

/** tag flags */

func addPushFlag(cmd *cobra.Command) string {
	c := "push"
	cmd.Flags().BoolVar(&dotnetkitFlags.tag.push, c, false,
		"Push the created tag to the remote")
	return c
}

func addRemoteFlag(cmd *cobra.Command) string {
	c := "remote"
	cmd.Flags().StringVar(&dotnetkitFlags.tag.remote, c, "",
		`The git remote to push tags to (defaults to "origin")`)
	return c
}

/** scaffold flags */

func addScaffoldRootFlag(cmd *cobra.Command) string {
	c := "root"
	cmd.Flags().StringVar(&dotnetkitFlags.scaffold.root, c, "",
		"Root folder of the new repository. Must not exist yet")
	return c
}

func addSolutionNameFlag(cmd *cobra.Command) string {
	c := "solution"
	cmd.Flags().StringVar(&dotnetkitFlags.scaffold.solution, c, "",
		"Solution name. Defaults to the root folder name")
	return c
}

func addProjectNameFlag(cmd *cobra.Command) string {
	c := "project"
	cmd.Flags().StringVar(&dotnetkitFlags.scaffold.project, c, "",
		"Project name. Defaults to the solution name")
	return c
}

func addAuthorFlag(cmd *cobra.Command) string {
	c := "author"
	cmd.Flags().StringVar(&dotnetkitFlags.scaffold.author, c, "",
		"Author name. Defaults to GIT_AUTHOR_NAME, USER or USERNAME")
	return c
}

func addCompanyFlag(cmd *cobra.Command) string {
	c := "company"
	cmd.Flags().StringVar(&dotnetkitFlags.scaffold.company, c, "",
		"Company name. Defaults to the author")
	return c
}

func addDescriptionFlag(cmd *cobra.Command) string {
	c := "description"
	cmd.Flags().StringVar(&dotnetkitFlags.scaffold.description, c, "",
		`Package description. Defaults to "<project> library"`)
	return c
}

func addPackageIDFlag(cmd *cobra.Command) string {
	c := "package-id"
	cmd.Flags().StringVar(&dotnetkitFlags.scaffold.packageID, c, "",
		"NuGet package id. Defaults to the project name")
	return c
}

func addRepositoryURLFlag(cmd *cobra.Command) string {
	c := "repository-url"
	cmd.Flags().StringVar(&dotnetkitFlags.scaffold.repoURL, c, "",
		"Repository URL baked into the package metadata. Defaults to the origin remote of the enclosing git repository")
	return c
}

func addLicenseFlag(cmd *cobra.Command) string {
	c := "license"
	cmd.Flags().StringVar(&dotnetkitFlags.scaffold.license, c, "",
		"SPDX license expression for the package metadata. Defaults to MIT")
	return c
}

func addScaffoldVersionFlag(cmd *cobra.Command) string {
	c := "version"
	cmd.Flags().StringVar(&dotnetkitFlags.scaffold.version, c, "",
		"Initial package version. Defaults to 0.1.0")
	return c
}

func addParamsFileFlag(cmd *cobra.Command) string {
	c := "json"
	cmd.Flags().StringVar(&dotnetkitFlags.scaffold.paramsFile, c, "",
		"Path to a JSON parameters file. Mutually exclusive with the discrete scaffold flags")
	return c
}

func addNameFlag(cmd *cobra.Command) string {
	c := "name"
	cmd.Flags().StringVar(&dotnetkitFlags.scaffold.name, c, "",
		"Directory of the new project. The csproj is named after its base name")
	return c
}

func addMinFlag(cmd *cobra.Command) string {
	c := "min"
	cmd.Flags().BoolVar(&dotnetkitFlags.scaffold.minimal, c, false,
		"Generate a minimal csproj without package metadata (the default)")
	return c
}

func addNugetFlag(cmd *cobra.Command) string {
	c := "nuget"
	cmd.Flags().BoolVar(&dotnetkitFlags.scaffold.nuget, c, false,
		"Generate a csproj with a blank NuGet metadata section")
	return c
}

func addOutputFlag(cmd *cobra.Command) string {
	c := "output"
	cmd.Flags().StringVar(&dotnetkitFlags.scaffold.output, c, "",
		"Write to the given file instead of stdout")
	return c
}

/** root and misc flags */

func addLogLevel(cmd *cobra.Command) string {
	loglevel := "loglevel"
	cmd.PersistentFlags().StringVar(&dotnetkitFlags.root.logLevel, loglevel, "",
		"The logging level. Levels by increasing order of verbosity: none, info, debug")
	return loglevel
}

func addTargetDirFlag(cmd *cobra.Command) string {
	c := "target-dir"
	cmd.Flags().StringVar(&dotnetkitFlags.doc.docTarget, c, ".",
		"The target directory where to generate the markdown documentation")
	return c
}

func addUpgradeCheckOnlyFlag(cmd *cobra.Command) string {
	c := "check-version"
	cmd.Flags().BoolVar(&dotnetkitFlags.upgrade.checkOnly, c, false,
		"Checks if a new version is available but does not upgrade")
	return c
}

func addUpgradeForceFlag(cmd *cobra.Command) string {
	c := "force"
	cmd.Flags().BoolVar(&dotnetkitFlags.upgrade.forceUpgrade, c, false,
		"Forces upgrade even if the current version is not a released version")
	return c
}

/** assembling commands from flags and config */

type cliOptionInputs struct {
	config *CLIConfig
	flags  *flagsT
}

func newCliOptionInputs(config *CLIConfig, flags *flagsT) *cliOptionInputs {
	return &cliOptionInputs{config: config, flags: flags}
}

func (in *cliOptionInputs) getLogger() (*zap.Logger, error) {
	var err error
	in.config.onceLogger.Do(func() {
		in.config.logger, err = dlogger.GetLogger(in.flags.root.logLevel)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to set log level: %v", err)
	}
	return in.config.logger, nil
}

func (in *cliOptionInputs) toolchain() (*dotnet.Toolchain, error) {
	logger, err := in.getLogger()
	if err != nil {
		return nil, err
	}
	return dotnet.New(cliRun, dotnet.WithFs(cliFS), dotnet.WithLogger(logger)), nil
}

func (in *cliOptionInputs) locator() (*locator.Locator, error) {
	logger, err := in.getLogger()
	if err != nil {
		return nil, err
	}
	return locator.New(cliFS, logger), nil
}

func (in *cliOptionInputs) editor() (*manifest.Editor, error) {
	logger, err := in.getLogger()
	if err != nil {
		return nil, err
	}
	return manifest.New(cliFS, logger), nil
}

func (in *cliOptionInputs) git(dir string) (*vcs.Git, error) {
	logger, err := in.getLogger()
	if err != nil {
		return nil, err
	}
	return vcs.New(cliRun, vcs.WithDir(dir), vcs.WithLogger(logger)), nil
}

func (in *cliOptionInputs) scaffolder() (*scaffold.Scaffolder, error) {
	logger, err := in.getLogger()
	if err != nil {
		return nil, err
	}
	return scaffold.New(cliFS, logger), nil
}

// resolveSolution locates the solution to operate on. An explicit
// positional hint may be a solution file or a directory searched
// non-recursively; without a hint the configured source folder is
// searched recursively. The --solution flag narrows multiple matches
// down by file name.
func (in *cliOptionInputs) resolveSolution(hint string) (string, error) {
	loc, err := in.locator()
	if err != nil {
		return "", err
	}
	var opts []locator.Option
	if in.flags.build.solution != "" {
		opts = append(opts, locator.WithName(in.flags.build.solution))
	}
	if hint != "" {
		return loc.Resolve(hint, locator.Solution, opts...)
	}
	return loc.Resolve(in.config.Source, locator.Solution, append(opts, locator.Recursive())...)
}

// resolveManifest locates the csproj manifest carrying the version,
// with the same hint semantics as resolveSolution.
func (in *cliOptionInputs) resolveManifest(hint string) (string, error) {
	loc, err := in.locator()
	if err != nil {
		return "", err
	}
	if hint != "" {
		return loc.Resolve(hint, locator.Project)
	}
	return loc.Resolve(in.config.Source, locator.Project, locator.Recursive())
}

// targetPath returns the positional target of a command, when given
func targetPath(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return ""
}

/** misc util */

// requireFlags sets a flag (local to the command or inherited) as required
func requireFlags(cmd *cobra.Command, flags ...string) {
	for _, flag := range flags {
		err := cmd.MarkFlagRequired(flag)
		if err != nil {
			err = cmd.MarkPersistentFlagRequired(flag)
		}
		if err != nil {
			wrapFatalln(fmt.Sprintf("error attempting to mark the required flag %q", flag), err)
			return
		}
	}
}
