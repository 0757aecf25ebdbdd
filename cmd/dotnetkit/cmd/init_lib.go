package cmd

import (
	"github.com/spf13/cobra"
)

var initLibCmd = &cobra.Command{
	Use:   "lib",
	Short: "Scaffold a full NuGet library repository",
	Long: `Scaffold a complete library repository: src, docs and tests folders, a solution
referencing a packable project with NuGet metadata, a matching xunit test project,
license, readme and editor settings.

The root folder is the only required parameter; everything else has a sensible default.
`,
	Example: `% dotnetkit init lib --root AcmeToolbelt --author "Jane Developer"
% dotnetkit init lib --json scaffold.json`,
	Run: func(cmd *cobra.Command, args []string) {
		optionInputs := newCliOptionInputs(config, &dotnetkitFlags)

		params, err := optionInputs.scaffoldParams()
		if err != nil {
			wrapFatalln("assemble scaffold parameters", err)
			return
		}
		scaffolder, err := optionInputs.scaffolder()
		if err != nil {
			wrapFatalln("initialize scaffolder", err)
			return
		}

		res, err := scaffolder.Library(params)
		if err != nil {
			wrapFatalln("scaffold library", err)
			return
		}
		okf("scaffolded library repository at %s (%d files)", res.Root, len(res.Files))
		infof("solution: %s", res.Solution)
		infof("project: %s", res.Project)
		infof("tests: %s", res.Tests)
	},
}

func init() {
	addScaffoldRootFlag(initLibCmd)
	addSolutionNameFlag(initLibCmd)
	addProjectNameFlag(initLibCmd)
	addAuthorFlag(initLibCmd)
	addCompanyFlag(initLibCmd)
	addDescriptionFlag(initLibCmd)
	addPackageIDFlag(initLibCmd)
	addRepositoryURLFlag(initLibCmd)
	addLicenseFlag(initLibCmd)
	addScaffoldVersionFlag(initLibCmd)
	addParamsFileFlag(initLibCmd)

	initCmd.AddCommand(initLibCmd)
}
