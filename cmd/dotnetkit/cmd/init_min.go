package cmd

import (
	"github.com/spf13/cobra"
)

var initMinCmd = &cobra.Command{
	Use:   "min",
	Short: "Scaffold a minimal repository",
	Long: `Scaffold a repository without package metadata: the same folder skeleton as init lib,
but the project is a plain csproj in its own directory under src and no test project
is generated.
`,
	Example: `% dotnetkit init min --root playground`,
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

		res, err := scaffolder.Minimal(params)
		if err != nil {
			wrapFatalln("scaffold minimal repository", err)
			return
		}
		okf("scaffolded minimal repository at %s (%d files)", res.Root, len(res.Files))
		infof("project: %s", res.Project)
	},
}

func init() {
	addScaffoldRootFlag(initMinCmd)
	addSolutionNameFlag(initMinCmd)
	addProjectNameFlag(initMinCmd)
	addAuthorFlag(initMinCmd)
	addDescriptionFlag(initMinCmd)
	addParamsFileFlag(initMinCmd)

	initCmd.AddCommand(initMinCmd)
}
