package cmd

import (
	"github.com/spf13/cobra"
)

var initProjCmd = &cobra.Command{
	Use:   "proj",
	Short: "Scaffold a single project directory",
	Long: `Scaffold a bare project directory holding one csproj named after the directory.

The default csproj is minimal. With --nuget, it carries the full package metadata
section with every value left blank, ready to be filled in.
`,
	Example: `% dotnetkit init proj --name src/Widgets
% dotnetkit init proj --name src/Widgets --nuget`,
	Run: func(cmd *cobra.Command, args []string) {
		optionInputs := newCliOptionInputs(config, &dotnetkitFlags)

		if dotnetkitFlags.scaffold.minimal && dotnetkitFlags.scaffold.nuget {
			wrapFatalln("--min and --nuget are mutually exclusive", nil)
			return
		}
		scaffolder, err := optionInputs.scaffolder()
		if err != nil {
			wrapFatalln("initialize scaffolder", err)
			return
		}

		res, err := scaffolder.Project(dotnetkitFlags.scaffold.name, dotnetkitFlags.scaffold.nuget)
		if err != nil {
			wrapFatalln("scaffold project", err)
			return
		}
		okf("scaffolded project %s", res.Project)
	},
}

func init() {
	requireFlags(initProjCmd,
		addNameFlag(initProjCmd),
	)
	addMinFlag(initProjCmd)
	addNugetFlag(initProjCmd)

	initCmd.AddCommand(initProjCmd)
}
