package cmd

import (
	"context"
	"strings"

	"github.com/dotnetkit/dotnetkit/pkg/dotnet"
	"github.com/spf13/cobra"
)

var buildCmd = &cobra.Command{
	Use:   "build [path]",
	Short: "Restore and build the solution",
	Long: `Restore dependencies and build the solution for every requested configuration in order.

Without a path, the solution is searched recursively under the configured source folder.
A path may point to a solution file directly or to a directory searched non-recursively.
When several solutions match, --solution picks one by file name.
`,
	Example: `% dotnetkit build
% dotnetkit build src/Toolbelt.sln --configuration Release --no-restore`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		optionInputs := newCliOptionInputs(config, &dotnetkitFlags)

		sln, err := optionInputs.resolveSolution(targetPath(args))
		if err != nil {
			wrapFatalln("resolve solution", err)
			return
		}

		toolchain, err := optionInputs.toolchain()
		if err != nil {
			wrapFatalln("initialize toolchain", err)
			return
		}

		stepf("building %s (%s)", sln, strings.Join(dotnetkitFlags.build.configurations, ", "))
		err = toolchain.Build(ctx, dotnet.BuildOptions{
			Solution:       sln,
			Configurations: dotnetkitFlags.build.configurations,
			NoRestore:      dotnetkitFlags.build.noRestore,
		})
		if err != nil {
			wrapFatalln("build "+sln, err)
			return
		}
		okf("build succeeded for %s", sln)
	},
}

func init() {
	addSolutionFlag(buildCmd)
	addConfigurationFlag(buildCmd)
	addNoRestoreFlag(buildCmd)
	rootCmd.AddCommand(buildCmd)
}
