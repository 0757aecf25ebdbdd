package cmd

import (
	"github.com/spf13/cobra"
)

var cleanCmd = &cobra.Command{
	Use:   "clean [path]",
	Short: "Remove build artifacts",
	Long: `Recursively remove every bin and obj directory under the target path.

Without a path, the configured source folder is cleaned; a missing source
folder is an error. Only directories named bin or obj are removed;
everything else is left untouched.
`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		optionInputs := newCliOptionInputs(config, &dotnetkitFlags)

		target := targetPath(args)
		if target == "" {
			target = config.Source
		}

		toolchain, err := optionInputs.toolchain()
		if err != nil {
			wrapFatalln("initialize toolchain", err)
			return
		}

		removed, err := toolchain.CleanArtifacts(target)
		if err != nil {
			wrapFatalln("clean "+target, err)
			return
		}
		for _, dir := range removed {
			infof("removed %s", dir)
		}
		okf("cleaned %d artifact directories under %s", len(removed), target)
	},
}

func init() {
	rootCmd.AddCommand(cleanCmd)
}
