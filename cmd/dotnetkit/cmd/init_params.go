package cmd

import (
	"github.com/dotnetkit/dotnetkit/pkg/scaffold"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

var initParamsCmd = &cobra.Command{
	Use:   "params",
	Short: "Print a starter parameters file",
	Long: `Print the starter JSON parameters file accepted by init lib and init min through --json.

Edit the values, then feed the file back with "dotnetkit init lib --json <file>".
`,
	Run: func(cmd *cobra.Command, args []string) {
		out := dotnetkitFlags.scaffold.output
		if out == "" {
			_, _ = logStdOut("%s", scaffold.ExampleParams())
			return
		}
		if err := afero.WriteFile(cliFS, out, scaffold.ExampleParams(), 0o644); err != nil {
			wrapFatalln("write "+out, err)
			return
		}
		okf("wrote starter parameters to %s", out)
	},
}

func init() {
	addOutputFlag(initParamsCmd)
	initCmd.AddCommand(initParamsCmd)
}
