package cmd

import (
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v2"
)

var configGen = &cobra.Command{
	Use:   "create",
	Short: "Create a config file",
	Long:  "Create a config to use for dotnetkit. Config file will be placed in $HOME/.dotnetkit/dotnetkit.yaml",
	Run: func(cmd *cobra.Command, args []string) {
		home, err := os.UserHomeDir()
		if err != nil {
			wrapFatalln("could not get home directory for user", err)
			return
		}
		out, err := yaml.Marshal(config)
		if err != nil {
			wrapFatalln("serialize config to yaml", err)
			return
		}
		dir := filepath.Join(home, ".dotnetkit")
		if err = cliFS.MkdirAll(dir, 0o755); err != nil {
			wrapFatalln("create "+dir, err)
			return
		}
		target := filepath.Join(dir, "dotnetkit.yaml")
		if err = afero.WriteFile(cliFS, target, out, 0o644); err != nil {
			wrapFatalln("write config file", err)
			return
		}
		okf("wrote %s", target)
	},
}

func init() {
	configCmd.AddCommand(configGen)
}
