package cmd

import (
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v2"
)

var configShow = &cobra.Command{
	Use:   "show",
	Short: "Show the effective config",
	Long:  "Show the effective configuration after merging defaults, the config file and environment variables.",
	Run: func(cmd *cobra.Command, args []string) {
		out, err := yaml.Marshal(config)
		if err != nil {
			wrapFatalln("serialize config to yaml", err)
			return
		}
		_, _ = logStdOut("%s", out)
	},
}

func init() {
	configCmd.AddCommand(configShow)
}
