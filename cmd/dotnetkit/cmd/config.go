package cmd

import (
	"sync"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// CLIConfig describes the CLI configuration.
type CLIConfig struct {
	// bug in viper? Need to keep names of fields the same as the serialized names..
	Source          string   `json:"source" yaml:"source"`                   // Folder holding solution and project files
	Tests           string   `json:"tests" yaml:"tests"`                     // Folder holding test projects
	Docs            string   `json:"docs" yaml:"docs"`                       // Folder holding documentation and coverage reports
	Remote          string   `json:"remote" yaml:"remote"`                   // Git remote tags are pushed to
	Configurations  []string `json:"configurations" yaml:"configurations"`   // Build configurations, in build order
	CoverageFormats []string `json:"coverageformats" yaml:"coverageformats"` // Coverage formats collected by dotnet test
	ReportTypes     []string `json:"reporttypes" yaml:"reporttypes"`         // Report types produced by reportgenerator
	Loglevel        string   `json:"loglevel" yaml:"loglevel"`               // Logging verbosity: none, info or debug

	logger     *zap.Logger
	onceLogger sync.Once
}

func newConfig() (*CLIConfig, error) {
	var config CLIConfig
	err := viper.Unmarshal(&config)
	if err != nil {
		return nil, err
	}
	return &config, nil
}

// setLifecycleDefaults backfills flag values left unset from the
// resolved configuration. Flags given on the command line always win.
func (c *CLIConfig) setLifecycleDefaults(flags *flagsT) {
	if len(flags.build.configurations) == 0 {
		flags.build.configurations = c.Configurations
	}
	if flags.tag.remote == "" {
		flags.tag.remote = c.Remote
	}
	if flags.root.logLevel == "" {
		flags.root.logLevel = c.Loglevel
	}
}

// configCmd groups the configuration related commands
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Commands to manage a config",
	Long: `Commands to manage the dotnetkit CLI config.

Configuration for dotnetkit is the common set of flags that are needed for most commands and do not change across runs,
analogous to "git config ...".`,
}

func init() {
	rootCmd.AddCommand(configCmd)
}
