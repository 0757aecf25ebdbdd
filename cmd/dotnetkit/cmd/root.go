package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/dotnetkit/dotnetkit/pkg/dlogger"
	"github.com/dotnetkit/dotnetkit/pkg/dotnet"
	"github.com/dotnetkit/dotnetkit/pkg/vcs"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "dotnetkit",
	Short: "dotnetkit automates .NET project lifecycle chores",
	Long: `dotnetkit automates the recurring lifecycle chores of repositories built with the .NET SDK toolchain.

It builds and cleans solutions, runs tests with coverage reporting, bumps the semantic version
stored in a project manifest, derives and pushes git tags from that version, and scaffolds new
repository layouts from templates.

External tools (dotnet, reportgenerator, git) are invoked as child processes and must be on PATH.
`,
}

var config *CLIConfig

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		osExit(1)
	}
}

func init() {
	log.SetFlags(0)
	cobra.OnInitialize(initConfig)
	addLogLevel(rootCmd)
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	viper.SetDefault("source", "src")
	viper.SetDefault("tests", "tests")
	viper.SetDefault("docs", "docs")
	viper.SetDefault("remote", vcs.DefaultRemote)
	viper.SetDefault("configurations", dotnet.DefaultConfigurations())
	viper.SetDefault("coverageformats", dotnet.DefaultCoverageFormats())
	viper.SetDefault("reporttypes", dotnet.DefaultReportTypes())
	viper.SetDefault("loglevel", dlogger.LogLevelInfo)
	if os.Getenv("DOTNETKIT_CONFIG") != "" {
		// Use config file from the flag.
		viper.SetConfigFile(os.Getenv("DOTNETKIT_CONFIG"))
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME/.dotnetkit")
		viper.AddConfigPath("/etc/dotnetkit")
		viper.SetConfigName("dotnetkit")
	}

	viper.AutomaticEnv() // read in environment variables that match
	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		log.Println("Using config file:", viper.ConfigFileUsed())
	}
	var err error
	config, err = newConfig()
	if err != nil {
		logFatalln(err)
	}
	config.setLifecycleDefaults(&dotnetkitFlags)
}
