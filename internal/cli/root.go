// Package cli implements the command-line interface for jdg.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	verbose bool
)

// rootCmd is the base command.
var rootCmd = &cobra.Command{
	Use:   "jdg",
	Short: "jdg - Mermaid class diagrams from Java sources",
	Long: `jdg parses Java source files, infers inheritance and association
relationships between the classes it finds, and renders them as a
Mermaid class diagram.

Commands:
  diagram    Generate a class diagram from files or directories
  tree       Show the Java files under a directory
  project    Manage registered projects
  watch      Regenerate a diagram whenever sources change
  mcp        Serve the jdg tools over MCP (stdio)
  init       Write a .jdg.yaml config file
  config     Show the effective configuration
  cache      Inspect or clear the model cache`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Persistent flags (available to all subcommands)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: .jdg.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	// Bind flags to viper
	bindFlag := func(key, flag string) {
		if err := viper.BindPFlag(key, rootCmd.PersistentFlags().Lookup(flag)); err != nil {
			panic(fmt.Sprintf("failed to bind %s flag: %v", flag, err))
		}
	}
	bindFlag("config_file", "config")

	// Add subcommands
	rootCmd.AddCommand(newDiagramCmd())
	rootCmd.AddCommand(newTreeCmd())
	rootCmd.AddCommand(newProjectCmd())
	rootCmd.AddCommand(newWatchCmd())
	rootCmd.AddCommand(newMCPCmd())
	rootCmd.AddCommand(newInitCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newCacheCmd())
	rootCmd.AddCommand(newCompletionCmd())
	rootCmd.AddCommand(newVersionCmd())
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}
}
