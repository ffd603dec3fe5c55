package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/teranos/markgen/cmd/markgen/commands"
	"github.com/teranos/markgen/logger"
)

var rootCmd = &cobra.Command{
	Use:   "markgen",
	Short: "markgen - typed declarations from markup data",
	Long: `markgen generates type declarations and constant data from JSON, YAML,
TOML, RON and MessagePack files.

Jobs are configured in markgen.toml, found by searching upward from the
working directory. Each job reads one source (a file or a directory) and
writes one Rust or Go file.

Available commands:
  generate - Run generation jobs and write their output
  check    - Verify generated files are up to date
  watch    - Regenerate when sources change
  list     - Show configured jobs
  init     - Create a starter markgen.toml
  version  - Show version information

Examples:
  markgen init                 # Create markgen.toml
  markgen generate             # Run every job
  markgen generate colors      # Run one job
  markgen check                # Fail in CI when output is stale`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return commands.InitLogging(cmd)
	},
}

func init() {
	commands.AddGlobalFlags(rootCmd)

	rootCmd.AddCommand(commands.GenerateCmd)
	rootCmd.AddCommand(commands.CheckCmd)
	rootCmd.AddCommand(commands.WatchCmd)
	rootCmd.AddCommand(commands.ListCmd)
	rootCmd.AddCommand(commands.InitCmd)
	rootCmd.AddCommand(commands.VersionCmd)
}

func main() {
	err := rootCmd.Execute()
	logger.Cleanup()
	if err != nil {
		commands.PrintError(err)
		os.Exit(1)
	}
}
