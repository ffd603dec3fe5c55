package commands

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/markgen/config"
)

var initForce bool

// InitCmd writes a starter configuration
var InitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a starter markgen.toml",
	Long: `Write a markgen.toml with the default settings and one example job to
the working directory, or to the path given by --config.

An existing file is only replaced with --force; the old file is kept as
markgen.toml.back.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("config")
		if path == "" {
			path = config.FileName
		}
		if err := config.Write(path, config.Starter(), initForce); err != nil {
			return err
		}
		pterm.Printf("✓ Created %s\n", path)
		pterm.Info.Println("Edit the example job, then run: markgen generate")
		return nil
	},
}

func init() {
	InitCmd.Flags().BoolVarP(&initForce, "force", "f", false, "Overwrite an existing config")
}
