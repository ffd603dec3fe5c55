// Package commands implements the markgen CLI.
package commands

import (
	"os"
	"path/filepath"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/markgen/config"
	"github.com/teranos/markgen/errors"
	"github.com/teranos/markgen/generate"
	"github.com/teranos/markgen/logger"
)

// AddGlobalFlags registers the flags every command accepts.
func AddGlobalFlags(root *cobra.Command) {
	root.PersistentFlags().String("config", "", "Path to markgen.toml (default: search upward from the working directory)")
	root.PersistentFlags().CountP("verbose", "v", "Increase output verbosity (repeat for more detail: -v, -vv, -vvv)")
	root.PersistentFlags().Bool("json", false, "Write logs as JSON lines")
}

// InitLogging configures the global logger from the global flags.
func InitLogging(cmd *cobra.Command) error {
	verbosity, _ := cmd.Flags().GetCount("verbose")
	jsonOutput, _ := cmd.Flags().GetBool("json")
	if err := logger.Initialize(jsonOutput, verbosity); err != nil {
		return errors.Wrap(err, "failed to initialize logger")
	}
	return nil
}

// PrintError prints err and every hint attached to it.
func PrintError(err error) {
	pterm.Error.Println(err.Error())
	for _, hint := range errors.GetAllHints(err) {
		pterm.Info.Println(hint)
	}
	if logger.ShouldOutput(logger.Verbosity, logger.OutputDataDump) {
		pterm.Printf("%+v\n", err)
	}
}

// loadConfig loads and validates the project configuration.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrapf(err, "invalid %s", cfg.Path())
	}
	if logger.ShouldOutput(logger.Verbosity, logger.OutputConfig) {
		pterm.Info.Printf("Using %s (%d jobs)\n", cfg.Path(), len(cfg.Jobs))
	}
	return cfg, nil
}

// displayPath shortens path relative to the working directory when that
// is shorter.
func displayPath(path string) string {
	wd, err := os.Getwd()
	if err != nil {
		return path
	}
	rel, err := filepath.Rel(wd, path)
	if err != nil || len(rel) >= len(path) {
		return path
	}
	return rel
}

// printGenerated reports the outcome of a generate run.
func printGenerated(results []generate.Result) {
	for _, res := range results {
		switch {
		case res.Written:
			pterm.Printf("✓ Generated %s%s\n", displayPath(res.Dest), timing(res.Duration))
		case logger.ShouldOutput(logger.Verbosity, logger.OutputUnchanged):
			pterm.Printf("%s Unchanged %s%s\n", pterm.Gray("·"), displayPath(res.Dest), timing(res.Duration))
		}
	}
}

func timing(d time.Duration) string {
	if !logger.ShouldOutput(logger.Verbosity, logger.OutputTiming) {
		return ""
	}
	return pterm.Gray(" (" + d.Round(time.Millisecond).String() + ")")
}
