package commands

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/markgen/generate"
	"github.com/teranos/markgen/logger"
)

var generateParallelism int

// GenerateCmd runs generation jobs
var GenerateCmd = &cobra.Command{
	Use:     "generate [jobs...]",
	Aliases: []string{"gen"},
	Short:   "Run generation jobs and write their output",
	Long: `Run every configured job, or only the named ones, and write the
generated files.

Jobs run in parallel. The first failing job stops the run. Files whose
content did not change are left untouched unless write_only_if_changed
is disabled.

Examples:
  markgen generate              # Run every job
  markgen generate colors items # Run two jobs
  markgen generate -v           # Also list unchanged files`,
	RunE: runGenerate,
}

func init() {
	GenerateCmd.Flags().IntVarP(&generateParallelism, "parallel", "p", 0, "Maximum jobs run at once (default: number of CPUs)")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	jobs, err := cfg.Select(args)
	if err != nil {
		return err
	}

	runner, err := generate.NewRunner(cfg)
	if err != nil {
		return err
	}
	if generateParallelism > 0 {
		runner.SetParallelism(generateParallelism)
	}

	results, err := runner.Generate(cmd.Context(), jobs)
	printGenerated(results)
	if err != nil {
		return err
	}

	if logger.ShouldOutput(logger.Verbosity, logger.OutputProgress) {
		written := 0
		for _, res := range results {
			if res.Written {
				written++
			}
		}
		pterm.Success.Printf("%d jobs, %d files written\n", len(results), written)
	}
	return nil
}
