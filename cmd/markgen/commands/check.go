package commands

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/markgen/errors"
	"github.com/teranos/markgen/files"
	"github.com/teranos/markgen/generate"
	"github.com/teranos/markgen/logger"
)

// ErrOutOfDate is returned by check when a generated file differs from
// what generate would write.
var ErrOutOfDate = errors.New("generated files are out of date")

// CheckCmd verifies generated files are up to date
var CheckCmd = &cobra.Command{
	Use:   "check [jobs...]",
	Short: "Verify generated files are up to date",
	Long: `Regenerate every configured job, or only the named ones, in memory and
compare the result with the files on disk. Nothing is written.

Exits with status 1 and lists the stale files when any destination is
missing or differs. Useful as a CI step.`,
	RunE: runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
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
	results, err := runner.Check(cmd.Context(), jobs)
	if err != nil {
		return err
	}

	stale := 0
	for _, res := range results {
		switch res.Status {
		case files.UpToDate:
			if logger.ShouldOutput(logger.Verbosity, logger.OutputProgress) {
				pterm.Printf("%s %s\n", pterm.Green("✓"), displayPath(res.Dest))
			}
		case files.Missing:
			stale++
			pterm.Printf("%s %s is missing\n", pterm.Red("✗"), displayPath(res.Dest))
		case files.OutOfDate:
			stale++
			pterm.Printf("%s %s is out of date (first difference at line %d)\n",
				pterm.Red("✗"), displayPath(res.Dest), res.Line)
		}
	}

	if stale > 0 {
		err := errors.WithMessagef(ErrOutOfDate, "%d of %d", stale, len(results))
		return errors.WithHint(err, "run `markgen generate` and commit the result")
	}
	if logger.ShouldOutput(logger.Verbosity, logger.OutputUserStatus) {
		pterm.Success.Printf("%d generated files are up to date\n", len(results))
	}
	return nil
}
