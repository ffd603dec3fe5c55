package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/markgen/config"
	"github.com/teranos/markgen/generate"
)

// WatchCmd regenerates jobs when their sources change
var WatchCmd = &cobra.Command{
	Use:   "watch [jobs...]",
	Short: "Regenerate when sources change",
	Long: `Run every configured job, or only the named ones, then watch their
sources and regenerate the affected jobs whenever a source changes.

Failures are reported and watching continues. Changes to markgen.toml
itself are not picked up; restart watch after editing it. Stop with Ctrl-C.`,
	RunE: runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
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

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	regenerate := func(ctx context.Context, names []string) {
		selected, err := cfg.Select(names)
		if err != nil {
			PrintError(err)
			return
		}
		results, err := runner.Generate(ctx, selected)
		printGenerated(results)
		if err != nil && ctx.Err() == nil {
			PrintError(err)
		}
	}
	regenerate(ctx, jobNames(jobs))

	watcher, err := config.NewSourceWatcher(cfg, jobs, regenerate)
	if err != nil {
		return err
	}
	defer watcher.Close()

	pterm.Info.Printf("Watching %d jobs for changes\n", len(jobs))
	return watcher.Run(ctx)
}

func jobNames(jobs []config.Job) []string {
	names := make([]string, len(jobs))
	for i, j := range jobs {
		names[i] = j.Name
	}
	return names
}
