package commands

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// ListCmd shows the configured jobs
var ListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "Show configured jobs",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		data := pterm.TableData{{"Job", "Kind", "Source", "Dest", "Type", "Language"}}
		for _, j := range cfg.Jobs {
			res, err := cfg.Resolve(j)
			if err != nil {
				return err
			}
			data = append(data, []string{j.Name, string(j.Kind), j.Source, j.Dest, j.TypeName, res.Language})
		}
		return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
	},
}
