package cmd

import (
	"fmt"

	"github.com/Mohsinsiddi/bonded/internal/ui"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Live dashboard that refreshes on an interval",
	Long: `Show the dashboard and keep it current. Balances, supply and symbol are
re-read every watch_interval seconds; owner and charity address are carried
over between refreshes.

Keyboard controls:
  r   full reload, including owner and charity address
  q   quit`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		m := ui.NewWatchModel(cmd.Context(), a.orch, watchInterval(), a.snapshot())
		if _, err := ui.NewWatchProgram(m).Run(); err != nil {
			return fmt.Errorf("dashboard: %w", err)
		}
		return nil
	},
}
