package cmd

import (
	"fmt"

	"github.com/Mohsinsiddi/bonded/internal/ui"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show charity, vault, token and account balances",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		snap := a.snapshot()
		fmt.Println(ui.Banner())
		fmt.Println(ui.RenderSnapshot(snap))
		fmt.Println(ui.Meta(fmt.Sprintf("provider %s · network %s", a.session.URL, a.session.NetworkID)))
		fmt.Println(ui.RenderFooter(snap))
		return nil
	},
}
