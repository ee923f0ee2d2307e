package cmd

import (
	"fmt"

	"github.com/Mohsinsiddi/bonded/internal/ui"
	"github.com/spf13/cobra"
)

var donateCmd = &cobra.Command{
	Use:   "donate <amount-eth>",
	Short: "Donate ETH and receive bonded tokens",
	Example: `  bonded donate 1
  bonded donate 0.25 --wallet alice`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		fmt.Println(ui.Info(fmt.Sprintf("Donating %s ETH from %s…", args[0], a.session.Account.Hex())))
		res, err := a.orch.Donate(cmd.Context(), args[0])
		return printOutcome(res, err)
	},
}
