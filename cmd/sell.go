package cmd

import (
	"fmt"

	"github.com/Mohsinsiddi/bonded/internal/ui"
	"github.com/Mohsinsiddi/bonded/internal/units"
	"github.com/spf13/cobra"
)

var sellQuoteOnly bool

var sellCmd = &cobra.Command{
	Use:   "sell <amount-tokens>",
	Short: "Sell tokens back to the bonding curve",
	Long: `Sell tokens back to the bonding curve. The contract is asked what the sale
returns at the current supply and the figure is shown for confirmation before
anything is submitted.`,
	Example: `  bonded sell 10
  bonded sell 10 --quote`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		fmt.Println(ui.Meta(a.snapshot().SellLabel()))

		if sellQuoteOnly {
			q, err := a.orch.QuoteSell(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Println(ui.KeyValueBlock("Sell quote", [][2]string{
				{"Amount", units.FormatEther(q.Amount) + " " + q.Symbol},
				{"Price", units.FormatEther(q.FinalPrice) + " ETH per " + q.Symbol},
				{"You receive", units.FormatEther(q.RedeemableEth) + " ETH"},
				{"Total supply", units.FormatEther(q.Supply) + " " + q.Symbol},
			}))
			return nil
		}

		res, err := a.orch.Sell(cmd.Context(), args[0])
		return printOutcome(res, err)
	},
}

func init() {
	sellCmd.Flags().BoolVar(&sellQuoteOnly, "quote", false, "show the expected return without selling")
}
