package cmd

import (
	"encoding/hex"
	"fmt"

	"github.com/Mohsinsiddi/bonded/internal/contract"
	"github.com/Mohsinsiddi/bonded/internal/ui"
	"github.com/spf13/cobra"
)

var contractsMethods bool

var contractsCmd = &cobra.Command{
	Use:   "contracts",
	Short: "Show where the three contracts resolve on the connected network",
	Long: `Connect, resolve the DonationLogic, Token and BondingCurveVault bindings
for the provider's network id and print their addresses. No contract calls
are made.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		sp := ui.NewSpinner("Resolving contracts…")
		sp.Start()
		a, err := connect(cmd.Context())
		sp.Stop()
		if err != nil {
			return err
		}
		defer a.close()

		fmt.Println(ui.KeyValueBlock("Session", [][2]string{
			{"Provider", ui.Val(a.session.URL)},
			{"Network", ui.Val(a.session.NetworkID)},
			{"Account", ui.Addr(a.session.Account.Hex())},
		}))
		fmt.Println()

		t := ui.NewTable([]ui.Column{
			{Title: "Contract", Width: 20},
			{Title: "Address", Width: 44},
		})
		binds := []*contract.Binding{a.binds.Logic, a.binds.Token, a.binds.Bonding}
		for _, b := range binds {
			t.AddRow(ui.Row{b.Name, ui.Addr(b.Address.Hex())})
		}
		fmt.Println(t.Render())

		if !contractsMethods {
			return nil
		}
		for _, b := range binds {
			fmt.Println()
			fmt.Println(ui.StyleTitle.Render(b.Name))
			mt := ui.NewTable([]ui.Column{
				{Title: "Selector", Width: 12},
				{Title: "Signature", Width: 40},
				{Title: "Kind", Width: 8},
			})
			for _, m := range b.Methods() {
				mt.AddRow(ui.Row{"0x" + hex.EncodeToString(m.Selector[:]), m.Signature, methodKind(m)})
			}
			fmt.Println(mt.Render())
		}
		return nil
	},
}

func methodKind(m contract.MethodInfo) string {
	switch {
	case m.View:
		return ui.Meta("view")
	case m.Payable:
		return ui.StyleWarning.Render("payable")
	}
	return "write"
}

func init() {
	contractsCmd.Flags().BoolVar(&contractsMethods, "methods", false, "also list each contract's method selectors")
}
