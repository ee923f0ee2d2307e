package cmd

import (
	"errors"
	"fmt"

	"github.com/Mohsinsiddi/bonded/internal/donation"
	"github.com/Mohsinsiddi/bonded/internal/ens"
	"github.com/Mohsinsiddi/bonded/internal/ui"
	"github.com/Mohsinsiddi/bonded/internal/units"
	"github.com/spf13/cobra"
)

var charityCmd = &cobra.Command{
	Use:   "charity",
	Short: "Show or change the charity address",
}

var charityShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the charity address and balance",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		snap := a.snapshot()
		addr := snap.CharityAddress.Hex()
		if !snap.HasCharity() {
			addr += " (not set)"
		}
		pairs := [][2]string{
			{"Charity address", addr},
			{"Charity balance", units.FormatEther(snap.CharityBalance) + " ETH"},
		}
		if snap.HasCharity() {
			// Most dev chains have no ENS registry; skip the row quietly.
			if name, err := ens.NewResolver(a.session.Backend).ReverseLookup(cmd.Context(), snap.CharityAddress); err == nil {
				pairs = append(pairs, [2]string{"ENS name", name})
			} else {
				log.Debug().Err(err).Msg("reverse ENS lookup")
			}
		}
		fmt.Println(ui.KeyValueBlock("Charity Info", pairs))
		return nil
	},
}

var charitySetCmd = &cobra.Command{
	Use:   "set <address|ens-name>",
	Short: "Change the charity address (owner only)",
	Example: `  bonded charity set 0x22d491Bde2303f2f43325b2108D26f1eAbA1e32b
  bonded charity set givedirectly.eth`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		target := args[0]
		if ens.IsName(target) {
			addr, err := ens.NewResolver(a.session.Backend).Resolve(cmd.Context(), target)
			if err != nil {
				return err
			}
			fmt.Println(ui.Info(fmt.Sprintf("%s resolves to %s", target, addr.Hex())))
			target = addr.Hex()
		}

		res, err := a.orch.SetCharityAddress(cmd.Context(), target)
		if errors.Is(err, donation.ErrNotOwner) {
			return fmt.Errorf("%w: %s is not the owner of the donation contract", err, a.session.Account.Hex())
		}
		return printOutcome(res, err)
	},
}

func init() {
	charityCmd.AddCommand(charityShowCmd, charitySetCmd)
}
