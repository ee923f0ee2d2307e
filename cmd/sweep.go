package cmd

import (
	"errors"
	"fmt"

	"github.com/Mohsinsiddi/bonded/internal/donation"
	"github.com/Mohsinsiddi/bonded/internal/units"
	"github.com/spf13/cobra"
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Transfer the vault's remaining ETH to the owner (owner only, zero supply)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		res, err := a.orch.SweepVault(cmd.Context())
		if errors.Is(err, donation.ErrSweepDisabled) {
			snap := a.snapshot()
			return fmt.Errorf("%w (%s %s still outstanding)", err, units.FormatEther(snap.TokenSupply), snap.TokenSymbol)
		}
		return printOutcome(res, err)
	},
}
