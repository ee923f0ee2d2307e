package cmd

import (
	"fmt"
	"strconv"
	"time"

	"github.com/Mohsinsiddi/bonded/internal/config"
	"github.com/Mohsinsiddi/bonded/internal/rpc"
	"github.com/Mohsinsiddi/bonded/internal/ui"
	"github.com/spf13/cobra"
)

var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "Health-check the configured providers",
	Long: `Probe rpc_url and fallback_rpc_url in parallel and show which one a
session would connect to. Sessions always take the first healthy provider
in order; latency is shown for information only.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		urls := cfg.ProviderURLs()
		if len(urls) == 0 {
			return fmt.Errorf("no providers configured\n  Set one with: bonded config set rpc_url <url>")
		}

		sp := ui.NewSpinner(fmt.Sprintf("Probing %d provider(s)…", len(urls)))
		sp.Start()
		eps := rpc.CheckAll(cmd.Context(), rpc.DialEVM(), urls, config.ProviderProbeTimeout)
		sp.Stop()

		selected, selErr := rpc.Failover(eps)
		fastest, _ := rpc.Fastest(eps)

		t := ui.NewTable([]ui.Column{
			{Title: "Provider", Width: 36},
			{Title: "Status", Width: 12},
			{Title: "Latency", Width: 10, Right: true},
			{Title: "Network", Width: 10},
			{Title: "Block", Width: 12, Right: true},
			{Title: "Accounts", Width: 9, Right: true},
			{Title: "", Width: 10},
		})
		for i := range eps {
			e := &eps[i]
			status := ui.StyleSuccess.Render("healthy")
			switch {
			case !e.Healthy:
				status = ui.StyleError.Render("down")
			case e.Stale:
				status = ui.StyleWarning.Render("stale")
			}
			latency, block := "—", "—"
			if e.Healthy {
				latency = e.Latency.Round(time.Millisecond).String()
				block = strconv.FormatUint(e.BlockNumber, 10)
			}
			mark := ""
			if selected == e {
				mark = ui.StyleAccent.Render("← session")
			} else if fastest == e {
				mark = ui.Meta("fastest")
			}
			t.AddRow(ui.Row{e.URL, status, latency, e.NetworkID, block, strconv.Itoa(e.Accounts), mark})
		}
		fmt.Println(t.Render())

		for _, e := range eps {
			if e.Err != nil {
				fmt.Println(ui.Meta(fmt.Sprintf("%s: %v", e.URL, e.Err)))
			}
		}
		if selErr != nil {
			return selErr
		}
		if selected.Accounts == 0 && cfg.Wallet == "" {
			fmt.Println(ui.Warn("The selected provider manages no accounts; configure a signing wallet."))
			fmt.Println(ui.Hint("bonded wallet add <name> --key <private-key> && bonded wallet default <name>"))
		}
		return nil
	},
}
