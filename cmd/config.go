package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/Mohsinsiddi/bonded/internal/ui"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return err
		}
		fmt.Printf("%s\n\n", ui.StyleTitle.Render("Current Configuration"))
		fmt.Println(string(data))
		fmt.Println(ui.Meta("Config directory: " + cfg.Dir()))
		fmt.Println(ui.Meta(fmt.Sprintf("Providers tried in order: %v", cfg.ProviderURLs())))
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value and save it.

Keys:
  rpc_url, fallback_rpc_url, wallet, artifacts_dir, log_level, watch_interval
  contracts.logic, contracts.token, contracts.bonding
  gas.set_charity, gas.donate, gas.sell, gas.sweep, gas.price_gwei`,
	Example: `  bonded config set rpc_url https://rpc.sepolia.org
  bonded config set contracts.logic 0xAbC...
  bonded config set gas.price_gwei 10`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Set(args[0], args[1]); err != nil {
			return err
		}
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Println(ui.Success(fmt.Sprintf("%s set to %q", args[0], args[1])))
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd, configSetCmd)
}
