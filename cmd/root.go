package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Mohsinsiddi/bonded/internal/config"
	"github.com/Mohsinsiddi/bonded/internal/logx"
	"github.com/Mohsinsiddi/bonded/internal/ui"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// Version is the current release. Overridable via build ldflags:
//
//	go build -ldflags "-X github.com/Mohsinsiddi/bonded/cmd.Version=1.2.3" .
var Version = "0.1.0"

var (
	cfgDir     string
	cfg        *config.Config
	log        zerolog.Logger
	verbose    bool
	assumeYes  bool
	walletFlag string
)

// rootCmd is the top-level command.
var rootCmd = &cobra.Command{
	Use:   "bonded",
	Short: "Client for the bonded donations contracts",
	Long: `bonded reads the state of the donation, token and bonding-curve vault
contracts and submits donations, token sales, charity changes and vault
sweeps with a fixed gas policy.

The provider is taken from rpc_url, falling back to a local node at
fallback_rpc_url. Without a configured signing wallet the node's own
unlocked account signs.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}
		var err error
		cfg, err = config.Load(cfgDir)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if walletFlag != "" {
			cfg.Wallet = walletFlag
		}
		level := cfg.LogLevel
		if verbose {
			level = "debug"
		}
		log = logx.New(os.Stderr, level)
		return nil
	},
}

// Execute runs the root command.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, ui.Err(err.Error()))
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgDir, "config", "", "config directory (default: $BONDED_CONFIG_DIR or ~/.bonded)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().BoolVarP(&assumeYes, "yes", "y", false, "answer yes to confirmation prompts")
	rootCmd.PersistentFlags().StringVar(&walletFlag, "wallet", "", "signing wallet to use for this invocation")

	rootCmd.AddCommand(
		statusCmd,
		donateCmd,
		sellCmd,
		charityCmd,
		sweepCmd,
		watchCmd,
		contractsCmd,
		providersCmd,
		walletCmd,
		configCmd,
		convertCmd,
	)
}
