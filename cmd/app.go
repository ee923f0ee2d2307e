package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/Mohsinsiddi/bonded/internal/chain"
	"github.com/Mohsinsiddi/bonded/internal/config"
	"github.com/Mohsinsiddi/bonded/internal/contract"
	"github.com/Mohsinsiddi/bonded/internal/donation"
	"github.com/Mohsinsiddi/bonded/internal/ui"
	"github.com/Mohsinsiddi/bonded/internal/wallet"
	"github.com/ethereum/go-ethereum/core/types"
)

// app is everything a chain-facing command needs: a session, bound
// contracts and an orchestrator with a loaded snapshot.
type app struct {
	session *donation.Session
	binds   *donation.Bindings
	orch    *donation.Orchestrator
}

func (a *app) close() { a.session.Close() }

// snapshot returns the current published snapshot.
func (a *app) snapshot() *donation.DomainSnapshot { return a.orch.Store().Current() }

// openApp connects, binds the contracts and loads the first snapshot.
func openApp(ctx context.Context) (*app, error) {
	sp := ui.NewSpinner("Loading provider, accounts and contracts…")
	sp.Start()
	a, err := connect(ctx)
	sp.Stop()
	if err != nil {
		return nil, err
	}

	if _, err := a.orch.Load(ctx, ""); err != nil {
		a.close()
		return nil, err
	}
	return a, nil
}

func connect(ctx context.Context) (*app, error) {
	signer, err := configuredSigner()
	if err != nil {
		return nil, err
	}

	session, err := donation.AcquireSession(ctx, donation.SessionOptions{
		URLs:         cfg.ProviderURLs(),
		Signer:       signer,
		Dial:         donation.DialEVM(chain.WithPollInterval(config.ReceiptPollInterval)),
		ProbeTimeout: config.ProviderProbeTimeout,
		Log:          log,
	})
	if err != nil {
		return nil, err
	}

	descs, err := donation.DescriptorsFromConfig(cfg)
	if err != nil {
		session.Close()
		return nil, err
	}
	binds, err := donation.ResolveBindings(session, descs)
	if err != nil {
		session.Close()
		return nil, err
	}
	log.Debug().Str("bindings", binds.String()).Msg("contracts bound")

	orch := donation.NewOrchestrator(session, binds, donation.NewStore(),
		donation.WithGasPolicy(donation.GasPolicyFromConfig(cfg.Gas)),
		donation.WithConfirmer(ui.NewPrompter(assumeYes)),
		donation.WithLogger(log),
	)
	return &app{session: session, binds: binds, orch: orch}, nil
}

// configuredSigner returns the signer for cfg.Wallet, or nil when the node
// should sign.
func configuredSigner() (contract.TxSigner, error) {
	if cfg.Wallet == "" {
		return nil, nil
	}
	mgr, err := newWalletManager()
	if err != nil {
		return nil, err
	}
	s, err := mgr.Signer(cfg.Wallet)
	if err != nil {
		return nil, fmt.Errorf("wallet %q: %w", cfg.Wallet, err)
	}
	return s, nil
}

func newWalletManager() (*wallet.Manager, error) {
	keys, err := wallet.OpenKeyring(filepath.Join(cfg.Dir(), "keys"))
	if err != nil {
		return nil, err
	}
	return wallet.NewManager(
		wallet.WithStore(wallet.NewJSONStore(cfg.WalletsPath())),
		wallet.WithKeyStore(keys),
	), nil
}

// printOutcome prints the result of an action and the refreshed dashboard.
func printOutcome(res *donation.Result, err error) error {
	if res != nil && (res.Declined || (res.Receipt != nil && res.Receipt.Status == types.ReceiptStatusSuccessful)) {
		fmt.Println(ui.RenderResult(res))
	}
	if err != nil {
		return err
	}
	if res.Snapshot != nil {
		fmt.Println()
		fmt.Println(ui.RenderSnapshot(res.Snapshot))
		fmt.Println(ui.RenderFooter(res.Snapshot))
	}
	return nil
}

func watchInterval() time.Duration {
	if cfg.WatchInterval <= 0 {
		return 10 * time.Second
	}
	return time.Duration(cfg.WatchInterval) * time.Second
}
