package integration_test

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/Mohsinsiddi/bonded/internal/chain"
	"github.com/Mohsinsiddi/bonded/internal/config"
	"github.com/Mohsinsiddi/bonded/internal/donation"
	"github.com/Mohsinsiddi/bonded/test/fixtures"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ether(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), big.NewInt(1e18))
}

// setup wires the full stack against a dev chain, the same way the CLI does:
// config, provider fallback, artifact bindings and the orchestrator.
func setup(t *testing.T) (*fixtures.DevChain, *donation.Orchestrator) {
	t.Helper()
	dev := fixtures.NewDevChain(t)

	cfg, err := config.Load(t.TempDir())
	require.NoError(t, err)
	cfg.RPCURL = "http://127.0.0.1:1" // nothing listens here
	cfg.FallbackRPCURL = dev.URL
	cfg.ArtifactsDir = fixtures.WriteArtifacts(t, fixtures.NetworkID)

	ctx := context.Background()
	session, err := donation.AcquireSession(ctx, donation.SessionOptions{
		URLs:         cfg.ProviderURLs(),
		Dial:         donation.DialEVM(chain.WithPollInterval(5 * time.Millisecond)),
		ProbeTimeout: 2 * time.Second,
		Log:          zerolog.Nop(),
	})
	require.NoError(t, err)
	t.Cleanup(session.Close)
	require.Equal(t, dev.URL, session.URL)
	require.Equal(t, fixtures.Owner, session.Account)

	descs, err := donation.DescriptorsFromConfig(cfg)
	require.NoError(t, err)
	binds, err := donation.ResolveBindings(session, descs)
	require.NoError(t, err)
	require.Equal(t, fixtures.LogicAddress, binds.Logic.Address)

	orch := donation.NewOrchestrator(session, binds, donation.NewStore(),
		donation.WithGasPolicy(donation.GasPolicyFromConfig(cfg.Gas)),
		donation.WithConfirmer(donation.AlwaysConfirm),
		donation.WithLogger(zerolog.Nop()),
	)
	return dev, orch
}

func TestStartupSnapshot(t *testing.T) {
	_, orch := setup(t)

	snap, err := orch.Load(context.Background(), "")
	require.NoError(t, err)

	assert.Equal(t, uint64(1), snap.Version)
	assert.Equal(t, fixtures.Owner, snap.Account)
	assert.True(t, snap.IsOwner)
	assert.Equal(t, fixtures.DefaultCharity, snap.CharityAddress)
	assert.Equal(t, "BOND", snap.TokenSymbol)
	assert.Equal(t, ether(5), snap.TokenBalance)
	assert.Equal(t, ether(5), snap.TokenSupply)
	assert.Equal(t, ether(5), snap.BondingVaultBalance)
	assert.Equal(t, ether(2), snap.CharityBalance)
	assert.Equal(t, ether(100), snap.AccountEthBalance)
	assert.Equal(t, "100.00", snap.PortionOfSupply())
	assert.False(t, snap.SweepEnabled())
}

func TestDonateMintsAndRefreshes(t *testing.T) {
	dev, orch := setup(t)
	ctx := context.Background()
	_, err := orch.Load(ctx, "")
	require.NoError(t, err)

	res, err := orch.Donate(ctx, "1.5")
	require.NoError(t, err)
	require.NotNil(t, res.Receipt)
	assert.Equal(t, types.ReceiptStatusSuccessful, res.Receipt.Status)

	want := new(big.Int).Add(ether(5), big.NewInt(15e17))
	assert.Equal(t, want, res.Snapshot.TokenBalance)
	assert.Equal(t, want, res.Snapshot.TokenSupply)
	assert.Equal(t, want, res.Snapshot.BondingVaultBalance)
	assert.Equal(t, dev.Balance(fixtures.Owner), res.Snapshot.AccountEthBalance)
	assert.Equal(t, []string{"donate"}, dev.Sent())
	assert.Equal(t, res.Snapshot, orch.Store().Current())
}

func TestSellQuotesThenSells(t *testing.T) {
	dev, orch := setup(t)
	ctx := context.Background()
	_, err := orch.Load(ctx, "")
	require.NoError(t, err)

	q, err := orch.QuoteSell(ctx, "2")
	require.NoError(t, err)
	assert.Equal(t, "You will receive 0.2 ETH (0.1 ETH per BOND) in return for 2 BOND. Are you sure?", q.Prompt())

	res, err := orch.Sell(ctx, "2")
	require.NoError(t, err)
	assert.False(t, res.Declined)
	assert.Equal(t, q.Prompt(), res.Prompt)
	assert.Equal(t, ether(3), dev.TokenBalance(fixtures.Owner))
	assert.Equal(t, ether(3), res.Snapshot.TokenSupply)
	assert.Equal(t, new(big.Int).Sub(ether(5), big.NewInt(2e17)), res.Snapshot.BondingVaultBalance)
}

func TestSellBeyondBalanceReverts(t *testing.T) {
	_, orch := setup(t)
	ctx := context.Background()
	_, err := orch.Load(ctx, "")
	require.NoError(t, err)

	q, err := orch.QuoteSell(ctx, "7")
	require.NoError(t, err)
	assert.Contains(t, q.Prompt(), "Warning: your balance is only 5 BOND.")

	res, err := orch.Sell(ctx, "7")
	var subErr *donation.SubmissionError
	require.ErrorAs(t, err, &subErr)
	assert.ErrorIs(t, err, chain.ErrTxReverted)
	assert.Nil(t, res.Snapshot)
	assert.Equal(t, uint64(1), orch.Store().Current().Version)
}

func TestSetCharityAndSweep(t *testing.T) {
	dev, orch := setup(t)
	ctx := context.Background()
	_, err := orch.Load(ctx, "")
	require.NoError(t, err)

	newCharity := common.HexToAddress("0x00000000000000000000000000000000000000c4")
	res, err := orch.SetCharityAddress(ctx, newCharity.Hex())
	require.NoError(t, err)
	assert.Equal(t, newCharity, dev.Charity())
	assert.Equal(t, newCharity, res.Snapshot.CharityAddress)
	assert.Equal(t, 0, res.Snapshot.CharityBalance.Sign())
	assert.True(t, res.Snapshot.IsOwner)

	_, err = orch.SweepVault(ctx)
	assert.ErrorIs(t, err, donation.ErrSweepDisabled)

	_, err = orch.Sell(ctx, "5")
	require.NoError(t, err)
	require.True(t, orch.Store().Current().SweepEnabled())

	before := dev.Balance(fixtures.Owner)
	res, err = orch.SweepVault(ctx)
	require.NoError(t, err)
	assert.Contains(t, res.Prompt, "remaining 4.5 ETH")
	assert.Equal(t, 0, res.Snapshot.BondingVaultBalance.Sign())
	swept := new(big.Int).Sub(ether(5), big.NewInt(5e17))
	assert.Equal(t, new(big.Int).Add(before, swept), dev.Balance(fixtures.Owner))
	assert.Equal(t, []string{"setCharityAddress", "sell", "sweepVault"}, dev.Sent())
}
