package config

import "time"

// Gas ceilings sent with every action. These are fixed budgets, not
// estimates; the node is never asked to simulate the transaction.
const (
	GasLimitSetCharity = uint64(100_000) // setCharityAddress(address)
	GasLimitDonate     = uint64(200_000) // donate() payable
	GasLimitSell       = uint64(300_000) // sell(uint256)
	GasLimitSweep      = uint64(100_000) // sweepVault()
)

// GasPriceGwei is the flat gas price applied to all actions.
const GasPriceGwei = 5

// Artifact file names resolved under the artifacts directory.
const (
	ArtifactLogic   = "DonationLogic.json"
	ArtifactToken   = "Token.json"
	ArtifactBonding = "BondingCurveVault.json"
)

// Timeouts and intervals.
const (
	ProviderProbeTimeout = 5 * time.Second // per-candidate net_version probe
	ReceiptPollInterval  = 2 * time.Second // eth_getTransactionReceipt polling
)
