package config

// Config holds all bonded configuration.
type Config struct {
	RPCURL         string            `json:"rpc_url"`
	FallbackRPCURL string            `json:"fallback_rpc_url"`
	Wallet         string            `json:"wallet"`        // signing wallet name; empty = node-managed accounts
	ArtifactsDir   string            `json:"artifacts_dir"` // truffle build output
	Contracts      ContractAddresses `json:"contracts"`
	Gas            GasConfig         `json:"gas"`
	LogLevel       string            `json:"log_level"`
	WatchInterval  int               `json:"watch_interval"` // seconds

	// internal: config dir path used for Save()
	configDir string
}

// ContractAddresses optionally pins a deployed address per contract,
// bypassing the artifact's per-network deployment record.
type ContractAddresses struct {
	Logic   string `json:"logic,omitempty"`
	Token   string `json:"token,omitempty"`
	Bonding string `json:"bonding,omitempty"`
}

// GasConfig overrides the fixed per-action gas policy. Zero values fall
// back to the compiled-in defaults.
type GasConfig struct {
	SetCharity uint64 `json:"set_charity,omitempty"`
	Donate     uint64 `json:"donate,omitempty"`
	Sell       uint64 `json:"sell,omitempty"`
	Sweep      uint64 `json:"sweep,omitempty"`
	PriceGwei  uint64 `json:"price_gwei,omitempty"`
}
