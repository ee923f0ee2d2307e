package donation

import (
	"math/big"

	"github.com/Mohsinsiddi/bonded/internal/config"
	"github.com/Mohsinsiddi/bonded/internal/units"
)

// GasPolicy is the fixed gas ceiling per action and the flat gas price.
// Nothing is estimated.
type GasPolicy struct {
	SetCharity uint64
	Donate     uint64
	Sell       uint64
	Sweep      uint64
	Price      *big.Int
}

func DefaultGasPolicy() GasPolicy {
	return GasPolicy{
		SetCharity: config.GasLimitSetCharity,
		Donate:     config.GasLimitDonate,
		Sell:       config.GasLimitSell,
		Sweep:      config.GasLimitSweep,
		Price:      units.Gwei(config.GasPriceGwei),
	}
}

// GasPolicyFromConfig applies non-zero overrides from cfg.
func GasPolicyFromConfig(cfg config.GasConfig) GasPolicy {
	p := DefaultGasPolicy()
	if cfg.SetCharity > 0 {
		p.SetCharity = cfg.SetCharity
	}
	if cfg.Donate > 0 {
		p.Donate = cfg.Donate
	}
	if cfg.Sell > 0 {
		p.Sell = cfg.Sell
	}
	if cfg.Sweep > 0 {
		p.Sweep = cfg.Sweep
	}
	if cfg.PriceGwei > 0 {
		p.Price = units.Gwei(cfg.PriceGwei)
	}
	return p
}

// Limit returns the gas ceiling for a.
func (p GasPolicy) Limit(a Action) uint64 {
	switch a {
	case ActionSetCharity:
		return p.SetCharity
	case ActionDonate:
		return p.Donate
	case ActionSell:
		return p.Sell
	case ActionSweep:
		return p.Sweep
	}
	return 0
}
