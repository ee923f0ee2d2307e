package rpc

import (
	"context"
	"time"

	"github.com/Mohsinsiddi/bonded/internal/chain"
	"github.com/ethereum/go-ethereum/common"
)

// Prober is the part of the chain client a health check uses.
type Prober interface {
	NetworkID(ctx context.Context) (string, error)
	BlockNumber(ctx context.Context) (uint64, error)
	Accounts(ctx context.Context) ([]common.Address, error)
	Close()
}

// DialFunc opens a Prober for url.
type DialFunc func(ctx context.Context, url string) (Prober, error)

// DialEVM dials with the JSON-RPC client.
func DialEVM(opts ...chain.Option) DialFunc {
	return func(ctx context.Context, url string) (Prober, error) {
		c, err := chain.Dial(ctx, url, opts...)
		if err != nil {
			return nil, err
		}
		return c, nil
	}
}

// HealthCheck probes a single provider. It is healthy when net_version and
// eth_blockNumber both answer within timeout. The account count is
// informational; public endpoints commonly reject eth_accounts.
func HealthCheck(ctx context.Context, dial DialFunc, url string, timeout time.Duration) Endpoint {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ep := Endpoint{URL: url, Checked: true}
	start := time.Now()

	c, err := dial(ctx, url)
	if err != nil {
		ep.Err = err
		return ep
	}
	defer c.Close()

	if ep.NetworkID, ep.Err = c.NetworkID(ctx); ep.Err != nil {
		return ep
	}
	if ep.BlockNumber, ep.Err = c.BlockNumber(ctx); ep.Err != nil {
		return ep
	}
	ep.Latency = time.Since(start)
	ep.Healthy = true

	if accts, err := c.Accounts(ctx); err == nil {
		ep.Accounts = len(accts)
	}
	return ep
}
