package rpc

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"
)

// ErrNoHealthyRPC is returned when no healthy RPC endpoint is available.
var ErrNoHealthyRPC = errors.New("no healthy RPC endpoint available")

// Nodes more than this many blocks behind the best node on the same network
// are flagged stale.
const staleBlockThreshold = 3

// Endpoint represents a single RPC endpoint with its measured attributes.
type Endpoint struct {
	URL         string
	Latency     time.Duration
	NetworkID   string
	BlockNumber uint64
	Accounts    int
	Healthy     bool
	Stale       bool
	Checked     bool // true when the endpoint has been health-checked
	Err         error
}

// CheckAll health-checks every url in parallel. Results keep the order of
// urls.
func CheckAll(ctx context.Context, dial DialFunc, urls []string, timeout time.Duration) []Endpoint {
	eps := make([]Endpoint, len(urls))
	var g errgroup.Group
	for i, u := range urls {
		i, u := i, u
		g.Go(func() error {
			eps[i] = HealthCheck(ctx, dial, u, timeout)
			return nil
		})
	}
	_ = g.Wait()
	markStale(eps)
	return eps
}

// markStale flags healthy endpoints that lag the best block of their network.
func markStale(eps []Endpoint) {
	best := map[string]uint64{}
	for _, e := range eps {
		if e.Healthy && e.BlockNumber > best[e.NetworkID] {
			best[e.NetworkID] = e.BlockNumber
		}
	}
	for i := range eps {
		e := &eps[i]
		if e.Healthy && best[e.NetworkID]-e.BlockNumber > staleBlockThreshold {
			e.Stale = true
		}
	}
}

// Failover returns the first healthy endpoint in order. This is the
// provider a session connects to.
func Failover(eps []Endpoint) (*Endpoint, error) {
	for i := range eps {
		if eps[i].Healthy {
			return &eps[i], nil
		}
	}
	return nil, ErrNoHealthyRPC
}

// Fastest returns the healthy, non-stale endpoint with the lowest latency.
func Fastest(eps []Endpoint) (*Endpoint, error) {
	var winner *Endpoint
	for i := range eps {
		e := &eps[i]
		if !e.Healthy || e.Stale {
			continue
		}
		if winner == nil || e.Latency < winner.Latency {
			winner = e
		}
	}
	if winner == nil {
		return nil, ErrNoHealthyRPC
	}
	return winner, nil
}
