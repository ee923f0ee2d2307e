// check-balances: lists the ETH and token balance of every account the
// connected node manages, read in parallel, plus the vault and charity.
//
// Run from the module root (uses the same config as the CLI):
//
//	go run ./scripts/check-balances
package main

import (
	"context"
	"fmt"
	"math/big"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/Mohsinsiddi/bonded/internal/config"
	"github.com/Mohsinsiddi/bonded/internal/donation"
	"github.com/Mohsinsiddi/bonded/internal/logx"
	"github.com/Mohsinsiddi/bonded/internal/units"
	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/sync/errgroup"
)

const rpcTimeout = 12 * time.Second

type result struct {
	label  string
	addr   common.Address
	eth    string
	tokens string
	err    string
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "check-balances:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load("")
	if err != nil {
		return err
	}
	log := logx.New(os.Stderr, cfg.LogLevel)

	ctx, cancel := context.WithTimeout(context.Background(), rpcTimeout)
	defer cancel()

	session, err := donation.AcquireSession(ctx, donation.SessionOptions{
		URLs:         cfg.ProviderURLs(),
		Dial:         donation.DialEVM(),
		ProbeTimeout: config.ProviderProbeTimeout,
		Log:          log,
	})
	if err != nil {
		return err
	}
	defer session.Close()

	descs, err := donation.DescriptorsFromConfig(cfg)
	if err != nil {
		return err
	}
	binds, err := donation.ResolveBindings(session, descs)
	if err != nil {
		return err
	}

	targets := []result{
		{label: "vault", addr: binds.Bonding.Address},
	}
	if out, err := binds.Logic.Call(ctx, session.Account, "charityAddress"); err == nil && len(out) == 1 {
		if a, ok := out[0].(common.Address); ok && a != (common.Address{}) {
			targets = append(targets, result{label: "charity", addr: a})
		}
	}
	for i, a := range session.Accounts {
		targets = append(targets, result{label: fmt.Sprintf("account %d", i), addr: a})
	}

	results := make([]result, len(targets))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for i, t := range targets {
		i, t := i, t
		g.Go(func() error {
			results[i] = query(gctx, session, binds, t)
			return nil
		})
	}
	_ = g.Wait()

	fmt.Printf("provider %s · network %s\n\n", session.URL, session.NetworkID)
	printTable(results)
	return nil
}

// query never fails the group; errors land in the row's note.
func query(ctx context.Context, s *donation.Session, b *donation.Bindings, r result) result {
	r.eth, r.tokens = "—", "—"
	bal, err := s.Backend.BalanceAt(ctx, r.addr)
	if err != nil {
		r.err = shortErr(err)
		return r
	}
	r.eth = units.FormatEther(bal)

	out, err := b.Token.Call(ctx, s.Account, "balanceOf", r.addr)
	if err != nil {
		r.err = shortErr(err)
		return r
	}
	if len(out) == 0 {
		r.err = "empty balanceOf result"
		return r
	}
	if v, ok := out[0].(*big.Int); ok {
		r.tokens = units.FormatEther(v)
	}
	return r
}

func printTable(results []result) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)

	fmt.Fprintln(w, "WHO\tADDRESS\tETH\tTOKENS\tNOTE")
	fmt.Fprintln(w, strings.Repeat("-", 10)+"\t"+
		strings.Repeat("-", 14)+"\t"+
		strings.Repeat("-", 20)+"\t"+
		strings.Repeat("-", 20)+"\t"+
		strings.Repeat("-", 12))

	for _, r := range results {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", r.label, shortAddr(r.addr.Hex()), r.eth, r.tokens, r.err)
	}
	w.Flush()
}

func shortAddr(addr string) string {
	if len(addr) < 10 {
		return addr
	}
	return addr[:6] + "…" + addr[len(addr)-4:]
}

func shortErr(err error) string {
	s := err.Error()
	if len(s) > 30 {
		return s[:30] + "…"
	}
	return s
}
