package donation

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/Mohsinsiddi/bonded/internal/units"
	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/sync/errgroup"
)

// CauseStartup marks the snapshot built when the session starts.
const CauseStartup = "startup"

// DomainSnapshot is one consistent read of everything the dashboard shows.
// All quantities are base units. Snapshots are replaced whole and must not
// be modified after they are published.
type DomainSnapshot struct {
	Version uint64    // assigned by Store.Publish
	ReadAt  time.Time // when the read cycle finished
	Cause   string    // startup, or "<action> <tx hash>"

	Account        common.Address
	CharityAddress common.Address
	IsOwner        bool

	TokenSymbol  string
	TokenBalance *big.Int
	TokenSupply  *big.Int

	BondingVaultBalance *big.Int
	CharityBalance      *big.Int
	AccountEthBalance   *big.Int
}

// PortionOfSupply is the account's share of the token supply in percent
// with 2 decimals, "0" when nothing is issued.
func (s *DomainSnapshot) PortionOfSupply() string {
	return units.Percent(s.TokenBalance, s.TokenSupply)
}

// SweepEnabled reports whether the vault may be swept: only once every token
// has been sold back.
func (s *DomainSnapshot) SweepEnabled() bool {
	return s.TokenSupply != nil && s.TokenSupply.Sign() == 0
}

// CanAdminister reports whether owner-only controls are shown.
func (s *DomainSnapshot) CanAdminister() bool { return s.IsOwner }

// SellLabel is the prompt shown above the sell amount input.
func (s *DomainSnapshot) SellLabel() string {
	return fmt.Sprintf("Amount of %s to sell. Max %s", s.TokenSymbol, units.FormatEther(s.TokenBalance))
}

// HasCharity reports whether a charity address has been set.
func (s *DomainSnapshot) HasCharity() bool {
	return s.CharityAddress != (common.Address{})
}

// Read field names used in ReadError.
const (
	FieldCharityAddress = "charityAddress"
	FieldCharityBalance = "charityBalance"
	FieldOwner          = "owner"
	FieldSymbol         = "symbol"
	FieldTokenBalance   = "tokenBalance"
	FieldTokenSupply    = "totalSupply"
	FieldVaultBalance   = "bondingVaultBalance"
	FieldAccountBalance = "accountEthBalance"
	FieldCalculate      = "calculateReturn"
)

// BuildSnapshot issues every read concurrently and returns once all have
// completed. Any failure fails the whole snapshot.
func BuildSnapshot(ctx context.Context, s *Session, b *Bindings) (*DomainSnapshot, error) {
	snap := &DomainSnapshot{Account: s.Account}
	r := reader{s: s, b: b}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		charity, err := r.address(gctx, b.Logic.Call, "charityAddress", FieldCharityAddress)
		if err != nil {
			return err
		}
		bal, err := r.charityBalance(gctx, charity)
		if err != nil {
			return err
		}
		snap.CharityAddress, snap.CharityBalance = charity, bal
		return nil
	})
	g.Go(func() error {
		owner, err := r.address(gctx, b.Logic.Call, "owner", FieldOwner)
		if err != nil {
			return err
		}
		snap.IsOwner = owner == s.Account
		return nil
	})
	r.balances(gctx, g, snap)

	if err := g.Wait(); err != nil {
		return nil, err
	}
	snap.ReadAt = time.Now()
	snap.Cause = CauseStartup
	return snap, nil
}

// Refresh re-reads the fields that move with every value transfer. Charity
// address and ownership are carried over from the caller, not re-read.
func Refresh(ctx context.Context, s *Session, b *Bindings, priorCharity common.Address, isOwner bool) (*DomainSnapshot, error) {
	snap := &DomainSnapshot{
		Account:        s.Account,
		CharityAddress: priorCharity,
		IsOwner:        isOwner,
	}
	r := reader{s: s, b: b}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		bal, err := r.charityBalance(gctx, priorCharity)
		if err != nil {
			return err
		}
		snap.CharityBalance = bal
		return nil
	})
	r.balances(gctx, g, snap)

	if err := g.Wait(); err != nil {
		return nil, err
	}
	snap.ReadAt = time.Now()
	return snap, nil
}

type reader struct {
	s *Session
	b *Bindings
}

type callFn func(ctx context.Context, from common.Address, method string, args ...interface{}) ([]interface{}, error)

// balances schedules the token reads and the vault and account balances.
// Each goroutine writes a distinct field of snap.
func (r reader) balances(ctx context.Context, g *errgroup.Group, snap *DomainSnapshot) {
	g.Go(func() error {
		out, err := r.b.Token.Call(ctx, r.s.Account, "symbol")
		if err != nil {
			return &ReadError{Field: FieldSymbol, Err: err}
		}
		sym, ok := one(out).(string)
		if !ok {
			return &ReadError{Field: FieldSymbol, Err: fmt.Errorf("unexpected type %T", one(out))}
		}
		snap.TokenSymbol = sym
		return nil
	})
	g.Go(func() error {
		v, err := r.uint(ctx, r.b.Token.Call, FieldTokenBalance, "balanceOf", r.s.Account)
		snap.TokenBalance = v
		return err
	})
	g.Go(func() error {
		v, err := r.uint(ctx, r.b.Token.Call, FieldTokenSupply, "totalSupply")
		snap.TokenSupply = v
		return err
	})
	g.Go(func() error {
		v, err := r.s.Backend.BalanceAt(ctx, r.b.Bonding.Address)
		if err != nil {
			return &ReadError{Field: FieldVaultBalance, Err: err}
		}
		snap.BondingVaultBalance = v
		return nil
	})
	g.Go(func() error {
		v, err := r.s.Backend.BalanceAt(ctx, r.s.Account)
		if err != nil {
			return &ReadError{Field: FieldAccountBalance, Err: err}
		}
		snap.AccountEthBalance = v
		return nil
	})
}

// charityBalance is 0 for the zero address without querying the chain.
func (r reader) charityBalance(ctx context.Context, charity common.Address) (*big.Int, error) {
	if charity == (common.Address{}) {
		return new(big.Int), nil
	}
	bal, err := r.s.Backend.BalanceAt(ctx, charity)
	if err != nil {
		return nil, &ReadError{Field: FieldCharityBalance, Err: err}
	}
	return bal, nil
}

func (r reader) address(ctx context.Context, call callFn, method, field string) (common.Address, error) {
	out, err := call(ctx, r.s.Account, method)
	if err != nil {
		return common.Address{}, &ReadError{Field: field, Err: err}
	}
	addr, ok := one(out).(common.Address)
	if !ok {
		return common.Address{}, &ReadError{Field: field, Err: fmt.Errorf("unexpected type %T", one(out))}
	}
	return addr, nil
}

func (r reader) uint(ctx context.Context, call callFn, field, method string, args ...interface{}) (*big.Int, error) {
	out, err := call(ctx, r.s.Account, method, args...)
	if err != nil {
		return nil, &ReadError{Field: field, Err: err}
	}
	v, ok := one(out).(*big.Int)
	if !ok {
		return nil, &ReadError{Field: field, Err: fmt.Errorf("unexpected type %T", one(out))}
	}
	return v, nil
}

func one(out []interface{}) interface{} {
	if len(out) == 0 {
		return nil
	}
	return out[0]
}
