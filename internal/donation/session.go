package donation

import (
	"context"
	"math/big"
	"time"

	"github.com/Mohsinsiddi/bonded/internal/chain"
	"github.com/Mohsinsiddi/bonded/internal/config"
	"github.com/Mohsinsiddi/bonded/internal/contract"
	"github.com/Mohsinsiddi/bonded/internal/logx"
	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog"
)

// Backend is the provider surface used by the core.
type Backend interface {
	contract.CallBackend
	contract.SendBackend
	NetworkID(ctx context.Context) (string, error)
	Accounts(ctx context.Context) ([]common.Address, error)
	BalanceAt(ctx context.Context, addr common.Address) (*big.Int, error)
	Close()
}

// Dialer opens a Backend for one provider URL.
type Dialer func(ctx context.Context, url string) (Backend, error)

// DialEVM dials url with the JSON-RPC client.
func DialEVM(opts ...chain.Option) Dialer {
	return func(ctx context.Context, url string) (Backend, error) {
		c, err := chain.Dial(ctx, url, opts...)
		if err != nil {
			return nil, err
		}
		return c, nil
	}
}

// Session is the provider and active account. It does not change after
// AcquireSession returns.
type Session struct {
	Backend   Backend
	URL       string
	NetworkID string
	Account   common.Address
	Accounts  []common.Address
	Sender    *contract.Sender
}

// NewSession assembles a session from parts that are already known to work.
// signer may be nil for node-managed accounts.
func NewSession(b Backend, url, networkID string, accounts []common.Address, signer contract.TxSigner) *Session {
	s := &Session{
		Backend:   b,
		URL:       url,
		NetworkID: networkID,
		Accounts:  accounts,
		Sender:    contract.NewSender(b, signer),
	}
	if len(accounts) > 0 {
		s.Account = accounts[0]
	}
	return s
}

// Close releases the provider connection.
func (s *Session) Close() {
	if s.Backend != nil {
		s.Backend.Close()
	}
}

// SessionOptions configures AcquireSession.
type SessionOptions struct {
	URLs         []string          // tried in order
	Signer       contract.TxSigner // nil: use eth_accounts and node signing
	Dial         Dialer
	ProbeTimeout time.Duration
	Log          zerolog.Logger
}

// AcquireSession connects to the first provider that answers net_version
// and picks the active account.
func AcquireSession(ctx context.Context, opts SessionOptions) (*Session, error) {
	if opts.Dial == nil {
		opts.Dial = DialEVM()
	}
	if opts.ProbeTimeout <= 0 {
		opts.ProbeTimeout = config.ProviderProbeTimeout
	}
	log := logx.Module(opts.Log, "session")

	var (
		backend   Backend
		url       string
		networkID string
		lastErr   error
	)
	for _, candidate := range opts.URLs {
		b, nid, err := probe(ctx, opts, candidate)
		if err != nil {
			log.Debug().Err(err).Str("url", candidate).Msg("provider unavailable")
			lastErr = err
			continue
		}
		backend, url, networkID = b, candidate, nid
		break
	}
	if backend == nil {
		return nil, &ConnectionError{Kind: NoProvider, Tried: opts.URLs, Err: lastErr}
	}

	var accounts []common.Address
	if opts.Signer != nil {
		accounts = []common.Address{opts.Signer.Address()}
	} else {
		list, err := backend.Accounts(ctx)
		if err != nil {
			backend.Close()
			return nil, &ConnectionError{Kind: NoAccount, Tried: []string{url}, Err: err}
		}
		accounts = list
	}
	if len(accounts) == 0 {
		backend.Close()
		return nil, &ConnectionError{Kind: NoAccount, Tried: []string{url}}
	}

	s := NewSession(backend, url, networkID, accounts, opts.Signer)
	log.Info().
		Str("url", url).
		Str("network", networkID).
		Str("account", s.Account.Hex()).
		Bool("local_signing", s.Sender.LocalSigning()).
		Msg("session established")
	return s, nil
}

func probe(ctx context.Context, opts SessionOptions, url string) (Backend, string, error) {
	b, err := opts.Dial(ctx, url)
	if err != nil {
		return nil, "", err
	}
	pctx, cancel := context.WithTimeout(ctx, opts.ProbeTimeout)
	defer cancel()
	nid, err := b.NetworkID(pctx)
	if err != nil {
		b.Close()
		return nil, "", err
	}
	return b, nid, nil
}
