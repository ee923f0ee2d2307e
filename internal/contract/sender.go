package contract

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/Mohsinsiddi/bonded/internal/chain"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// TxRequest is one state-changing call with a fixed gas budget and price.
type TxRequest struct {
	From     common.Address
	To       common.Address
	Value    *big.Int // nil or zero for non-payable calls
	Data     []byte
	Gas      uint64
	GasPrice *big.Int
}

// SendBackend is the provider surface the Sender needs.
type SendBackend interface {
	ChainID(ctx context.Context) (*big.Int, error)
	PendingNonceAt(ctx context.Context, addr common.Address) (uint64, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
	SendUnsigned(ctx context.Context, args chain.TxArgs) (common.Hash, error)
	WaitForReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error)
}

// TxSigner signs transactions with a locally held key.
type TxSigner interface {
	Address() common.Address
	SignTx(tx *types.Transaction, chainID *big.Int) (*types.Transaction, error)
}

// Sender submits write transactions. With a signer it signs locally and
// broadcasts the raw transaction; without one the node signs through
// eth_sendTransaction.
type Sender struct {
	backend SendBackend
	signer  TxSigner

	mu      sync.Mutex
	chainID *big.Int
}

// NewSender creates a Sender. signer may be nil for node-managed accounts.
func NewSender(backend SendBackend, signer TxSigner) *Sender {
	return &Sender{backend: backend, signer: signer}
}

// LocalSigning reports whether transactions are signed in-process.
func (s *Sender) LocalSigning() bool { return s.signer != nil }

// Submit broadcasts req and returns the transaction hash. Gas and gas price
// are taken from req as-is; nothing is estimated.
func (s *Sender) Submit(ctx context.Context, req TxRequest) (common.Hash, error) {
	if req.GasPrice == nil {
		return common.Hash{}, fmt.Errorf("gas price is required")
	}
	if s.signer == nil {
		to := req.To
		return s.backend.SendUnsigned(ctx, chain.TxArgs{
			From:     req.From,
			To:       &to,
			Gas:      req.Gas,
			GasPrice: req.GasPrice,
			Value:    req.Value,
			Data:     req.Data,
		})
	}
	return s.submitSigned(ctx, req)
}

func (s *Sender) submitSigned(ctx context.Context, req TxRequest) (common.Hash, error) {
	if req.From != s.signer.Address() {
		return common.Hash{}, fmt.Errorf("sender %s does not match signing wallet %s", req.From.Hex(), s.signer.Address().Hex())
	}

	chainID, err := s.chain(ctx)
	if err != nil {
		return common.Hash{}, err
	}

	nonce, err := s.backend.PendingNonceAt(ctx, req.From)
	if err != nil {
		return common.Hash{}, fmt.Errorf("getting nonce: %w", err)
	}

	value := req.Value
	if value == nil {
		value = new(big.Int)
	}
	to := req.To
	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		GasPrice: req.GasPrice,
		Gas:      req.Gas,
		To:       &to,
		Value:    value,
		Data:     req.Data,
	})

	signed, err := s.signer.SignTx(tx, chainID)
	if err != nil {
		return common.Hash{}, fmt.Errorf("signing transaction: %w", err)
	}
	if err := s.backend.SendTransaction(ctx, signed); err != nil {
		return common.Hash{}, fmt.Errorf("broadcasting transaction: %w", err)
	}
	return signed.Hash(), nil
}

// WaitMined blocks until hash is mined or ctx ends.
func (s *Sender) WaitMined(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	return s.backend.WaitForReceipt(ctx, hash)
}

// chain returns the chain id, cached after the first successful lookup.
func (s *Sender) chain(ctx context.Context) (*big.Int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.chainID != nil {
		return s.chainID, nil
	}
	id, err := s.backend.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("getting chain id: %w", err)
	}
	s.chainID = id
	return id, nil
}
