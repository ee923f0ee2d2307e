package chain

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
)

// ErrTxReverted is returned when a mined transaction has status 0.
var ErrTxReverted = errors.New("transaction reverted")

const defaultPollInterval = 2 * time.Second

// EVMClient is the provider handle: a JSON-RPC connection to one node.
type EVMClient struct {
	url          string
	rpc          *rpc.Client
	eth          *ethclient.Client
	pollInterval time.Duration
}

// Option configures an EVMClient.
type Option func(*EVMClient)

// WithPollInterval sets how often WaitForReceipt polls for a receipt.
func WithPollInterval(d time.Duration) Option {
	return func(c *EVMClient) {
		if d > 0 {
			c.pollInterval = d
		}
	}
}

// Dial connects to url. Dialing an HTTP endpoint does not touch the network;
// use NetworkID to probe it.
func Dial(ctx context.Context, url string, opts ...Option) (*EVMClient, error) {
	rc, err := rpc.DialContext(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("dialing %s: %w", url, err)
	}
	c := &EVMClient{
		url:          url,
		rpc:          rc,
		eth:          ethclient.NewClient(rc),
		pollInterval: defaultPollInterval,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// URL returns the endpoint this client is connected to.
func (c *EVMClient) URL() string { return c.url }

// Close releases the underlying connection.
func (c *EVMClient) Close() { c.rpc.Close() }

// NetworkID returns net_version as a decimal string, the key used by
// deployment records.
func (c *EVMClient) NetworkID(ctx context.Context) (string, error) {
	id, err := c.eth.NetworkID(ctx)
	if err != nil {
		return "", fmt.Errorf("net_version: %w", err)
	}
	return id.String(), nil
}

// ChainID returns the EIP-155 chain id used for local signing.
func (c *EVMClient) ChainID(ctx context.Context) (*big.Int, error) {
	id, err := c.eth.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("eth_chainId: %w", err)
	}
	return id, nil
}

// BlockNumber returns the latest block height.
func (c *EVMClient) BlockNumber(ctx context.Context) (uint64, error) {
	n, err := c.eth.BlockNumber(ctx)
	if err != nil {
		return 0, fmt.Errorf("eth_blockNumber: %w", err)
	}
	return n, nil
}

// Accounts returns the node-managed (unlocked) accounts.
func (c *EVMClient) Accounts(ctx context.Context) ([]common.Address, error) {
	var accounts []common.Address
	if err := c.rpc.CallContext(ctx, &accounts, "eth_accounts"); err != nil {
		return nil, fmt.Errorf("eth_accounts: %w", err)
	}
	return accounts, nil
}

// BalanceAt returns the latest native balance of addr in wei.
func (c *EVMClient) BalanceAt(ctx context.Context, addr common.Address) (*big.Int, error) {
	bal, err := c.eth.BalanceAt(ctx, addr, nil)
	if err != nil {
		return nil, fmt.Errorf("eth_getBalance %s: %w", addr.Hex(), err)
	}
	return bal, nil
}

// CallContract executes a read-only call against the latest block.
func (c *EVMClient) CallContract(ctx context.Context, msg ethereum.CallMsg) ([]byte, error) {
	out, err := c.eth.CallContract(ctx, msg, nil)
	if err != nil {
		return nil, fmt.Errorf("eth_call: %w", err)
	}
	return out, nil
}

// PendingNonceAt returns the next nonce for addr, counting queued txs.
func (c *EVMClient) PendingNonceAt(ctx context.Context, addr common.Address) (uint64, error) {
	n, err := c.eth.PendingNonceAt(ctx, addr)
	if err != nil {
		return 0, fmt.Errorf("eth_getTransactionCount %s: %w", addr.Hex(), err)
	}
	return n, nil
}

// SendTransaction broadcasts a locally signed transaction.
func (c *EVMClient) SendTransaction(ctx context.Context, tx *types.Transaction) error {
	if err := c.eth.SendTransaction(ctx, tx); err != nil {
		return fmt.Errorf("eth_sendRawTransaction: %w", err)
	}
	return nil
}

// TxArgs is an unsigned transaction handed to the node for signing.
type TxArgs struct {
	From     common.Address
	To       *common.Address
	Gas      uint64
	GasPrice *big.Int
	Value    *big.Int
	Data     []byte
}

func (a TxArgs) toArg() map[string]interface{} {
	arg := map[string]interface{}{
		"from": a.From,
		"gas":  hexutil.Uint64(a.Gas),
	}
	if a.To != nil {
		arg["to"] = a.To
	}
	if a.GasPrice != nil {
		arg["gasPrice"] = (*hexutil.Big)(a.GasPrice)
	}
	if a.Value != nil && a.Value.Sign() > 0 {
		arg["value"] = (*hexutil.Big)(a.Value)
	}
	if len(a.Data) > 0 {
		arg["data"] = hexutil.Bytes(a.Data)
	}
	return arg
}

// SendUnsigned submits args through eth_sendTransaction so that the node
// signs with one of its own accounts.
func (c *EVMClient) SendUnsigned(ctx context.Context, args TxArgs) (common.Hash, error) {
	var hash common.Hash
	if err := c.rpc.CallContext(ctx, &hash, "eth_sendTransaction", args.toArg()); err != nil {
		return common.Hash{}, fmt.Errorf("eth_sendTransaction: %w", err)
	}
	return hash, nil
}

// WaitForReceipt polls until hash is mined or ctx is done. No timeout is
// applied beyond ctx. A reverted receipt is returned together with
// ErrTxReverted.
func (c *EVMClient) WaitForReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		receipt, err := c.eth.TransactionReceipt(ctx, hash)
		switch {
		case err == nil:
			if receipt.Status == types.ReceiptStatusFailed {
				return receipt, fmt.Errorf("%w (hash: %s)", ErrTxReverted, hash.Hex())
			}
			return receipt, nil
		case !errors.Is(err, ethereum.NotFound):
			return nil, fmt.Errorf("eth_getTransactionReceipt %s: %w", hash.Hex(), err)
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("waiting for %s: %w", hash.Hex(), ctx.Err())
		case <-ticker.C:
		}
	}
}
