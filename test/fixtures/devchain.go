package fixtures

import (
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/Mohsinsiddi/bonded/internal/contract"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// Node-managed accounts, in eth_accounts order.
var (
	Owner = common.HexToAddress("0x90F8bf6A479f320ead074411a4B0e7944Ea8c9C1")
	Donor = common.HexToAddress("0xFFcf8FDEE72ac11ab72f1D3E2a7a4C0b4D2C6E34")
)

// DefaultCharity is the charity address the dev chain starts with.
var DefaultCharity = common.HexToAddress("0x22d491Bde2303f2f43325b2108D26f1eAbA1e32b")

// NetworkID reported by net_version.
const NetworkID = "5777"

// DevChain is a JSON-RPC node running a toy version of the donation
// contracts. Every account is unlocked and transactions mine instantly.
// Tokens are minted 1:1 for donated wei and redeem at Price wei per token.
type DevChain struct {
	URL string

	mu       sync.Mutex
	accounts []common.Address
	eth      map[common.Address]*big.Int
	tokens   map[common.Address]*big.Int
	supply   *big.Int
	charity  common.Address
	owner    common.Address
	symbol   string
	price    *big.Int
	receipts map[common.Hash]uint64
	sent     []string
}

// NewDevChain starts a dev chain that is shut down with the test.
func NewDevChain(t *testing.T) *DevChain {
	t.Helper()
	d := &DevChain{
		accounts: []common.Address{Owner, Donor},
		eth: map[common.Address]*big.Int{
			Owner:          ether(100),
			Donor:          ether(100),
			BondingAddress: ether(5),
			DefaultCharity: ether(2),
		},
		tokens:   map[common.Address]*big.Int{Owner: ether(5)},
		supply:   ether(5),
		charity:  DefaultCharity,
		owner:    Owner,
		symbol:   "BOND",
		price:    big.NewInt(1e17),
		receipts: map[common.Hash]uint64{},
	}
	srv := httptest.NewServer(http.HandlerFunc(d.serve))
	t.Cleanup(srv.Close)
	d.URL = srv.URL
	return d
}

func ether(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), big.NewInt(1e18))
}

// Balance returns addr's ETH balance.
func (d *DevChain) Balance(addr common.Address) *big.Int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return new(big.Int).Set(d.bal(d.eth, addr))
}

// TokenBalance returns addr's token balance.
func (d *DevChain) TokenBalance(addr common.Address) *big.Int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return new(big.Int).Set(d.bal(d.tokens, addr))
}

// Supply returns the token supply.
func (d *DevChain) Supply() *big.Int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return new(big.Int).Set(d.supply)
}

// Charity returns the stored charity address.
func (d *DevChain) Charity() common.Address {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.charity
}

// Sent lists the logic-contract methods of every submitted transaction.
func (d *DevChain) Sent() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.sent...)
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (d *DevChain) serve(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Method string            `json:"method"`
		Params []json.RawMessage `json:"params"`
		ID     json.RawMessage   `json:"id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	d.mu.Lock()
	result, err := d.dispatch(req.Method, req.Params)
	d.mu.Unlock()

	resp := map[string]interface{}{"jsonrpc": "2.0", "id": req.ID}
	if err != nil {
		resp["error"] = err
	} else {
		resp["result"] = result
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp) //nolint:errcheck
}

func (d *DevChain) dispatch(method string, params []json.RawMessage) (interface{}, *rpcError) {
	switch method {
	case "net_version":
		return NetworkID, nil
	case "eth_chainId":
		return "0x539", nil
	case "eth_accounts":
		return d.accounts, nil
	case "eth_getBalance":
		var addr common.Address
		if err := param(params, 0, &addr); err != nil {
			return nil, err
		}
		return (*hexutil.Big)(d.bal(d.eth, addr)), nil
	case "eth_call":
		var msg txArgs
		if err := param(params, 0, &msg); err != nil {
			return nil, err
		}
		out, err := d.call(msg)
		if err != nil {
			return nil, &rpcError{Code: -32000, Message: err.Error()}
		}
		return hexutil.Bytes(out), nil
	case "eth_sendTransaction":
		var tx txArgs
		if err := param(params, 0, &tx); err != nil {
			return nil, err
		}
		return d.send(tx), nil
	case "eth_getTransactionReceipt":
		var hash common.Hash
		if err := param(params, 0, &hash); err != nil {
			return nil, err
		}
		status, ok := d.receipts[hash]
		if !ok {
			return nil, nil
		}
		return receipt(hash, status), nil
	}
	return nil, &rpcError{Code: -32601, Message: "method not found: " + method}
}

func param(params []json.RawMessage, i int, out interface{}) *rpcError {
	if len(params) <= i {
		return &rpcError{Code: -32602, Message: "missing params"}
	}
	if err := json.Unmarshal(params[i], out); err != nil {
		return &rpcError{Code: -32602, Message: err.Error()}
	}
	return nil
}

type txArgs struct {
	From  common.Address  `json:"from"`
	To    *common.Address `json:"to"`
	Value *hexutil.Big    `json:"value"`
	Data  hexutil.Bytes   `json:"data"`
	Input hexutil.Bytes   `json:"input"`
}

func (a txArgs) payload() []byte {
	if len(a.Input) > 0 {
		return a.Input
	}
	return a.Data
}

func (a txArgs) value() *big.Int {
	if a.Value == nil {
		return new(big.Int)
	}
	return a.Value.ToInt()
}

func builtin(id string) abi.ABI {
	b, _ := contract.GetBuiltin(id)
	return b.ABI
}

var (
	logicABI = builtin(contract.BuiltinLogic)
	tokenABI = builtin(contract.BuiltinToken)
)

func method(parsed abi.ABI, data []byte) (*abi.Method, []interface{}, error) {
	if len(data) < 4 {
		return nil, nil, fmt.Errorf("calldata too short")
	}
	m, err := parsed.MethodById(data[:4])
	if err != nil {
		return nil, nil, err
	}
	in, err := m.Inputs.Unpack(data[4:])
	if err != nil {
		return nil, nil, err
	}
	return m, in, nil
}

func (d *DevChain) call(msg txArgs) ([]byte, error) {
	if msg.To == nil {
		return nil, fmt.Errorf("call without target")
	}
	switch *msg.To {
	case LogicAddress:
		m, in, err := method(logicABI, msg.payload())
		if err != nil {
			return nil, err
		}
		switch m.Name {
		case "charityAddress":
			return m.Outputs.Pack(d.charity)
		case "owner":
			return m.Outputs.Pack(d.owner)
		case "calculateReturn":
			amount := in[0].(*big.Int)
			return m.Outputs.Pack(d.price, d.redeemable(amount))
		}
		return nil, fmt.Errorf("execution reverted: %s not callable", m.Name)
	case TokenAddress:
		m, in, err := method(tokenABI, msg.payload())
		if err != nil {
			return nil, err
		}
		switch m.Name {
		case "symbol":
			return m.Outputs.Pack(d.symbol)
		case "totalSupply":
			return m.Outputs.Pack(d.supply)
		case "balanceOf":
			return m.Outputs.Pack(d.bal(d.tokens, in[0].(common.Address)))
		}
	}
	return nil, fmt.Errorf("no contract at %s", msg.To.Hex())
}

// send mines tx and records a receipt. Failed checks revert with status 0.
func (d *DevChain) send(tx txArgs) common.Hash {
	hash := crypto.Keccak256Hash(big.NewInt(int64(len(d.receipts) + 1)).Bytes())
	status := uint64(1)
	if tx.To == nil || *tx.To != LogicAddress || !d.apply(tx) {
		status = 0
	}
	d.receipts[hash] = status
	return hash
}

func (d *DevChain) apply(tx txArgs) bool {
	m, in, err := method(logicABI, tx.payload())
	if err != nil {
		return false
	}
	d.sent = append(d.sent, m.Name)

	switch m.Name {
	case "donate":
		v := tx.value()
		if v.Sign() == 0 || d.bal(d.eth, tx.From).Cmp(v) < 0 {
			return false
		}
		d.move(d.eth, tx.From, BondingAddress, v)
		d.tokens[tx.From] = new(big.Int).Add(d.bal(d.tokens, tx.From), v)
		d.supply = new(big.Int).Add(d.supply, v)
	case "sell":
		amount := in[0].(*big.Int)
		if d.bal(d.tokens, tx.From).Cmp(amount) < 0 {
			return false
		}
		d.tokens[tx.From] = new(big.Int).Sub(d.bal(d.tokens, tx.From), amount)
		d.supply = new(big.Int).Sub(d.supply, amount)
		d.move(d.eth, BondingAddress, tx.From, d.redeemable(amount))
	case "setCharityAddress":
		if tx.From != d.owner {
			return false
		}
		d.charity = in[0].(common.Address)
	case "sweepVault":
		if tx.From != d.owner || d.supply.Sign() != 0 {
			return false
		}
		d.move(d.eth, BondingAddress, tx.From, d.bal(d.eth, BondingAddress))
	default:
		return false
	}
	return true
}

func (d *DevChain) redeemable(amount *big.Int) *big.Int {
	v := new(big.Int).Mul(amount, d.price)
	return v.Div(v, big.NewInt(1e18))
}

func (d *DevChain) bal(m map[common.Address]*big.Int, a common.Address) *big.Int {
	if v, ok := m[a]; ok {
		return v
	}
	return new(big.Int)
}

func (d *DevChain) move(m map[common.Address]*big.Int, from, to common.Address, v *big.Int) {
	m[from] = new(big.Int).Sub(d.bal(m, from), v)
	m[to] = new(big.Int).Add(d.bal(m, to), v)
}

func receipt(hash common.Hash, status uint64) map[string]interface{} {
	return map[string]interface{}{
		"type":              "0x0",
		"status":            hexutil.Uint64(status),
		"cumulativeGasUsed": "0x5208",
		"logsBloom":         "0x" + strings.Repeat("00", 256),
		"logs":              []interface{}{},
		"transactionHash":   hash,
		"contractAddress":   nil,
		"gasUsed":           "0x5208",
		"effectiveGasPrice": "0x12a05f200",
		"blockHash":         "0x" + strings.Repeat("11", 32),
		"blockNumber":       "0x10",
		"transactionIndex":  "0x0",
	}
}
