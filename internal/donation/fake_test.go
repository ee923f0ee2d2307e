package donation_test

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"testing"

	"github.com/Mohsinsiddi/bonded/internal/chain"
	"github.com/Mohsinsiddi/bonded/internal/contract"
	"github.com/Mohsinsiddi/bonded/internal/donation"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/require"
)

var (
	me      = common.HexToAddress("0x00000000000000000000000000000000000000a1")
	other   = common.HexToAddress("0x00000000000000000000000000000000000000b2")
	charity = common.HexToAddress("0x00000000000000000000000000000000000000c3")
	logicA  = common.HexToAddress("0x0000000000000000000000000000000000001001")
	tokenA  = common.HexToAddress("0x0000000000000000000000000000000000001002")
	vaultA  = common.HexToAddress("0x0000000000000000000000000000000000001003")
)

func eth(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), big.NewInt(1_000_000_000_000_000_000))
}

// fakeChain is an in-memory provider that runs a toy version of the three
// contracts.
type fakeChain struct {
	mu sync.Mutex

	network  string
	accounts []common.Address
	netErr   error

	balances       map[common.Address]*big.Int
	balanceQueries map[common.Address]int
	balanceErr     map[common.Address]error

	charity      common.Address
	charityOnSet *common.Address // when set, setCharityAddress stores this instead
	owner        common.Address
	symbol       string
	tokenBal     map[common.Address]*big.Int
	supply       *big.Int
	finalPrice   *big.Int
	redeemable   *big.Int
	calcArgs     [][2]*big.Int

	calls   map[string]int
	callErr map[string]error
	sent    []chain.TxArgs
	sendErr error
	revert  bool
	closed  int
	gate    chan struct{} // when non-nil, WaitForReceipt blocks until closed
	waiting chan struct{} // receives once per blocked WaitForReceipt
}

func newFakeChain() *fakeChain {
	return &fakeChain{
		network:  "5777",
		accounts: []common.Address{me, other},
		balances: map[common.Address]*big.Int{
			me:      eth(10),
			vaultA:  eth(3),
			charity: eth(1),
		},
		balanceQueries: map[common.Address]int{},
		balanceErr:     map[common.Address]error{},
		charity:        charity,
		owner:          me,
		symbol:         "TKN",
		tokenBal:       map[common.Address]*big.Int{me: eth(20)},
		supply:         eth(100),
		finalPrice:     big.NewInt(2e16),
		redeemable:     big.NewInt(2e17),
		calls:          map[string]int{},
		callErr:        map[string]error{},
	}
}

func builtinABI(id string) abi.ABI {
	b, ok := contract.GetBuiltin(id)
	if !ok {
		panic("missing builtin " + id)
	}
	return b.ABI
}

var (
	logicABI = builtinABI(contract.BuiltinLogic)
	tokenABI = builtinABI(contract.BuiltinToken)
)

func (f *fakeChain) bal(a common.Address) *big.Int {
	if v, ok := f.balances[a]; ok {
		return v
	}
	return new(big.Int)
}

func (f *fakeChain) add(a common.Address, v *big.Int) {
	f.balances[a] = new(big.Int).Add(f.bal(a), v)
}

func (f *fakeChain) NetworkID(context.Context) (string, error) {
	if f.netErr != nil {
		return "", f.netErr
	}
	return f.network, nil
}

func (f *fakeChain) Accounts(context.Context) ([]common.Address, error) {
	return f.accounts, nil
}

func (f *fakeChain) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed++
}

func (f *fakeChain) BalanceAt(_ context.Context, a common.Address) (*big.Int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.balanceQueries[a]++
	if err := f.balanceErr[a]; err != nil {
		return nil, err
	}
	return new(big.Int).Set(f.bal(a)), nil
}

func (f *fakeChain) CallContract(_ context.Context, msg ethereum.CallMsg) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var parsed abi.ABI
	switch *msg.To {
	case logicA:
		parsed = logicABI
	case tokenA:
		parsed = tokenABI
	default:
		return nil, fmt.Errorf("no contract at %s", msg.To.Hex())
	}
	m, err := parsed.MethodById(msg.Data[:4])
	if err != nil {
		return nil, err
	}
	args, err := m.Inputs.Unpack(msg.Data[4:])
	if err != nil {
		return nil, err
	}
	f.calls[m.Name]++
	if err := f.callErr[m.Name]; err != nil {
		return nil, err
	}

	switch m.Name {
	case "charityAddress":
		return m.Outputs.Pack(f.charity)
	case "owner":
		return m.Outputs.Pack(f.owner)
	case "symbol":
		return m.Outputs.Pack(f.symbol)
	case "totalSupply":
		return m.Outputs.Pack(f.supply)
	case "balanceOf":
		v := f.tokenBal[args[0].(common.Address)]
		if v == nil {
			v = new(big.Int)
		}
		return m.Outputs.Pack(v)
	case "calculateReturn":
		f.calcArgs = append(f.calcArgs, [2]*big.Int{args[0].(*big.Int), args[1].(*big.Int)})
		return m.Outputs.Pack(f.finalPrice, f.redeemable)
	}
	return nil, fmt.Errorf("unexpected call %s", m.Name)
}

func (f *fakeChain) ChainID(context.Context) (*big.Int, error) { return big.NewInt(1337), nil }

func (f *fakeChain) PendingNonceAt(context.Context, common.Address) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return uint64(len(f.sent)), nil
}

func (f *fakeChain) SendTransaction(context.Context, *types.Transaction) error {
	return errors.New("raw transactions not supported by fake")
}

func (f *fakeChain) SendUnsigned(_ context.Context, args chain.TxArgs) (common.Hash, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return common.Hash{}, f.sendErr
	}
	f.sent = append(f.sent, args)
	if !f.revert {
		f.apply(args)
	}
	return common.BigToHash(big.NewInt(int64(len(f.sent)))), nil
}

func (f *fakeChain) apply(args chain.TxArgs) {
	m, err := logicABI.MethodById(args.Data[:4])
	if err != nil {
		return
	}
	in, _ := m.Inputs.Unpack(args.Data[4:])
	switch m.Name {
	case "donate":
		f.add(args.From, new(big.Int).Neg(args.Value))
		f.add(vaultA, args.Value)
		cur := f.tokenBal[args.From]
		if cur == nil {
			cur = new(big.Int)
		}
		f.tokenBal[args.From] = new(big.Int).Add(cur, args.Value)
		f.supply = new(big.Int).Add(f.supply, args.Value)
	case "sell":
		amount := in[0].(*big.Int)
		f.tokenBal[args.From] = new(big.Int).Sub(f.tokenBal[args.From], amount)
		f.supply = new(big.Int).Sub(f.supply, amount)
		f.add(vaultA, new(big.Int).Neg(f.redeemable))
		f.add(args.From, f.redeemable)
	case "setCharityAddress":
		f.charity = in[0].(common.Address)
		if f.charityOnSet != nil {
			f.charity = *f.charityOnSet
		}
	case "sweepVault":
		f.add(args.From, f.bal(vaultA))
		f.balances[vaultA] = new(big.Int)
	}
}

func (f *fakeChain) WaitForReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	f.mu.Lock()
	gate, waiting, revert := f.gate, f.waiting, f.revert
	f.mu.Unlock()

	if gate != nil {
		if waiting != nil {
			select {
			case waiting <- struct{}{}:
			default:
			}
		}
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	r := &types.Receipt{TxHash: hash, BlockNumber: big.NewInt(42), GasUsed: 21000, Status: types.ReceiptStatusSuccessful}
	if revert {
		r.Status = types.ReceiptStatusFailed
		return r, fmt.Errorf("%w (hash: %s)", chain.ErrTxReverted, hash.Hex())
	}
	return r, nil
}

// sentMethod decodes the method name and inputs of the i-th sent tx.
func (f *fakeChain) sentMethod(t *testing.T, i int) (string, []interface{}) {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.Greater(t, len(f.sent), i)
	m, err := logicABI.MethodById(f.sent[i].Data[:4])
	require.NoError(t, err)
	in, err := m.Inputs.Unpack(f.sent[i].Data[4:])
	require.NoError(t, err)
	return m.Name, in
}

func (f *fakeChain) sentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

func (f *fakeChain) callCount(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[method]
}

func testDescriptors() donation.Descriptors {
	return donation.Descriptors{
		Logic:   contract.Descriptor{Name: "DonationLogic", BuiltinID: contract.BuiltinLogic, Address: logicA.Hex()},
		Token:   contract.Descriptor{Name: "Token", BuiltinID: contract.BuiltinToken, Address: tokenA.Hex()},
		Bonding: contract.Descriptor{Name: "BondingCurveVault", BuiltinID: contract.BuiltinBonding, Address: vaultA.Hex()},
	}
}

type harness struct {
	chain   *fakeChain
	session *donation.Session
	binds   *donation.Bindings
	store   *donation.Store
	orch    *donation.Orchestrator
	prompts []string
	answer  bool
}

func newHarness(t *testing.T, f *fakeChain) *harness {
	t.Helper()
	h := &harness{chain: f, answer: true}
	h.session = donation.NewSession(f, "mock://node", f.network, f.accounts, nil)
	binds, err := donation.ResolveBindings(h.session, testDescriptors())
	require.NoError(t, err)
	h.binds = binds
	h.store = donation.NewStore()
	h.orch = donation.NewOrchestrator(h.session, binds, h.store,
		donation.WithConfirmer(donation.ConfirmFunc(func(_ context.Context, prompt string) (bool, error) {
			h.prompts = append(h.prompts, prompt)
			return h.answer, nil
		})),
	)
	return h
}

// loaded returns a harness whose store already holds a startup snapshot.
func loaded(t *testing.T, f *fakeChain) *harness {
	t.Helper()
	h := newHarness(t, f)
	_, err := h.orch.Load(context.Background(), "")
	require.NoError(t, err)
	return h
}
