package contract_test

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"math/big"
	"testing"

	"github.com/Mohsinsiddi/bonded/internal/chain"
	"github.com/Mohsinsiddi/bonded/internal/contract"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Hardhat/Anvil default account #0.
const testPrivKeyHex = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"

type keySigner struct{ key *ecdsa.PrivateKey }

func newKeySigner(t *testing.T) keySigner {
	t.Helper()
	key, err := crypto.HexToECDSA(testPrivKeyHex)
	require.NoError(t, err)
	return keySigner{key: key}
}

func (k keySigner) Address() common.Address { return crypto.PubkeyToAddress(k.key.PublicKey) }

func (k keySigner) SignTx(tx *types.Transaction, chainID *big.Int) (*types.Transaction, error) {
	return types.SignTx(tx, types.LatestSignerForChainID(chainID), k.key)
}

type fakeSendBackend struct {
	chainIDCalls int
	chainErr     error
	nonce        uint64
	sent         []*types.Transaction
	unsigned     []chain.TxArgs
	sendErr      error
}

func (f *fakeSendBackend) ChainID(context.Context) (*big.Int, error) {
	f.chainIDCalls++
	if f.chainErr != nil {
		return nil, f.chainErr
	}
	return big.NewInt(1337), nil
}

func (f *fakeSendBackend) PendingNonceAt(context.Context, common.Address) (uint64, error) {
	return f.nonce, nil
}

func (f *fakeSendBackend) SendTransaction(_ context.Context, tx *types.Transaction) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, tx)
	return nil
}

func (f *fakeSendBackend) SendUnsigned(_ context.Context, args chain.TxArgs) (common.Hash, error) {
	f.unsigned = append(f.unsigned, args)
	return common.HexToHash("0xfeed"), nil
}

func (f *fakeSendBackend) WaitForReceipt(context.Context, common.Hash) (*types.Receipt, error) {
	return &types.Receipt{Status: types.ReceiptStatusSuccessful}, nil
}

func TestSenderSignsLegacyTxWithFixedGas(t *testing.T) {
	backend := &fakeSendBackend{nonce: 7}
	signer := newKeySigner(t)
	s := contract.NewSender(backend, signer)
	require.True(t, s.LocalSigning())

	to := common.HexToAddress("0xaa")
	hash, err := s.Submit(context.Background(), contract.TxRequest{
		From:     signer.Address(),
		To:       to,
		Value:    big.NewInt(1e18),
		Data:     []byte{0xed, 0x88, 0xc6, 0x8e},
		Gas:      200000,
		GasPrice: big.NewInt(5e9),
	})
	require.NoError(t, err)
	require.Len(t, backend.sent, 1)

	tx := backend.sent[0]
	assert.Equal(t, tx.Hash(), hash)
	assert.Equal(t, uint8(types.LegacyTxType), tx.Type())
	assert.Equal(t, uint64(7), tx.Nonce())
	assert.Equal(t, uint64(200000), tx.Gas())
	assert.Equal(t, int64(5e9), tx.GasPrice().Int64())
	assert.Equal(t, "1000000000000000000", tx.Value().String())
	assert.Equal(t, to, *tx.To())

	from, err := types.Sender(types.LatestSignerForChainID(big.NewInt(1337)), tx)
	require.NoError(t, err)
	assert.Equal(t, signer.Address(), from)
}

func TestSenderCachesChainID(t *testing.T) {
	backend := &fakeSendBackend{}
	signer := newKeySigner(t)
	s := contract.NewSender(backend, signer)

	req := contract.TxRequest{From: signer.Address(), To: common.HexToAddress("0xaa"), Gas: 100000, GasPrice: big.NewInt(5e9)}
	_, err := s.Submit(context.Background(), req)
	require.NoError(t, err)
	_, err = s.Submit(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 1, backend.chainIDCalls)
}

func TestSenderRetriesChainIDAfterFailure(t *testing.T) {
	backend := &fakeSendBackend{chainErr: errors.New("down")}
	signer := newKeySigner(t)
	s := contract.NewSender(backend, signer)
	req := contract.TxRequest{From: signer.Address(), To: common.HexToAddress("0xaa"), Gas: 100000, GasPrice: big.NewInt(5e9)}

	_, err := s.Submit(context.Background(), req)
	assert.ErrorContains(t, err, "getting chain id")

	backend.chainErr = nil
	_, err = s.Submit(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 2, backend.chainIDCalls)
}

func TestSenderRejectsForeignFrom(t *testing.T) {
	s := contract.NewSender(&fakeSendBackend{}, newKeySigner(t))
	_, err := s.Submit(context.Background(), contract.TxRequest{
		From: common.HexToAddress("0x01"), To: common.HexToAddress("0xaa"), Gas: 1, GasPrice: big.NewInt(1),
	})
	assert.ErrorContains(t, err, "does not match signing wallet")
}

func TestSenderBroadcastError(t *testing.T) {
	boom := errors.New("insufficient funds for gas * price + value")
	backend := &fakeSendBackend{sendErr: boom}
	signer := newKeySigner(t)
	s := contract.NewSender(backend, signer)
	_, err := s.Submit(context.Background(), contract.TxRequest{
		From: signer.Address(), To: common.HexToAddress("0xaa"), Gas: 1, GasPrice: big.NewInt(1),
	})
	assert.ErrorIs(t, err, boom)
}

func TestSenderNodeSigning(t *testing.T) {
	backend := &fakeSendBackend{}
	s := contract.NewSender(backend, nil)
	assert.False(t, s.LocalSigning())

	from := common.HexToAddress("0x01")
	hash, err := s.Submit(context.Background(), contract.TxRequest{
		From: from, To: common.HexToAddress("0xaa"), Gas: 300000, GasPrice: big.NewInt(5e9), Data: []byte{1},
	})
	require.NoError(t, err)
	assert.Equal(t, common.HexToHash("0xfeed"), hash)
	require.Len(t, backend.unsigned, 1)
	assert.Equal(t, from, backend.unsigned[0].From)
	assert.Equal(t, uint64(300000), backend.unsigned[0].Gas)
	assert.Equal(t, common.HexToAddress("0xaa"), *backend.unsigned[0].To)
	assert.Empty(t, backend.sent)
}

func TestSenderRequiresGasPrice(t *testing.T) {
	s := contract.NewSender(&fakeSendBackend{}, nil)
	_, err := s.Submit(context.Background(), contract.TxRequest{Gas: 1})
	assert.ErrorContains(t, err, "gas price is required")
}

func TestSenderWaitMined(t *testing.T) {
	s := contract.NewSender(&fakeSendBackend{}, nil)
	r, err := s.WaitMined(context.Background(), common.HexToHash("0x01"))
	require.NoError(t, err)
	assert.Equal(t, types.ReceiptStatusSuccessful, r.Status)
}
