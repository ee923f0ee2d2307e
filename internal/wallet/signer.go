package wallet

import (
	"crypto/ecdsa"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

// Signer signs transactions for a signing wallet.
type Signer struct {
	wallet *Wallet
	keys   KeyStore
}

// NewSigner creates a signer for w. Watch-only wallets are rejected.
func NewSigner(w *Wallet, keys KeyStore) (*Signer, error) {
	if w.Type != TypeSigning {
		return nil, fmt.Errorf("%q: %w", w.Name, ErrWatchOnly)
	}
	return &Signer{wallet: w, keys: keys}, nil
}

func (s *Signer) Address() common.Address {
	return common.HexToAddress(s.wallet.Address)
}

// SignTx signs tx for chainID. The key is read from the KeyStore on every
// call and not retained.
func (s *Signer) SignTx(tx *types.Transaction, chainID *big.Int) (*types.Transaction, error) {
	key, err := s.privateKey()
	if err != nil {
		return nil, err
	}
	signed, err := types.SignTx(tx, types.LatestSignerForChainID(chainID), key)
	if err != nil {
		return nil, fmt.Errorf("signing transaction: %w", err)
	}
	return signed, nil
}

func (s *Signer) privateKey() (*ecdsa.PrivateKey, error) {
	hexKey, err := s.keys.Retrieve(s.wallet.KeyRef)
	if err != nil {
		return nil, fmt.Errorf("retrieving key: %w", err)
	}
	key, err := crypto.HexToECDSA(hexKey)
	if err != nil {
		return nil, fmt.Errorf("parsing private key: %w", err)
	}
	if crypto.PubkeyToAddress(key.PublicKey) != s.Address() {
		return nil, fmt.Errorf("stored key does not match wallet %q", s.wallet.Name)
	}
	return key, nil
}
