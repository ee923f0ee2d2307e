package contract

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// ErrMethodNotFound is returned when a method is absent from the bound ABI.
var ErrMethodNotFound = errors.New("method not found in ABI")

// CallBackend executes read-only calls.
type CallBackend interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg) ([]byte, error)
}

// Binding is a provider-bound handle to one deployed contract.
type Binding struct {
	Name    string
	Address common.Address

	abi     abi.ABI
	backend CallBackend
}

// NewBinding binds parsed to the contract at addr.
func NewBinding(name string, addr common.Address, parsed abi.ABI, backend CallBackend) *Binding {
	return &Binding{Name: name, Address: addr, abi: parsed, backend: backend}
}

// Pack encodes calldata for method.
func (b *Binding) Pack(method string, args ...interface{}) ([]byte, error) {
	if _, ok := b.abi.Methods[method]; !ok {
		return nil, fmt.Errorf("%w: %s.%s", ErrMethodNotFound, b.Name, method)
	}
	data, err := b.abi.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("encoding %s.%s: %w", b.Name, method, err)
	}
	return data, nil
}

// Call invokes a view method and returns its decoded outputs.
func (b *Binding) Call(ctx context.Context, from common.Address, method string, args ...interface{}) ([]interface{}, error) {
	data, err := b.Pack(method, args...)
	if err != nil {
		return nil, err
	}

	raw, err := b.backend.CallContract(ctx, ethereum.CallMsg{
		From: from,
		To:   &b.Address,
		Data: data,
	})
	if err != nil {
		return nil, fmt.Errorf("%s.%s call failed: %w", b.Name, method, err)
	}

	out, err := b.abi.Unpack(method, raw)
	if err != nil {
		return nil, fmt.Errorf("decoding %s.%s result: %w", b.Name, method, err)
	}
	return out, nil
}
