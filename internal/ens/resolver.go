// Package ens resolves ENS names for charity addresses. It only works on
// networks where the ENS registry is deployed.
package ens

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Mohsinsiddi/bonded/internal/contract"
	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/crypto/sha3"
)

// RegistryAddress is the ENS registry on Ethereum mainnet and Sepolia.
var RegistryAddress = common.HexToAddress("0x00000000000C2E074eC69A0dFb2997BA6C7d2e1e")

// ErrNoRecord is returned when a name or address has no ENS record.
var ErrNoRecord = errors.New("no ENS record")

const registryABI = `[
  {"type":"function","name":"resolver","inputs":[{"name":"node","type":"bytes32"}],"outputs":[{"name":"","type":"address"}],"stateMutability":"view"}
]`

const resolverABI = `[
  {"type":"function","name":"addr","inputs":[{"name":"node","type":"bytes32"}],"outputs":[{"name":"","type":"address"}],"stateMutability":"view"},
  {"type":"function","name":"name","inputs":[{"name":"node","type":"bytes32"}],"outputs":[{"name":"","type":"string"}],"stateMutability":"view"}
]`

var (
	registryParsed = contract.MustParseABI(registryABI)
	resolverParsed = contract.MustParseABI(resolverABI)
)

// IsName reports whether s looks like an ENS name rather than a hex address.
func IsName(s string) bool {
	s = strings.TrimSpace(s)
	return strings.Contains(s, ".") && !common.IsHexAddress(s)
}

// Resolver looks names up through the registry at Registry.
type Resolver struct {
	backend  contract.CallBackend
	registry *contract.Binding
}

// NewResolver uses the well-known registry.
func NewResolver(backend contract.CallBackend) *Resolver {
	return NewResolverAt(backend, RegistryAddress)
}

// NewResolverAt uses the registry deployed at registry.
func NewResolverAt(backend contract.CallBackend, registry common.Address) *Resolver {
	return &Resolver{
		backend:  backend,
		registry: contract.NewBinding("ENSRegistry", registry, registryParsed, backend),
	}
}

// Resolve returns the address record of name.
func (r *Resolver) Resolve(ctx context.Context, name string) (common.Address, error) {
	node := Namehash(strings.ToLower(strings.TrimSpace(name)))
	res, err := r.resolverFor(ctx, node)
	if err != nil {
		return common.Address{}, fmt.Errorf("%s: %w", name, err)
	}
	addr, err := callAddress(ctx, res, "addr", node)
	if err != nil {
		return common.Address{}, fmt.Errorf("querying ENS resolver for %s: %w", name, err)
	}
	if addr == (common.Address{}) {
		return common.Address{}, fmt.Errorf("%w: no address for %q", ErrNoRecord, name)
	}
	return addr, nil
}

// ReverseLookup returns the primary name of addr.
func (r *Resolver) ReverseLookup(ctx context.Context, addr common.Address) (string, error) {
	node := Namehash(strings.ToLower(strings.TrimPrefix(addr.Hex(), "0x")) + ".addr.reverse")
	res, err := r.resolverFor(ctx, node)
	if err != nil {
		return "", fmt.Errorf("%s: %w", addr.Hex(), err)
	}
	out, err := res.Call(ctx, common.Address{}, "name", node)
	if err != nil {
		return "", fmt.Errorf("querying reverse resolver: %w", err)
	}
	name, _ := first(out).(string)
	if name == "" {
		return "", fmt.Errorf("%w: no reverse name for %s", ErrNoRecord, addr.Hex())
	}
	return name, nil
}

func (r *Resolver) resolverFor(ctx context.Context, node [32]byte) (*contract.Binding, error) {
	addr, err := callAddress(ctx, r.registry, "resolver", node)
	if err != nil {
		return nil, fmt.Errorf("querying ENS registry: %w", err)
	}
	if addr == (common.Address{}) {
		return nil, fmt.Errorf("%w: no resolver set", ErrNoRecord)
	}
	return contract.NewBinding("ENSResolver", addr, resolverParsed, r.backend), nil
}

func callAddress(ctx context.Context, b *contract.Binding, method string, node [32]byte) (common.Address, error) {
	out, err := b.Call(ctx, common.Address{}, method, node)
	if err != nil {
		return common.Address{}, err
	}
	addr, ok := first(out).(common.Address)
	if !ok {
		return common.Address{}, fmt.Errorf("unexpected %s output %v", method, out)
	}
	return addr, nil
}

func first(out []interface{}) interface{} {
	if len(out) == 0 {
		return nil
	}
	return out[0]
}

// Namehash implements the EIP-137 namehash algorithm.
// namehash("") = 0x00...00
// namehash("eth") = keccak256(namehash("") + keccak256("eth"))
func Namehash(name string) [32]byte {
	var node [32]byte
	if name == "" {
		return node
	}

	labels := strings.Split(name, ".")
	// Process labels right-to-left.
	for i := len(labels) - 1; i >= 0; i-- {
		labelHash := keccak256([]byte(labels[i]))
		copy(node[:], keccak256(append(node[:], labelHash...)))
	}
	return node
}

func keccak256(data []byte) []byte {
	h := sha3.NewLegacyKeccak256()
	h.Write(data)
	return h.Sum(nil)
}
