package contract

import (
	"sort"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"golang.org/x/crypto/sha3"
)

// Selector returns the 4-byte function selector of a canonical signature
// such as "sell(uint256)".
func Selector(sig string) [4]byte {
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(sig))
	var out [4]byte
	copy(out[:], h.Sum(nil))
	return out
}

// MethodInfo describes one bound method.
type MethodInfo struct {
	Name      string
	Signature string
	Selector  [4]byte
	View      bool
	Payable   bool
}

// Methods lists the bound ABI's methods sorted by name.
func (b *Binding) Methods() []MethodInfo {
	return methodInfos(b.abi)
}

func methodInfos(parsed abi.ABI) []MethodInfo {
	out := make([]MethodInfo, 0, len(parsed.Methods))
	for _, m := range parsed.Methods {
		out = append(out, MethodInfo{
			Name:      m.Name,
			Signature: m.Sig,
			Selector:  Selector(m.Sig),
			View:      m.IsConstant(),
			Payable:   m.IsPayable(),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
