package contract

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// BuiltinKind describes a contract whose ABI is embedded in the binary.
// Built-ins register themselves via init() in their own file; they are the
// fallback when a deployment artifact is missing or carries no ABI.
type BuiltinKind struct {
	ID          string  // machine key, e.g. "donation-logic"
	Name        string  // artifact contract name, e.g. "DonationLogic"
	Description string  // one-line summary
	ABI         abi.ABI // parsed ABI, ready to use
}

var builtinRegistry = map[string]BuiltinKind{}

// RegisterBuiltin adds a built-in ABI to the global registry.
// Call this from init() in the file that defines the ABI.
func RegisterBuiltin(b BuiltinKind) {
	builtinRegistry[b.ID] = b
}

// MustParseABI parses a JSON ABI literal and panics on error. Only use it
// for compiled-in ABIs.
func MustParseABI(js string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(js))
	if err != nil {
		panic(fmt.Sprintf("contract: invalid built-in ABI: %v", err))
	}
	return parsed
}

// GetBuiltin returns a built-in by ID. ok is false if not found.
func GetBuiltin(id string) (BuiltinKind, bool) {
	b, ok := builtinRegistry[id]
	return b, ok
}

// AllBuiltins returns all registered built-ins sorted by ID.
func AllBuiltins() []BuiltinKind {
	out := make([]BuiltinKind, 0, len(builtinRegistry))
	for _, b := range builtinRegistry {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
