package contract

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

var (
	// ErrNotDeployed is returned when an artifact has no deployment record
	// for the active network.
	ErrNotDeployed = errors.New("contract not deployed on this network")

	// ErrNoABI is returned when neither the artifact nor a built-in supplies an ABI.
	ErrNoABI = errors.New("no ABI available")
)

// Deployment is one per-network entry of a build artifact.
type Deployment struct {
	Address         string `json:"address"`
	TransactionHash string `json:"transactionHash,omitempty"`
}

// Artifact is a compiled contract descriptor: ABI plus deployed addresses.
type Artifact struct {
	ContractName string
	ABI          *abi.ABI // nil when the file carries no ABI
	Networks     map[string]Deployment
	Source       string // file path or label, for error messages
}

// LoadArtifact reads a build artifact from disk. Two layouts are detected
// automatically:
//   - Truffle:        {"contractName", "abi", "networks": {"<id>": {"address"}}}
//   - hardhat-deploy: {"address", "abi"} (one file per network)
func LoadArtifact(path string) (*Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read artifact file: %w", err)
	}
	return ParseArtifact(data, path)
}

// ParseArtifact decodes artifact JSON. source labels error messages.
func ParseArtifact(data []byte, source string) (*Artifact, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("artifact file is empty: %s", source)
	}
	if data[0] != '{' {
		return nil, fmt.Errorf("artifact %s is not a JSON object", source)
	}

	var raw struct {
		ContractName string                `json:"contractName"`
		ABI          json.RawMessage       `json:"abi"`
		Networks     map[string]Deployment `json:"networks"`
		Address      string                `json:"address"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("invalid artifact JSON %s: %w", source, err)
	}

	a := &Artifact{
		ContractName: raw.ContractName,
		Networks:     raw.Networks,
		Source:       source,
	}
	if a.Networks == nil {
		a.Networks = make(map[string]Deployment)
	}
	if raw.Address != "" {
		a.Networks[anyNetwork] = Deployment{Address: raw.Address}
	}

	if len(raw.ABI) > 1 && raw.ABI[0] == '[' {
		parsed, err := abi.JSON(bytes.NewReader(raw.ABI))
		if err != nil {
			return nil, fmt.Errorf("parsing artifact ABI %s: %w", source, err)
		}
		a.ABI = &parsed
	}
	return a, nil
}

// anyNetwork keys a network-agnostic deployment (hardhat-deploy layout).
const anyNetwork = "*"

// Address returns the deployed address for networkID.
func (a *Artifact) Address(networkID string) (common.Address, error) {
	d, ok := a.Networks[networkID]
	if !ok {
		d, ok = a.Networks[anyNetwork]
	}
	if !ok || strings.TrimSpace(d.Address) == "" {
		return common.Address{}, fmt.Errorf("%w: %s on network %s", ErrNotDeployed, a.label(), networkID)
	}
	if !common.IsHexAddress(d.Address) {
		return common.Address{}, fmt.Errorf("artifact %s has malformed address %q for network %s", a.label(), d.Address, networkID)
	}
	return common.HexToAddress(d.Address), nil
}

func (a *Artifact) label() string {
	if a.ContractName != "" {
		return a.ContractName
	}
	return a.Source
}

// Descriptor says where one contract's ABI and address come from. At least
// one of Artifact or Address must be set, and at least one of Artifact.ABI or
// BuiltinID must supply an ABI.
type Descriptor struct {
	Name      string    // display name, e.g. "DonationLogic"
	BuiltinID string    // fallback ABI
	Artifact  *Artifact // may be nil
	Address   string    // explicit address; wins over the artifact's networks
}

// Resolve returns the ABI and deployed address for networkID.
func (d Descriptor) Resolve(networkID string) (abi.ABI, common.Address, error) {
	parsed, err := d.abi()
	if err != nil {
		return abi.ABI{}, common.Address{}, err
	}

	if d.Address != "" {
		if !common.IsHexAddress(d.Address) {
			return abi.ABI{}, common.Address{}, fmt.Errorf("%s: invalid address %q", d.Name, d.Address)
		}
		return parsed, common.HexToAddress(d.Address), nil
	}
	if d.Artifact == nil {
		return abi.ABI{}, common.Address{}, fmt.Errorf("%w: %s has no artifact for network %s", ErrNotDeployed, d.Name, networkID)
	}
	addr, err := d.Artifact.Address(networkID)
	if err != nil {
		return abi.ABI{}, common.Address{}, err
	}
	return parsed, addr, nil
}

func (d Descriptor) abi() (abi.ABI, error) {
	if d.Artifact != nil && d.Artifact.ABI != nil {
		return *d.Artifact.ABI, nil
	}
	if b, ok := GetBuiltin(d.BuiltinID); ok {
		return b.ABI, nil
	}
	return abi.ABI{}, fmt.Errorf("%w for %s", ErrNoABI, d.Name)
}
