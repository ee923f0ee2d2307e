package donation

import (
	"errors"
	"fmt"
	"os"

	"github.com/Mohsinsiddi/bonded/internal/config"
	"github.com/Mohsinsiddi/bonded/internal/contract"
)

// Descriptors locate the three contracts.
type Descriptors struct {
	Logic   contract.Descriptor
	Token   contract.Descriptor
	Bonding contract.Descriptor
}

// Bindings are provider-bound handles to the three deployed contracts.
type Bindings struct {
	Logic   *contract.Binding
	Token   *contract.Binding
	Bonding *contract.Binding
}

// DescriptorsFromConfig loads the build artifacts from the configured
// directory and applies address overrides. A missing artifact file is not an
// error here; the built-in ABI is used and the contract then needs an
// address override to resolve.
func DescriptorsFromConfig(cfg *config.Config) (Descriptors, error) {
	logic, err := descriptor(cfg, "DonationLogic", contract.BuiltinLogic, config.ArtifactLogic, cfg.Contracts.Logic)
	if err != nil {
		return Descriptors{}, err
	}
	token, err := descriptor(cfg, "Token", contract.BuiltinToken, config.ArtifactToken, cfg.Contracts.Token)
	if err != nil {
		return Descriptors{}, err
	}
	bonding, err := descriptor(cfg, "BondingCurveVault", contract.BuiltinBonding, config.ArtifactBonding, cfg.Contracts.Bonding)
	if err != nil {
		return Descriptors{}, err
	}
	return Descriptors{Logic: logic, Token: token, Bonding: bonding}, nil
}

func descriptor(cfg *config.Config, name, builtin, file, override string) (contract.Descriptor, error) {
	d := contract.Descriptor{Name: name, BuiltinID: builtin, Address: override}
	art, err := contract.LoadArtifact(cfg.ArtifactPath(file))
	switch {
	case err == nil:
		d.Artifact = art
	case errors.Is(err, os.ErrNotExist):
	default:
		return d, err
	}
	return d, nil
}

// ResolveBindings binds each descriptor to the session's provider for the
// session's network. It makes no chain calls.
func ResolveBindings(s *Session, d Descriptors) (*Bindings, error) {
	bind := func(desc contract.Descriptor) (*contract.Binding, error) {
		parsed, addr, err := desc.Resolve(s.NetworkID)
		if err != nil {
			return nil, &BindingError{Contract: desc.Name, Network: s.NetworkID, Err: err}
		}
		return contract.NewBinding(desc.Name, addr, parsed, s.Backend), nil
	}

	logic, err := bind(d.Logic)
	if err != nil {
		return nil, err
	}
	token, err := bind(d.Token)
	if err != nil {
		return nil, err
	}
	bonding, err := bind(d.Bonding)
	if err != nil {
		return nil, err
	}
	return &Bindings{Logic: logic, Token: token, Bonding: bonding}, nil
}

func (b *Bindings) String() string {
	return fmt.Sprintf("logic=%s token=%s bonding=%s", b.Logic.Address.Hex(), b.Token.Address.Hex(), b.Bonding.Address.Hex())
}
