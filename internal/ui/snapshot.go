package ui

import (
	"fmt"
	"strings"

	"github.com/Mohsinsiddi/bonded/internal/donation"
	"github.com/Mohsinsiddi/bonded/internal/units"
)

// RenderSnapshot draws the dashboard for one snapshot. Owner-only controls
// appear only when the account owns the logic contract; the sweep line only
// once the token supply is zero.
func RenderSnapshot(s *donation.DomainSnapshot) string {
	sym := s.TokenSymbol
	var sb strings.Builder

	charity := s.CharityAddress.Hex()
	if !s.HasCharity() {
		charity += " (not set)"
	}
	sb.WriteString(KeyValueBlock("Charity Info", [][2]string{
		{"Charity address", charity},
		{"Charity balance", units.FormatEther(s.CharityBalance) + " ETH"},
	}))
	sb.WriteString("\n")

	sb.WriteString(KeyValueBlock("Bonding Curve Info", [][2]string{
		{"Bonded curve balance", units.FormatEther(s.BondingVaultBalance) + " ETH"},
	}))
	sb.WriteString("\n")

	sb.WriteString(KeyValueBlock("Token Info", [][2]string{
		{"Total supply", units.FormatEther(s.TokenSupply) + " " + sym},
	}))
	sb.WriteString("\n")

	sb.WriteString(KeyValueBlock("My Info", [][2]string{
		{"Account", s.Account.Hex()},
		{"Token balance", units.FormatEther(s.TokenBalance) + " " + sym},
		{"Portion of supply", s.PortionOfSupply() + "%"},
		{"ETH balance", units.FormatEther(s.AccountEthBalance) + " ETH"},
	}))
	sb.WriteString("\n")

	if s.CanAdminister() {
		sb.WriteString(RenderAdmin(s))
		sb.WriteString("\n")
	}
	return sb.String()
}

// RenderAdmin draws the owner-only section.
func RenderAdmin(s *donation.DomainSnapshot) string {
	pairs := [][2]string{
		{"Change charity", "bonded charity set <0x...>"},
	}
	if s.SweepEnabled() {
		pairs = append(pairs, [2]string{"Sweep remaining", units.FormatEther(s.BondingVaultBalance) + " ETH  (bonded sweep)"})
	}
	return KeyValueBlock("Admin dashboard", pairs)
}

// RenderFooter shows which read produced the snapshot.
func RenderFooter(s *donation.DomainSnapshot) string {
	return Meta(fmt.Sprintf("snapshot v%d · %s · %s", s.Version, s.Cause, s.ReadAt.Format("15:04:05")))
}

// RenderResult summarises a finished action.
func RenderResult(r *donation.Result) string {
	if r.Declined {
		return Warn(fmt.Sprintf("%s cancelled", r.Action))
	}
	msg := fmt.Sprintf("%s confirmed: %s", r.Action, r.TxHash.Hex())
	if r.Receipt != nil && r.Receipt.BlockNumber != nil {
		msg += fmt.Sprintf(" (block %d, gas used %d)", r.Receipt.BlockNumber.Uint64(), r.Receipt.GasUsed)
	}
	return Success(msg)
}
