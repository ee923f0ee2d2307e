// Package units converts between base-unit integers (wei, token base units)
// and their 18-decimal display strings. All conversions are exact; no
// floating-point value is ever produced.
package units

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

// Decimals is the fixed-point precision shared by ether and the donation token.
const Decimals = 18

// Gwei precision, used for gas prices.
const GweiDecimals = 9

// ErrInvalidAmount is returned for input that is not a plain non-negative
// decimal, or that carries more fractional digits than the unit allows.
var ErrInvalidAmount = errors.New("invalid amount")

// ToBaseUnits parses a decimal string such as "1.5" into base units with the
// given number of decimals. Exponents, signs and excess precision are rejected.
func ToBaseUnits(s string, decimals int32) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidAmount)
	}
	if err := checkPlainDecimal(s); err != nil {
		return nil, err
	}

	if strings.HasPrefix(s, ".") {
		s = "0" + s
	}
	if strings.HasSuffix(s, ".") {
		s += "0"
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}

	shifted := d.Shift(decimals)
	if !shifted.Equal(shifted.Truncate(0)) {
		return nil, fmt.Errorf("%w: %q has more than %d fractional digits", ErrInvalidAmount, s, decimals)
	}
	return shifted.BigInt(), nil
}

// FromBaseUnits renders base units as a decimal string with trailing zeros
// removed: 2e17 with 18 decimals is "0.2", 10e18 is "10".
func FromBaseUnits(v *big.Int, decimals int32) string {
	if v == nil {
		return "0"
	}
	return decimal.NewFromBigInt(v, -decimals).String()
}

// ParseEther converts a decimal ether (or token) amount into base units.
func ParseEther(s string) (*big.Int, error) { return ToBaseUnits(s, Decimals) }

// FormatEther renders base units as a decimal ether (or token) amount.
func FormatEther(v *big.Int) string { return FromBaseUnits(v, Decimals) }

// Gwei returns n gwei expressed in wei.
func Gwei(n uint64) *big.Int {
	return new(big.Int).Mul(new(big.Int).SetUint64(n), big.NewInt(1_000_000_000))
}

// ParsePositiveEther is ParseEther that also rejects zero.
func ParsePositiveEther(s string) (*big.Int, error) {
	v, err := ParseEther(s)
	if err != nil {
		return nil, err
	}
	if v.Sign() <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", ErrInvalidAmount)
	}
	return v, nil
}

// Percent returns part/whole*100 rounded to 2 decimals ("0" when whole is 0).
func Percent(part, whole *big.Int) string {
	if whole == nil || whole.Sign() == 0 || part == nil {
		return "0"
	}
	p := decimal.NewFromBigInt(part, 0).
		Mul(decimal.NewFromInt(100)).
		DivRound(decimal.NewFromBigInt(whole, 0), 2)
	return p.StringFixed(2)
}

// checkPlainDecimal accepts digits with at most one '.', nothing else.
func checkPlainDecimal(s string) error {
	dot := false
	digits := 0
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == '.' && !dot:
			dot = true
		default:
			return fmt.Errorf("%w: %q", ErrInvalidAmount, s)
		}
	}
	if digits == 0 {
		return fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	return nil
}
