package cmd

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/Mohsinsiddi/bonded/internal/ui"
	"github.com/Mohsinsiddi/bonded/internal/units"
	"github.com/spf13/cobra"
)

var convertCmd = &cobra.Command{
	Use:   "convert <amount> [unit]",
	Short: "Convert between ETH, Gwei, Wei, and hex/decimal",
	Long: `Convert between Ethereum denomination units and hex/decimal formats.
Conversions are exact; amounts with more precision than the unit allows are
rejected.

Units: eth, gwei, wei, hex
If no unit is given and the value starts with 0x, it's treated as hex.`,
	Example: `  bonded convert 1.5 eth          # → gwei + wei
  bonded convert 50 gwei          # → eth + wei
  bonded convert 1000000000 wei   # → eth + gwei
  bonded convert 0xff             # → 255
  bonded convert 255 hex          # → 0xff`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		unit := ""
		if len(args) > 1 {
			unit = args[1]
		}
		title, pairs, err := convert(args[0], unit)
		if err != nil {
			return err
		}
		for i := range pairs {
			pairs[i][1] = ui.Val(pairs[i][1])
		}
		fmt.Println(ui.KeyValueBlock(title, pairs))
		return nil
	},
}

// convert returns the rows for one conversion.
func convert(amount, unit string) (string, [][2]string, error) {
	unit = strings.ToLower(unit)
	if unit == "" && strings.HasPrefix(strings.ToLower(amount), "0x") {
		unit = "hex_input"
	}

	switch unit {
	case "", "eth", "ether":
		wei, err := units.ParseEther(amount)
		if err != nil {
			return "", nil, err
		}
		return "Unit Conversion", [][2]string{
			{"Input", amount + " ETH"},
			{"Gwei", units.FromBaseUnits(wei, units.GweiDecimals) + " gwei"},
			{"Wei", wei.String() + " wei"},
			{"Hex", "0x" + wei.Text(16)},
		}, nil

	case "gwei":
		wei, err := units.ToBaseUnits(amount, units.GweiDecimals)
		if err != nil {
			return "", nil, err
		}
		return "Unit Conversion", [][2]string{
			{"Input", amount + " gwei"},
			{"ETH", units.FormatEther(wei) + " ETH"},
			{"Wei", wei.String() + " wei"},
			{"Hex", "0x" + wei.Text(16)},
		}, nil

	case "wei":
		wei, err := units.ToBaseUnits(amount, 0)
		if err != nil {
			return "", nil, err
		}
		return "Unit Conversion", [][2]string{
			{"Input", amount + " wei"},
			{"ETH", units.FormatEther(wei) + " ETH"},
			{"Gwei", units.FromBaseUnits(wei, units.GweiDecimals) + " gwei"},
			{"Hex", "0x" + wei.Text(16)},
		}, nil

	case "hex_input":
		clean := strings.TrimPrefix(strings.TrimPrefix(amount, "0x"), "0X")
		n, ok := new(big.Int).SetString(clean, 16)
		if !ok || n.Sign() < 0 {
			return "", nil, fmt.Errorf("invalid hex value: %s", amount)
		}
		return "Hex → Decimal", [][2]string{
			{"Hex", amount},
			{"Decimal", n.String()},
		}, nil

	case "hex":
		n, ok := new(big.Int).SetString(amount, 10)
		if !ok || n.Sign() < 0 {
			return "", nil, fmt.Errorf("invalid decimal value: %s", amount)
		}
		return "Decimal → Hex", [][2]string{
			{"Decimal", amount},
			{"Hex", "0x" + n.Text(16)},
		}, nil
	}
	return "", nil, fmt.Errorf("unknown unit %q (use eth, gwei, wei or hex)", unit)
}
