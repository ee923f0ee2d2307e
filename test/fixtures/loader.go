package fixtures

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

// Deployed contract addresses on the dev chain.
var (
	LogicAddress   = common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3")
	TokenAddress   = common.HexToAddress("0xe7f1725E7734CE288F8367e1Bb143E90bb3F0512")
	BondingAddress = common.HexToAddress("0x9fE46736679d2D9a65F0992F2272dE9f3c7fa6e0")
)

// WriteArtifacts writes Truffle-style build artifacts for the three
// contracts, deployed on networkID, into a temp dir and returns it. The
// artifacts carry no ABI so the built-in one is used.
func WriteArtifacts(t *testing.T, networkID string) string {
	t.Helper()
	dir := t.TempDir()
	for name, addr := range map[string]common.Address{
		"DonationLogic":     LogicAddress,
		"Token":             TokenAddress,
		"BondingCurveVault": BondingAddress,
	} {
		art := map[string]interface{}{
			"contractName": name,
			"networks": map[string]interface{}{
				networkID: map[string]string{"address": addr.Hex()},
			},
		}
		data, err := json.MarshalIndent(art, "", "  ")
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(filepath.Join(dir, name+".json"), data, 0o600))
	}
	return dir
}
