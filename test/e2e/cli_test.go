package e2e_test

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Mohsinsiddi/bonded/test/fixtures"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var binaryPath string

func TestMain(m *testing.M) {
	// Build the binary before all E2E tests.
	tmp, err := os.MkdirTemp("", "bonded-e2e-test")
	if err != nil {
		panic(err)
	}
	defer os.RemoveAll(tmp)

	binaryPath = filepath.Join(tmp, "bonded")
	// Build from the module root (two levels up from test/e2e/).
	moduleRoot, err := filepath.Abs(filepath.Join("..", ".."))
	if err != nil {
		panic(err)
	}
	cmd := exec.Command("go", "build", "-o", binaryPath, ".")
	cmd.Dir = moduleRoot
	if out, err := cmd.CombinedOutput(); err != nil {
		panic("build failed: " + string(out))
	}

	os.Exit(m.Run())
}

type cli struct {
	env []string
}

func newCLI(t *testing.T, extra ...string) *cli {
	t.Helper()
	env := append(os.Environ(),
		"BONDED_CONFIG_DIR="+t.TempDir(),
		"BONDED_KEYRING_PASSWORD=e2e-password",
		"BONDED_LOG_LEVEL=error",
	)
	return &cli{env: append(env, extra...)}
}

// withChain points the CLI at a fresh dev chain and its artifacts.
func withChain(t *testing.T) (*cli, *fixtures.DevChain) {
	t.Helper()
	dev := fixtures.NewDevChain(t)
	return newCLI(t,
		"BONDED_RPC_URL="+dev.URL,
		"BONDED_ARTIFACTS_DIR="+fixtures.WriteArtifacts(t, fixtures.NetworkID),
	), dev
}

func (c *cli) run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := exec.Command(binaryPath, args...)
	cmd.Env = c.env
	cmd.Stdin = strings.NewReader(stdin)
	out, err := cmd.CombinedOutput()
	return string(out), err
}

func TestVersionFlag(t *testing.T) {
	out, err := newCLI(t).run(t, "", "--version")
	require.NoError(t, err)
	assert.Contains(t, out, "bonded")
	assert.Contains(t, out, "0.1.0")
}

func TestHelpCommand(t *testing.T) {
	out, err := newCLI(t).run(t, "", "--help")
	require.NoError(t, err)
	for _, sub := range []string{"status", "donate", "sell", "charity", "sweep", "watch", "contracts", "providers", "wallet", "config", "convert"} {
		assert.Contains(t, out, sub)
	}
	assert.Contains(t, out, "--yes")
}

func TestConvert(t *testing.T) {
	out, err := newCLI(t).run(t, "", "convert", "1.5", "eth")
	require.NoError(t, err)
	assert.Contains(t, out, "1500000000 gwei")
	assert.Contains(t, out, "1500000000000000000 wei")

	_, err = newCLI(t).run(t, "", "convert", "0.5", "wei")
	assert.Error(t, err)
}

func TestConfigSetAndShow(t *testing.T) {
	c := newCLI(t)
	_, err := c.run(t, "", "config", "set", "gas.price_gwei", "7")
	require.NoError(t, err)

	out, err := c.run(t, "", "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, `"price_gwei": 7`)
	assert.Contains(t, out, "http://127.0.0.1:8545")

	_, err = c.run(t, "", "config", "set", "network", "base")
	assert.Error(t, err)
}

func TestWalletLifecycle(t *testing.T) {
	c := newCLI(t)

	_, err := c.run(t, "", "wallet", "add", "watcher", "0x1234567890abcdef1234567890abcdef12345678")
	require.NoError(t, err)

	out, err := c.run(t, "", "wallet", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "watcher")
	assert.Contains(t, out, "watch-only")

	_, err = c.run(t, "", "wallet", "default", "watcher")
	assert.Error(t, err)

	_, err = c.run(t, "y\n", "wallet", "remove", "watcher")
	require.NoError(t, err)

	out, err = c.run(t, "", "wallet", "list")
	require.NoError(t, err)
	assert.NotContains(t, out, "watcher")
}

func TestStatus(t *testing.T) {
	c, _ := withChain(t)
	out, err := c.run(t, "", "status")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Charity Info")
	assert.Contains(t, out, "5 BOND")
	assert.Contains(t, out, "Admin dashboard")
}

func TestContracts(t *testing.T) {
	c, _ := withChain(t)
	out, err := c.run(t, "", "contracts", "--methods")
	require.NoError(t, err, out)
	assert.Contains(t, out, fixtures.LogicAddress.Hex())
	assert.Contains(t, out, "donate()")
	assert.Contains(t, out, "0x70a08231")
}

func TestDonateAndSell(t *testing.T) {
	c, dev := withChain(t)

	out, err := c.run(t, "", "donate", "1")
	require.NoError(t, err, out)
	assert.Contains(t, out, "donate confirmed")
	assert.Contains(t, out, "6 BOND")

	out, err = c.run(t, "n\n", "sell", "2")
	require.NoError(t, err, out)
	assert.Contains(t, out, "You will receive 0.2 ETH (0.1 ETH per BOND) in return for 2 BOND.")
	assert.Contains(t, out, "sell cancelled")

	out, err = c.run(t, "", "--yes", "sell", "2")
	require.NoError(t, err, out)
	assert.Contains(t, out, "sell confirmed")
	assert.Equal(t, []string{"donate", "sell"}, dev.Sent())
}

func TestSweepDisabledWhileSupplyRemains(t *testing.T) {
	c, dev := withChain(t)
	out, err := c.run(t, "", "--yes", "sweep")
	assert.Error(t, err)
	assert.Contains(t, out, "still outstanding")
	assert.Empty(t, dev.Sent())
}

func TestProviders(t *testing.T) {
	c, dev := withChain(t)
	out, err := c.run(t, "", "providers")
	require.NoError(t, err, out)
	assert.Contains(t, out, dev.URL)
	assert.Contains(t, out, "← session")
	assert.Contains(t, out, fixtures.NetworkID)
}
