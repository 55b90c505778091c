package e2e_test

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var binaryPath string

func TestMain(m *testing.M) {
	tmp, err := os.MkdirTemp("", "swapctl-e2e-test")
	if err != nil {
		panic(err)
	}
	defer os.RemoveAll(tmp)

	binaryPath = filepath.Join(tmp, "swapctl")
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

// runCLI runs the binary offline against a private config dir.
func runCLI(t *testing.T, configDir string, args ...string) (string, error) {
	t.Helper()
	cmd := exec.Command(binaryPath, args...)
	cmd.Dir = t.TempDir()
	cmd.Env = append(os.Environ(), "SWAPCTL_CONFIG_DIR="+configDir, "NO_COLOR=1")
	out, err := cmd.CombinedOutput()
	return string(out), err
}

func TestVersionFlag(t *testing.T) {
	out, err := runCLI(t, t.TempDir(), "--version")
	require.NoError(t, err)
	assert.Contains(t, out, "swapctl")
}

func TestHelpListsCommands(t *testing.T) {
	out, err := runCLI(t, t.TempDir(), "--help")
	require.NoError(t, err)
	for _, c := range []string{"deposit", "withdraw", "allow", "access", "status", "permit", "authz", "serve"} {
		assert.Contains(t, out, c)
	}
}

func TestNetworkList(t *testing.T) {
	out, err := runCLI(t, t.TempDir(), "network", "list")
	require.NoError(t, err)
	for _, n := range []string{"mainnet", "sepolia", "holesky", "local"} {
		assert.Contains(t, out, n)
	}
}

func TestTokens(t *testing.T) {
	out, err := runCLI(t, t.TempDir(), "tokens")
	require.NoError(t, err)
	assert.Contains(t, out, "USDC")
	assert.Contains(t, out, "transfer-with-authorization")
	assert.Contains(t, out, "unsupported", "DAI has no supported scheme")
}

func TestConfigContracts(t *testing.T) {
	dir := t.TempDir()
	a := "0x1111111111111111111111111111111111111111"
	b := "0x2222222222222222222222222222222222222222"

	_, err := runCLI(t, dir, "config", "add-contract", a)
	require.NoError(t, err)
	out, err := runCLI(t, dir, "config", "add-contract", b)
	require.NoError(t, err)
	assert.Contains(t, out, "#2")

	_, err = runCLI(t, dir, "config", "add-contract", a)
	assert.Error(t, err, "duplicates are rejected")

	out, err = runCLI(t, dir, "config", "list")
	require.NoError(t, err)
	assert.Less(t, strings.Index(out, a), strings.Index(out, b), "probe order is insertion order")

	_, err = runCLI(t, dir, "config", "remove-contract", a)
	require.NoError(t, err)
	out, err = runCLI(t, dir, "config", "list")
	require.NoError(t, err)
	assert.NotContains(t, out, a)
}

func TestInvalidAddressNeverDials(t *testing.T) {
	out, err := runCLI(t, t.TempDir(), "config", "add-contract", "0x1234")
	require.Error(t, err)
	assert.Contains(t, out, "Invalid input")
}

func TestWatchOnlyWallet(t *testing.T) {
	dir := t.TempDir()
	addr := "0xd8dA6BF26964aF9D7eEd9e03E53415D37aA96045"

	_, err := runCLI(t, dir, "wallet", "add", "watcher", addr)
	require.NoError(t, err)
	out, err := runCLI(t, dir, "wallet", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "watcher")
	assert.Contains(t, out, "watch-only")

	out, err = runCLI(t, dir, "deposit", "eth", "1", "--wallet", "watcher")
	require.Error(t, err)
	assert.Contains(t, out, "watch-only")
}

func TestDepositRejectsBadAmountOffline(t *testing.T) {
	out, err := runCLI(t, t.TempDir(), "deposit", "eth", "1e18")
	require.Error(t, err)
	assert.Contains(t, out, "Invalid input")
}
