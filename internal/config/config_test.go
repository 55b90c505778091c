package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Mohsinsiddi/swapctl/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	swapperA = "0x404079604e7d565d068Ac8e8Eb213b4f05b174f4"
	swapperB = "0x1111111111111111111111111111111111111111"
)

func TestLoadDefaultConfig(t *testing.T) {
	dir := t.TempDir()
	cfg, err := config.Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "mainnet", cfg.DefaultNetwork)
	assert.Equal(t, "fastest", cfg.RPCAlgorithm)
	assert.Equal(t, ":8080", cfg.ServerAddr)
	assert.Equal(t, 2*time.Second, cfg.PollEvery())
	assert.Equal(t, time.Hour, cfg.AuthValidity())
	assert.Empty(t, cfg.Contracts)
	assert.NotNil(t, cfg.CustomRPCs)
}

func TestSaveAndReloadConfig(t *testing.T) {
	dir := t.TempDir()
	cfg, err := config.Load(dir)
	require.NoError(t, err)

	cfg.DefaultNetwork = "sepolia"
	cfg.DefaultWallet = "mywallet"
	cfg.RPCAlgorithm = "round-robin"
	cfg.PollInterval = 5
	require.NoError(t, cfg.AddContract(swapperA))

	require.NoError(t, cfg.Save())

	reloaded, err := config.Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "sepolia", reloaded.DefaultNetwork)
	assert.Equal(t, "mywallet", reloaded.DefaultWallet)
	assert.Equal(t, "round-robin", reloaded.RPCAlgorithm)
	assert.Equal(t, 5*time.Second, reloaded.PollEvery())
	assert.Equal(t, []string{swapperA}, reloaded.Contracts)
}

func TestConfigFilePermissions(t *testing.T) {
	dir := t.TempDir()
	cfg, _ := config.Load(dir)
	require.NoError(t, cfg.Save())

	info, err := os.Stat(filepath.Join(dir, "config.json"))
	require.NoError(t, err, "config.json should be created on save")
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	cfg, _ := config.Load(dir)
	cfg.DefaultNetwork = "holesky"
	require.NoError(t, cfg.Save())

	t.Setenv("SWAPCTL_DEFAULT_NETWORK", "local")
	t.Setenv("SWAPCTL_CONTRACTS", swapperA+","+swapperB)
	t.Setenv("SWAPCTL_POLL_INTERVAL", "7")

	reloaded, err := config.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "local", reloaded.DefaultNetwork)
	assert.Equal(t, []string{swapperA, swapperB}, reloaded.Contracts)
	assert.Equal(t, 7*time.Second, reloaded.PollEvery())
}

func TestConfigDirFromEnv(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("SWAPCTL_CONFIG_DIR", dir)

	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, dir, cfg.Dir())
	assert.Equal(t, filepath.Join(dir, "wallets.json"), cfg.WalletsPath())
}

func TestDotEnvFileIsRead(t *testing.T) {
	work := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(work, ".env"),
		[]byte("SWAPCTL_SERVER_ADDR=127.0.0.1:9999\n"), 0o600))
	t.Chdir(work)
	// godotenv sets the process env directly; register cleanup first.
	t.Setenv("SWAPCTL_SERVER_ADDR", "")
	os.Unsetenv("SWAPCTL_SERVER_ADDR") //nolint:errcheck

	cfg, err := config.Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9999", cfg.ServerAddr)
}

func TestCandidatesKeepOrder(t *testing.T) {
	cfg, _ := config.Load(t.TempDir())
	require.NoError(t, cfg.AddContract(swapperB))
	require.NoError(t, cfg.AddContract(swapperA))

	got, err := cfg.Candidates()
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, swapperB, got[0].Hex())
	assert.Equal(t, swapperA, got[1].Hex())
}

func TestAddContractRejectsDuplicateAnyCase(t *testing.T) {
	cfg, _ := config.Load(t.TempDir())
	require.NoError(t, cfg.AddContract(swapperA))
	assert.Error(t, cfg.AddContract("0x404079604e7d565d068ac8e8eb213b4f05b174f4"))
}

func TestAddContractRejectsBadAddress(t *testing.T) {
	cfg, _ := config.Load(t.TempDir())
	assert.Error(t, cfg.AddContract("not-an-address"))
	assert.Error(t, cfg.AddContract("404079604e7d565d068ac8e8eb213b4f05b174f4"))
}

func TestRemoveContract(t *testing.T) {
	cfg, _ := config.Load(t.TempDir())
	require.NoError(t, cfg.AddContract(swapperA))
	require.NoError(t, cfg.AddContract(swapperB))

	require.NoError(t, cfg.RemoveContract(swapperA))
	assert.Equal(t, []string{swapperB}, cfg.Contracts)
	assert.Error(t, cfg.RemoveContract(swapperA))
}

func TestCandidatesRejectsGarbage(t *testing.T) {
	cfg, _ := config.Load(t.TempDir())
	cfg.Contracts = []string{"0xnope"}
	_, err := cfg.Candidates()
	assert.Error(t, err)
}

func TestAddCustomRPC(t *testing.T) {
	cfg, err := config.Load(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, cfg.AddRPC("sepolia", "https://custom.sepolia.rpc"))
	assert.Contains(t, cfg.GetRPCs("sepolia"), "https://custom.sepolia.rpc")
}

func TestAddDuplicateRPCErrors(t *testing.T) {
	cfg, _ := config.Load(t.TempDir())

	cfg.AddRPC("sepolia", "https://custom.sepolia.rpc") //nolint:errcheck
	err := cfg.AddRPC("sepolia", "https://custom.sepolia.rpc")
	assert.Error(t, err)
}

func TestRemoveCustomRPC(t *testing.T) {
	cfg, _ := config.Load(t.TempDir())

	cfg.AddRPC("mainnet", "https://rpc1") //nolint:errcheck
	cfg.AddRPC("mainnet", "https://rpc2") //nolint:errcheck

	require.NoError(t, cfg.RemoveRPC("mainnet", "https://rpc1"))

	rpcs := cfg.GetRPCs("mainnet")
	assert.NotContains(t, rpcs, "https://rpc1")
	assert.Contains(t, rpcs, "https://rpc2")
	assert.Error(t, cfg.RemoveRPC("mainnet", "https://nonexistent.rpc"))
}

func TestCustomRPCsSurviveReload(t *testing.T) {
	dir := t.TempDir()
	cfg, _ := config.Load(dir)
	cfg.AddRPC("mainnet", "https://rpc1") //nolint:errcheck
	require.NoError(t, cfg.Save())

	reloaded, err := config.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://rpc1"}, reloaded.GetRPCs("mainnet"))
}

func TestLoadFromNonExistentDir(t *testing.T) {
	dir := t.TempDir() + "/subdir"
	cfg, err := config.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "mainnet", cfg.DefaultNetwork)
}
