package chain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryGetByName(t *testing.T) {
	r := NewRegistry()

	n, err := r.GetByName("mainnet")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n.ChainID)
	assert.NotEmpty(t, n.RPCs)
	assert.NotEqual(t, [20]byte{}, [20]byte(n.StETH))
}

func TestRegistryEthereumAlias(t *testing.T) {
	r := NewRegistry()
	n, err := r.GetByName("Ethereum")
	require.NoError(t, err)
	assert.Equal(t, "mainnet", n.Name)
}

func TestRegistryUnknown(t *testing.T) {
	_, err := NewRegistry().GetByName("solana")
	assert.ErrorIs(t, err, ErrNetworkNotFound)
}

func TestRegistryGetByChainID(t *testing.T) {
	r := NewRegistry()
	n, err := r.GetByChainID(11155111)
	require.NoError(t, err)
	assert.Equal(t, "sepolia", n.Name)

	_, err = r.GetByChainID(999)
	assert.ErrorIs(t, err, ErrNetworkNotFound)
}

func TestRegistryNamesSorted(t *testing.T) {
	assert.Equal(t, []string{"holesky", "local", "mainnet", "sepolia"}, NewRegistry().Names())
}

func TestTxURL(t *testing.T) {
	r := NewRegistry()
	main, _ := r.GetByName("mainnet")
	assert.Equal(t, "https://etherscan.io/tx/0xabc", main.TxURL("0xabc"))

	local, _ := r.GetByName("local")
	assert.Empty(t, local.TxURL("0xabc"))
}
