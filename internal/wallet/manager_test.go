package wallet

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddWithKeyDerivesAddress(t *testing.T) {
	m := NewManager()
	w, err := m.AddWithKey("dev", "0x"+testPrivKeyHex)
	require.NoError(t, err)

	assert.Equal(t, testSignerAddr, w.Address)
	assert.Equal(t, TypeSigning, w.Type)
	assert.Equal(t, "swapctl.dev", w.KeyRef)
	assert.NotEmpty(t, w.CreatedAt)

	key, err := m.Keystore().Retrieve(w.KeyRef)
	require.NoError(t, err)
	assert.Equal(t, testPrivKeyHex, key)
}

func TestAddWithKeyInvalid(t *testing.T) {
	_, err := NewManager().AddWithKey("bad", "not-a-key")
	assert.ErrorIs(t, err, ErrInvalidKey)
}

func TestAddDuplicateWalletErrors(t *testing.T) {
	m := NewManager()
	require.NoError(t, m.AddWatchOnly("w", common.HexToAddress(testSignerAddr)))
	assert.ErrorIs(t, m.AddWatchOnly("w", common.Address{}), ErrWalletExists)
	_, err := m.AddWithKey("w", testPrivKeyHex)
	assert.ErrorIs(t, err, ErrWalletExists)
}

func TestListSortedByName(t *testing.T) {
	m := NewManager()
	require.NoError(t, m.AddWatchOnly("zed", common.Address{1}))
	require.NoError(t, m.AddWatchOnly("amy", common.Address{2}))

	list, err := m.List()
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "amy", list[0].Name)
	assert.Equal(t, "zed", list[1].Name)
}

func TestRemoveDeletesKey(t *testing.T) {
	m := NewManager()
	w, err := m.AddWithKey("dev", testPrivKeyHex)
	require.NoError(t, err)

	require.NoError(t, m.Remove("dev"))
	_, err = m.Keystore().Retrieve(w.KeyRef)
	assert.ErrorIs(t, err, ErrKeyNotFound)
	assert.ErrorIs(t, m.Remove("dev"), ErrWalletNotFound)
}

func TestResolveDefault(t *testing.T) {
	m := NewManager()
	_, err := m.Resolve("")
	assert.ErrorIs(t, err, ErrNoWallet)

	require.NoError(t, m.AddWatchOnly("a", common.Address{1}))
	w, err := m.Resolve("")
	require.NoError(t, err)
	assert.Equal(t, "a", w.Name, "single wallet is the implicit default")

	require.NoError(t, m.AddWatchOnly("b", common.Address{2}))
	require.NoError(t, m.SetDefault("b"))
	w, err = m.Resolve("")
	require.NoError(t, err)
	assert.Equal(t, "b", w.Name)

	w, err = m.Resolve("a")
	require.NoError(t, err)
	assert.Equal(t, "a", w.Name)

	_, err = m.Resolve("nope")
	assert.ErrorIs(t, err, ErrWalletNotFound)
}

func TestJSONStorePersistsAcrossManagers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wallets.json")
	ks := NewInMemoryKeystore()

	m1 := NewManager(WithStore(NewJSONStore(path)), WithKeystore(ks))
	_, err := m1.AddWithKey("dev", testPrivKeyHex)
	require.NoError(t, err)
	require.NoError(t, m1.SetDefault("dev"))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	m2 := NewManager(WithStore(NewJSONStore(path)), WithKeystore(ks))
	w, err := m2.Get("dev")
	require.NoError(t, err)
	assert.Equal(t, testSignerAddr, w.Address)
	assert.True(t, w.IsDefault)
}

func TestJSONStoreLoadNoFile(t *testing.T) {
	wallets, err := NewJSONStore(filepath.Join(t.TempDir(), "none.json")).Load()
	require.NoError(t, err)
	assert.Empty(t, wallets)
}

func TestJSONStoreLoadCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wallets.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := NewJSONStore(path).Load()
	assert.Error(t, err)
}
