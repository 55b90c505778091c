package ens

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------------------------------------------------------------------------
// Namehash: EIP-137 vectors
// ---------------------------------------------------------------------------

func TestNamehash_Empty(t *testing.T) {
	assert.Equal(t, common.Hash{}, Namehash(""))
}

func TestNamehash_ETH(t *testing.T) {
	assert.Equal(t, common.HexToHash("0x93cdeb708b7545dc668eb9280176169d1c33cfd8ed6f04690a0bcc88a93fc4ae"), Namehash("eth"))
}

func TestNamehash_FooETH(t *testing.T) {
	assert.Equal(t, common.HexToHash("0xde9b09fd7c5f901e23a3f19fecc54828e9c848539801e86591bd9801b019f84f"), Namehash("foo.eth"))
}

func TestNamehash_Subdomain(t *testing.T) {
	assert.NotEqual(t, Namehash("test.eth"), Namehash("sub.test.eth"))
	assert.NotEqual(t, Namehash("Test.eth"), Namehash("test.eth"), "labels are hashed as given")
}

func TestIsName(t *testing.T) {
	assert.True(t, IsName("vitalik.eth"))
	assert.True(t, IsName(" ops.swapper.eth "))
	assert.False(t, IsName("0xd8dA6BF26964aF9D7eEd9e03E53415D37aA96045"))
	assert.False(t, IsName("0x.eth"))
	assert.False(t, IsName("vitalik"))
}

// ---------------------------------------------------------------------------
// fake caller
// ---------------------------------------------------------------------------

type key struct {
	to       common.Address
	selector string
}

// fakeENS answers registry and resolver calls from a table.
type fakeENS map[key][]byte

func (f fakeENS) CallContract(ctx context.Context, msg ethereum.CallMsg, block *big.Int) ([]byte, error) {
	out, ok := f[key{*msg.To, common.Bytes2Hex(msg.Data[:4])}]
	if !ok {
		return nil, errors.New("execution reverted")
	}
	return out, nil
}

func (f fakeENS) CodeAt(ctx context.Context, a common.Address, block *big.Int) ([]byte, error) {
	return []byte{1}, nil
}

func word(a common.Address) []byte { return common.LeftPadBytes(a.Bytes(), 32) }

func encodeString(t *testing.T, s string) []byte {
	t.Helper()
	out, err := stringArgs.Pack(s)
	require.NoError(t, err)
	return out
}

var (
	publicResolver = common.HexToAddress("0x4976fb03C32e5B8cfe2b6cCB31c09Ba78EBaBa41")
	vitalik        = common.HexToAddress("0xd8dA6BF26964aF9D7eEd9e03E53415D37aA96045")
)

// ---------------------------------------------------------------------------
// Resolve / Lookup
// ---------------------------------------------------------------------------

func TestResolve(t *testing.T) {
	f := fakeENS{
		{Registry, "0178b8bf"}:       word(publicResolver),
		{publicResolver, "3b3b57de"}: word(vitalik),
	}
	addr, err := Resolve(context.Background(), f, "Vitalik.eth")
	require.NoError(t, err)
	assert.Equal(t, vitalik, addr)
}

func TestResolve_NoResolver(t *testing.T) {
	f := fakeENS{{Registry, "0178b8bf"}: make([]byte, 32)}
	_, err := Resolve(context.Background(), f, "nobody.eth")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestResolve_NoAddress(t *testing.T) {
	f := fakeENS{
		{Registry, "0178b8bf"}:       word(publicResolver),
		{publicResolver, "3b3b57de"}: make([]byte, 32),
	}
	_, err := Resolve(context.Background(), f, "empty.eth")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestResolve_RegistryError(t *testing.T) {
	_, err := Resolve(context.Background(), fakeENS{}, "vitalik.eth")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "querying registry")
}

func TestLookup(t *testing.T) {
	f := fakeENS{
		{Registry, "0178b8bf"}:       word(publicResolver),
		{publicResolver, "691f3431"}: encodeString(t, "vitalik.eth"),
		{publicResolver, "3b3b57de"}: word(vitalik),
	}
	name, err := Lookup(context.Background(), f, vitalik)
	require.NoError(t, err)
	assert.Equal(t, "vitalik.eth", name)
}

func TestLookup_MustResolveBack(t *testing.T) {
	f := fakeENS{
		{Registry, "0178b8bf"}:       word(publicResolver),
		{publicResolver, "691f3431"}: encodeString(t, "vitalik.eth"),
		{publicResolver, "3b3b57de"}: word(common.HexToAddress("0x1111111111111111111111111111111111111111")),
	}
	_, err := Lookup(context.Background(), f, vitalik)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestWordAddress(t *testing.T) {
	assert.Equal(t, vitalik, wordAddress(word(vitalik)))
	assert.Equal(t, common.Address{}, wordAddress([]byte{1, 2}))
	dirty := word(vitalik)
	dirty[0] = 1
	assert.Equal(t, common.Address{}, wordAddress(dirty))
}
