package authz

import (
	"context"
	"encoding/hex"
	"math/big"
	"testing"

	"github.com/Mohsinsiddi/swapctl/internal/contract"
	"github.com/Mohsinsiddi/swapctl/internal/wallet"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
	"github.com/stretchr/testify/require"
)

// Well-known Hardhat/Anvil test account #0. Never fund on mainnet.
const testPrivKeyHex = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"

var (
	usdc    = common.HexToAddress("0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48")
	spender = common.HexToAddress("0x00000000000000000000000000000000000000bb")
)

// fakeToken answers token view calls by selector; unknown selectors return
// empty data.
type fakeToken struct {
	results map[string][]byte
}

func newFakeToken() *fakeToken { return &fakeToken{results: map[string][]byte{}} }

func (f *fakeToken) set(t *testing.T, method string, outs ...interface{}) {
	t.Helper()
	m := contract.MustABI(contract.IDToken).Methods[method]
	data, err := m.Outputs.Pack(outs...)
	require.NoError(t, err)
	f.results[hex.EncodeToString(m.ID)] = data
}

func (f *fakeToken) CallContract(_ context.Context, msg ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	return f.results[hex.EncodeToString(msg.Data[:4])], nil
}

func (f *fakeToken) CodeAt(context.Context, common.Address, *big.Int) ([]byte, error) {
	return []byte{1}, nil
}

// testSigner signs with the in-memory test key, or rejects.
type testSigner struct {
	s      *wallet.Signer
	reject bool
	rows   [][2]string
}

func newTestSigner(t *testing.T) *testSigner {
	t.Helper()
	m := wallet.NewManager()
	w, err := m.AddWithKey("dev", testPrivKeyHex)
	require.NoError(t, err)
	return &testSigner{s: wallet.NewSigner(w, m.Keystore())}
}

func (s *testSigner) Account() common.Address { return s.s.Address() }

func (s *testSigner) SignTypedData(_ context.Context, td apitypes.TypedData, rows [][2]string) ([]byte, error) {
	s.rows = rows
	if s.reject {
		return nil, wallet.ErrUserRejected
	}
	return s.s.SignTypedData(td)
}
