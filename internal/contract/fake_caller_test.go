package contract_test

import (
	"context"
	"encoding/hex"
	"fmt"
	"math/big"
	"testing"

	"github.com/Mohsinsiddi/swapctl/internal/contract"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

// fakeCaller answers eth_call by (contract, 4-byte selector). Unknown calls
// return empty data, like an address without code.
type fakeCaller struct {
	results map[string][]byte
	errs    map[string]error
	calls   []string
}

func newFakeCaller() *fakeCaller {
	return &fakeCaller{results: map[string][]byte{}, errs: map[string]error{}}
}

func fakeKey(to common.Address, selector []byte) string {
	return to.Hex() + ":" + hex.EncodeToString(selector)
}

func (f *fakeCaller) CallContract(_ context.Context, msg ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	key := fakeKey(*msg.To, msg.Data[:4])
	f.calls = append(f.calls, key)
	if err, ok := f.errs[key]; ok {
		return nil, err
	}
	return f.results[key], nil
}

func (f *fakeCaller) CodeAt(context.Context, common.Address, *big.Int) ([]byte, error) {
	return []byte{0x1}, nil
}

// returns registers the ABI-encoded outputs of method on a contract.
func (f *fakeCaller) returns(t *testing.T, abiID string, to common.Address, method string, outs ...interface{}) {
	t.Helper()
	m, ok := contract.MustABI(abiID).Methods[method]
	require.True(t, ok, "method %s", method)
	data, err := m.Outputs.Pack(outs...)
	require.NoError(t, err)
	f.results[fakeKey(to, m.ID)] = data
}

func (f *fakeCaller) fails(abiID string, to common.Address, method string, err error) {
	m := contract.MustABI(abiID).Methods[method]
	f.errs[fakeKey(to, m.ID)] = err
}

func (f *fakeCaller) String() string { return fmt.Sprint(f.calls) }
