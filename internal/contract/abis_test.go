package contract_test

import (
	"encoding/hex"
	"testing"

	"github.com/Mohsinsiddi/swapctl/internal/contract"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllBuiltinsSorted(t *testing.T) {
	var ids []string
	for _, b := range contract.AllBuiltins() {
		ids = append(ids, b.ID)
	}
	assert.Equal(t, []string{"erc20", "erc721", "swapper", "withdrawal-queue"}, ids)
}

func TestGetBuiltinNotFound(t *testing.T) {
	_, ok := contract.GetBuiltin("this-id-does-not-exist-xyz")
	assert.False(t, ok)
}

func TestRegisterBuiltinPanicsOnBadJSON(t *testing.T) {
	assert.Panics(t, func() {
		contract.RegisterBuiltin("broken", "Broken", "", `[{"type":"function","name":`)
	})
}

func TestTokenSelectors(t *testing.T) {
	tokenABI := contract.MustABI(contract.IDToken)
	tests := map[string]string{
		"balanceOf":                 "70a08231",
		"approve":                   "095ea7b3",
		"transferFrom":              "23b872dd",
		"permit":                    "d505accf",
		"nonces":                    "7ecebe00",
		"DOMAIN_SEPARATOR":          "3644e515",
		"transferWithAuthorization": "e3ee160e",
		"authorizationState":        "e94a0102",
	}
	for method, want := range tests {
		t.Run(method, func(t *testing.T) {
			m, ok := tokenABI.Methods[method]
			require.True(t, ok)
			assert.Equal(t, want, hex.EncodeToString(m.ID))
		})
	}
}

func TestSwapperSurfaceComplete(t *testing.T) {
	swapper := contract.MustABI(contract.IDSwapper)
	for _, m := range []string{
		"owner", "allowed", "allow", "balances", "withdraw", "withdrawEth", "withdrawSteth",
		"depositEth", "depositSteth", "execute", "getEthBalance", "getStethBalance", "totalEth",
	} {
		_, ok := swapper.Methods[m]
		assert.True(t, ok, m)
	}
	assert.True(t, swapper.Methods["depositEth"].IsPayable())
	assert.False(t, swapper.Methods["depositSteth"].IsPayable())
}
