package manifest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Mohsinsiddi/swapctl/internal/chain"
	"github.com/Mohsinsiddi/swapctl/internal/config"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	addrA = "0x1111111111111111111111111111111111111111"
	addrB = "0x2222222222222222222222222222222222222222"
	addrC = "0x3333333333333333333333333333333333333333"
)

func serve(t *testing.T, code int, body string) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(code)
		w.Write([]byte(body)) //nolint:errcheck
	}))
	t.Cleanup(srv.Close)
	return srv.URL
}

func TestFetch(t *testing.T) {
	url := serve(t, http.StatusOK, `{"contracts":{"mainnet":["`+addrA+`","`+addrB+`"]}}`)
	m, err := New(nil).Fetch(context.Background(), url)
	require.NoError(t, err)

	list, err := m.For("Mainnet")
	require.NoError(t, err)
	assert.Equal(t, []common.Address{common.HexToAddress(addrA), common.HexToAddress(addrB)}, list)

	empty, err := m.For("sepolia")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestFetch_Errors(t *testing.T) {
	_, err := New(nil).Fetch(context.Background(), serve(t, http.StatusNotFound, ``))
	assert.ErrorContains(t, err, "HTTP 404")

	_, err = New(nil).Fetch(context.Background(), serve(t, http.StatusOK, `[`))
	assert.ErrorContains(t, err, "parsing manifest")
}

func TestFor_InvalidAddress(t *testing.T) {
	m := &Manifest{Contracts: map[string][]string{"mainnet": {"0xnope"}}}
	_, err := m.For("mainnet")
	assert.ErrorIs(t, err, chain.ErrInvalidAddress)
}

func TestSync_AppendsNewInOrder(t *testing.T) {
	cfg, err := config.Load(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, cfg.AddContract(addrB))

	url := serve(t, http.StatusOK, `{"contracts":{"sepolia":["`+addrA+`","`+addrB+`","`+addrC+`"]}}`)
	added, err := New(nil).Sync(context.Background(), url, "sepolia", cfg)
	require.NoError(t, err)
	assert.Equal(t, []common.Address{common.HexToAddress(addrA), common.HexToAddress(addrC)}, added)

	all, err := cfg.Candidates()
	require.NoError(t, err)
	assert.Equal(t, []common.Address{
		common.HexToAddress(addrB),
		common.HexToAddress(addrA),
		common.HexToAddress(addrC),
	}, all)

	again, err := New(nil).Sync(context.Background(), url, "sepolia", cfg)
	require.NoError(t, err)
	assert.Empty(t, again)
}
