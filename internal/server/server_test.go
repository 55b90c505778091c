package server

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Mohsinsiddi/swapctl/internal/contract"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() { gin.SetMode(gin.TestMode) }

var (
	user     = common.HexToAddress("0x00000000000000000000000000000000000000aa")
	stranger = common.HexToAddress("0x00000000000000000000000000000000000000bb")
	c1       = common.HexToAddress("0x00000000000000000000000000000000000000c1")
	c2       = common.HexToAddress("0x00000000000000000000000000000000000000c2")
)

// fakeSwappers answers owner() and allowed(account) per contract.
type fakeSwappers struct {
	owners  map[common.Address]common.Address
	allowed map[common.Address]map[common.Address]bool
	broken  map[common.Address]bool
	hung    map[common.Address]bool
}

func (f *fakeSwappers) CallContract(ctx context.Context, msg ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	to := *msg.To
	if f.broken[to] {
		return nil, errors.New("connection refused")
	}
	if f.hung[to] {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	swapper := contract.MustABI(contract.IDSwapper)
	switch hex.EncodeToString(msg.Data[:4]) {
	case hex.EncodeToString(swapper.Methods["owner"].ID):
		return swapper.Methods["owner"].Outputs.Pack(f.owners[to])
	case hex.EncodeToString(swapper.Methods["allowed"].ID):
		args, err := swapper.Methods["allowed"].Inputs.Unpack(msg.Data[4:])
		if err != nil {
			return nil, err
		}
		return swapper.Methods["allowed"].Outputs.Pack(f.allowed[to][args[0].(common.Address)])
	}
	return nil, nil
}

func (f *fakeSwappers) CodeAt(context.Context, common.Address, *big.Int) ([]byte, error) {
	return []byte{1}, nil
}

func newFake() *fakeSwappers {
	return &fakeSwappers{
		owners: map[common.Address]common.Address{
			c1: common.HexToAddress("0x00000000000000000000000000000000000000ff"),
			c2: user,
		},
		allowed: map[common.Address]map[common.Address]bool{
			c1: {stranger: true},
		},
		broken: map[common.Address]bool{},
		hung:   map[common.Address]bool{},
	}
}

func do(t *testing.T, s *Server, method, path, body string) (int, CheckResponse) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	var resp CheckResponse
	if rec.Body.Len() > 0 && strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	}
	return rec.Code, resp
}

func TestCheckAllowanceSingleContract(t *testing.T) {
	s := New(Options{Caller: newFake()})

	code, resp := do(t, s, http.MethodPost, "/api/checkAllowance",
		`{"address":"`+stranger.Hex()+`","contractAddress":"`+c1.Hex()+`"}`)
	assert.Equal(t, http.StatusOK, code)
	assert.True(t, resp.IsAllowed)
	assert.False(t, resp.IsOwner)
	assert.Equal(t, c1.Hex(), resp.ContractAddress)

	code, resp = do(t, s, http.MethodPost, "/api/checkAllowance",
		`{"address":"`+user.Hex()+`","contractAddress":"`+c1.Hex()+`"}`)
	assert.Equal(t, http.StatusOK, code)
	assert.False(t, resp.IsAllowed)
	assert.Empty(t, resp.Error)
}

func TestCheckAllowanceOwnerIsAllowed(t *testing.T) {
	s := New(Options{Caller: newFake()})
	code, resp := do(t, s, http.MethodPost, "/api/checkAllowance",
		`{"address":"`+strings.ToLower(user.Hex())+`","contractAddress":"`+c2.Hex()+`"}`)
	assert.Equal(t, http.StatusOK, code)
	assert.True(t, resp.IsAllowed)
	assert.True(t, resp.IsOwner)
}

func TestCheckAllowanceProbesCandidates(t *testing.T) {
	f := newFake()
	f.broken[c1] = true
	s := New(Options{Caller: f, Candidates: []common.Address{c1, c2}})

	code, resp := do(t, s, http.MethodPost, "/api/checkAllowance", `{"address":"`+user.Hex()+`"}`)
	assert.Equal(t, http.StatusOK, code)
	assert.True(t, resp.IsOwner)
	assert.Equal(t, c2.Hex(), resp.ContractAddress)
}

func TestCheckAllowanceHungNodeTimesOut(t *testing.T) {
	f := newFake()
	f.hung[c1] = true

	s := New(Options{Caller: f, ReadTimeout: 50 * time.Millisecond})
	code, resp := do(t, s, http.MethodPost, "/api/checkAllowance",
		`{"address":"`+user.Hex()+`","contractAddress":"`+c1.Hex()+`"}`)
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.NotEmpty(t, resp.Error)

	s = New(Options{Caller: f, Candidates: []common.Address{c1, c2}, ReadTimeout: 50 * time.Millisecond})
	code, resp = do(t, s, http.MethodPost, "/api/checkAllowance", `{"address":"`+user.Hex()+`"}`)
	assert.Equal(t, http.StatusOK, code)
	assert.True(t, resp.IsOwner)
	assert.Equal(t, c2.Hex(), resp.ContractAddress)
}

func TestCheckAllowanceProbeNoMatchKeepsDefault(t *testing.T) {
	s := New(Options{Caller: newFake(), Candidates: []common.Address{c1, c2}})

	nobody := common.HexToAddress("0x0000000000000000000000000000000000000123")
	code, resp := do(t, s, http.MethodPost, "/api/checkAllowance", `{"address":"`+nobody.Hex()+`"}`)
	assert.Equal(t, http.StatusOK, code)
	assert.False(t, resp.IsAllowed)
	assert.Equal(t, c1.Hex(), resp.ContractAddress)
}

func TestCheckAllowanceErrors(t *testing.T) {
	broken := newFake()
	broken.broken[c1] = true
	broken.broken[c2] = true

	tests := []struct {
		name       string
		opts       Options
		method     string
		body       string
		wantStatus int
	}{
		{"wrong method", Options{Caller: newFake()}, http.MethodGet, "", http.StatusMethodNotAllowed},
		{"bad json", Options{Caller: newFake()}, http.MethodPost, `{`, http.StatusBadRequest},
		{"missing address", Options{Caller: newFake()}, http.MethodPost, `{"contractAddress":"` + c1.Hex() + `"}`, http.StatusBadRequest},
		{"invalid address", Options{Caller: newFake()}, http.MethodPost, `{"address":"0x123","contractAddress":"` + c1.Hex() + `"}`, http.StatusBadRequest},
		{"invalid contract", Options{Caller: newFake()}, http.MethodPost, `{"address":"` + user.Hex() + `","contractAddress":"nope"}`, http.StatusBadRequest},
		{"no contract configured", Options{Caller: newFake()}, http.MethodPost, `{"address":"` + user.Hex() + `"}`, http.StatusBadRequest},
		{"read failure", Options{Caller: broken}, http.MethodPost, `{"address":"` + user.Hex() + `","contractAddress":"` + c1.Hex() + `"}`, http.StatusInternalServerError},
		{"every candidate fails", Options{Caller: broken, Candidates: []common.Address{c1, c2}}, http.MethodPost, `{"address":"` + user.Hex() + `"}`, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, resp := do(t, New(tt.opts), tt.method, "/api/checkAllowance", tt.body)
			assert.Equal(t, tt.wantStatus, code)
			assert.False(t, resp.IsAllowed)
			assert.NotEmpty(t, resp.Error)
		})
	}
}

func TestHealthAndMetrics(t *testing.T) {
	s := New(Options{Caller: newFake()})
	do(t, s, http.MethodPost, "/api/checkAllowance", `{"address":"`+user.Hex()+`","contractAddress":"`+c2.Hex()+`"}`)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `swapctl_allowance_checks_total{outcome="allowed"} 1`)
	assert.Contains(t, rec.Body.String(), `swapctl_http_requests_total{method="POST",path="/api/checkAllowance",status="200"} 1`)
}

func TestCORSPreflight(t *testing.T) {
	s := New(Options{Caller: newFake()})
	req := httptest.NewRequest(http.MethodOptions, "/api/checkAllowance", nil)
	req.Header.Set("Origin", "https://app.example.org")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRunStopsOnCancel(t *testing.T) {
	s := New(Options{Addr: "127.0.0.1:0", Caller: newFake()})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()
	cancel()
	assert.NoError(t, <-done)
}
