package ui

import (
	"bytes"
	"context"
	"errors"
	"math/big"
	"strings"
	"testing"
	"time"

	"github.com/Mohsinsiddi/swapctl/internal/access"
	"github.com/Mohsinsiddi/swapctl/internal/chain"
	"github.com/Mohsinsiddi/swapctl/internal/contract"
	"github.com/Mohsinsiddi/swapctl/internal/dashboard"
	"github.com/Mohsinsiddi/swapctl/internal/txflow"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var swapperAddr = common.HexToAddress("0x404079604e7d565d068ac8e8eb213b4f05b174f4")

func eth(n int64) *big.Int { return new(big.Int).Mul(big.NewInt(n), big.NewInt(1e18)) }

func sampleOverview() *dashboard.Overview {
	return &dashboard.Overview{
		Swapper:    swapperAddr,
		Owner:      dashboard.Field[common.Address]{Value: common.HexToAddress("0xaa")},
		TotalEth:   dashboard.Field[*big.Int]{Value: eth(10)},
		EthBalance: dashboard.Field[*big.Int]{Value: eth(2)},
		Steth:      dashboard.Field[*big.Int]{Err: errors.New("rpc timeout")},
		Weth:       dashboard.Field[*big.Int]{Value: eth(4)},
		Withdrawals: dashboard.Field[[]dashboard.Withdrawal]{Value: []dashboard.Withdrawal{
			{ID: big.NewInt(7), WithdrawalStatus: contract.WithdrawalStatus{AmountOfStETH: eth(5), Timestamp: big.NewInt(1_700_000_000), IsFinalized: true}},
			{ID: big.NewInt(8), WithdrawalStatus: contract.WithdrawalStatus{AmountOfStETH: eth(2), Timestamp: big.NewInt(1_700_000_500)}},
		}},
	}
}

func TestRenderBalances(t *testing.T) {
	out := RenderBalances(sampleOverview())
	assert.Contains(t, out, swapperAddr.Hex())
	assert.Contains(t, out, "2 ETH")
	assert.Contains(t, out, "unavailable: rpc timeout")
	assert.Contains(t, out, "11 ETH", "total assets")
	assert.Contains(t, out, "1 ETH", "gains")
}

func TestRenderWithdrawals(t *testing.T) {
	out := RenderWithdrawals(sampleOverview())
	assert.Contains(t, out, "Finalized")
	assert.Contains(t, out, "Pending")
	assert.Contains(t, out, "2023-11-14")
	assert.Contains(t, out, "7 stETH queued")

	empty := &dashboard.Overview{}
	assert.Contains(t, RenderWithdrawals(empty), "No withdrawal requests")

	failed := &dashboard.Overview{Withdrawals: dashboard.Field[[]dashboard.Withdrawal]{Err: dashboard.ErrNotDeployed}}
	assert.Contains(t, RenderWithdrawals(failed), "not deployed")
}

func TestRenderAccess(t *testing.T) {
	c2 := common.HexToAddress("0xc2")
	out := RenderAccess("0xabc", access.Result{
		Contract: c2, Permitted: true, IsOwner: true,
		Checks: []access.Check{
			{Contract: common.HexToAddress("0xc1"), Role: access.RoleUnknown, Err: errors.New("boom")},
			{Contract: c2, Role: access.RoleOwner},
		},
	})
	assert.Contains(t, out, c2.Hex())
	assert.Contains(t, out, "owner")
	assert.Contains(t, out, "read failed")
}

func TestFormReporter(t *testing.T) {
	var out bytes.Buffer
	n, err := chain.NewRegistry().GetByName("mainnet")
	require.NoError(t, err)
	r := NewFormReporter(&out, n, false)
	hash := common.HexToHash("0x01")

	r.Observe(txflow.Event{State: txflow.AwaitingApproval})
	r.Observe(txflow.Event{State: txflow.Submitted, Hash: hash})
	r.Observe(txflow.Event{State: txflow.Confirmed, Hash: hash, Receipt: &types.Receipt{BlockNumber: big.NewInt(42), GasUsed: 21000}})

	s := out.String()
	assert.Contains(t, s, "Waiting for approval")
	assert.Contains(t, s, "https://etherscan.io/tx/"+hash.Hex())
	assert.Contains(t, s, "Confirmed in block 42")

	out.Reset()
	r.Observe(txflow.Event{State: txflow.Idle})
	assert.Contains(t, out.String(), "Cancelled")
}

func TestAdminModelTabsAndRefresh(t *testing.T) {
	calls := 0
	fetch := func(context.Context) (AdminData, error) {
		calls++
		return AdminData{Overview: sampleOverview()}, nil
	}
	m := NewAdminModel("mainnet", 0, fetch)
	assert.Contains(t, m.View(), "Loading")

	next, _ := m.Update(m.fetchCmd()())
	m = next.(AdminModel)
	assert.Equal(t, 1, calls)
	assert.Contains(t, m.View(), "Total assets")

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = next.(AdminModel)
	assert.Equal(t, TabWithdrawals, m.Active())
	assert.Contains(t, m.View(), "Finalized")

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("3")})
	m = next.(AdminModel)
	assert.Equal(t, TabAccess, m.Active())
	assert.Contains(t, m.View(), "No wallet connected")

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	m = next.(AdminModel)
	assert.Equal(t, TabWithdrawals, m.Active())

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	m = next.(AdminModel)
	require.NotNil(t, cmd)
	assert.Contains(t, m.View(), "refreshing")
	next, _ = m.Update(cmd())
	m = next.(AdminModel)
	assert.Equal(t, 2, calls)
}

func TestAdminModelShowsFetchError(t *testing.T) {
	m := NewAdminModel("local", time.Second, func(context.Context) (AdminData, error) {
		return AdminData{}, errors.New("dial tcp: connection refused")
	})
	next, _ := m.Update(m.fetchCmd()())
	view := next.(AdminModel).View()
	assert.True(t, strings.Contains(view, "connection refused"))
}

func TestAdminModelQuit(t *testing.T) {
	m := NewAdminModel("local", 0, nil)
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.Empty(t, next.(AdminModel).View())
}
