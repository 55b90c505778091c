package ui

import (
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/Mohsinsiddi/swapctl/internal/access"
	"github.com/Mohsinsiddi/swapctl/internal/chain"
	"github.com/Mohsinsiddi/swapctl/internal/dashboard"
)

// ether renders a loaded amount, or the field's error.
func ether(f dashboard.Field[*big.Int], unit string) string {
	if !f.OK() {
		return StyleError.Render("unavailable: " + f.Err.Error())
	}
	return chain.FormatEther(f.Value) + " " + unit
}

func derived(v *big.Int, ok bool) string {
	if !ok {
		return StyleMeta.Render("n/a")
	}
	return chain.FormatEther(v) + " ETH"
}

// RenderBalances is the balances panel of the admin overview.
func RenderBalances(ov *dashboard.Overview) string {
	owner := StyleError.Render("unavailable")
	if ov.Owner.OK() {
		owner = ov.Owner.Value.Hex()
	}
	assets, okAssets := ov.TotalAssets()
	gains, okGains := ov.Gains()
	return KeyValueBlock("Swapper "+ov.Swapper.Hex(), [][2]string{
		{"Owner", owner},
		{"Deposited ETH", ether(ov.EthBalance, "ETH")},
		{"stETH balance", ether(ov.Steth, "stETH")},
		{"WETH balance", ether(ov.Weth, "WETH")},
		{"Total ETH", ether(ov.TotalEth, "ETH")},
		{"Total assets", derived(assets, okAssets)},
		{"Total gains", derived(gains, okGains)},
	})
}

// RenderWithdrawals lists the withdrawal requests of the swapper.
func RenderWithdrawals(ov *dashboard.Overview) string {
	if !ov.Withdrawals.OK() {
		return Err("Withdrawal queue unavailable: " + ov.Withdrawals.Err.Error())
	}
	if len(ov.Withdrawals.Value) == 0 {
		return Meta("No withdrawal requests.")
	}
	t := NewTable(
		Column{Title: "Request", Width: 10},
		Column{Title: "stETH", Width: 18},
		Column{Title: "Requested", Width: 20},
		Column{Title: "Status", Width: 10},
	)
	for _, w := range ov.Withdrawals.Value {
		t.AddRow(
			w.ID.String(),
			chain.FormatEther(w.AmountOfStETH),
			requestedAt(w.Timestamp),
			statusBadge(w.State()),
		)
	}
	queued, _ := ov.QueuedSteth()
	return t.Render() + Meta(fmt.Sprintf("%d requests, %s stETH queued", len(ov.Withdrawals.Value), chain.FormatEther(queued)))
}

func requestedAt(ts *big.Int) string {
	if ts == nil || !ts.IsInt64() {
		return "-"
	}
	return time.Unix(ts.Int64(), 0).UTC().Format("2006-01-02 15:04")
}

func statusBadge(s string) string {
	switch s {
	case "Finalized":
		return StyleSuccess.Render(s)
	case "Claimed":
		return StyleMeta.Render(s)
	default:
		return StyleWarning.Render(s)
	}
}

// RenderAccess shows the probe outcome and the per-candidate checks.
func RenderAccess(account string, res access.Result) string {
	var sb strings.Builder
	role := "not permitted"
	switch {
	case res.IsOwner:
		role = "owner"
	case res.Permitted:
		role = "allow-listed"
	}
	sb.WriteString(KeyValueBlock("Access", [][2]string{
		{"Account", account},
		{"Active contract", res.Contract.Hex()},
		{"Role", role},
		{"Owner controls", YesNo(res.IsOwner)},
	}))
	sb.WriteString("\n")

	t := NewTable(
		Column{Title: "#", Width: 3},
		Column{Title: "Contract", Width: 44},
		Column{Title: "Result", Width: 30},
	)
	for i, c := range res.Checks {
		result := string(c.Role)
		switch c.Role {
		case access.RoleOwner, access.RoleAllowed:
			result = StyleSuccess.Render(result)
		case access.RoleUnknown:
			result = StyleError.Render("read failed")
		}
		t.AddRow(fmt.Sprint(i+1), c.Contract.Hex(), result)
	}
	sb.WriteString(t.Render())
	return sb.String()
}
